package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/itchan-dev/agenda/backend/internal/service"
	"github.com/itchan-dev/agenda/shared/api"
	"github.com/itchan-dev/agenda/shared/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListProjectsHandler(t *testing.T) {
	projects := &MockProjectService{}
	h := &Handler{project: projects, cfg: testConfig()}
	router := mount(http.MethodGet, "/v1/projects", h.ListProjects)

	var gotInactive bool
	projects.ListFunc = func(ctx context.Context, caller domain.Principal, includeInactive bool) ([]domain.Project, error) {
		gotInactive = includeInactive
		return []domain.Project{{Id: "p-1", Name: "Plan Invierno"}}, nil
	}

	rr := serve(router, as(httptest.NewRequest(http.MethodGet, "/v1/projects?include_inactive=true", nil), supervisorCaller))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, gotInactive)
	var resp api.ProjectsResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Len(t, resp.Projects, 1)
	assert.Equal(t, "Plan Invierno", resp.Projects[0].Name)

	rr = serve(router, as(httptest.NewRequest(http.MethodGet, "/v1/projects?include_inactive=maybe", nil), supervisorCaller))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateProjectHandler(t *testing.T) {
	var got domain.ProjectCreationData
	h := &Handler{cfg: testConfig(), project: &MockProjectService{
		CreateFunc: func(ctx context.Context, caller domain.Principal, data domain.ProjectCreationData) (domain.Project, error) {
			got = data
			return domain.Project{Id: "p-1", Name: data.Name}, nil
		},
	}}
	router := mount(http.MethodPost, "/v1/projects", h.CreateProject)

	body := `{"nombre":"Plan Invierno","estado":"en_progreso","fecha_inicio":"2024-05-01","presupuesto":1500000}`
	rr := serve(router, as(httptest.NewRequest(http.MethodPost, "/v1/projects", strings.NewReader(body)), supervisorCaller))

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "Plan Invierno", got.Name)
	assert.Equal(t, domain.ProjectInProgress, got.State)
	assert.Equal(t, domain.NewDate(2024, 5, 1), got.StartDate)
	assert.True(t, got.EndDate.IsZero())
	require.NotNil(t, got.Budget)
	assert.InDelta(t, 1500000, *got.Budget, 1e-9)

	rr = serve(router, as(httptest.NewRequest(http.MethodPost, "/v1/projects", strings.NewReader(`{"descripcion":"sin nombre"}`)), supervisorCaller))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	long := `{"nombre":"` + strings.Repeat("x", 201) + `"}`
	rr = serve(router, as(httptest.NewRequest(http.MethodPost, "/v1/projects", strings.NewReader(long)), supervisorCaller))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestProjectWorkspaceHandlers(t *testing.T) {
	projects := &MockProjectService{}
	h := &Handler{project: projects, cfg: testConfig()}

	t.Run("activities without date", func(t *testing.T) {
		var gotDate *domain.Date
		projects.ActivitiesFunc = func(ctx context.Context, caller domain.Principal, id domain.ProjectId, date *domain.Date) ([]domain.Activity, error) {
			gotDate = date
			return nil, nil
		}
		router := mount(http.MethodGet, "/v1/projects/{id}/activities", h.GetProjectActivities)

		rr := serve(router, as(httptest.NewRequest(http.MethodGet, "/v1/projects/p-1/activities", nil), staffCaller))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Nil(t, gotDate)

		rr = serve(router, as(httptest.NewRequest(http.MethodGet, "/v1/projects/p-1/activities?date=2024-01-10", nil), staffCaller))
		require.Equal(t, http.StatusOK, rr.Code)
		require.NotNil(t, gotDate)
		assert.Equal(t, domain.NewDate(2024, 1, 10), *gotDate)
	})

	t.Run("access denied", func(t *testing.T) {
		projects.SummaryFunc = func(context.Context, domain.Principal, domain.ProjectId) (domain.ProjectSummary, error) {
			return domain.ProjectSummary{}, service.ErrProjectAccessDenied
		}
		router := mount(http.MethodGet, "/v1/projects/{id}/summary", h.GetProjectSummary)

		rr := serve(router, as(httptest.NewRequest(http.MethodGet, "/v1/projects/p-1/summary", nil), staffCaller))

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("update and deactivate", func(t *testing.T) {
		var gotPatch domain.ProjectPatch
		projects.UpdateFunc = func(ctx context.Context, caller domain.Principal, id domain.ProjectId, patch domain.ProjectPatch) (domain.Project, error) {
			gotPatch = patch
			return domain.Project{Id: id}, nil
		}
		rr := serve(mount(http.MethodPatch, "/v1/projects/{id}", h.UpdateProject),
			as(httptest.NewRequest(http.MethodPatch, "/v1/projects/p-1", strings.NewReader(`{"estado":"completado"}`)), supervisorCaller))
		require.Equal(t, http.StatusOK, rr.Code)
		require.NotNil(t, gotPatch.State)
		assert.Equal(t, domain.ProjectCompleted, *gotPatch.State)
		assert.Nil(t, gotPatch.Name)

		rr = serve(mount(http.MethodDelete, "/v1/projects/{id}", h.DeleteProject),
			as(httptest.NewRequest(http.MethodDelete, "/v1/projects/p-1", nil), supervisorCaller))
		assert.Equal(t, http.StatusNoContent, rr.Code)
	})
}
