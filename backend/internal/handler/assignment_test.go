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

func TestAssignmentHandlers(t *testing.T) {
	assignments := &MockAssignmentService{}
	h := &Handler{assignment: assignments, cfg: testConfig()}

	t.Run("create", func(t *testing.T) {
		var got domain.AssignmentCreationData
		assignments.CreateFunc = func(ctx context.Context, caller domain.Principal, data domain.AssignmentCreationData) (domain.TaskAssignment, error) {
			got = data
			return domain.TaskAssignment{Id: "t-1", StaffId: data.StaffId, State: domain.AssignmentPending}, nil
		}
		body := `{"id_funcionario":"staff-1","descripcion":"Revisar informe","fecha_asignacion":"2024-01-10"}`

		rr := serve(mount(http.MethodPost, "/v1/assignments", h.CreateAssignment),
			as(httptest.NewRequest(http.MethodPost, "/v1/assignments", strings.NewReader(body)), supervisorCaller))

		require.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, "staff-1", got.StaffId)
		assert.Equal(t, domain.NewDate(2024, 1, 10), got.AssignedOn)
	})

	t.Run("list filters", func(t *testing.T) {
		var got domain.AssignmentFilter
		assignments.ListFunc = func(ctx context.Context, caller domain.Principal, filter domain.AssignmentFilter) ([]domain.TaskAssignment, error) {
			got = filter
			return nil, nil
		}

		rr := serve(mount(http.MethodGet, "/v1/assignments", h.ListAssignments),
			as(httptest.NewRequest(http.MethodGet, "/v1/assignments?state=pendiente&staff_id=staff-2", nil), supervisorCaller))

		require.Equal(t, http.StatusOK, rr.Code)
		require.NotNil(t, got.State)
		assert.Equal(t, domain.AssignmentPending, *got.State)
		require.NotNil(t, got.StaffId)
		assert.Equal(t, "staff-2", *got.StaffId)
		assert.Contains(t, rr.Body.String(), `"asignaciones":[]`)
	})

	t.Run("state change forbidden", func(t *testing.T) {
		assignments.UpdateStateFunc = func(context.Context, domain.Principal, domain.AssignmentId, domain.AssignmentState) (domain.TaskAssignment, error) {
			return domain.TaskAssignment{}, service.ErrTransitionForbidden
		}

		rr := serve(mount(http.MethodPatch, "/v1/assignments/{id}/state", h.UpdateAssignmentState),
			as(httptest.NewRequest(http.MethodPatch, "/v1/assignments/t-1/state", strings.NewReader(`{"estado":"pendiente"}`)), staffCaller))

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("state required", func(t *testing.T) {
		rr := serve(mount(http.MethodPatch, "/v1/assignments/{id}/state", h.UpdateAssignmentState),
			as(httptest.NewRequest(http.MethodPatch, "/v1/assignments/t-1/state", strings.NewReader(`{}`)), staffCaller))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestNotificationHandlers(t *testing.T) {
	var gotUnread bool
	var gotUser domain.UserId
	notifications := &MockNotificationService{
		ListFunc: func(ctx context.Context, userId domain.UserId, onlyUnread bool) ([]domain.Notification, error) {
			gotUser, gotUnread = userId, onlyUnread
			return []domain.Notification{{Id: "n-1", Message: "Nueva tarea"}}, nil
		},
	}
	h := &Handler{notification: notifications, cfg: testConfig()}

	rr := serve(mount(http.MethodGet, "/v1/notifications", h.ListNotifications),
		as(httptest.NewRequest(http.MethodGet, "/v1/notifications?unread=1", nil), staffCaller))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, gotUnread)
	assert.Equal(t, staffCaller.Id, gotUser)

	var readId domain.NotificationId
	notifications.MarkReadFunc = func(ctx context.Context, id domain.NotificationId, userId domain.UserId) error {
		readId = id
		return nil
	}
	rr = serve(mount(http.MethodPost, "/v1/notifications/{id}/read", h.MarkNotificationRead),
		as(httptest.NewRequest(http.MethodPost, "/v1/notifications/n-1/read", nil), staffCaller))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "n-1", readId)
}

func TestStatsHandlers(t *testing.T) {
	stats := &MockStatsService{
		WeekdaysFunc: func(ctx context.Context, caller domain.Principal, today domain.Date) ([]domain.WeekdayCount, error) {
			return []domain.WeekdayCount{{Day: "Lun", Count: 2}}, nil
		},
	}
	h := &Handler{stats: stats, staff: &MockStaffService{}, cfg: testConfig()}

	rr := serve(mount(http.MethodGet, "/v1/stats/dashboard", h.GetDashboard),
		as(httptest.NewRequest(http.MethodGet, "/v1/stats/dashboard", nil), staffCaller))
	require.Equal(t, http.StatusOK, rr.Code)
	var dashboard domain.DashboardStats
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&dashboard))
	assert.Equal(t, 7, dashboard.ActivitiesLastMonth)

	rr = serve(mount(http.MethodGet, "/v1/stats/weekdays", h.GetWeekdays),
		as(httptest.NewRequest(http.MethodGet, "/v1/stats/weekdays", nil), staffCaller))
	require.Equal(t, http.StatusOK, rr.Code)
	var weekdays api.WeekdaysResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&weekdays))
	require.Len(t, weekdays.Days, 1)
	assert.Equal(t, "Lun", weekdays.Days[0].Day)

	rr = serve(mount(http.MethodGet, "/v1/stats/recent", h.GetRecent),
		as(httptest.NewRequest(http.MethodGet, "/v1/stats/recent", nil), staffCaller))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"actividades":[]`)

	rr = serve(mount(http.MethodGet, "/v1/stats/projects", h.GetProjectDistribution),
		as(httptest.NewRequest(http.MethodGet, "/v1/stats/projects", nil), staffCaller))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"proyectos":[]`)

	var gotCaller domain.Principal
	stats.ProjectsFunc = func(ctx context.Context, caller domain.Principal) ([]domain.ProjectCount, error) {
		gotCaller = caller
		return []domain.ProjectCount{{Id: "p-1", Name: "Plan Invierno", Count: 3}}, nil
	}
	rr = serve(mount(http.MethodGet, "/v1/stats/projects", h.GetProjectDistribution),
		as(httptest.NewRequest(http.MethodGet, "/v1/stats/projects", nil), staffCaller))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, staffCaller.Id, gotCaller.Id)
	var distribution api.ProjectDistributionResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&distribution))
	require.Len(t, distribution.Projects, 1)
	assert.Equal(t, 3, distribution.Projects[0].Count)

	stats.ProjectsFunc = func(context.Context, domain.Principal) ([]domain.ProjectCount, error) {
		return nil, service.ErrOperationFailed
	}
	rr = serve(mount(http.MethodGet, "/v1/stats/projects", h.GetProjectDistribution),
		as(httptest.NewRequest(http.MethodGet, "/v1/stats/projects", nil), staffCaller))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	rr = serve(mount(http.MethodGet, "/v1/staff", h.ListStaff),
		as(httptest.NewRequest(http.MethodGet, "/v1/staff?mine=true", nil), supervisorCaller))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"funcionarios":[]`)
}
