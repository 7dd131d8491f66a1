package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/itchan-dev/agenda/shared/domain"
	internal_errors "github.com/itchan-dev/agenda/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockProjectStorage struct {
	projects   map[domain.ProjectId]domain.Project
	access     map[domain.ProjectId][]domain.UserId
	stats      domain.ProjectActivityStats
	activities []domain.Activity
	seq        int

	listCalls []listProjectsCall
}

type listProjectsCall struct {
	includeInactive bool
	onlyIds         []domain.ProjectId
}

func NewMockProjectStorage() *MockProjectStorage {
	return &MockProjectStorage{
		projects: map[domain.ProjectId]domain.Project{},
		access:   map[domain.ProjectId][]domain.UserId{},
	}
}

func (m *MockProjectStorage) CreateProject(ctx context.Context, data domain.ProjectCreationData) (domain.ProjectId, error) {
	m.seq++
	id := domain.ProjectId(fmt.Sprintf("p-%d", m.seq))
	m.projects[id] = domain.Project{
		Id:            id,
		Name:          data.Name,
		Description:   data.Description,
		State:         data.State,
		StartDate:     data.StartDate,
		EndDate:       data.EndDate,
		ResponsibleId: data.ResponsibleId,
		SupervisorId:  data.SupervisorId,
		Budget:        data.Budget,
		ExternalRexId: data.ExternalRexId,
		Active:        true,
	}
	return id, nil
}

func (m *MockProjectStorage) GetProject(ctx context.Context, id domain.ProjectId) (domain.Project, error) {
	p, ok := m.projects[id]
	if !ok {
		return domain.Project{}, internal_errors.NotFound("Project not found")
	}
	return p, nil
}

func (m *MockProjectStorage) ListProjects(ctx context.Context, includeInactive bool, onlyIds []domain.ProjectId) ([]domain.Project, error) {
	m.listCalls = append(m.listCalls, listProjectsCall{includeInactive, onlyIds})
	out := []domain.Project{}
	for _, p := range m.projects {
		if !includeInactive && !p.Active {
			continue
		}
		if onlyIds != nil && !containsId(onlyIds, p.Id) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func containsId(ids []domain.ProjectId, id domain.ProjectId) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

func (m *MockProjectStorage) UpdateProject(ctx context.Context, id domain.ProjectId, patch domain.ProjectPatch) error {
	p, ok := m.projects[id]
	if !ok {
		return internal_errors.NotFound("Project not found")
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.State != nil {
		p.State = *patch.State
	}
	if patch.EndDate != nil {
		p.EndDate = *patch.EndDate
	}
	m.projects[id] = p
	return nil
}

func (m *MockProjectStorage) DeactivateProject(ctx context.Context, id domain.ProjectId) error {
	p, ok := m.projects[id]
	if !ok {
		return internal_errors.NotFound("Project not found")
	}
	p.Active = false
	m.projects[id] = p
	return nil
}

func (m *MockProjectStorage) AccessibleProjectIds(ctx context.Context, userId domain.UserId) ([]domain.ProjectId, error) {
	var ids []domain.ProjectId
	for pid, users := range m.access {
		for _, u := range users {
			if u == userId {
				ids = append(ids, pid)
			}
		}
	}
	return ids, nil
}

func (m *MockProjectStorage) HasProjectAccess(ctx context.Context, projectId domain.ProjectId, userId domain.UserId) (bool, error) {
	for _, u := range m.access[projectId] {
		if u == userId {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockProjectStorage) ProjectActivityStats(ctx context.Context, id domain.ProjectId) (domain.ProjectActivityStats, error) {
	return m.stats, nil
}

func (m *MockProjectStorage) ActivitiesByProject(ctx context.Context, projectId domain.ProjectId, date *domain.Date) ([]domain.Activity, error) {
	var out []domain.Activity
	for _, a := range m.activities {
		if a.ProjectId != nil && *a.ProjectId == projectId && (date == nil || a.Date == *date) {
			out = append(out, a)
		}
	}
	return out, nil
}

// --- Tests ---

func TestProject_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	storage := NewMockProjectStorage()
	s := NewProject(storage, testConfig())

	p, err := s.Create(ctx, supervisor, domain.ProjectCreationData{
		Name:        "  Plan Invierno ",
		Description: "# Objetivo\n\nReducir **anegamientos**",
	})
	require.NoError(t, err)
	assert.Equal(t, "Plan Invierno", p.Name)
	assert.Equal(t, domain.ProjectPlanned, p.State)
	require.NotNil(t, p.SupervisorId)
	assert.Equal(t, supervisorId, *p.SupervisorId)
	assert.Contains(t, p.DescriptionHTML, "<strong>anegamientos</strong>")

	t.Run("validation", func(t *testing.T) {
		negative := -1.0
		cases := []domain.ProjectCreationData{
			{Name: " "},
			{Name: "X", State: "archivado"},
			{Name: "X", StartDate: testDate, EndDate: testDate.AddDays(-1)},
			{Name: "X", Budget: &negative},
		}
		for _, c := range cases {
			_, err := s.Create(ctx, supervisor, c)
			assert.Equal(t, 400, internal_errors.StatusCode(err))
		}
	})

	t.Run("staff needs access", func(t *testing.T) {
		_, err := s.Get(ctx, staff, p.Id)
		assert.ErrorIs(t, err, ErrProjectAccessDenied)

		storage.access[p.Id] = []domain.UserId{staffId}
		got, err := s.Get(ctx, staff, p.Id)
		require.NoError(t, err)
		assert.Equal(t, p.Id, got.Id)
	})

	t.Run("inactive hidden from staff", func(t *testing.T) {
		require.NoError(t, s.Delete(ctx, supervisor, p.Id))
		_, err := s.Get(ctx, staff, p.Id)
		assert.True(t, internal_errors.IsNotFound(err))

		got, err := s.Get(ctx, supervisor, p.Id)
		require.NoError(t, err)
		assert.False(t, got.Active)
	})
}

func TestProject_List(t *testing.T) {
	ctx := context.Background()
	storage := NewMockProjectStorage()
	s := NewProject(storage, testConfig())
	a, err := s.Create(ctx, supervisor, domain.ProjectCreationData{Name: "A"})
	require.NoError(t, err)
	_, err = s.Create(ctx, supervisor, domain.ProjectCreationData{Name: "B"})
	require.NoError(t, err)

	t.Run("staff without access gets nothing", func(t *testing.T) {
		list, err := s.List(ctx, staff, true)
		require.NoError(t, err)
		assert.Empty(t, list)
		assert.Empty(t, storage.listCalls, "storage must not be asked for an unfiltered list")
	})

	t.Run("staff sees accessible only", func(t *testing.T) {
		storage.access[a.Id] = []domain.UserId{staffId}
		list, err := s.List(ctx, staff, true)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, a.Id, list[0].Id)
		last := storage.listCalls[len(storage.listCalls)-1]
		assert.False(t, last.includeInactive)
	})

	t.Run("supervisor sees all", func(t *testing.T) {
		list, err := s.List(ctx, supervisor, false)
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})
}

func TestProject_Update(t *testing.T) {
	ctx := context.Background()
	storage := NewMockProjectStorage()
	s := NewProject(storage, testConfig())
	p, err := s.Create(ctx, supervisor, domain.ProjectCreationData{Name: "A", StartDate: testDate})
	require.NoError(t, err)

	name := "Renombrado"
	state := domain.ProjectInProgress
	got, err := s.Update(ctx, supervisor, p.Id, domain.ProjectPatch{Name: &name, State: &state})
	require.NoError(t, err)
	assert.Equal(t, name, got.Name)
	assert.Equal(t, state, got.State)

	before := testDate.AddDays(-3)
	_, err = s.Update(ctx, supervisor, p.Id, domain.ProjectPatch{EndDate: &before})
	assert.Equal(t, 400, internal_errors.StatusCode(err))

	_, err = s.Update(ctx, supervisor, "missing", domain.ProjectPatch{Name: &name})
	assert.True(t, internal_errors.IsNotFound(err))
}

func TestProject_Summary(t *testing.T) {
	ctx := context.Background()
	storage := NewMockProjectStorage()
	s := NewProject(storage, testConfig())
	p, err := s.Create(ctx, supervisor, domain.ProjectCreationData{Name: "A"})
	require.NoError(t, err)

	for i := 0; i < 7; i++ {
		storage.activities = append(storage.activities, domain.Activity{
			Id:        domain.ActivityId(fmt.Sprintf("a-%d", i)),
			ProjectId: &p.Id,
			Date:      testDate.AddDays(-i),
		})
	}
	storage.stats = domain.ProjectActivityStats{Total: 3, Sent: 2}

	summary, err := s.Summary(ctx, supervisor, p.Id)
	require.NoError(t, err)
	assert.Len(t, summary.RecentActivities, 5)
	assert.Equal(t, 3, summary.TotalActivities)
	assert.Equal(t, 2, summary.SentActivities)
	assert.Equal(t, 67.0, summary.CompletionPercent)

	acts, err := s.Activities(ctx, supervisor, p.Id, &testDate)
	require.NoError(t, err)
	assert.Len(t, acts, 1)

	_, err = s.Activities(ctx, staff, p.Id, nil)
	assert.ErrorIs(t, err, ErrProjectAccessDenied)
}

func TestCompletionPercent(t *testing.T) {
	assert.Zero(t, completionPercent(domain.ProjectActivityStats{}))
	assert.Equal(t, 100.0, completionPercent(domain.ProjectActivityStats{Total: 4, Sent: 4}))
	assert.Equal(t, 33.0, completionPercent(domain.ProjectActivityStats{Total: 3, Sent: 1}))
}
