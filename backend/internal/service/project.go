package service

import (
	"context"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/itchan-dev/agenda/backend/internal/service/utils"
	"github.com/itchan-dev/agenda/shared/config"
	"github.com/itchan-dev/agenda/shared/domain"
	internal_errors "github.com/itchan-dev/agenda/shared/errors"
	"github.com/itchan-dev/agenda/shared/logger"
)

const maxProjectNameLen = 200

type ProjectService interface {
	List(ctx context.Context, caller domain.Principal, includeInactive bool) ([]domain.Project, error)
	Get(ctx context.Context, caller domain.Principal, id domain.ProjectId) (domain.Project, error)
	Create(ctx context.Context, caller domain.Principal, data domain.ProjectCreationData) (domain.Project, error)
	Update(ctx context.Context, caller domain.Principal, id domain.ProjectId, patch domain.ProjectPatch) (domain.Project, error)
	Delete(ctx context.Context, caller domain.Principal, id domain.ProjectId) error
	Activities(ctx context.Context, caller domain.Principal, id domain.ProjectId, date *domain.Date) ([]domain.Activity, error)
	Summary(ctx context.Context, caller domain.Principal, id domain.ProjectId) (domain.ProjectSummary, error)
}

type ProjectStorage interface {
	CreateProject(ctx context.Context, data domain.ProjectCreationData) (domain.ProjectId, error)
	GetProject(ctx context.Context, id domain.ProjectId) (domain.Project, error)
	ListProjects(ctx context.Context, includeInactive bool, onlyIds []domain.ProjectId) ([]domain.Project, error)
	UpdateProject(ctx context.Context, id domain.ProjectId, patch domain.ProjectPatch) error
	DeactivateProject(ctx context.Context, id domain.ProjectId) error
	AccessibleProjectIds(ctx context.Context, userId domain.UserId) ([]domain.ProjectId, error)
	HasProjectAccess(ctx context.Context, projectId domain.ProjectId, userId domain.UserId) (bool, error)
	ProjectActivityStats(ctx context.Context, id domain.ProjectId) (domain.ProjectActivityStats, error)
	ActivitiesByProject(ctx context.Context, projectId domain.ProjectId, date *domain.Date) ([]domain.Activity, error)
}

type Project struct {
	storage ProjectStorage
	cfg     *config.Config
}

func NewProject(storage ProjectStorage, cfg *config.Config) ProjectService {
	return &Project{storage: storage, cfg: cfg}
}

// List returns active projects. Staff only see projects they are responsible for,
// supervise or hold an assignment in; supervisors may include inactive ones.
func (s *Project) List(ctx context.Context, caller domain.Principal, includeInactive bool) ([]domain.Project, error) {
	if caller.Role.IsSupervisor() {
		return s.storage.ListProjects(ctx, includeInactive, nil)
	}
	ids, err := s.storage.AccessibleProjectIds(ctx, caller.Id)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []domain.Project{}, nil
	}
	return s.storage.ListProjects(ctx, false, ids)
}

func (s *Project) Get(ctx context.Context, caller domain.Principal, id domain.ProjectId) (domain.Project, error) {
	if err := s.checkAccess(ctx, caller, id); err != nil {
		return domain.Project{}, err
	}
	p, err := s.storage.GetProject(ctx, id)
	if err != nil {
		return domain.Project{}, err
	}
	if !p.Active && !caller.Role.IsSupervisor() {
		return domain.Project{}, internal_errors.NotFound("Project not found")
	}
	s.render(&p)
	return p, nil
}

func (s *Project) Create(ctx context.Context, caller domain.Principal, data domain.ProjectCreationData) (domain.Project, error) {
	data.Name = strings.TrimSpace(data.Name)
	if err := validateProjectName(data.Name); err != nil {
		return domain.Project{}, err
	}
	if data.State == "" {
		data.State = domain.ProjectPlanned
	}
	if !data.State.Valid() {
		return domain.Project{}, internal_errors.BadRequest("Invalid project state")
	}
	if err := validateProjectDates(data.StartDate, data.EndDate); err != nil {
		return domain.Project{}, err
	}
	if data.Budget != nil && *data.Budget < 0 {
		return domain.Project{}, internal_errors.BadRequest("Budget must not be negative")
	}
	if data.SupervisorId == nil {
		data.SupervisorId = &caller.Id
	}

	id, err := s.storage.CreateProject(ctx, data)
	if err != nil {
		return domain.Project{}, err
	}
	logger.Log.Info("project created", "project_id", id, "by", caller.Id)
	return s.Get(ctx, caller, id)
}

func (s *Project) Update(ctx context.Context, caller domain.Principal, id domain.ProjectId, patch domain.ProjectPatch) (domain.Project, error) {
	current, err := s.storage.GetProject(ctx, id)
	if err != nil {
		return domain.Project{}, err
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if err := validateProjectName(name); err != nil {
			return domain.Project{}, err
		}
		patch.Name = &name
	}
	if patch.State != nil && !patch.State.Valid() {
		return domain.Project{}, internal_errors.BadRequest("Invalid project state")
	}
	start, end := current.StartDate, current.EndDate
	if patch.StartDate != nil {
		start = *patch.StartDate
	}
	if patch.EndDate != nil {
		end = *patch.EndDate
	}
	if err := validateProjectDates(start, end); err != nil {
		return domain.Project{}, err
	}
	if patch.Budget != nil && *patch.Budget < 0 {
		return domain.Project{}, internal_errors.BadRequest("Budget must not be negative")
	}

	if err := s.storage.UpdateProject(ctx, id, patch); err != nil {
		return domain.Project{}, err
	}
	return s.Get(ctx, caller, id)
}

// Delete deactivates the project. Activities keep pointing at it.
func (s *Project) Delete(ctx context.Context, caller domain.Principal, id domain.ProjectId) error {
	if err := s.storage.DeactivateProject(ctx, id); err != nil {
		return err
	}
	logger.Log.Info("project deactivated", "project_id", id, "by", caller.Id)
	return nil
}

func (s *Project) Activities(ctx context.Context, caller domain.Principal, id domain.ProjectId, date *domain.Date) ([]domain.Activity, error) {
	if err := s.checkAccess(ctx, caller, id); err != nil {
		return nil, err
	}
	if _, err := s.storage.GetProject(ctx, id); err != nil {
		return nil, err
	}
	return s.storage.ActivitiesByProject(ctx, id, date)
}

// Summary reports the newest activities of a project and the share already sent.
func (s *Project) Summary(ctx context.Context, caller domain.Principal, id domain.ProjectId) (domain.ProjectSummary, error) {
	p, err := s.Get(ctx, caller, id)
	if err != nil {
		return domain.ProjectSummary{}, err
	}
	stats, err := s.storage.ProjectActivityStats(ctx, id)
	if err != nil {
		return domain.ProjectSummary{}, err
	}
	activities, err := s.storage.ActivitiesByProject(ctx, id, nil)
	if err != nil {
		return domain.ProjectSummary{}, err
	}
	if limit := s.cfg.RecentActivitiesLimit(); len(activities) > limit {
		activities = activities[:limit]
	}
	return domain.ProjectSummary{
		Project:           p,
		RecentActivities:  activities,
		TotalActivities:   stats.Total,
		SentActivities:    stats.Sent,
		CompletionPercent: completionPercent(stats),
	}, nil
}

func completionPercent(stats domain.ProjectActivityStats) float64 {
	if stats.Total <= 0 {
		return 0
	}
	return math.Round(float64(stats.Sent) / float64(stats.Total) * 100)
}

func (s *Project) checkAccess(ctx context.Context, caller domain.Principal, id domain.ProjectId) error {
	if CapabilitiesFor(caller.Role).SkipProjectAccess {
		return nil
	}
	ok, err := s.storage.HasProjectAccess(ctx, id, caller.Id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrProjectAccessDenied
	}
	return nil
}

func (s *Project) render(p *domain.Project) {
	html, err := utils.RenderMarkdown(p.Description)
	if err != nil {
		logger.Log.Warn("failed to render project description", "project_id", p.Id, "error", err)
		return
	}
	p.DescriptionHTML = html
}

func validateProjectName(name string) error {
	if name == "" {
		return internal_errors.BadRequest("Project name is required")
	}
	if utf8.RuneCountInString(name) > maxProjectNameLen {
		return internal_errors.BadRequest("Project name is too long")
	}
	return nil
}

func validateProjectDates(start, end domain.Date) error {
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return internal_errors.BadRequest("End date must not be before start date")
	}
	return nil
}
