package service

import (
	"context"
	"fmt"

	"github.com/itchan-dev/agenda/backend/internal/service/utils"
	"github.com/itchan-dev/agenda/shared/domain"
	internal_errors "github.com/itchan-dev/agenda/shared/errors"
	"github.com/itchan-dev/agenda/shared/logger"
)

type AssignmentService interface {
	Create(ctx context.Context, caller domain.Principal, data domain.AssignmentCreationData) (domain.TaskAssignment, error)
	List(ctx context.Context, caller domain.Principal, filter domain.AssignmentFilter) ([]domain.TaskAssignment, error)
	UpdateState(ctx context.Context, caller domain.Principal, id domain.AssignmentId, state domain.AssignmentState) (domain.TaskAssignment, error)
}

type AssignmentStorage interface {
	CreateAssignment(ctx context.Context, data domain.AssignmentCreationData) (domain.AssignmentId, error)
	ListAssignments(ctx context.Context, filter domain.AssignmentFilter) ([]domain.TaskAssignment, error)
	GetAssignment(ctx context.Context, id domain.AssignmentId) (domain.TaskAssignment, error)
	UpdateAssignmentState(ctx context.Context, id domain.AssignmentId, state domain.AssignmentState) error
	UserById(ctx context.Context, id domain.UserId) (domain.User, error)
}

type Assignment struct {
	storage  AssignmentStorage
	notifier Notifier
}

func NewAssignment(storage AssignmentStorage, notifier Notifier) AssignmentService {
	return &Assignment{storage: storage, notifier: notifier}
}

// Create assigns a task to a staff member and notifies them.
func (s *Assignment) Create(ctx context.Context, caller domain.Principal, data domain.AssignmentCreationData) (domain.TaskAssignment, error) {
	if !caller.Role.IsSupervisor() {
		return domain.TaskAssignment{}, internal_errors.Forbidden("Access denied. Only for supervisors")
	}
	data.Description = utils.SanitizeText(data.Description)
	if data.Description == "" {
		return domain.TaskAssignment{}, internal_errors.BadRequest("Description is required")
	}
	staffUser, err := s.storage.UserById(ctx, data.StaffId)
	if err != nil {
		if internal_errors.IsNotFound(err) {
			return domain.TaskAssignment{}, internal_errors.BadRequest("Staff member not found")
		}
		return domain.TaskAssignment{}, err
	}
	if staffUser.Role != domain.RoleStaff {
		return domain.TaskAssignment{}, internal_errors.BadRequest("Tasks can only be assigned to staff")
	}
	data.SupervisorId = caller.Id

	id, err := s.storage.CreateAssignment(ctx, data)
	if err != nil {
		return domain.TaskAssignment{}, err
	}
	s.notify(ctx, data.StaffId, domain.NotificationAssignment, "Nueva tarea asignada: "+data.Description)
	return s.storage.GetAssignment(ctx, id)
}

// List returns the caller's own tasks for staff and any tasks matching filter for supervisors.
func (s *Assignment) List(ctx context.Context, caller domain.Principal, filter domain.AssignmentFilter) ([]domain.TaskAssignment, error) {
	if filter.State != nil && !filter.State.Valid() {
		return nil, internal_errors.BadRequest("Invalid assignment state")
	}
	if !caller.Role.IsSupervisor() {
		filter.StaffId = &caller.Id
		filter.SupervisorId = nil
	}
	return s.storage.ListAssignments(ctx, filter)
}

// UpdateState moves a task along pendiente -> en_progreso -> completada.
// Staff may only move their own tasks forward; supervisors may set any state.
func (s *Assignment) UpdateState(ctx context.Context, caller domain.Principal, id domain.AssignmentId, state domain.AssignmentState) (domain.TaskAssignment, error) {
	if !state.Valid() {
		return domain.TaskAssignment{}, internal_errors.BadRequest("Invalid assignment state")
	}
	current, err := s.storage.GetAssignment(ctx, id)
	if err != nil {
		return domain.TaskAssignment{}, err
	}
	if current.State == state {
		return current, nil
	}
	if !caller.Role.IsSupervisor() {
		if current.StaffId != caller.Id {
			return domain.TaskAssignment{}, ErrNotOwner
		}
		if state.Rank() < current.State.Rank() {
			return domain.TaskAssignment{}, ErrTransitionForbidden
		}
	}

	if err := s.storage.UpdateAssignmentState(ctx, id, state); err != nil {
		return domain.TaskAssignment{}, err
	}
	if state == domain.AssignmentCompleted && caller.Id == current.StaffId {
		s.notify(ctx, current.SupervisorId, domain.NotificationSystem,
			fmt.Sprintf("Tarea completada: %s", current.Description))
	}
	return s.storage.GetAssignment(ctx, id)
}

func (s *Assignment) notify(ctx context.Context, userId domain.UserId, kind domain.NotificationKind, msg string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, userId, kind, msg); err != nil {
		logger.Log.Warn("failed to record notification", "user_id", userId, "error", err)
	}
}
