package api

import "github.com/itchan-dev/agenda/shared/domain"

type CreateAssignmentRequest struct {
	StaffId     string      `json:"id_funcionario" validate:"required"`
	ProjectId   *string     `json:"id_proyecto,omitempty"`
	Description string      `json:"descripcion" validate:"required"`
	AssignedOn  domain.Date `json:"fecha_asignacion,omitempty"`
}

type UpdateAssignmentStateRequest struct {
	State domain.AssignmentState `json:"estado" validate:"required"`
}

type AssignmentsResponse struct {
	Assignments []domain.TaskAssignment `json:"asignaciones"`
}

type NotificationsResponse struct {
	Notifications []domain.Notification `json:"notificaciones"`
}

type StaffResponse struct {
	Staff []domain.User `json:"funcionarios"`
}

type WeekdaysResponse struct {
	Days []domain.WeekdayCount `json:"dias"`
}

type ProjectDistributionResponse struct {
	Projects []domain.ProjectCount `json:"proyectos"`
}

type RecentResponse struct {
	Activities []domain.RecentActivity `json:"actividades"`
}
