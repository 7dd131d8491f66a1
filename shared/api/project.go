package api

import "github.com/itchan-dev/agenda/shared/domain"

type CreateProjectRequest struct {
	Name          string              `json:"nombre" validate:"required,max=200"`
	Description   string              `json:"descripcion,omitempty"`
	State         domain.ProjectState `json:"estado,omitempty"`
	StartDate     domain.Date         `json:"fecha_inicio,omitempty"`
	EndDate       domain.Date         `json:"fecha_fin,omitempty"`
	ResponsibleId *string             `json:"responsable_id,omitempty"`
	SupervisorId  *string             `json:"supervisor_id,omitempty"`
	Budget        *float64            `json:"presupuesto,omitempty"`
	ExternalRexId *string             `json:"id_externo_rex,omitempty"`
}

type UpdateProjectRequest struct {
	Name          *string              `json:"nombre,omitempty" validate:"omitempty,max=200"`
	Description   *string              `json:"descripcion,omitempty"`
	State         *domain.ProjectState `json:"estado,omitempty"`
	StartDate     *domain.Date         `json:"fecha_inicio,omitempty"`
	EndDate       *domain.Date         `json:"fecha_fin,omitempty"`
	ResponsibleId *string              `json:"responsable_id,omitempty"`
	Budget        *float64             `json:"presupuesto,omitempty"`
	ExternalRexId *string              `json:"id_externo_rex,omitempty"`
	Active        *bool                `json:"activo,omitempty"`
}

type ProjectsResponse struct {
	Projects []domain.Project `json:"proyectos"`
}

type ProjectActivitiesResponse struct {
	Activities []domain.Activity `json:"actividades"`
}
