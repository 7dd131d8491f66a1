package api

import "github.com/itchan-dev/agenda/shared/domain"

// CreateActivityRequest is the JSON body, or the "json" form field of a multipart upload.
// UserId lets a supervisor register on behalf of a funcionario.
type CreateActivityRequest struct {
	UserId      string        `json:"id_usuario,omitempty"`
	Date        domain.Date   `json:"fecha" validate:"required"`
	Start       *domain.Clock `json:"hora_inicio" validate:"required"`
	End         *domain.Clock `json:"hora_fin" validate:"required"`
	ProjectId   *string       `json:"id_proyecto,omitempty"`
	Description string        `json:"descripcion" validate:"required"`
}

// UpdateActivityRequest is a partial update. ClearProject unlinks the project.
type UpdateActivityRequest struct {
	Date         *domain.Date          `json:"fecha,omitempty"`
	Start        *domain.Clock         `json:"hora_inicio,omitempty"`
	End          *domain.Clock         `json:"hora_fin,omitempty"`
	ProjectId    *string               `json:"id_proyecto,omitempty"`
	ClearProject bool                  `json:"sin_proyecto,omitempty"`
	Description  *string               `json:"descripcion,omitempty"`
	State        *domain.ActivityState `json:"estado,omitempty"`
}

type DayResponse struct {
	Date       domain.Date       `json:"fecha"`
	Activities []domain.Activity `json:"actividades"`
	SentHours  float64           `json:"horas_enviadas"`
}

type CreateActivityResponse struct {
	Activity    domain.Activity           `json:"actividad"`
	Attachments []domain.AttachmentResult `json:"adjuntos,omitempty"`
}

type SendAgendaResponse struct {
	Message    string            `json:"message"`
	Activities []domain.Activity `json:"actividades"`
}

type HoursResponse struct {
	Date  domain.Date `json:"fecha"`
	Hours float64     `json:"horas"`
}

type DocumentsResponse struct {
	Documents []domain.Document `json:"documentos"`
}

type UploadResponse struct {
	Attachments []domain.AttachmentResult `json:"adjuntos"`
}
