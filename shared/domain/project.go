package domain

import "time"

type ProjectState string

const (
	ProjectPlanned    ProjectState = "planificado"
	ProjectInProgress ProjectState = "en_progreso"
	ProjectCompleted  ProjectState = "completado"
	ProjectCancelled  ProjectState = "cancelado"
)

func (s ProjectState) Valid() bool {
	switch s {
	case ProjectPlanned, ProjectInProgress, ProjectCompleted, ProjectCancelled:
		return true
	}
	return false
}

type Project struct {
	Id              ProjectId    `json:"id"`
	Name            string       `json:"nombre"`
	Description     string       `json:"descripcion"`
	DescriptionHTML string       `json:"descripcion_html,omitempty"`
	State           ProjectState `json:"estado"`
	StartDate       Date         `json:"fecha_inicio"`
	EndDate         Date         `json:"fecha_fin"`
	ResponsibleId   *UserId      `json:"responsable_id"`
	SupervisorId    *UserId      `json:"supervisor_id"`
	Budget          *float64     `json:"presupuesto"`
	ExternalRexId   *string      `json:"id_externo_rex"`
	Active          bool         `json:"activo"`
	CreatedAt       time.Time    `json:"fecha_creacion"`
	UpdatedAt       time.Time    `json:"fecha_actualizacion"`

	Responsible *UserRef `json:"responsable,omitempty"`
}

type ProjectCreationData struct {
	Name          string
	Description   string
	State         ProjectState
	StartDate     Date
	EndDate       Date
	ResponsibleId *UserId
	SupervisorId  *UserId
	Budget        *float64
	ExternalRexId *string
}

// ProjectPatch carries the fields of a partial project update. Nil means unchanged.
type ProjectPatch struct {
	Name          *string
	Description   *string
	State         *ProjectState
	StartDate     *Date
	EndDate       *Date
	ResponsibleId *UserId
	Budget        *float64
	ExternalRexId *string
	Active        *bool
}

type AssignmentState string

const (
	AssignmentPending    AssignmentState = "pendiente"
	AssignmentInProgress AssignmentState = "en_progreso"
	AssignmentCompleted  AssignmentState = "completada"
)

func (s AssignmentState) Valid() bool {
	return s == AssignmentPending || s == AssignmentInProgress || s == AssignmentCompleted
}

// Rank orders assignment states along the forward path.
func (s AssignmentState) Rank() int {
	switch s {
	case AssignmentPending:
		return 0
	case AssignmentInProgress:
		return 1
	case AssignmentCompleted:
		return 2
	}
	return -1
}

type TaskAssignment struct {
	Id           AssignmentId    `json:"id"`
	SupervisorId UserId          `json:"id_supervisor"`
	StaffId      UserId          `json:"id_funcionario"`
	ProjectId    *ProjectId      `json:"id_proyecto"`
	Description  string          `json:"descripcion"`
	AssignedOn   Date            `json:"fecha_asignacion"`
	State        AssignmentState `json:"estado"`
	CreatedAt    time.Time       `json:"fecha_creacion"`
	UpdatedAt    time.Time       `json:"fecha_actualizacion"`

	Project *ProjectRef `json:"proyecto,omitempty"`
	Staff   *UserRef    `json:"funcionario,omitempty"`
}

type AssignmentCreationData struct {
	SupervisorId UserId
	StaffId      UserId
	ProjectId    *ProjectId
	Description  string
	AssignedOn   Date
}

type AssignmentFilter struct {
	SupervisorId *UserId
	StaffId      *UserId
	State        *AssignmentState
}

type NotificationKind string

const (
	NotificationAssignment NotificationKind = "asignacion"
	NotificationReminder   NotificationKind = "recordatorio"
	NotificationSystem     NotificationKind = "sistema"
)

type Notification struct {
	Id        NotificationId   `json:"id"`
	UserId    UserId           `json:"id_usuario"`
	Message   string           `json:"mensaje"`
	Read      bool             `json:"leida"`
	Kind      NotificationKind `json:"tipo"`
	CreatedAt time.Time        `json:"fecha_creacion"`
}
