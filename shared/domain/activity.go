package domain

import "time"

type ActivityState string

const (
	StateDraft ActivityState = "borrador"
	StateSent  ActivityState = "enviado"
)

func (s ActivityState) Valid() bool {
	return s == StateDraft || s == StateSent
}

type ProjectRef struct {
	Id   ProjectId `json:"id"`
	Name string    `json:"nombre"`
}

type Activity struct {
	Id          ActivityId    `json:"id"`
	UserId      UserId        `json:"id_usuario"`
	Date        Date          `json:"fecha"`
	Start       Clock         `json:"hora_inicio"`
	End         Clock         `json:"hora_fin"`
	ProjectId   *ProjectId    `json:"id_proyecto"`
	Description string        `json:"descripcion"`
	State       ActivityState `json:"estado"`
	CreatedAt   time.Time     `json:"fecha_creacion"`
	UpdatedAt   time.Time     `json:"fecha_actualizacion"`

	Project   *ProjectRef `json:"proyecto,omitempty"`
	User      *UserRef    `json:"usuario,omitempty"`
	Documents []Document  `json:"documentos,omitempty"`
}

// Duration is the length of the activity interval.
func (a Activity) Duration() time.Duration {
	return a.End.Sub(a.Start)
}

type ActivityCreationData struct {
	UserId      UserId
	Date        Date
	Start       Clock
	End         Clock
	ProjectId   *ProjectId
	Description string
	State       ActivityState
}

// ActivityPatch carries the fields of a partial update. Nil means unchanged.
type ActivityPatch struct {
	Date         *Date
	Start        *Clock
	End          *Clock
	ProjectId    *ProjectId
	ClearProject bool
	Description  *string
	State        *ActivityState
}

func (p ActivityPatch) Empty() bool {
	return p.Date == nil && p.Start == nil && p.End == nil && p.ProjectId == nil &&
		!p.ClearProject && p.Description == nil && p.State == nil
}

type Document struct {
	Id          DocumentId `json:"id"`
	ActivityId  ActivityId `json:"id_actividad"`
	Filename    string     `json:"nombre_archivo"`
	StoragePath string     `json:"ruta_archivo"`
	MimeType    string     `json:"tipo_archivo"`
	SizeBytes   int64      `json:"tamano_bytes"`
	Width       *int       `json:"ancho,omitempty"`
	Height      *int       `json:"alto,omitempty"`
	CreatedAt   time.Time  `json:"fecha_creacion"`
	URL         string     `json:"url,omitempty"`
}

// PendingFile is an uploaded file that has been read and validated but not stored yet.
type PendingFile struct {
	Filename string
	MimeType string
	Size     int64
	Width    *int
	Height   *int
	Data     []byte
}

// AttachmentResult reports the outcome of one best-effort upload.
type AttachmentResult struct {
	Filename string    `json:"nombre_archivo"`
	Document *Document `json:"documento,omitempty"`
	Error    string    `json:"error,omitempty"`
}
