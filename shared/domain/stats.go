package domain

type DashboardStats struct {
	ActivitiesLastMonth     int `json:"actividades_mes"`
	ActiveStaff             int `json:"funcionarios_activos"`
	CompletedTasksLastMonth int `json:"tareas_completadas"`
	ActiveProjects          int `json:"proyectos_activos"`
}

type WeekdayCount struct {
	Day   string `json:"dia"`
	Count int    `json:"actividades"`
}

// ProjectCount is one slice of the project distribution chart.
type ProjectCount struct {
	Id    ProjectId `json:"id"`
	Name  string    `json:"nombre"`
	Count int       `json:"actividades"`
}

type RecentActivity struct {
	Id          ActivityId    `json:"id"`
	Date        Date          `json:"fecha"`
	Start       Clock         `json:"hora_inicio"`
	End         Clock         `json:"hora_fin"`
	Description string        `json:"descripcion"`
	State       ActivityState `json:"estado"`
	UserName    string        `json:"usuario"`
	ProjectName string        `json:"proyecto,omitempty"`
}

type ProjectActivityStats struct {
	Total int `json:"total"`
	Sent  int `json:"enviadas"`
}

type ProjectSummary struct {
	Project           Project    `json:"proyecto"`
	RecentActivities  []Activity `json:"actividades_recientes"`
	TotalActivities   int        `json:"total_actividades"`
	SentActivities    int        `json:"actividades_enviadas"`
	CompletionPercent float64    `json:"porcentaje_completado"`
}

// RangeTotals summarises a calendar range for one user.
type RangeTotals struct {
	Activities []Activity `json:"actividades"`
	Days       int        `json:"dias_con_actividad"`
	TotalHours float64    `json:"horas_totales"`
	SentHours  float64    `json:"horas_enviadas"`
}
