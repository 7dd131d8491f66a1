package domain

type (
	UserId         = string
	ProjectId      = string
	ActivityId     = string
	DocumentId     = string
	AssignmentId   = string
	NotificationId = string

	Email    = string
	Password = string
	Rut      = string
)
