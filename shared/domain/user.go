package domain

import "time"

type Role string

const (
	RoleStaff      Role = "funcionario"
	RoleSupervisor Role = "supervisor"
)

func (r Role) Valid() bool {
	return r == RoleStaff || r == RoleSupervisor
}

func (r Role) IsSupervisor() bool {
	return r == RoleSupervisor
}

type User struct {
	Id              UserId    `json:"id"`
	Rut             Rut       `json:"rut"`
	Username        string    `json:"nombre_usuario"`
	FirstNames      string    `json:"nombres"`
	PaternalSurname string    `json:"appaterno"`
	MaternalSurname string    `json:"apmaterno,omitempty"`
	Email           Email     `json:"email"`
	PassHash        string    `json:"-"`
	Role            Role      `json:"rol"`
	SupervisorId    *UserId   `json:"id_supervisor,omitempty"`
	CreatedAt       time.Time `json:"fecha_creacion"`
	UpdatedAt       time.Time `json:"fecha_actualizacion"`
}

// FullName joins names and surnames the way they are shown in listings.
func (u User) FullName() string {
	name := u.FirstNames + " " + u.PaternalSurname
	if u.MaternalSurname != "" {
		name += " " + u.MaternalSurname
	}
	return name
}

// UserRef is the trimmed user shape joined onto activities and projects.
type UserRef struct {
	Id              UserId `json:"id"`
	Username        string `json:"nombre_usuario"`
	FirstNames      string `json:"nombres"`
	PaternalSurname string `json:"appaterno"`
}

// Principal is the authenticated caller extracted from the access token.
type Principal struct {
	Id   UserId
	Role Role
}

// Registration is the sign-up input before validation and hashing.
type Registration struct {
	Rut             Rut
	Username        string
	FirstNames      string
	PaternalSurname string
	MaternalSurname string
	Email           Email
	Password        Password
	Role            Role
	SupervisorId    *UserId
	// RegistrationCode gates supervisor sign-up when configured.
	RegistrationCode string
}

// ProfileUpdate holds the self-editable profile fields. Nil means unchanged.
type ProfileUpdate struct {
	Username        *string
	FirstNames      *string
	PaternalSurname *string
	MaternalSurname *string
	Email           *Email
}
