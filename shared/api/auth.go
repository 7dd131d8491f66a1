package api

import "github.com/itchan-dev/agenda/shared/domain"

// Request DTOs

type RegisterRequest struct {
	Rut              string  `json:"rut" validate:"required,rut"`
	Username         string  `json:"nombre_usuario" validate:"required"`
	FirstNames       string  `json:"nombres" validate:"required"`
	PaternalSurname  string  `json:"appaterno" validate:"required"`
	MaternalSurname  string  `json:"apmaterno,omitempty"`
	Email            string  `json:"email" validate:"required,email"`
	Password         string  `json:"password" validate:"required"`
	SupervisorId     *string `json:"id_supervisor,omitempty"`
	RegistrationCode string  `json:"codigo_registro,omitempty"`
}

// LoginRequest accepts an email, a RUT or a username in Login.
type LoginRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	Username        *string `json:"nombre_usuario,omitempty"`
	FirstNames      *string `json:"nombres,omitempty"`
	PaternalSurname *string `json:"appaterno,omitempty"`
	MaternalSurname *string `json:"apmaterno,omitempty"`
	Email           *string `json:"email,omitempty" validate:"omitempty,email"`
}

type ChangePasswordRequest struct {
	Current string `json:"password_actual" validate:"required"`
	Next    string `json:"password_nueva" validate:"required"`
}

// Response DTOs

type RegisterResponse struct {
	Message string      `json:"message"`
	User    domain.User `json:"usuario"`
}

type LoginResponse struct {
	Message     string      `json:"message"`
	AccessToken string      `json:"access_token,omitempty"` // for clients that do not keep cookies
	User        domain.User `json:"usuario"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
