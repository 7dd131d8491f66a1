package handler

import (
	"net/http"

	"github.com/itchan-dev/agenda/shared/api"
	"github.com/itchan-dev/agenda/shared/domain"
	mw "github.com/itchan-dev/agenda/shared/middleware"
	"github.com/itchan-dev/agenda/shared/utils"
)

func (h *Handler) RegisterStaff(w http.ResponseWriter, r *http.Request) {
	h.register(w, r, domain.RoleStaff)
}

func (h *Handler) RegisterSupervisor(w http.ResponseWriter, r *http.Request) {
	h.register(w, r, domain.RoleSupervisor)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request, role domain.Role) {
	var body api.RegisterRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	user, err := h.auth.Register(r.Context(), domain.Registration{
		Rut:              body.Rut,
		Username:         body.Username,
		FirstNames:       body.FirstNames,
		PaternalSurname:  body.PaternalSurname,
		MaternalSurname:  body.MaternalSurname,
		Email:            body.Email,
		Password:         body.Password,
		Role:             role,
		SupervisorId:     body.SupervisorId,
		RegistrationCode: body.RegistrationCode,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, api.RegisterResponse{Message: "Registered. You can login now", User: user})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var body api.LoginRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	accessToken, user, err := h.auth.Login(r.Context(), body.Login, body.Password)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Path:     "/",
		Name:     mw.AccessTokenCookie,
		Value:    accessToken,
		MaxAge:   int(h.cfg.JwtTTL().Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.Public.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	utils.WriteJSON(w, http.StatusOK, api.LoginResponse{Message: "You logged in", AccessToken: accessToken, User: user})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Path:     "/",
		Name:     mw.AccessTokenCookie,
		Value:    "",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.Public.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	utils.WriteJSON(w, http.StatusOK, api.MessageResponse{Message: "You logged out"})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	caller, ok := principal(w, r)
	if !ok {
		return
	}
	user, err := h.auth.Me(r.Context(), caller.Id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	caller, ok := principal(w, r)
	if !ok {
		return
	}
	var body api.UpdateProfileRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	user, err := h.profile.Update(r.Context(), caller.Id, domain.ProfileUpdate{
		Username:        body.Username,
		FirstNames:      body.FirstNames,
		PaternalSurname: body.PaternalSurname,
		MaternalSurname: body.MaternalSurname,
		Email:           body.Email,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	caller, ok := principal(w, r)
	if !ok {
		return
	}
	var body api.ChangePasswordRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.profile.ChangePassword(r.Context(), caller.Id, body.Current, body.Next); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.MessageResponse{Message: "Password updated"})
}
