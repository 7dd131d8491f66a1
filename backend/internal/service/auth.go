package service

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/itchan-dev/agenda/backend/internal/utils"
	"github.com/itchan-dev/agenda/shared/config"
	"github.com/itchan-dev/agenda/shared/domain"
	"github.com/itchan-dev/agenda/shared/errors"
	"github.com/itchan-dev/agenda/shared/logger"
	"github.com/itchan-dev/agenda/shared/validation"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Register(ctx context.Context, reg domain.Registration) (domain.User, error)
	Login(ctx context.Context, login string, password domain.Password) (string, domain.User, error)
	Me(ctx context.Context, id domain.UserId) (domain.User, error)
}

type Auth struct {
	storage   UserStorage
	jwt       Jwt
	validator *utils.UserValidator
	cfg       *config.Config
}

type UserStorage interface {
	SaveUser(ctx context.Context, user domain.User) (domain.UserId, error)
	UserByEmail(ctx context.Context, email domain.Email) (domain.User, error)
	UserByRut(ctx context.Context, rut domain.Rut) (domain.User, error)
	UserByUsername(ctx context.Context, username string) (domain.User, error)
	UserById(ctx context.Context, id domain.UserId) (domain.User, error)
	UpdateUserProfile(ctx context.Context, user domain.User) error
	UpdatePassword(ctx context.Context, id domain.UserId, passHash string) error
}

type Jwt interface {
	NewToken(user domain.User) (string, error)
}

var errInvalidCredentials = &errors.ErrorWithStatusCode{Message: "Invalid credentials", StatusCode: http.StatusUnauthorized}

func NewAuth(storage UserStorage, jwt Jwt, cfg *config.Config) *Auth {
	return &Auth{
		storage:   storage,
		jwt:       jwt,
		validator: utils.NewUserValidator(),
		cfg:       cfg,
	}
}

// Register validates reg, hashes the password and stores the user.
// Supervisor sign-up requires the registration code when one is configured.
func (a *Auth) Register(ctx context.Context, reg domain.Registration) (domain.User, error) {
	if !reg.Role.Valid() {
		return domain.User{}, errors.BadRequest("Invalid role")
	}
	if reg.Role.IsSupervisor() {
		code := a.cfg.SupervisorRegistrationCode()
		if code != "" && subtle.ConstantTimeCompare([]byte(code), []byte(reg.RegistrationCode)) != 1 {
			return domain.User{}, errors.Forbidden("Invalid registration code")
		}
	}

	email := strings.ToLower(strings.TrimSpace(reg.Email))
	checks := []error{
		a.validator.Rut(reg.Rut),
		a.validator.Username(reg.Username),
		a.validator.Name("First names", reg.FirstNames),
		a.validator.Name("Paternal surname", reg.PaternalSurname),
		a.validator.Email(email),
		a.validator.Password(reg.Password),
	}
	if reg.MaternalSurname != "" {
		checks = append(checks, a.validator.Name("Maternal surname", reg.MaternalSurname))
	}
	for _, err := range checks {
		if err != nil {
			return domain.User{}, err
		}
	}

	if reg.SupervisorId != nil {
		sup, err := a.storage.UserById(ctx, *reg.SupervisorId)
		if err != nil {
			if errors.IsNotFound(err) {
				return domain.User{}, errors.BadRequest("Supervisor not found")
			}
			return domain.User{}, err
		}
		if !sup.Role.IsSupervisor() {
			return domain.User{}, errors.BadRequest("Supervisor not found")
		}
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Error("failed to hash password", "error", err)
		return domain.User{}, err
	}

	user := domain.User{
		Rut:             validation.FormatRut(reg.Rut),
		Username:        strings.TrimSpace(reg.Username),
		FirstNames:      strings.TrimSpace(reg.FirstNames),
		PaternalSurname: strings.TrimSpace(reg.PaternalSurname),
		MaternalSurname: strings.TrimSpace(reg.MaternalSurname),
		Email:           email,
		PassHash:        string(passHash),
		Role:            reg.Role,
		SupervisorId:    reg.SupervisorId,
	}
	id, err := a.storage.SaveUser(ctx, user)
	if err != nil {
		return domain.User{}, err
	}
	user.Id = id
	logger.Log.Info("user registered", "user_id", id, "role", user.Role)
	return user, nil
}

// Login accepts an email, a RUT or a username and returns a signed access token.
func (a *Auth) Login(ctx context.Context, login string, password domain.Password) (string, domain.User, error) {
	login = strings.TrimSpace(login)

	var (
		user domain.User
		err  error
	)
	switch utils.ClassifyLogin(login) {
	case utils.LoginByEmail:
		user, err = a.storage.UserByEmail(ctx, strings.ToLower(login))
	case utils.LoginByRut:
		user, err = a.storage.UserByRut(ctx, validation.FormatRut(login))
	default:
		user, err = a.storage.UserByUsername(ctx, login)
	}
	if err != nil {
		// do not reveal which identifiers exist
		if errors.IsNotFound(err) {
			return "", domain.User{}, errInvalidCredentials
		}
		return "", domain.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PassHash), []byte(password)); err != nil {
		return "", domain.User{}, errInvalidCredentials
	}

	token, err := a.jwt.NewToken(user)
	if err != nil {
		logger.Log.Error("failed to create jwt token", "user_id", user.Id, "error", err)
		return "", domain.User{}, err
	}
	return token, user, nil
}

func (a *Auth) Me(ctx context.Context, id domain.UserId) (domain.User, error) {
	return a.storage.UserById(ctx, id)
}
