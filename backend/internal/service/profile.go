package service

import (
	"context"
	"strings"

	"github.com/itchan-dev/agenda/backend/internal/utils"
	"github.com/itchan-dev/agenda/shared/domain"
	"github.com/itchan-dev/agenda/shared/errors"
	"github.com/itchan-dev/agenda/shared/logger"
	"golang.org/x/crypto/bcrypt"
)

type ProfileService interface {
	Update(ctx context.Context, id domain.UserId, upd domain.ProfileUpdate) (domain.User, error)
	ChangePassword(ctx context.Context, id domain.UserId, current, next domain.Password) error
}

type Profile struct {
	storage   UserStorage
	validator *utils.UserValidator
}

func NewProfile(storage UserStorage) *Profile {
	return &Profile{storage: storage, validator: utils.NewUserValidator()}
}

func (p *Profile) Update(ctx context.Context, id domain.UserId, upd domain.ProfileUpdate) (domain.User, error) {
	user, err := p.storage.UserById(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	if upd.Username != nil {
		name := strings.TrimSpace(*upd.Username)
		if err := p.validator.Username(name); err != nil {
			return domain.User{}, err
		}
		user.Username = name
	}
	if upd.FirstNames != nil {
		if err := p.validator.Name("First names", *upd.FirstNames); err != nil {
			return domain.User{}, err
		}
		user.FirstNames = strings.TrimSpace(*upd.FirstNames)
	}
	if upd.PaternalSurname != nil {
		if err := p.validator.Name("Paternal surname", *upd.PaternalSurname); err != nil {
			return domain.User{}, err
		}
		user.PaternalSurname = strings.TrimSpace(*upd.PaternalSurname)
	}
	if upd.MaternalSurname != nil {
		value := strings.TrimSpace(*upd.MaternalSurname)
		if value != "" {
			if err := p.validator.Name("Maternal surname", value); err != nil {
				return domain.User{}, err
			}
		}
		user.MaternalSurname = value
	}
	if upd.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*upd.Email))
		if err := p.validator.Email(email); err != nil {
			return domain.User{}, err
		}
		user.Email = email
	}

	if err := p.storage.UpdateUserProfile(ctx, user); err != nil {
		return domain.User{}, err
	}
	return p.storage.UserById(ctx, id)
}

// ChangePassword re-checks the current password before storing the new hash.
func (p *Profile) ChangePassword(ctx context.Context, id domain.UserId, current, next domain.Password) error {
	user, err := p.storage.UserById(ctx, id)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PassHash), []byte(current)); err != nil {
		return errors.Forbidden("Current password is incorrect")
	}
	if err := p.validator.Password(next); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Error("failed to hash password", "user_id", id, "error", err)
		return err
	}
	return p.storage.UpdatePassword(ctx, id, string(hash))
}
