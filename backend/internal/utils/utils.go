package utils

import (
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/itchan-dev/agenda/shared/errors"
	"github.com/itchan-dev/agenda/shared/validation"
)

const (
	minUsernameLen = 4
	maxUsernameLen = 50
	minPasswordLen = 6
	// bcrypt ignores everything past 72 bytes
	maxPasswordBytes = 72
	maxNameLen       = 100
)

func IsLetter(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func isNameRune(r rune) bool {
	return unicode.IsLetter(r) || r == ' ' || r == '-' || r == '\''
}

func isUsernameRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '_' || r == '-'
}

type UserValidator struct{}

func NewUserValidator() *UserValidator {
	return &UserValidator{}
}

func (v *UserValidator) Username(name string) error {
	n := utf8.RuneCountInString(name)
	if n < minUsernameLen {
		return errors.BadRequest("Username must have at least 4 characters")
	}
	if n > maxUsernameLen {
		return errors.BadRequest("Username is too long")
	}
	if strings.IndexFunc(name, func(r rune) bool { return !isUsernameRune(r) }) >= 0 {
		return errors.BadRequest("Username may contain only letters, digits, '.', '_' and '-'")
	}
	return nil
}

// Name checks a given name or surname. field is used in the error message.
func (v *UserValidator) Name(field, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return errors.BadRequest(field + " is required")
	}
	if utf8.RuneCountInString(value) > maxNameLen {
		return errors.BadRequest(field + " is too long")
	}
	if strings.IndexFunc(value, func(r rune) bool { return !isNameRune(r) }) >= 0 {
		return errors.BadRequest(field + " should contain only letters")
	}
	return nil
}

func (v *UserValidator) Password(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLen {
		return errors.BadRequest("Password must have at least 6 characters")
	}
	if len(password) > maxPasswordBytes {
		return errors.BadRequest("Password is too long")
	}
	return nil
}

func (v *UserValidator) Email(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return errors.BadRequest("Invalid email")
	}
	return nil
}

func (v *UserValidator) Rut(rut string) error {
	if !validation.ValidRut(rut) {
		return errors.BadRequest("Invalid RUT")
	}
	return nil
}

type LoginKind int

const (
	LoginByUsername LoginKind = iota
	LoginByEmail
	LoginByRut
)

// ClassifyLogin decides which identifier a login string is.
func ClassifyLogin(login string) LoginKind {
	switch {
	case strings.Contains(login, "@"):
		return LoginByEmail
	case validation.ValidRut(login):
		return LoginByRut
	default:
		return LoginByUsername
	}
}
