package utils

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/itchan-dev/agenda/shared/errors"
	"github.com/itchan-dev/agenda/shared/logger"
	"github.com/itchan-dev/agenda/shared/validation"
)

// GenericFailureMessage is the body sent for every error without an explicit status.
const GenericFailureMessage = "Operation failed"

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the process-wide validator with the custom tags registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterValidation("rut", func(fl validator.FieldLevel) bool {
			return validation.ValidRut(fl.Field().String())
		})
	})
	return validate
}

func WriteErrorAndStatusCode(w http.ResponseWriter, err error) {
	var e *errors.ErrorWithStatusCode
	if stderrors.As(err, &e) {
		http.Error(w, e.Message, e.StatusCode)
		return
	}
	// internal details stay in the logs
	http.Error(w, GenericFailureMessage, http.StatusInternalServerError)
}

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Log.Error("failed to encode response", "error", err)
	}
}

func DecodeValidate(r io.ReadCloser, body any) error {
	if err := Decode(r, body); err != nil {
		return err
	}
	return Validate(body)
}

func Decode(r io.ReadCloser, body any) error {
	if err := json.NewDecoder(r).Decode(body); err != nil {
		logger.Log.Debug("failed to decode body", "error", err)
		return &errors.ErrorWithStatusCode{Message: "Body is invalid json", StatusCode: http.StatusBadRequest}
	}
	return nil
}

func Validate(body any) error {
	if err := Validator().Struct(body); err != nil {
		logger.Log.Debug("body failed validation", "error", err)
		var verrs validator.ValidationErrors
		if stderrors.As(err, &verrs) {
			for _, fe := range verrs {
				if fe.Tag() != "required" {
					return &errors.ErrorWithStatusCode{Message: "Invalid field: " + fe.Field(), StatusCode: http.StatusBadRequest}
				}
			}
		}
		return &errors.ErrorWithStatusCode{Message: "Required fields missing", StatusCode: http.StatusBadRequest}
	}
	return nil
}
