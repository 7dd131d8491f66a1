package service

import (
	"errors"
	"net/http"

	internal_errors "github.com/itchan-dev/agenda/shared/errors"
	"github.com/itchan-dev/agenda/shared/logger"
)

// Rejections of the activity lifecycle. Callers compare with errors.Is.
var (
	ErrInvalidInterval     = &internal_errors.ErrorWithStatusCode{Message: "Start time must be before end time", StatusCode: http.StatusBadRequest}
	ErrOverlapConflict     = &internal_errors.ErrorWithStatusCode{Message: "Activity overlaps an existing activity", StatusCode: http.StatusConflict}
	ErrInvalidDescription  = &internal_errors.ErrorWithStatusCode{Message: "Description is too short", StatusCode: http.StatusBadRequest}
	ErrProjectAccessDenied = &internal_errors.ErrorWithStatusCode{Message: "No access to project", StatusCode: http.StatusForbidden}
	ErrActivityLocked      = &internal_errors.ErrorWithStatusCode{Message: "Activity has been sent and can no longer be changed", StatusCode: http.StatusForbidden}
	ErrTransitionForbidden = &internal_errors.ErrorWithStatusCode{Message: "State transition not allowed", StatusCode: http.StatusForbidden}
	ErrNothingToSend       = &internal_errors.ErrorWithStatusCode{Message: "Nothing to send", StatusCode: http.StatusConflict}
	ErrNotOwner            = &internal_errors.ErrorWithStatusCode{Message: "Access denied", StatusCode: http.StatusForbidden}
	ErrOperationFailed     = &internal_errors.ErrorWithStatusCode{Message: "Operation failed", StatusCode: http.StatusInternalServerError}
)

// operationFailed keeps client errors reported by storage (not found, bad reference)
// and hides everything else behind ErrOperationFailed after logging it.
func operationFailed(op string, err error, attrs ...any) error {
	var e *internal_errors.ErrorWithStatusCode
	if errors.As(err, &e) && e.StatusCode < http.StatusInternalServerError {
		return err
	}
	logger.Log.Error("storage failure", append([]any{"op", op, "error", err}, attrs...)...)
	return ErrOperationFailed
}
