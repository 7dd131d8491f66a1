package pg

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	internal_errors "github.com/itchan-dev/agenda/shared/errors"
	"github.com/lib/pq"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	checkViolation      = "23514"
	invalidTextRepr     = "22P02"
)

// mapError turns driver errors into status errors where the caller can act on them.
// what names the entity for not-found messages, e.g. "Activity".
func mapError(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return &internal_errors.ErrorWithStatusCode{Message: what + " not found", StatusCode: http.StatusNotFound}
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case uniqueViolation:
			return &internal_errors.ErrorWithStatusCode{Message: what + " already exists", StatusCode: http.StatusConflict}
		case foreignKeyViolation:
			return &internal_errors.ErrorWithStatusCode{Message: "Referenced record does not exist", StatusCode: http.StatusBadRequest}
		case checkViolation:
			return &internal_errors.ErrorWithStatusCode{Message: what + " violates a constraint", StatusCode: http.StatusBadRequest}
		case invalidTextRepr:
			// malformed uuid in a lookup
			return &internal_errors.ErrorWithStatusCode{Message: what + " not found", StatusCode: http.StatusNotFound}
		}
	}
	return fmt.Errorf("%s query failed: %w", what, err)
}
