package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/itchan-dev/agenda/shared/domain"
	internal_errors "github.com/itchan-dev/agenda/shared/errors"
	mw "github.com/itchan-dev/agenda/shared/middleware"
	"github.com/itchan-dev/agenda/shared/utils"
	"github.com/itchan-dev/agenda/shared/validation"
)

// multipartBuffer covers the "json" field and multipart framing on top of the attachment limit.
const multipartBuffer = 1 << 20

// parseMultipartRequest reads the JSON payload from the "json" form field and the
// uploaded files from "attachments".
func parseMultipartRequest[T any](w http.ResponseWriter, r *http.Request, h *Handler) (body T, files []domain.PendingFile, err error) {
	maxRequestSize := validation.CalculateMaxRequestSize(h.cfg.Public.MaxTotalAttachmentSize, multipartBuffer)
	if err = validation.ValidateAndParseMultipart(r, w, maxRequestSize); err != nil {
		maxSizeMB := validation.FormatSizeMB(h.cfg.Public.MaxTotalAttachmentSize)
		err = fmt.Errorf("%w: total attachment size exceeds the limit of %.0f MB", validation.ErrPayloadTooLarge, maxSizeMB)
		return
	}

	jsonPayload := r.FormValue("json")
	if jsonPayload == "" {
		err = errors.New("missing JSON payload in multipart form")
		return
	}
	if err = utils.DecodeValidate(io.NopCloser(strings.NewReader(jsonPayload)), &body); err != nil {
		return
	}

	files, err = readAttachments(r, h)
	return
}

func readAttachments(r *http.Request, h *Handler) ([]domain.PendingFile, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	return validation.ReadAttachments(
		r.MultipartForm.File["attachments"],
		h.cfg.Public.AllowedAttachmentMimeTypes,
		h.cfg.Public.MaxAttachments,
		h.cfg.Public.MaxTotalAttachmentSize,
	)
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// writeUploadError answers 413 for size errors, the carried status for status
// errors and 400 for everything else.
func writeUploadError(w http.ResponseWriter, err error) {
	var e *internal_errors.ErrorWithStatusCode
	switch {
	case errors.Is(err, validation.ErrPayloadTooLarge):
		http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
	case errors.As(err, &e):
		utils.WriteErrorAndStatusCode(w, err)
	default:
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}

// principal returns the authenticated caller, writing 401 when there is none.
func principal(w http.ResponseWriter, r *http.Request) (domain.Principal, bool) {
	p := mw.GetPrincipalFromContext(r)
	if p == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return domain.Principal{}, false
	}
	return *p, true
}

// queryDate parses the named query parameter, defaulting to today when absent.
func queryDate(r *http.Request, name string) (domain.Date, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return domain.Today(), nil
	}
	d, err := domain.ParseDate(raw)
	if err != nil {
		return domain.Date{}, internal_errors.BadRequest(fmt.Sprintf("invalid %s: expected YYYY-MM-DD", name))
	}
	return d, nil
}

// queryUser returns the user_id query parameter, nil when absent.
func queryUser(r *http.Request) *domain.UserId {
	raw := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if raw == "" {
		return nil
	}
	return &raw
}

func queryBool(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, internal_errors.BadRequest(fmt.Sprintf("invalid %s: must be a boolean", name))
	}
	return v, nil
}

func urlParam(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}
