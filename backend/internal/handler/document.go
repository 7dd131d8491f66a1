package handler

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/itchan-dev/agenda/shared/api"
	"github.com/itchan-dev/agenda/shared/logger"
	"github.com/itchan-dev/agenda/shared/utils"
	"github.com/itchan-dev/agenda/shared/validation"
)

func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	caller, ok := principal(w, r)
	if !ok {
		return
	}
	docs, err := h.activity.Documents(r.Context(), caller, urlParam(r, "id"))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.DocumentsResponse{Documents: nonNil(docs)})
}

// UploadDocuments attaches the multipart "attachments" files to an existing activity.
func (h *Handler) UploadDocuments(w http.ResponseWriter, r *http.Request) {
	caller, ok := principal(w, r)
	if !ok {
		return
	}
	maxRequestSize := validation.CalculateMaxRequestSize(h.cfg.Public.MaxTotalAttachmentSize, multipartBuffer)
	if err := validation.ValidateAndParseMultipart(r, w, maxRequestSize); err != nil {
		writeUploadError(w, err)
		return
	}
	files, err := readAttachments(r, h)
	if err != nil {
		writeUploadError(w, err)
		return
	}

	results, err := h.activity.Attach(r.Context(), caller, urlParam(r, "id"), files)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, api.UploadResponse{Attachments: results})
}

// DownloadDocument streams the stored object with its original filename.
func (h *Handler) DownloadDocument(w http.ResponseWriter, r *http.Request) {
	caller, ok := principal(w, r)
	if !ok {
		return
	}
	doc, body, err := h.activity.Download(r.Context(), caller, urlParam(r, "id"))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", doc.MimeType)
	if doc.SizeBytes > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(doc.SizeBytes, 10))
	}
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.Filename}))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		logger.Log.Warn("document download interrupted", "document_id", doc.Id, "error", err)
	}
}

func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	caller, ok := principal(w, r)
	if !ok {
		return
	}
	id := urlParam(r, "id")
	if err := h.activity.DeleteDocument(r.Context(), caller, id); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.MessageResponse{Message: fmt.Sprintf("Document %s deleted", id)})
}
