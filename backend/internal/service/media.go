package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/itchan-dev/agenda/shared/domain"
)

// MediaStorage is the object store holding document contents.
type MediaStorage interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, mimeType string) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	// Remove deletes every key; missing keys are not an error.
	Remove(ctx context.Context, keys ...string) error
	URL(ctx context.Context, doc domain.Document) (string, error)
}

// documentKey builds documentos/<activity id>/<document id><ext>.
func documentKey(activityId domain.ActivityId, documentId domain.DocumentId, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) > 10 || strings.ContainsAny(ext, `/\ `) {
		ext = ""
	}
	return fmt.Sprintf("documentos/%s/%s%s", activityId, documentId, ext)
}

func newDocumentId() domain.DocumentId {
	return uuid.NewString()
}
