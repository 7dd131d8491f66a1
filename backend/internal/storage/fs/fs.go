package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/itchan-dev/agenda/backend/internal/service"
	"github.com/itchan-dev/agenda/shared/domain"
	internal_errors "github.com/itchan-dev/agenda/shared/errors"
	"github.com/itchan-dev/agenda/shared/logger"
)

// Storage keeps document objects under a local root directory.
type Storage struct {
	rootPath      string
	publicBaseURL string
}

var _ service.MediaStorage = (*Storage)(nil)

func New(rootPath, publicBaseURL string) (*Storage, error) {
	p := filepath.Clean(rootPath)

	if err := os.MkdirAll(p, 0755); err != nil {
		return nil, fmt.Errorf("failed to create root storage directory %s: %w", p, err)
	}

	return &Storage{rootPath: p, publicBaseURL: strings.TrimRight(publicBaseURL, "/")}, nil
}

// resolve maps an object key to a path inside the root, refusing escapes.
func (s *Storage) resolve(key string) (string, error) {
	if key == "" || filepath.IsAbs(key) {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	full := filepath.Join(s.rootPath, filepath.FromSlash(key))
	rel, err := filepath.Rel(s.rootPath, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return full, nil
}

func (s *Storage) Upload(ctx context.Context, key string, r io.Reader, size int64, mimeType string) error {
	fullPath, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create subdirectories: %w", err)
	}

	// write to a temp file so readers never see partial objects
	tmp, err := os.CreateTemp(filepath.Dir(fullPath), ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	written, err := io.Copy(tmp, r)
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && size >= 0 && written != size {
		err = fmt.Errorf("short write: %d of %d bytes", written, size)
	}
	if err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to copy file data: %w", err)
	}

	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to move file into place: %w", err)
	}
	return nil
}

func (s *Storage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	fullPath, err := s.resolve(key)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &internal_errors.ErrorWithStatusCode{Message: "File not found", StatusCode: http.StatusNotFound}
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// Remove deletes every key, ignoring ones already gone, and empty activity folders.
func (s *Storage) Remove(ctx context.Context, keys ...string) error {
	var errs []error
	for _, key := range keys {
		fullPath, err := s.resolve(key)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := os.Remove(fullPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("failed to delete %s: %w", key, err))
			continue
		}
		dir := filepath.Dir(fullPath)
		if dir != s.rootPath {
			if err := os.Remove(dir); err != nil && !errors.Is(err, os.ErrNotExist) {
				logger.Log.Debug("object folder kept", "dir", dir, "error", err)
			}
		}
	}
	return errors.Join(errs...)
}

// URL points at the authenticated download route; local files are never served directly.
func (s *Storage) URL(ctx context.Context, doc domain.Document) (string, error) {
	return fmt.Sprintf("%s/v1/documents/%s/download", s.publicBaseURL, doc.Id), nil
}
