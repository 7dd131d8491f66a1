package validation

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/itchan-dev/agenda/shared/domain"
	_ "golang.org/x/image/webp"
)

// ReadAttachments validates every file header and reads it into memory.
// Limits are checked before any file is opened.
func ReadAttachments(fileHeaders []*multipart.FileHeader, allowedMimes []string, maxFiles int, maxTotal int64) ([]domain.PendingFile, error) {
	if len(fileHeaders) == 0 {
		return nil, nil
	}
	if maxFiles > 0 && len(fileHeaders) > maxFiles {
		return nil, fmt.Errorf("%w: %d files, at most %d allowed", ErrTooManyAttachments, len(fileHeaders), maxFiles)
	}

	var total int64
	for _, fh := range fileHeaders {
		total += fh.Size
	}
	if maxTotal > 0 && total > maxTotal {
		return nil, fmt.Errorf("%w: %.1f MB total, at most %.1f MB allowed", ErrPayloadTooLarge, FormatSizeMB(total), FormatSizeMB(maxTotal))
	}

	allowed := BuildAllowedMimeMap(allowedMimes)
	files := make([]domain.PendingFile, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		if fh.Size == 0 {
			return nil, fmt.Errorf("%w: %s", ErrEmptyFile, fh.Filename)
		}

		mimeType, err := DetectMimeType(fh)
		if err != nil {
			return nil, err
		}
		if !allowed[mimeType] {
			return nil, fmt.Errorf("%w: %s (file: %s)", ErrInvalidMimeType, mimeType, fh.Filename)
		}

		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open uploaded file: %w", err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read uploaded file: %w", err)
		}

		width, height := ExtractImageDimensions(data, mimeType)
		files = append(files, domain.PendingFile{
			Filename: filepath.Base(fh.Filename),
			MimeType: mimeType,
			Size:     int64(len(data)),
			Width:    width,
			Height:   height,
			Data:     data,
		})
	}

	return files, nil
}

func BuildAllowedMimeMap(mimes []string) map[string]bool {
	allowedMimes := make(map[string]bool, len(mimes))
	for _, m := range mimes {
		allowedMimes[m] = true
	}
	return allowedMimes
}

func DetectMimeType(fileHeader *multipart.FileHeader) (string, error) {
	mimeType := fileHeader.Header.Get("Content-Type")

	// If no Content-Type or it's generic, detect from extension
	if mimeType == "" || mimeType == "application/octet-stream" {
		if detected := mime.TypeByExtension(filepath.Ext(fileHeader.Filename)); detected != "" {
			mimeType = detected
		}
	}

	if mimeType == "" {
		return "", fmt.Errorf("could not detect MIME type for file: %s", fileHeader.Filename)
	}

	// drop parameters such as "; charset=utf-8"
	if parsed, _, err := mime.ParseMediaType(mimeType); err == nil {
		mimeType = parsed
	}
	return mimeType, nil
}

// ExtractImageDimensions returns nil, nil for non-images and undecodable data.
func ExtractImageDimensions(data []byte, mimeType string) (*int, *int) {
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, nil
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, nil
	}

	width, height := cfg.Width, cfg.Height
	return &width, &height
}
