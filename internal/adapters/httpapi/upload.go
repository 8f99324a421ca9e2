package httpapi

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/campoos/backend-lixeira-app/internal/core"
)

const (
	imageField = "image"
	// multipartOverhead is the slack allowed on top of the image size for
	// boundaries and part headers
	multipartOverhead = 64 << 10
)

var (
	allowedExtensions   = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}
	allowedContentTypes = map[string]bool{"image/jpeg": true, "image/jpg": true, "image/png": true}
)

// readImage extracts the uploaded image from a multipart request. Only
// jpeg/jpg/png uploads up to maxBytes are accepted.
func readImage(w http.ResponseWriter, r *http.Request, maxBytes int64) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)

	file, header, err := r.FormFile(imageField)
	if err != nil {
		var tooBig *http.MaxBytesError
		switch {
		case errors.As(err, &tooBig):
			return nil, core.NewValidationError(core.ErrImageTooLarge)
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			return nil, core.NewValidationError(core.ErrNoImage)
		default:
			return nil, core.NewValidationError(fmt.Errorf("%w: %v", core.ErrNoImage, err))
		}
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	mediaType, _, _ := mime.ParseMediaType(header.Header.Get("Content-Type"))
	if !allowedExtensions[ext] || !allowedContentTypes[strings.ToLower(mediaType)] {
		return nil, core.NewValidationError(core.ErrUnsupportedImage)
	}
	if header.Size > maxBytes {
		return nil, core.NewValidationError(core.ErrImageTooLarge)
	}

	image, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return nil, core.NewValidationError(fmt.Errorf("%w: %v", core.ErrNoImage, err))
	}
	if int64(len(image)) > maxBytes {
		return nil, core.NewValidationError(core.ErrImageTooLarge)
	}
	if len(image) == 0 {
		return nil, core.NewValidationError(core.ErrNoImage)
	}
	return image, nil
}

// userIDFrom reads the optional trusted user id header
func userIDFrom(r *http.Request) (*int64, error) {
	raw := strings.TrimSpace(r.Header.Get(headerUserID))
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, core.NewValidationError(fmt.Errorf("invalid %s header %q", headerUserID, raw))
	}
	return &id, nil
}
