package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/campoos/backend-lixeira-app/internal/core"
	"go.uber.org/zap"
)

// errorBody is the failure payload of every endpoint
type errorBody struct {
	Success  bool   `json:"success"`
	Error    string `json:"error"`
	Category string `json:"category,omitempty"`
	Details  string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps the pipeline error taxonomy onto HTTP. Diagnostic detail is
// only included outside production.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	category := core.Categorize(err)
	status := http.StatusInternalServerError
	message := "internal server error"

	switch category {
	case core.CategoryValidation:
		status = http.StatusBadRequest
		message = validationMessage(err)
	case core.CategoryClassification:
		status = http.StatusBadGateway
		message = "image classification failed"
	case core.CategoryPersistence:
		message = "failed to store analysis"
	}
	if core.IsRetryable(err) {
		status = http.StatusServiceUnavailable
		message = "service busy, retry later"
		w.Header().Set("Retry-After", "1")
	}

	body := errorBody{Success: false, Error: message, Category: string(category)}
	if !s.production {
		body.Details = err.Error()
	}

	logFn := s.logger.Warn
	if status >= http.StatusInternalServerError {
		logFn = s.logger.Error
	}
	logFn("Request failed",
		zap.String("request_id", requestIDFrom(r.Context())),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.String("category", string(category)),
		zap.Error(err))

	writeJSON(w, status, body)
}

func validationMessage(err error) string {
	var ve *core.ValidationError
	if errors.As(err, &ve) && ve.Reason != nil {
		switch {
		case errors.Is(ve.Reason, core.ErrNoImage):
			return core.ErrNoImage.Error()
		case errors.Is(ve.Reason, core.ErrUnsupportedImage):
			return core.ErrUnsupportedImage.Error()
		case errors.Is(ve.Reason, core.ErrImageTooLarge):
			return core.ErrImageTooLarge.Error()
		}
		return ve.Reason.Error()
	}
	return "invalid request"
}
