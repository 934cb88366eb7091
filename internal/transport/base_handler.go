package transport

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	errors "github.com/frahmantamala/property-management/internal"
	"github.com/frahmantamala/property-management/pkg/logger"
	"github.com/go-chi/chi"
)

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
		if lg == nil {
			lg = slog.Default()
		}
	}
	return &BaseHandler{Logger: lg}
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteBinary writes a file download.
func (h *BaseHandler) WriteBinary(w http.ResponseWriter, contentType, fileName string, content []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(content)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(content); err != nil {
		h.Logger.Error("failed to write binary response", "error", err, "file", fileName)
	}
}

// WriteError writes a plain error response for failures outside the AppError taxonomy.
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, message string) {
	h.Logger.Error("http error", "status", status, "message", message)
	h.HandleError(w, &errors.AppError{
		Type:       errors.ErrorTypeInternal,
		Code:       errors.ErrCodeInternal,
		Message:    message,
		StatusCode: status,
	})
}

// HandleError writes an AppError as the standard error envelope.
func (h *BaseHandler) HandleError(w http.ResponseWriter, appErr *errors.AppError) {
	status, body := appErr.ToHTTPResponse()
	h.WriteJSON(w, status, body)
}

// HandleServiceError maps a service error to a response. Anything that is
// not an AppError becomes a generic 500. Causes are logged, never written.
func (h *BaseHandler) HandleServiceError(w http.ResponseWriter, err error) {
	appErr, ok := errors.IsAppError(err)
	if !ok {
		h.Logger.Error("unhandled service error", "error", err)
		h.HandleError(w, errors.NewInternalError("Internal server error", nil))
		return
	}

	if appErr.Type == errors.ErrorTypeInternal {
		h.Logger.Error("internal error", "error", appErr.Error())
	}

	h.HandleError(w, appErr)
}

// DecodeJSON reads the request body into dst, rejecting unknown fields.
func (h *BaseHandler) DecodeJSON(r *http.Request, dst interface{}) *errors.AppError {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		h.Logger.Warn("invalid request body", "error", err, "path", r.URL.Path)
		return errors.NewValidationError("invalid request body", errors.ErrCodeValidationFailed)
	}
	return nil
}

// PathInt64 parses a positive integer URL parameter.
func (h *BaseHandler) PathInt64(r *http.Request, name string) (int64, *errors.AppError) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewValidationFieldError(name, fmt.Sprintf("%s must be a positive integer", name), errors.ErrCodeValidationFailed)
	}
	return id, nil
}

// CurrentUser returns the authenticated owner or writes a 401.
func (h *BaseHandler) CurrentUser(w http.ResponseWriter, r *http.Request) (*errors.User, bool) {
	user, ok := errors.UserFromContext(r.Context())
	if !ok {
		h.HandleError(w, errors.NewUnauthorizedError("authentication required", errors.ErrCodeInvalidToken))
		return nil, false
	}
	return user, true
}

// ExtractTokenFromHeader extracts Bearer token from Authorization header
func (h *BaseHandler) ExtractTokenFromHeader(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return ""
	}

	return authHeader[7:]
}
