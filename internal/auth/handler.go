package auth

import (
	"log/slog"
	"net/http"

	errors "github.com/frahmantamala/property-management/internal"
	"github.com/frahmantamala/property-management/internal/transport"
	"github.com/frahmantamala/property-management/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI, lg *slog.Logger) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// Login handles POST /api/v1/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.HandleError(w, appErr)
		return
	}

	tokens, err := h.Service.Authenticate(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

// RefreshToken handles POST /api/v1/auth/refresh
func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var dto RefreshTokenDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.HandleError(w, appErr)
		return
	}

	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	tokens, err := h.Service.RefreshTokens(r.Context(), dto.RefreshToken)
	if err != nil {
		h.Logger.Warn("token refresh failed", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

// AuthMiddleware requires a valid bearer access token and attaches the owner
// to the request context and its logger.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.HandleError(w, errors.NewUnauthorizedError("missing authorization token", errors.ErrCodeInvalidToken))
			return
		}

		user, err := h.Service.Authorize(r.Context(), token)
		if err != nil {
			h.Logger.Warn("auth middleware: token rejected", "error", err, "path", r.URL.Path)
			h.HandleServiceError(w, err)
			return
		}

		ctx := errors.ContextWithUser(r.Context(), user)
		ctx = logger.With(ctx, "owner_id", user.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
