package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"revision-history-server/internal/domain"
	"revision-history-server/internal/service"
	"revision-history-server/pkg/logger"
	"revision-history-server/pkg/response"

	"github.com/go-playground/validator/v10"
)

type SessionRefresher interface {
	RefreshSession(ctx context.Context, req *domain.RefreshSessionRequest) (any, error)
}

type AuthHandler struct {
	authService SessionRefresher
	validator   *validator.Validate
	logger      *slog.Logger
}

func NewAuthHandler(authService SessionRefresher, log *slog.Logger) *AuthHandler {
	if log == nil {
		log = logger.Discard()
	}

	return &AuthHandler{
		authService: authService,
		validator:   validator.New(),
		logger:      log,
	}
}

// Refresh rotates a session. The api tag is read from the body and falls
// back to the query string.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req domain.RefreshSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	if req.APIVersion == "" {
		req.APIVersion = r.URL.Query().Get("api")
	}

	resp, err := h.authService.RefreshSession(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnsupportedAPIVersion):
			response.BadRequest(w, "Unsupported api version")
		case errors.Is(err, service.ErrInvalidRefreshToken):
			response.Unauthorized(w, "Invalid or expired refresh token")
		default:
			h.logger.Error("failed to refresh session", "error", err)
			response.InternalError(w, "Internal server error")
		}
		return
	}

	response.Success(w, resp)
}
