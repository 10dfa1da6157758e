package handler

import (
	"context"
	"net/http"
	"time"

	"revision-history-server/pkg/response"
)

const serviceName = "revision-history-server"

// HealthHandler reports liveness. When a check is set it also probes the
// database and answers 503 while it is unreachable.
type HealthHandler struct {
	check func(ctx context.Context) error
}

func NewHealthHandler(check func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{check: check}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.check != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.check(ctx); err != nil {
			response.Error(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}

	response.Success(w, map[string]string{
		"status":  "healthy",
		"service": serviceName,
	})
}

func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	response.Success(w, map[string]any{
		"message": "Revision History Server API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"/api/v1/items/{itemUuid}/revisions":        "GET (protected)",
			"/api/v1/items/{itemUuid}/revisions/{uuid}": "GET (protected)",
			"/api/v1/auth/refresh":                      "POST",
			"/ws":                                       "GET (protected)",
		},
	})
}
