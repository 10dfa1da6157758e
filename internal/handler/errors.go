package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"revision-history-server/internal/service"
	"revision-history-server/pkg/response"
)

func writeServiceError(w http.ResponseWriter, log *slog.Logger, err error) {
	var upstream *service.UpstreamError

	switch {
	case errors.Is(err, service.ErrItemNotFound):
		response.NotFound(w, "Item not found")
	case errors.As(err, &upstream):
		log.Error("upstream service failed", "service", upstream.Service, "status", upstream.StatusCode)
		response.BadGateway(w, "Upstream service unavailable")
	default:
		log.Error("request failed", "error", err)
		response.InternalError(w, "Internal server error")
	}
}
