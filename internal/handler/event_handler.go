package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"revision-history-server/internal/domain"
	"revision-history-server/pkg/logger"
	"revision-history-server/pkg/response"

	"github.com/go-playground/validator/v10"
)

type ItemEventHandler interface {
	HandleItemChanged(ctx context.Context, event domain.ItemChangedEvent) error
	HandleItemDuplicated(ctx context.Context, event domain.ItemDuplicatedEvent) error
}

// EventHandler is the HTTP ingress for item pipeline events.
type EventHandler struct {
	processor ItemEventHandler
	validator *validator.Validate
	logger    *slog.Logger
}

func NewEventHandler(processor ItemEventHandler, log *slog.Logger) *EventHandler {
	if log == nil {
		log = logger.Discard()
	}

	return &EventHandler{
		processor: processor,
		validator: validator.New(),
		logger:    log,
	}
}

func (h *EventHandler) ItemChanged(w http.ResponseWriter, r *http.Request) {
	var event domain.ItemChangedEvent
	if !h.decode(w, r, &event) {
		return
	}

	if err := h.processor.HandleItemChanged(r.Context(), event); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	response.Accepted(w, "Item change processed")
}

func (h *EventHandler) ItemDuplicated(w http.ResponseWriter, r *http.Request) {
	var event domain.ItemDuplicatedEvent
	if !h.decode(w, r, &event) {
		return
	}

	if err := h.processor.HandleItemDuplicated(r.Context(), event); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	response.Accepted(w, "Item duplication processed")
}

func (h *EventHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.BadRequest(w, "Invalid request body")
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		response.BadRequest(w, err.Error())
		return false
	}

	return true
}
