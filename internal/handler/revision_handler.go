package handler

import (
	"context"
	"log/slog"
	"net/http"

	"revision-history-server/internal/domain"
	"revision-history-server/internal/middleware"
	"revision-history-server/internal/service"
	"revision-history-server/pkg/logger"
	"revision-history-server/pkg/response"

	"github.com/gorilla/mux"
)

type RevisionReader interface {
	AuthorizeItem(ctx context.Context, userUUID, itemUUID string) error
	GetRevisions(ctx context.Context, userUUID, itemUUID string) ([]*domain.Revision, error)
	GetRevision(ctx context.Context, itemUUID, revisionUUID string) (*domain.Revision, error)
}

type RevisionHandler struct {
	revisions RevisionReader
	projector *service.RevisionProjector
	logger    *slog.Logger
}

func NewRevisionHandler(revisions RevisionReader, log *slog.Logger) *RevisionHandler {
	if log == nil {
		log = logger.Discard()
	}

	return &RevisionHandler{
		revisions: revisions,
		projector: service.NewRevisionProjector(),
		logger:    log,
	}
}

func (h *RevisionHandler) List(w http.ResponseWriter, r *http.Request) {
	itemUUID := mux.Vars(r)["itemUuid"]
	userID := middleware.GetUserID(r)

	if err := h.revisions.AuthorizeItem(r.Context(), userID, itemUUID); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	revisions, err := h.revisions.GetRevisions(r.Context(), userID, itemUUID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	response.Success(w, h.projector.ProjectSimpleList(revisions))
}

func (h *RevisionHandler) Get(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	itemUUID := vars["itemUuid"]
	revisionUUID := vars["uuid"]
	userID := middleware.GetUserID(r)

	if err := h.revisions.AuthorizeItem(r.Context(), userID, itemUUID); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	revision, err := h.revisions.GetRevision(r.Context(), itemUUID, revisionUUID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	if revision == nil {
		response.NotFound(w, "Revision not found")
		return
	}

	response.Success(w, h.projector.ProjectFull(revision))
}
