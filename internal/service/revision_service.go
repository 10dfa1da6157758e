package service

import (
	"context"
	"fmt"
	"log/slog"

	"revision-history-server/internal/domain"
	"revision-history-server/internal/metrics"
	"revision-history-server/internal/repository"
	"revision-history-server/pkg/logger"
)

// RevisionNotifier pushes freshly created revisions to the owner's live sessions.
type RevisionNotifier interface {
	NotifyRevisionCreated(ctx context.Context, userUUID string, revision *domain.RevisionSimpleResponse) error
}

type RevisionService struct {
	revisionRepo repository.RevisionRepository
	itemRepo     repository.ItemRepository
	authService  AuthHTTPService
	timer        Timer
	projector    *RevisionProjector
	notifier     RevisionNotifier
	logger       *slog.Logger
	metrics      *metrics.Metrics
}

func NewRevisionService(
	revisionRepo repository.RevisionRepository,
	itemRepo repository.ItemRepository,
	authService AuthHTTPService,
	timer Timer,
	notifier RevisionNotifier,
	log *slog.Logger,
	m *metrics.Metrics,
) *RevisionService {
	if log == nil {
		log = logger.Discard()
	}
	if m == nil {
		m = metrics.New(nil)
	}

	return &RevisionService{
		revisionRepo: revisionRepo,
		itemRepo:     itemRepo,
		authService:  authService,
		timer:        timer,
		projector:    NewRevisionProjector(),
		notifier:     notifier,
		logger:       log,
		metrics:      m,
	}
}

// AuthorizeItem fails with ErrItemNotFound unless the item exists and belongs
// to the user. Foreign items look the same as missing ones.
func (s *RevisionService) AuthorizeItem(ctx context.Context, userUUID, itemUUID string) error {
	item, err := s.itemRepo.FindByUUID(ctx, itemUUID)
	if err != nil {
		return fmt.Errorf("failed to load item %s: %w", itemUUID, err)
	}
	if item == nil || item.UserUUID != userUUID {
		return fmt.Errorf("item %s: %w", itemUUID, ErrItemNotFound)
	}
	return nil
}

// GetRevisions lists the revisions of an item visible under the user's
// current retention window. Ownership is checked by the caller.
func (s *RevisionService) GetRevisions(ctx context.Context, userUUID, itemUUID string) ([]*domain.Revision, error) {
	window, err := s.retentionWindow(ctx, userUUID)
	if err != nil {
		return nil, err
	}

	revisions, err := s.revisionRepo.FindByItemID(ctx, domain.RevisionQuery{
		ItemUUID:  itemUUID,
		AfterDate: window.Cutoff(s.timer.UTCDateNDaysAgo),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list revisions: %w", err)
	}

	return revisions, nil
}

// GetRevision returns nil, nil when the item has no such revision.
func (s *RevisionService) GetRevision(ctx context.Context, itemUUID, revisionUUID string) (*domain.Revision, error) {
	revision, err := s.revisionRepo.FindOneByID(ctx, itemUUID, revisionUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to get revision: %w", err)
	}
	return revision, nil
}

// CreateRevision snapshots a note. Other content types are ignored.
func (s *RevisionService) CreateRevision(ctx context.Context, item *domain.Item) error {
	if item.ContentType != domain.ContentTypeNote {
		s.metrics.RevisionCreationSkipped.Inc()
		return nil
	}

	now := s.timer.Now()

	revision := &domain.Revision{
		ItemUUID:     item.UUID,
		Content:      item.Content,
		ContentType:  item.ContentType,
		EncItemKey:   item.EncItemKey,
		AuthHash:     item.AuthHash,
		ItemsKeyID:   item.ItemsKeyID,
		CreationDate: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	saved, err := s.revisionRepo.Save(ctx, revision)
	if err != nil {
		return fmt.Errorf("failed to save revision for item %s: %w", item.UUID, err)
	}

	s.metrics.RevisionsCreated.Inc()
	s.logger.DebugContext(ctx, "revision created", "item_uuid", item.UUID, "revision_uuid", saved.UUID)

	s.notify(ctx, item.UserUUID, saved)

	return nil
}

// CopyRevisions duplicates the full history of one item onto another.
// Saves are independent; a failure leaves the copies made so far in place.
func (s *RevisionService) CopyRevisions(ctx context.Context, fromItemUUID, toItemUUID string) error {
	revisions, err := s.revisionRepo.FindByItemID(ctx, domain.RevisionQuery{ItemUUID: fromItemUUID})
	if err != nil {
		return fmt.Errorf("failed to list revisions of item %s: %w", fromItemUUID, err)
	}

	toItem, err := s.itemRepo.FindByUUID(ctx, toItemUUID)
	if err != nil {
		return fmt.Errorf("failed to find item %s: %w", toItemUUID, err)
	}
	if toItem == nil {
		return fmt.Errorf("item %s does not exist: %w", toItemUUID, ErrItemNotFound)
	}

	for i, existing := range revisions {
		revisionCopy := &domain.Revision{
			ItemUUID:     toItem.UUID,
			Content:      existing.Content,
			ContentType:  existing.ContentType,
			EncItemKey:   existing.EncItemKey,
			AuthHash:     existing.AuthHash,
			ItemsKeyID:   existing.ItemsKeyID,
			CreationDate: existing.CreationDate,
			CreatedAt:    existing.CreatedAt,
			UpdatedAt:    existing.UpdatedAt,
		}

		if _, err := s.revisionRepo.Save(ctx, revisionCopy); err != nil {
			s.logger.WarnContext(ctx, "revision copy stopped partway",
				"from_item_uuid", fromItemUUID,
				"to_item_uuid", toItemUUID,
				"copied", i,
				"total", len(revisions),
				"error", err,
			)
			return fmt.Errorf("failed to copy revision %s to item %s: %w", existing.UUID, toItemUUID, err)
		}
		s.metrics.RevisionsCopied.Inc()
	}

	s.logger.InfoContext(ctx, "revisions copied",
		"from_item_uuid", fromItemUUID,
		"to_item_uuid", toItemUUID,
		"count", len(revisions),
	)

	return nil
}

func (s *RevisionService) retentionWindow(ctx context.Context, userUUID string) (RetentionWindow, error) {
	features, err := s.authService.GetUserFeatures(ctx, userUUID)
	s.metrics.ObserveEntitlementLookup(err)
	if err != nil {
		return RetentionWindow{}, fmt.Errorf("failed to get features of user %s: %w", userUUID, err)
	}

	window := ResolveRetentionWindow(features)
	s.metrics.ObserveRetentionWindow(window.String())
	s.logger.DebugContext(ctx, "resolved retention window", "user_uuid", userUUID, "window", window.String())

	return window, nil
}

func (s *RevisionService) notify(ctx context.Context, userUUID string, revision *domain.Revision) {
	if s.notifier == nil || userUUID == "" {
		return
	}

	if err := s.notifier.NotifyRevisionCreated(ctx, userUUID, s.projector.ProjectSimple(revision)); err != nil {
		s.logger.WarnContext(ctx, "failed to notify revision created", "user_uuid", userUUID, "error", err)
	}
}
