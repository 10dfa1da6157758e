package service

import (
	"context"
	"fmt"

	"revision-history-server/internal/domain"
	"revision-history-server/internal/repository"
)

// ItemEventProcessor turns item pipeline events into revision operations.
type ItemEventProcessor struct {
	itemRepo  repository.ItemRepository
	revisions *RevisionService
}

func NewItemEventProcessor(itemRepo repository.ItemRepository, revisions *RevisionService) *ItemEventProcessor {
	return &ItemEventProcessor{
		itemRepo:  itemRepo,
		revisions: revisions,
	}
}

func (p *ItemEventProcessor) HandleItemChanged(ctx context.Context, event domain.ItemChangedEvent) error {
	item, err := p.itemRepo.FindByUUID(ctx, event.ItemUUID)
	if err != nil {
		return fmt.Errorf("failed to load item %s: %w", event.ItemUUID, err)
	}
	if item == nil {
		return fmt.Errorf("item %s does not exist: %w", event.ItemUUID, ErrItemNotFound)
	}

	return p.revisions.CreateRevision(ctx, item)
}

func (p *ItemEventProcessor) HandleItemDuplicated(ctx context.Context, event domain.ItemDuplicatedEvent) error {
	return p.revisions.CopyRevisions(ctx, event.FromItemUUID, event.ToItemUUID)
}
