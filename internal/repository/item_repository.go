package repository

import (
	"context"
	"fmt"
	"net/http"

	"revision-history-server/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

type ItemRepository interface {
	FindByUUID(ctx context.Context, uuid string) (*domain.Item, error)
}

type itemRepository struct {
	client *kivik.Client
	dbName string
}

func NewItemRepository(client *kivik.Client, dbName string) ItemRepository {
	return &itemRepository{
		client: client,
		dbName: dbName,
	}
}

// FindByUUID returns nil, nil when the item does not exist.
func (r *itemRepository) FindByUUID(ctx context.Context, uuid string) (*domain.Item, error) {
	db := r.client.DB(r.dbName)

	var item domain.Item
	if err := db.Get(ctx, itemDocID(uuid)).ScanDoc(&item); err != nil {
		if kivik.HTTPStatus(err) == http.StatusNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find item: %w", err)
	}

	return &item, nil
}

func itemDocID(uuid string) string {
	return fmt.Sprintf("item:%s", uuid)
}
