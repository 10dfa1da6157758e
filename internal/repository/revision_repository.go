package repository

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"revision-history-server/internal/domain"

	"github.com/go-kivik/kivik/v4"
	"github.com/google/uuid"
)

const (
	revisionDocType  = "revision"
	revisionIndexDoc = "revisions"
	revisionIndex    = "by_item_creation_date"
	revisionPageSize = 200
)

type RevisionRepository interface {
	Save(ctx context.Context, revision *domain.Revision) (*domain.Revision, error)
	FindByItemID(ctx context.Context, query domain.RevisionQuery) ([]*domain.Revision, error)
	FindOneByID(ctx context.Context, itemUUID, uuid string) (*domain.Revision, error)
}

// revisionDoc is the CouchDB shape. CreationDateMicros mirrors CreationDate
// so Mango can range and sort on a number instead of a formatted string.
type revisionDoc struct {
	DocType            string             `json:"doc_type"`
	UUID               string             `json:"uuid"`
	ItemUUID           string             `json:"item_uuid"`
	Content            string             `json:"content"`
	ContentType        domain.ContentType `json:"content_type"`
	EncItemKey         string             `json:"enc_item_key"`
	AuthHash           string             `json:"auth_hash"`
	ItemsKeyID         string             `json:"items_key_id"`
	CreationDate       time.Time          `json:"creation_date"`
	CreationDateMicros int64              `json:"creation_date_micros"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

type revisionRepository struct {
	client *kivik.Client
	dbName string
}

func NewRevisionRepository(client *kivik.Client, dbName string) RevisionRepository {
	return &revisionRepository{
		client: client,
		dbName: dbName,
	}
}

// EnsureRevisionIndexes creates the Mango index that backs item history listing.
func EnsureRevisionIndexes(ctx context.Context, client *kivik.Client, dbName string) error {
	db := client.DB(dbName)

	index := map[string]interface{}{
		"fields": []string{"doc_type", "item_uuid", "creation_date_micros"},
	}

	if err := db.CreateIndex(ctx, revisionIndexDoc, revisionIndex, index); err != nil {
		return fmt.Errorf("failed to create revision index: %w", err)
	}

	return nil
}

func (r *revisionRepository) Save(ctx context.Context, revision *domain.Revision) (*domain.Revision, error) {
	db := r.client.DB(r.dbName)

	saved := *revision
	if saved.UUID == "" {
		saved.UUID = uuid.New().String()
	}

	if _, err := db.Put(ctx, revisionDocID(saved.UUID), toRevisionDoc(&saved)); err != nil {
		return nil, fmt.Errorf("failed to save revision: %w", err)
	}

	return &saved, nil
}

func (r *revisionRepository) FindByItemID(ctx context.Context, query domain.RevisionQuery) ([]*domain.Revision, error) {
	db := r.client.DB(r.dbName)

	var (
		revisions []*domain.Revision
		bookmark  string
	)

	for {
		page, next, err := r.findPage(ctx, db, buildRevisionQuery(query, bookmark))
		if err != nil {
			return nil, err
		}

		revisions = append(revisions, page...)

		if len(page) < revisionPageSize || next == "" || next == bookmark {
			break
		}
		bookmark = next
	}

	return revisions, nil
}

func (r *revisionRepository) findPage(ctx context.Context, db *kivik.DB, query map[string]interface{}) ([]*domain.Revision, string, error) {
	rows := db.Find(ctx, query)
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("failed to list revisions: %w", err)
	}
	defer rows.Close()

	var revisions []*domain.Revision
	for rows.Next() {
		var doc revisionDoc
		if err := rows.ScanDoc(&doc); err != nil {
			return nil, "", fmt.Errorf("failed to scan revision: %w", err)
		}
		revisions = append(revisions, fromRevisionDoc(&doc))
	}

	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("failed to iterate revisions: %w", err)
	}

	meta, err := rows.Metadata()
	if err != nil {
		return nil, "", fmt.Errorf("failed to read revision page metadata: %w", err)
	}

	return revisions, meta.Bookmark, nil
}

func (r *revisionRepository) FindOneByID(ctx context.Context, itemUUID, uuid string) (*domain.Revision, error) {
	db := r.client.DB(r.dbName)

	var doc revisionDoc
	if err := db.Get(ctx, revisionDocID(uuid)).ScanDoc(&doc); err != nil {
		if kivik.HTTPStatus(err) == http.StatusNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find revision: %w", err)
	}

	if doc.DocType != revisionDocType || doc.ItemUUID != itemUUID {
		return nil, nil
	}

	return fromRevisionDoc(&doc), nil
}

func revisionDocID(uuid string) string {
	return fmt.Sprintf("revision:%s", uuid)
}

// buildRevisionQuery keeps creation_date_micros in the selector even without
// a cutoff so the index is still usable. Mango collates null below every
// number, so "$gt": null also matches pre-1970 and zero-time revisions.
func buildRevisionQuery(query domain.RevisionQuery, bookmark string) map[string]interface{} {
	creationDate := map[string]interface{}{"$gt": nil}
	if query.AfterDate != nil {
		creationDate = map[string]interface{}{"$gte": query.AfterDate.UnixMicro()}
	}

	q := map[string]interface{}{
		"selector": map[string]interface{}{
			"doc_type":             revisionDocType,
			"item_uuid":            query.ItemUUID,
			"creation_date_micros": creationDate,
		},
		"sort": []map[string]string{
			{"doc_type": "desc"},
			{"item_uuid": "desc"},
			{"creation_date_micros": "desc"},
		},
		"use_index": []string{revisionIndexDoc, revisionIndex},
		"limit":     revisionPageSize,
	}

	if bookmark != "" {
		q["bookmark"] = bookmark
	}

	return q
}

func toRevisionDoc(r *domain.Revision) *revisionDoc {
	return &revisionDoc{
		DocType:            revisionDocType,
		UUID:               r.UUID,
		ItemUUID:           r.ItemUUID,
		Content:            r.Content,
		ContentType:        r.ContentType,
		EncItemKey:         r.EncItemKey,
		AuthHash:           r.AuthHash,
		ItemsKeyID:         r.ItemsKeyID,
		CreationDate:       r.CreationDate,
		CreationDateMicros: r.CreationDate.UnixMicro(),
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

func fromRevisionDoc(d *revisionDoc) *domain.Revision {
	return &domain.Revision{
		UUID:         d.UUID,
		ItemUUID:     d.ItemUUID,
		Content:      d.Content,
		ContentType:  d.ContentType,
		EncItemKey:   d.EncItemKey,
		AuthHash:     d.AuthHash,
		ItemsKeyID:   d.ItemsKeyID,
		CreationDate: d.CreationDate,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}
