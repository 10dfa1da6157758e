package repository

import (
	"encoding/json"
	"testing"
	"time"

	"revision-history-server/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRevisionDoc_RoundTrip(t *testing.T) {
	created := time.Date(2024, 5, 1, 10, 30, 0, 123456000, time.UTC)
	rev := &domain.Revision{
		UUID:         "rev-1",
		ItemUUID:     "item-1",
		Content:      "004:cipher",
		ContentType:  domain.ContentTypeNote,
		EncItemKey:   "enc-key",
		AuthHash:     "hash",
		ItemsKeyID:   "key-1",
		CreationDate: created,
		CreatedAt:    created,
		UpdatedAt:    created.Add(time.Second),
	}

	doc := toRevisionDoc(rev)
	assert.Equal(t, revisionDocType, doc.DocType)
	assert.Equal(t, created.UnixMicro(), doc.CreationDateMicros)

	assert.Equal(t, rev, fromRevisionDoc(doc))
}

func TestBuildRevisionQuery_WithoutCutoff(t *testing.T) {
	q := buildRevisionQuery(domain.RevisionQuery{ItemUUID: "item-1"}, "")

	selector, ok := q["selector"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "item-1", selector["item_uuid"])
	assert.Equal(t, revisionDocType, selector["doc_type"])
	assert.Equal(t, map[string]interface{}{"$gt": nil}, selector["creation_date_micros"])
	assert.Equal(t, revisionPageSize, q["limit"])
	assert.NotContains(t, q, "bookmark")

	body, err := json.Marshal(q)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"creation_date_micros":{"$gt":null}`)
}

// matchesCreationDate applies a creation_date_micros condition the way Mango
// collates it: null sorts below every number.
func matchesCreationDate(t *testing.T, cond map[string]interface{}, micros int64) bool {
	t.Helper()
	require.Len(t, cond, 1)

	for op, v := range cond {
		switch op {
		case "$gt":
			if v == nil {
				return true
			}
			return micros > v.(int64)
		case "$gte":
			if v == nil {
				return true
			}
			return micros >= v.(int64)
		}
		t.Fatalf("unexpected operator %q", op)
	}
	return false
}

func TestBuildRevisionQuery_WithoutCutoffMatchesEarlyRevisions(t *testing.T) {
	q := buildRevisionQuery(domain.RevisionQuery{ItemUUID: "item-1"}, "")
	cond := q["selector"].(map[string]interface{})["creation_date_micros"].(map[string]interface{})

	tests := []struct {
		name    string
		created time.Time
	}{
		{"zero time", time.Time{}},
		{"before epoch", time.Date(1969, 7, 20, 20, 17, 0, 0, time.UTC)},
		{"epoch", time.Unix(0, 0).UTC()},
		{"recent", time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := toRevisionDoc(&domain.Revision{UUID: "rev", ItemUUID: "item-1", CreationDate: tt.created})
			assert.True(t, matchesCreationDate(t, cond, doc.CreationDateMicros))
		})
	}

	assert.Negative(t, toRevisionDoc(&domain.Revision{}).CreationDateMicros)
}

func TestBuildRevisionQuery_WithCutoffAndBookmark(t *testing.T) {
	cutoff := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	q := buildRevisionQuery(domain.RevisionQuery{ItemUUID: "item-2", AfterDate: &cutoff}, "g1AAAA")

	selector := q["selector"].(map[string]interface{})
	assert.Equal(t, map[string]interface{}{"$gte": cutoff.UnixMicro()}, selector["creation_date_micros"])
	assert.Equal(t, "g1AAAA", q["bookmark"])

	assert.True(t, matchesCreationDate(t, selector["creation_date_micros"].(map[string]interface{}), cutoff.UnixMicro()))
	assert.False(t, matchesCreationDate(t, selector["creation_date_micros"].(map[string]interface{}), cutoff.UnixMicro()-1))
}

func TestDocIDs(t *testing.T) {
	assert.Equal(t, "revision:abc", revisionDocID("abc"))
	assert.Equal(t, "item:abc", itemDocID("abc"))
}
