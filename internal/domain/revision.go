package domain

import "time"

// Revision is an immutable snapshot of an item's payload. ItemUUID is a
// lookup reference; revisions never reach back into the item itself.
type Revision struct {
	UUID     string `json:"uuid"`
	ItemUUID string `json:"item_uuid"`

	Content     string      `json:"content"`
	ContentType ContentType `json:"content_type"`
	EncItemKey  string      `json:"enc_item_key"`
	AuthHash    string      `json:"auth_hash"`
	ItemsKeyID  string      `json:"items_key_id"`

	CreationDate time.Time `json:"creation_date"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type RevisionQuery struct {
	ItemUUID  string
	AfterDate *time.Time
}

type RevisionSimpleResponse struct {
	UUID         string      `json:"uuid"`
	ItemUUID     string      `json:"item_uuid"`
	ContentType  ContentType `json:"content_type"`
	CreationDate time.Time   `json:"creation_date"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

type RevisionFullResponse struct {
	RevisionSimpleResponse
	Content    string `json:"content"`
	EncItemKey string `json:"enc_item_key"`
	AuthHash   string `json:"auth_hash"`
	ItemsKeyID string `json:"items_key_id"`
}
