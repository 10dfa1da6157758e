package domain

import "time"

type ContentType string

const (
	ContentTypeNote            ContentType = "Note"
	ContentTypeItemsKey        ContentType = "SN|ItemsKey"
	ContentTypeComponent       ContentType = "SN|Component"
	ContentTypeTheme           ContentType = "SN|Theme"
	ContentTypeTag             ContentType = "Tag"
	ContentTypeUserPreferences ContentType = "SN|UserPreferences"
)

// Item is owned and written by the sync pipeline. This service only reads it.
type Item struct {
	UUID        string      `json:"uuid"`
	UserUUID    string      `json:"user_uuid"`
	ContentType ContentType `json:"content_type"`

	Content    string `json:"content"`
	EncItemKey string `json:"enc_item_key"`
	AuthHash   string `json:"auth_hash"`
	ItemsKeyID string `json:"items_key_id"`

	Deleted   bool      `json:"deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
