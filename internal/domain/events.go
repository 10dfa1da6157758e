package domain

type ItemEventType string

const (
	ItemEventChanged    ItemEventType = "item.changed"
	ItemEventDuplicated ItemEventType = "item.duplicated"
)

type ItemChangedEvent struct {
	ItemUUID string `json:"item_uuid" validate:"required"`
}

type ItemDuplicatedEvent struct {
	FromItemUUID string `json:"from_item_uuid" validate:"required"`
	ToItemUUID   string `json:"to_item_uuid" validate:"required,nefield=FromItemUUID"`
}
