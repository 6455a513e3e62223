package service

import "fsanano/inventory-cart/internal/model"

type Action string

const (
	ActionView   Action = "view"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// CanAccessItem reports whether userID may perform action on item. Items
// are private to their owner for every action.
func CanAccessItem(userID int64, item *model.Item, action Action) bool {
	if item == nil {
		return false
	}
	switch action {
	case ActionView, ActionUpdate, ActionDelete:
		return item.UserID == userID
	default:
		return false
	}
}

// CanAccessCartEntry reports whether userID may perform action on entry.
func CanAccessCartEntry(userID int64, entry *model.CartEntry, action Action) bool {
	if entry == nil {
		return false
	}
	switch action {
	case ActionView, ActionUpdate, ActionDelete:
		return entry.UserID == userID
	default:
		return false
	}
}
