package ws

import (
	"encoding/json"

	"go-storefront-api/internal/model"
)

// Catalog event actions
const (
	ActionProductCreated = "product_created"
	ActionProductUpdated = "product_updated"
	ActionProductDeleted = "product_deleted"
	ActionStockScanned   = "stock_scanned"
)

// CatalogEvent is the wire shape of a broadcast catalog change.
type CatalogEvent struct {
	Type    string         `json:"type"`
	Action  string         `json:"action"`
	Product *model.Product `json:"product,omitempty"`
	Message string         `json:"message,omitempty"`
}

// PublishCatalogEvent serializes and broadcasts a catalog change. Safe to
// call on a nil hub (services under test run without one), and the send
// happens off the caller's goroutine so a slow hub never delays a request.
func (h *Hub) PublishCatalogEvent(action string, product *model.Product, message string) {
	if h == nil {
		return
	}
	payload := CatalogEvent{
		Type:    "catalog_update",
		Action:  action,
		Product: product,
		Message: message,
	}
	msg, err := json.Marshal(payload)
	if err != nil {
		return
	}
	go func() {
		h.Broadcast <- msg
	}()
}
