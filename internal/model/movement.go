package model

import "github.com/google/uuid"

type MovementSource string

const (
	MovementScan   MovementSource = "scan"
	MovementManual MovementSource = "manual"
)

// StockMovement is an audit row written whenever product stock changes.
type StockMovement struct {
	BaseModel
	ProductID      uuid.UUID      `gorm:"type:uuid;index;not null" json:"product_id"`
	Product        *Product       `json:"product,omitempty"`
	Delta          int            `gorm:"not null" json:"delta"` // signed change, positive on increments
	ResultingStock int            `gorm:"not null" json:"resulting_stock"`
	Source         MovementSource `gorm:"type:varchar(16);not null" json:"source"`
}
