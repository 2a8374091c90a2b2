package inventory

import "time"

const (
	MovementOut = "OUT"
	MovementIn  = "IN"
)

// StockMovement records one physical stock change. The idempotency key makes
// a retried shipment transaction unable to double-decrement.
type StockMovement struct {
	ID        string `gorm:"type:char(36);primaryKey"`
	ProductID string `gorm:"type:char(36);not null;index:ix_stock_movements_product"`
	CompanyID string `gorm:"type:char(36);not null;index:ix_stock_movements_company"`

	Type     string `gorm:"type:varchar(8);not null"`
	Quantity int    `gorm:"not null"`

	ReferenceID    string `gorm:"type:char(36);not null"`
	IdempotencyKey string `gorm:"type:varchar(96);not null;uniqueIndex:ux_stock_movements_idem_key"`
	Description    string `gorm:"type:varchar(255)"`

	MovedAt   time.Time `gorm:"type:datetime(3);not null"`
	CreatedAt time.Time `gorm:"type:datetime(3);not null"`
}

func (StockMovement) TableName() string { return "stock_movements" }
