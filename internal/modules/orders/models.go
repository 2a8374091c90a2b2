package orders

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Order statusu sadece ileri gider; geri dönüş yok.
const (
	StatusPendingPayment = "PENDING_PAYMENT"
	StatusPaid           = "PAID"
	StatusShipped        = "SHIPPED"
	StatusDelivered      = "DELIVERED"
	StatusCompleted      = "COMPLETED"
)

type Order struct {
	ID              string `gorm:"type:char(36);primaryKey"`
	BuyerCompanyID  string `gorm:"type:char(36);not null;index:ix_network_orders_buyer"`
	SellerCompanyID string `gorm:"type:char(36);not null;index:ix_network_orders_seller"`

	SubtotalCents   int64  `gorm:"not null"`
	ShippingCents   int64  `gorm:"not null"`
	CommissionCents int64  `gorm:"not null"`
	TotalCents      int64  `gorm:"not null"`
	Currency        string `gorm:"type:char(3);not null"`

	Status    string         `gorm:"type:varchar(32);not null;index:ix_network_orders_status"`
	ItemsJSON datatypes.JSON `gorm:"type:json"`

	PaidAt        *time.Time `gorm:"type:datetime(3)"`
	ConfirmedAt   *time.Time `gorm:"type:datetime(3)"`
	CompletedAt   *time.Time `gorm:"type:datetime(3)"`
	CompletionKey *string    `gorm:"type:varchar(64);uniqueIndex:ux_network_orders_completion_key"`

	CreatedAt time.Time `gorm:"type:datetime(3);not null"`
	UpdatedAt time.Time `gorm:"type:datetime(3);not null"`
}

func (Order) TableName() string { return "network_orders" }

// ItemRef is one order line as stored in the items JSON column.
type ItemRef struct {
	ProductID string `json:"productId"`
	Qty       int    `json:"qty"`
}

func (o *Order) Items() []ItemRef {
	if len(o.ItemsJSON) == 0 {
		return nil
	}
	var items []ItemRef
	if err := json.Unmarshal(o.ItemsJSON, &items); err != nil {
		return nil
	}
	return items
}

// OrderEvent is the audit trail row written alongside status transitions.
type OrderEvent struct {
	ID             string  `gorm:"type:char(36);primaryKey"`
	OrderID        string  `gorm:"type:char(36);not null;index:ix_network_order_events_order"`
	ActorCompanyID *string `gorm:"type:char(36)"`
	Action         string  `gorm:"type:varchar(32);not null"`
	FromStatus     string  `gorm:"type:varchar(32);not null"`
	ToStatus       string  `gorm:"type:varchar(32);not null"`
	Note           *string `gorm:"type:varchar(255)"`

	CreatedAt time.Time `gorm:"type:datetime(3);not null"`
}

func (OrderEvent) TableName() string { return "network_order_events" }
