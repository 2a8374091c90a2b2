package shipments

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

const (
	ModeManual     = "MANUAL"
	ModeIntegrated = "INTEGRATED"

	StatusLabelCreated = "LABEL_CREATED"
	StatusInTransit    = "IN_TRANSIT"
	StatusDelivered    = "DELIVERED"
)

// Shipment is one physical parcel of a network order. (order, sequence) is
// unique; InitKey makes creation idempotent per logical initiation attempt.
type Shipment struct {
	ID      string `gorm:"type:char(36);primaryKey"`
	OrderID string `gorm:"type:char(36);not null;index:ix_shipments_order"`

	CarrierCode    string  `gorm:"type:varchar(32);not null"`
	Mode           string  `gorm:"type:varchar(16);not null"`
	Status         string  `gorm:"type:varchar(16);not null"`
	TrackingNumber *string `gorm:"type:varchar(64)"`
	LabelURL       *string `gorm:"type:varchar(255)"`

	ItemsJSON datatypes.JSON `gorm:"type:json"`
	Sequence  int            `gorm:"not null"`
	InitKey   string         `gorm:"type:varchar(64);not null;uniqueIndex:ux_shipments_init_key"`

	DeliveredAt *time.Time `gorm:"type:datetime(3)"`
	CreatedAt   time.Time  `gorm:"type:datetime(3);not null"`
	UpdatedAt   time.Time  `gorm:"type:datetime(3);not null"`
}

func (Shipment) TableName() string { return "shipments" }

type ShipmentItem struct {
	ProductID string `json:"productId"`
	Qty       int    `json:"qty"`
}

func (s *Shipment) Items() []ShipmentItem {
	if len(s.ItemsJSON) == 0 {
		return nil
	}
	var items []ShipmentItem
	if err := json.Unmarshal(s.ItemsJSON, &items); err != nil {
		return nil
	}
	return items
}

// ShipmentEvent is the per-parcel lifecycle trail.
type ShipmentEvent struct {
	ID         string `gorm:"type:char(36);primaryKey"`
	ShipmentID string `gorm:"type:char(36);not null;index:ix_shipment_events_shipment"`

	Status      string `gorm:"type:varchar(16);not null"`
	Description string `gorm:"type:varchar(255)"`

	CreatedAt time.Time `gorm:"type:datetime(3);not null"`
}

func (ShipmentEvent) TableName() string { return "shipment_events" }

// InitKeyFor derives the dedupe key for an initiation attempt.
func InitKeyFor(orderID string, sequence int) string {
	return fmt.Sprintf("%s:%d", orderID, sequence)
}
