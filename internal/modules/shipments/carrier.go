package shipments

import (
	"context"
	"time"
)

const (
	CarrierManual = "MANUAL"
	CarrierMock   = "MOCK"
)

type CreateShipmentInput struct {
	OrderID         string
	BuyerCompanyID  string
	SellerCompanyID string
	Items           []ShipmentItem
}

type CreateShipmentResult struct {
	TrackingNumber string
	LabelURL       string
}

type TrackingEvent struct {
	Status      string
	Description string
	OccurredAt  time.Time
}

// Carrier is the polymorphism point over shipping providers. New carriers
// are added by implementing this interface and registering under a code;
// nothing else branches on carrier identity.
type Carrier interface {
	Code() string
	Mode() string // MANUAL | INTEGRATED

	CreateShipment(ctx context.Context, in CreateShipmentInput) (CreateShipmentResult, error)
	CancelShipment(ctx context.Context, trackingNumber string) error
	Track(ctx context.Context, trackingNumber string) ([]TrackingEvent, error)
}

// Registry resolves carriers by code.
type Registry struct {
	carriers map[string]Carrier
}

func NewRegistry(carriers ...Carrier) *Registry {
	m := make(map[string]Carrier, len(carriers))
	for _, c := range carriers {
		m[c.Code()] = c
	}
	return &Registry{carriers: m}
}

func (r *Registry) Resolve(code string) (Carrier, bool) {
	c, ok := r.carriers[code]
	return c, ok
}
