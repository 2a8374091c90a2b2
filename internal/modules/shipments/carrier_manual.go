package shipments

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// ManualCarrier covers sellers shipping on their own: no network call,
// tracking reference is synthesized locally.
type ManualCarrier struct{}

func NewManualCarrier() *ManualCarrier { return &ManualCarrier{} }

func (c *ManualCarrier) Code() string { return CarrierManual }
func (c *ManualCarrier) Mode() string { return ModeManual }

func (c *ManualCarrier) CreateShipment(ctx context.Context, in CreateShipmentInput) (CreateShipmentResult, error) {
	_ = ctx
	ref := "MAN-" + strings.ToUpper(uuid.NewString()[:8])
	return CreateShipmentResult{TrackingNumber: ref}, nil
}

func (c *ManualCarrier) CancelShipment(ctx context.Context, trackingNumber string) error {
	_ = ctx
	_ = trackingNumber
	return nil // manuel gönderide iptal lokal bir işlem
}

func (c *ManualCarrier) Track(ctx context.Context, trackingNumber string) ([]TrackingEvent, error) {
	_ = ctx
	_ = trackingNumber
	// Manuel modda taşıyıcı tarafında izlenecek bir şey yok.
	return nil, nil
}
