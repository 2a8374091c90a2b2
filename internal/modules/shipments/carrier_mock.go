package shipments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"pazarnet.com/app/internal/storage"
)

// MockCarrier simulates an integrated carrier: it returns a tracking number
// and a label document written through the label storage. Real integrations
// replace the synthesized calls with provider API calls.
type MockCarrier struct {
	labels storage.Storage
}

func NewMockCarrier(labels storage.Storage) *MockCarrier {
	return &MockCarrier{labels: labels}
}

func (c *MockCarrier) Code() string { return CarrierMock }
func (c *MockCarrier) Mode() string { return ModeIntegrated }

func (c *MockCarrier) CreateShipment(ctx context.Context, in CreateShipmentInput) (CreateShipmentResult, error) {
	tracking := "MCK-" + strings.ToUpper(uuid.NewString()[:12])

	labelURL := ""
	if c.labels != nil {
		body := fmt.Sprintf("LABEL %s\norder=%s\nseller=%s\nbuyer=%s\n",
			tracking, in.OrderID, in.SellerCompanyID, in.BuyerCompanyID)
		res, err := c.labels.Put(ctx, strings.NewReader(body), storage.PutInput{
			Filename:    tracking + ".pdf",
			ContentType: "application/pdf",
			Size:        int64(len(body)),
		})
		if err != nil {
			return CreateShipmentResult{}, fmt.Errorf("store label: %w", err)
		}
		labelURL = res.URL
	}

	return CreateShipmentResult{TrackingNumber: tracking, LabelURL: labelURL}, nil
}

func (c *MockCarrier) CancelShipment(ctx context.Context, trackingNumber string) error {
	_ = ctx
	if trackingNumber == "" {
		return fmt.Errorf("missing tracking number")
	}
	return nil
}

func (c *MockCarrier) Track(ctx context.Context, trackingNumber string) ([]TrackingEvent, error) {
	_ = ctx
	if trackingNumber == "" {
		return nil, fmt.Errorf("missing tracking number")
	}
	return []TrackingEvent{
		{Status: StatusLabelCreated, Description: "Label created", OccurredAt: time.Now()},
	}, nil
}
