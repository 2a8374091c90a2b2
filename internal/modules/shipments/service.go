package shipments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"pazarnet.com/app/internal/modules/inventory"
	"pazarnet.com/app/internal/modules/orders"
	"pazarnet.com/app/internal/shared/dbx"
)

// Service creates shipments for paid orders. It does not touch the order's
// own status; "a shipment exists" and "the order is fully shipped" are
// different facts, and the latter belongs to tracking ingestion.
type Service struct {
	db       *gorm.DB
	carriers *Registry
	logger   *slog.Logger
}

func NewService(db *gorm.DB, carriers *Registry) *Service {
	return &Service{db: db, carriers: carriers, logger: slog.Default()}
}

func (s *Service) SetLogger(logger *slog.Logger) { s.logger = logger }

type InitiateShipmentInput struct {
	OrderID         string
	SellerCompanyID string
	CarrierCode     string
	Items           []ShipmentItem // boşsa order'ın tüm kalemleri
}

func (s *Service) InitiateShipment(ctx context.Context, in InitiateShipmentInput) (Shipment, error) {
	var ord orders.Order
	if err := s.db.WithContext(ctx).First(&ord, "id = ?", in.OrderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Shipment{}, orders.ErrNotFound
		}
		return Shipment{}, err
	}

	if ord.SellerCompanyID != in.SellerCompanyID {
		return Shipment{}, ErrForbidden
	}
	if ord.Status != orders.StatusPaid {
		return Shipment{}, ErrNotShippable
	}

	carrier, ok := s.carriers.Resolve(in.CarrierCode)
	if !ok {
		return Shipment{}, ErrUnknownCarrier
	}

	items := normalizeItems(in.Items, ord.Items())

	// Taşıyıcı çağrısı tx dışında; HTTP çağrısını transaction'a sarmak yok.
	created, err := carrier.CreateShipment(ctx, CreateShipmentInput{
		OrderID:         ord.ID,
		BuyerCompanyID:  ord.BuyerCompanyID,
		SellerCompanyID: ord.SellerCompanyID,
		Items:           items,
	})
	if err != nil {
		return Shipment{}, err
	}

	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return Shipment{}, err
	}

	var shp Shipment
	err = dbx.WithTxRetry(ctx, s.db, 3, func(tx *gorm.DB) error {
		var maxSeq int
		if err := tx.Model(&Shipment{}).
			Where("order_id = ?", ord.ID).
			Select("COALESCE(MAX(sequence), 0)").
			Scan(&maxSeq).Error; err != nil {
			return err
		}

		seq := maxSeq + 1
		now := time.Now()

		shp = Shipment{
			ID:          uuid.NewString(),
			OrderID:     ord.ID,
			CarrierCode: carrier.Code(),
			Mode:        carrier.Mode(),
			Status:      StatusLabelCreated,
			ItemsJSON:   datatypes.JSON(itemsJSON),
			Sequence:    seq,
			InitKey:     InitKeyFor(ord.ID, seq),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if created.TrackingNumber != "" {
			v := created.TrackingNumber
			shp.TrackingNumber = &v
		}
		if created.LabelURL != "" {
			v := created.LabelURL
			shp.LabelURL = &v
		}

		if err := tx.Create(&shp).Error; err != nil {
			if dbx.IsDup(err) {
				// Aynı sequence için eşzamanlı başlatma; kazananı döndür,
				// stok düşümünü tekrarlama.
				return tx.First(&shp, "init_key = ?", shp.InitKey).Error
			}
			return err
		}

		desc := fmt.Sprintf("Shipment %s for order %s", created.TrackingNumber, ord.ID)
		lines := make([]inventory.MovementLine, 0, len(items))
		for _, it := range items {
			lines = append(lines, inventory.MovementLine{ProductID: it.ProductID, Qty: it.Qty})
		}
		if err := inventory.EnsureOutMovements(ctx, tx, ord.SellerCompanyID, shp.ID, desc, lines); err != nil {
			return err
		}

		ev := ShipmentEvent{
			ID:          uuid.NewString(),
			ShipmentID:  shp.ID,
			Status:      StatusLabelCreated,
			Description: "Shipment created via " + carrier.Code(),
			CreatedAt:   now,
		}
		return tx.Create(&ev).Error
	})
	if err != nil {
		return Shipment{}, err
	}

	s.logger.InfoContext(ctx, "shipment initiated",
		"order_id", ord.ID, "shipment_id", shp.ID,
		"carrier", shp.CarrierCode, "sequence", shp.Sequence)

	return shp, nil
}

func normalizeItems(requested []ShipmentItem, orderItems []orders.ItemRef) []ShipmentItem {
	if len(requested) > 0 {
		out := make([]ShipmentItem, 0, len(requested))
		for _, it := range requested {
			if it.ProductID == "" {
				continue
			}
			qty := it.Qty
			if qty < 1 {
				qty = 1
			}
			out = append(out, ShipmentItem{ProductID: it.ProductID, Qty: qty})
		}
		return out
	}

	out := make([]ShipmentItem, 0, len(orderItems))
	for _, it := range orderItems {
		qty := it.Qty
		if qty < 1 {
			qty = 1
		}
		out = append(out, ShipmentItem{ProductID: it.ProductID, Qty: qty})
	}
	return out
}
