package shipments_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"pazarnet.com/app/internal/modules/inventory"
	"pazarnet.com/app/internal/modules/orders"
	"pazarnet.com/app/internal/modules/shipments"
	"pazarnet.com/app/internal/storage"
	"pazarnet.com/app/internal/testutil"
)

func seedOrder(t *testing.T, db *gorm.DB, status string) orders.Order {
	t.Helper()
	now := time.Now()
	ord := orders.Order{
		ID:              uuid.NewString(),
		BuyerCompanyID:  uuid.NewString(),
		SellerCompanyID: uuid.NewString(),
		SubtotalCents:   4500,
		ShippingCents:   500,
		CommissionCents: 45,
		TotalCents:      5000,
		Currency:        "TRY",
		Status:          status,
		ItemsJSON:       datatypes.JSON(`[{"productId":"p1","qty":2},{"productId":"p2","qty":1}]`),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	require.NoError(t, db.Create(&ord).Error)
	return ord
}

func manualService(t *testing.T, db *gorm.DB) *shipments.Service {
	t.Helper()
	return shipments.NewService(db, shipments.NewRegistry(shipments.NewManualCarrier()))
}

func TestInitiateShipmentManual(t *testing.T) {
	db := testutil.NewDB(t)
	svc := manualService(t, db)
	ord := seedOrder(t, db, orders.StatusPaid)

	shp, err := svc.InitiateShipment(context.Background(), shipments.InitiateShipmentInput{
		OrderID:         ord.ID,
		SellerCompanyID: ord.SellerCompanyID,
		CarrierCode:     "MANUAL",
	})
	require.NoError(t, err)
	require.Equal(t, shipments.StatusLabelCreated, shp.Status)
	require.Equal(t, shipments.ModeManual, shp.Mode)
	require.Equal(t, 1, shp.Sequence)
	require.NotNil(t, shp.TrackingNumber)
	require.True(t, strings.HasPrefix(*shp.TrackingNumber, "MAN-"))

	// Order'ın tüm kalemleri sevk edildi, her biri için stok düşümü var.
	require.Len(t, shp.Items(), 2)
	var movements []inventory.StockMovement
	require.NoError(t, db.Where("reference_id = ?", shp.ID).Order("product_id").Find(&movements).Error)
	require.Len(t, movements, 2)
	require.Equal(t, "p1", movements[0].ProductID)
	require.Equal(t, 2, movements[0].Quantity)
	require.Equal(t, inventory.MovementOut, movements[0].Type)
	require.Equal(t, shp.ID+":p1", movements[0].IdempotencyKey)

	// Order statüsüne dokunulmaz; o takip verisinin işi.
	var gotOrder orders.Order
	require.NoError(t, db.First(&gotOrder, "id = ?", ord.ID).Error)
	require.Equal(t, orders.StatusPaid, gotOrder.Status)
}

func TestInitiateShipmentSequenceIncrements(t *testing.T) {
	db := testutil.NewDB(t)
	svc := manualService(t, db)
	ord := seedOrder(t, db, orders.StatusPaid)
	ctx := context.Background()

	first, err := svc.InitiateShipment(ctx, shipments.InitiateShipmentInput{
		OrderID:         ord.ID,
		SellerCompanyID: ord.SellerCompanyID,
		CarrierCode:     "MANUAL",
		Items:           []shipments.ShipmentItem{{ProductID: "p1", Qty: 2}},
	})
	require.NoError(t, err)

	second, err := svc.InitiateShipment(ctx, shipments.InitiateShipmentInput{
		OrderID:         ord.ID,
		SellerCompanyID: ord.SellerCompanyID,
		CarrierCode:     "MANUAL",
		Items:           []shipments.ShipmentItem{{ProductID: "p2", Qty: 1}},
	})
	require.NoError(t, err)

	require.Equal(t, 1, first.Sequence)
	require.Equal(t, 2, second.Sequence)
	require.NotEqual(t, first.InitKey, second.InitKey)
}

func TestInitiateShipmentMockCarrierStoresLabel(t *testing.T) {
	db := testutil.NewDB(t)
	labels := storage.NewLocal(t.TempDir(), "/labels")
	svc := shipments.NewService(db, shipments.NewRegistry(shipments.NewMockCarrier(labels)))
	ord := seedOrder(t, db, orders.StatusPaid)

	shp, err := svc.InitiateShipment(context.Background(), shipments.InitiateShipmentInput{
		OrderID:         ord.ID,
		SellerCompanyID: ord.SellerCompanyID,
		CarrierCode:     "MOCK",
	})
	require.NoError(t, err)
	require.Equal(t, shipments.ModeIntegrated, shp.Mode)
	require.NotNil(t, shp.LabelURL)
	require.True(t, strings.HasPrefix(*shp.LabelURL, "/labels/"))
}

func TestInitiateShipmentGuards(t *testing.T) {
	db := testutil.NewDB(t)
	svc := manualService(t, db)
	ctx := context.Background()

	t.Run("unknown order", func(t *testing.T) {
		_, err := svc.InitiateShipment(ctx, shipments.InitiateShipmentInput{
			OrderID:     uuid.NewString(),
			CarrierCode: "MANUAL",
		})
		require.ErrorIs(t, err, orders.ErrNotFound)
	})

	t.Run("wrong seller", func(t *testing.T) {
		ord := seedOrder(t, db, orders.StatusPaid)
		_, err := svc.InitiateShipment(ctx, shipments.InitiateShipmentInput{
			OrderID:         ord.ID,
			SellerCompanyID: uuid.NewString(),
			CarrierCode:     "MANUAL",
		})
		require.ErrorIs(t, err, shipments.ErrForbidden)
	})

	t.Run("order not paid", func(t *testing.T) {
		ord := seedOrder(t, db, orders.StatusPendingPayment)
		_, err := svc.InitiateShipment(ctx, shipments.InitiateShipmentInput{
			OrderID:         ord.ID,
			SellerCompanyID: ord.SellerCompanyID,
			CarrierCode:     "MANUAL",
		})
		require.ErrorIs(t, err, shipments.ErrNotShippable)
	})

	t.Run("unknown carrier", func(t *testing.T) {
		ord := seedOrder(t, db, orders.StatusPaid)
		_, err := svc.InitiateShipment(ctx, shipments.InitiateShipmentInput{
			OrderID:         ord.ID,
			SellerCompanyID: ord.SellerCompanyID,
			CarrierCode:     "DHL",
		})
		require.ErrorIs(t, err, shipments.ErrUnknownCarrier)
	})
}
