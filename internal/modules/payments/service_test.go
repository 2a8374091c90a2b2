package payments_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"pazarnet.com/app/internal/modules/orders"
	"pazarnet.com/app/internal/modules/payments"
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
		ItemsJSON:       datatypes.JSON(`[{"productId":"p1","qty":2}]`),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	require.NoError(t, db.Create(&ord).Error)
	return ord
}

func TestInitiatePayment(t *testing.T) {
	db := testutil.NewDB(t)
	direct := payments.NewMockProvider("ODEL", "s1", false)
	svc := payments.NewService(db, direct, nil)

	ord := seedOrder(t, db, orders.StatusPendingPayment)

	res, err := svc.InitiatePayment(context.Background(), payments.InitiatePaymentInput{
		OrderID:        ord.ID,
		BuyerCompanyID: ord.BuyerCompanyID,
		Mode:           payments.ModeDirect,
	})
	require.NoError(t, err)
	require.False(t, res.Idempotent)
	require.Equal(t, payments.ModeDirect, res.Mode)
	require.Equal(t, "ODEL", res.Provider)
	require.NotEmpty(t, res.CheckoutURL)

	var p payments.Payment
	require.NoError(t, db.First(&p, "id = ?", res.PaymentID).Error)
	require.Equal(t, payments.StatusInitiated, p.Status)
	require.Equal(t, int64(5000), p.AmountCents)
	require.Equal(t, payments.InitKeyFor(ord.ID), p.InitKey)
	require.Empty(t, p.PayoutStatus)
}

func TestInitiatePaymentIdempotentReplay(t *testing.T) {
	db := testutil.NewDB(t)
	svc := payments.NewService(db, payments.NewMockProvider("ODEL", "s1", false), nil)

	ord := seedOrder(t, db, orders.StatusPendingPayment)
	in := payments.InitiatePaymentInput{OrderID: ord.ID, BuyerCompanyID: ord.BuyerCompanyID}

	first, err := svc.InitiatePayment(context.Background(), in)
	require.NoError(t, err)

	second, err := svc.InitiatePayment(context.Background(), in)
	require.NoError(t, err)
	require.True(t, second.Idempotent)
	require.Equal(t, first.PaymentID, second.PaymentID)
	require.Equal(t, first.CheckoutURL, second.CheckoutURL)

	var count int64
	require.NoError(t, db.Model(&payments.Payment{}).Where("order_id = ?", ord.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestInitiatePaymentEscrow(t *testing.T) {
	db := testutil.NewDB(t)
	escrow := payments.NewMockProvider("IYZICO", "s2", true)
	svc := payments.NewService(db, payments.NewMockProvider("ODEL", "s1", false), escrow)

	ord := seedOrder(t, db, orders.StatusPendingPayment)

	res, err := svc.InitiatePayment(context.Background(), payments.InitiatePaymentInput{
		OrderID:        ord.ID,
		BuyerCompanyID: ord.BuyerCompanyID,
		Mode:           payments.ModeEscrow,
	})
	require.NoError(t, err)
	require.Equal(t, payments.ModeEscrow, res.Mode)
	require.Equal(t, "IYZICO", res.Provider)

	var p payments.Payment
	require.NoError(t, db.First(&p, "id = ?", res.PaymentID).Error)
	require.Equal(t, payments.PayoutInitiated, p.PayoutStatus)
}

func TestInitiatePaymentEscrowFallsBackToDirect(t *testing.T) {
	db := testutil.NewDB(t)
	svc := payments.NewService(db, payments.NewMockProvider("ODEL", "s1", false), nil)

	ord := seedOrder(t, db, orders.StatusPendingPayment)

	res, err := svc.InitiatePayment(context.Background(), payments.InitiatePaymentInput{
		OrderID:        ord.ID,
		BuyerCompanyID: ord.BuyerCompanyID,
		Mode:           payments.ModeEscrow,
	})
	require.NoError(t, err)
	require.Equal(t, payments.ModeDirect, res.Mode)
}

func TestInitiatePaymentGuards(t *testing.T) {
	db := testutil.NewDB(t)
	svc := payments.NewService(db, payments.NewMockProvider("ODEL", "s1", false), nil)
	ctx := context.Background()

	t.Run("unknown order", func(t *testing.T) {
		_, err := svc.InitiatePayment(ctx, payments.InitiatePaymentInput{OrderID: uuid.NewString()})
		require.ErrorIs(t, err, orders.ErrNotFound)
	})

	t.Run("wrong buyer", func(t *testing.T) {
		ord := seedOrder(t, db, orders.StatusPendingPayment)
		_, err := svc.InitiatePayment(ctx, payments.InitiatePaymentInput{
			OrderID:        ord.ID,
			BuyerCompanyID: uuid.NewString(),
		})
		require.ErrorIs(t, err, payments.ErrForbidden)
	})

	t.Run("order not pending payment", func(t *testing.T) {
		ord := seedOrder(t, db, orders.StatusPaid)
		_, err := svc.InitiatePayment(ctx, payments.InitiatePaymentInput{
			OrderID:        ord.ID,
			BuyerCompanyID: ord.BuyerCompanyID,
		})
		require.ErrorIs(t, err, payments.ErrOrderNotPayable)
	})
}
