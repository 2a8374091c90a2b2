package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"pazarnet.com/app/internal/modules/ledger"
	"pazarnet.com/app/internal/testutil"
)

func TestEnsureSellerCreditIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	seller := uuid.NewString()
	orderID := uuid.NewString()

	for i := 0; i < 3; i++ {
		require.NoError(t, ledger.EnsureSellerCredit(ctx, db, seller, orderID, 4455, "TRY"))
	}

	var count int64
	require.NoError(t, db.Model(&ledger.SellerBalanceLedger{}).
		Where("order_id = ?", orderID).Count(&count).Error)
	require.EqualValues(t, 1, count)

	balance, err := ledger.SellerBalance(ctx, db, seller)
	require.NoError(t, err)
	require.EqualValues(t, 4455, balance)
}

func TestEnsurePlatformCommissionIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	orderID := uuid.NewString()

	require.NoError(t, ledger.EnsurePlatformCommission(ctx, db, orderID, 45, "TRY"))
	require.NoError(t, ledger.EnsurePlatformCommission(ctx, db, orderID, 45, "TRY"))

	var count int64
	require.NoError(t, db.Model(&ledger.PlatformCommissionLedger{}).
		Where("order_id = ?", orderID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestSellerBalanceNetsDebits(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	seller := uuid.NewString()

	require.NoError(t, ledger.EnsureSellerCredit(ctx, db, seller, uuid.NewString(), 10000, "TRY"))

	debit := ledger.SellerBalanceLedger{
		ID:              uuid.NewString(),
		SellerCompanyID: seller,
		OrderID:         uuid.NewString(),
		AmountCents:     3000,
		Currency:        "TRY",
		Type:            ledger.TypeDebit,
		IdempotencyKey:  uuid.NewString(),
		CreatedAt:       time.Now(),
	}
	require.NoError(t, db.Create(&debit).Error)

	balance, err := ledger.SellerBalance(ctx, db, seller)
	require.NoError(t, err)
	require.EqualValues(t, 7000, balance)
}
