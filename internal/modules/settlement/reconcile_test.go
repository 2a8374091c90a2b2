package settlement_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pazarnet.com/app/internal/modules/orders"
	"pazarnet.com/app/internal/modules/payments"
	"pazarnet.com/app/internal/modules/settlement"
)

// completeWithoutRelease simulates the crash window: the order reached
// COMPLETED but the payout never left INITIATED.
func completeWithoutRelease(t *testing.T, f *fixture, completedAgo time.Duration) {
	t.Helper()
	completedAt := time.Now().Add(-completedAgo)
	require.NoError(t, f.db.Model(&orders.Order{}).
		Where("id = ?", f.order.ID).
		Updates(map[string]any{
			"status":       orders.StatusCompleted,
			"confirmed_at": &completedAt,
			"completed_at": &completedAt,
		}).Error)
}

func TestReconcilerReleasesStuckPayout(t *testing.T) {
	f := newFixture(t, payments.ModeEscrow)
	completeWithoutRelease(t, f, time.Hour)

	rec := settlement.NewReconciler(f.db, f.release)
	report, err := rec.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.Scanned)
	require.Equal(t, 1, report.Released)
	require.Equal(t, 0, report.Failed)

	p := f.reloadPayment(t)
	require.Equal(t, payments.PayoutReleased, p.PayoutStatus)
	require.NotNil(t, p.ReleasedAt)
	require.Len(t, f.sellerCredits(t), 1)
}

func TestReconcilerSkipsFreshCompletions(t *testing.T) {
	f := newFixture(t, payments.ModeEscrow)
	// Normal akışa hala şans var; yarım saatten taze işler taranmaz.
	completeWithoutRelease(t, f, 5*time.Minute)

	rec := settlement.NewReconciler(f.db, f.release)
	report, err := rec.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, report.Scanned)

	require.Equal(t, payments.PayoutInitiated, f.reloadPayment(t).PayoutStatus)
}

func TestReconcilerSkipsUncompletedOrders(t *testing.T) {
	f := newFixture(t, payments.ModeEscrow)

	rec := settlement.NewReconciler(f.db, f.release)
	report, err := rec.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, report.Scanned)
}

func TestReconcilerCountsProviderFailures(t *testing.T) {
	f := newFixture(t, payments.ModeEscrow)
	completeWithoutRelease(t, f, time.Hour)
	f.escrow.SetFailRelease(true)

	rec := settlement.NewReconciler(f.db, f.release)
	report, err := rec.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.Scanned)
	require.Equal(t, 0, report.Released)
	require.Equal(t, 1, report.Failed)

	require.Equal(t, payments.PayoutFailed, f.reloadPayment(t).PayoutStatus)
	require.Len(t, f.mail.Sent(), 1)
}
