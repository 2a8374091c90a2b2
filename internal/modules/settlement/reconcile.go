package settlement

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"pazarnet.com/app/internal/modules/orders"
	"pazarnet.com/app/internal/modules/payments"
)

const (
	reconcileMinAge    = 30 * time.Minute
	reconcileBatchSize = 50
)

// Reconciler sweeps escrow payouts that got stuck between order completion
// and fund release (crash after the confirmation write, provider outage) and
// re-drives the release. Safe to run repeatedly; release is idempotent.
type Reconciler struct {
	db      *gorm.DB
	release *ReleaseService
	logger  *slog.Logger
}

func NewReconciler(db *gorm.DB, release *ReleaseService) *Reconciler {
	return &Reconciler{db: db, release: release, logger: slog.Default()}
}

func (r *Reconciler) SetLogger(logger *slog.Logger) { r.logger = logger }

type ReconcileReport struct {
	Scanned  int
	Released int
	Failed   int
}

func (r *Reconciler) Run(ctx context.Context) (ReconcileReport, error) {
	cutoff := time.Now().Add(-reconcileMinAge)

	var stuck []payments.Payment
	err := r.db.WithContext(ctx).
		Joins("JOIN network_orders ON network_orders.id = network_payments.order_id").
		Where("network_payments.mode = ?", payments.ModeEscrow).
		Where("network_payments.status = ?", payments.StatusPaid).
		Where("network_payments.payout_status = ?", payments.PayoutInitiated).
		Where("network_payments.released_at IS NULL").
		Where("network_orders.status = ?", orders.StatusCompleted).
		Where("network_orders.completed_at <= ?", cutoff).
		Limit(reconcileBatchSize).
		Find(&stuck).Error
	if err != nil {
		return ReconcileReport{}, err
	}

	report := ReconcileReport{Scanned: len(stuck)}
	if len(stuck) == 0 {
		return report, nil
	}

	r.logger.InfoContext(ctx, "reconciliation found stuck payouts", "count", len(stuck))

	for _, p := range stuck {
		var ord orders.Order
		if err := r.db.WithContext(ctx).First(&ord, "id = ?", p.OrderID).Error; err != nil {
			r.logger.ErrorContext(ctx, "reconciliation: order load failed", "order_id", p.OrderID, "err", err)
			report.Failed++
			continue
		}

		released, err := r.release.Release(ctx, ord, p)
		if err != nil {
			r.logger.ErrorContext(ctx, "reconciliation: release errored", "order_id", p.OrderID, "err", err)
			report.Failed++
			continue
		}
		if released {
			report.Released++
		} else {
			report.Failed++
		}
	}

	return report, nil
}
