// Package testutil provides the in-memory database used across module tests.
package testutil

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pazarnet.com/app/internal/modules/inventory"
	"pazarnet.com/app/internal/modules/ledger"
	"pazarnet.com/app/internal/modules/orders"
	"pazarnet.com/app/internal/modules/payments"
	"pazarnet.com/app/internal/modules/settlement"
	"pazarnet.com/app/internal/modules/shipments"
)

// NewDB returns an isolated in-memory sqlite database with the full schema
// migrated. Single connection: :memory: ayrı bağlantılarda ayrı veritabanı olur.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	err = db.AutoMigrate(
		&orders.Order{},
		&orders.OrderEvent{},
		&payments.Payment{},
		&payments.PaymentEventInbox{},
		&shipments.Shipment{},
		&shipments.ShipmentItem{},
		&shipments.ShipmentEvent{},
		&inventory.StockMovement{},
		&ledger.SellerBalanceLedger{},
		&ledger.PlatformCommissionLedger{},
		&settlement.PayoutEventInbox{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return db
}
