package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"pazarnet.com/app/internal/modules/inventory"
	"pazarnet.com/app/internal/modules/ledger"
	"pazarnet.com/app/internal/modules/orders"
	"pazarnet.com/app/internal/modules/payments"
	"pazarnet.com/app/internal/modules/settlement"
	"pazarnet.com/app/internal/modules/shipments"
)

func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN environment variable is required")
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

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
		log.Fatalf("Failed to migrate tables: %v", err)
	}

	log.Println("✓ tables migrated successfully")
}
