// Package ledger holds the append-only financial facts of the settlement
// pipeline. Entries are posted through idempotent inserts keyed by a
// deterministic business key; replays never alter an already-posted amount.
package ledger

import "time"

const (
	TypeCredit = "CREDIT"
	TypeDebit  = "DEBIT"
)

// SellerBalanceLedger: money owed to a seller for a completed network order.
type SellerBalanceLedger struct {
	ID              string `gorm:"type:char(36);primaryKey"`
	SellerCompanyID string `gorm:"type:char(36);not null;index:ix_seller_balance_ledger_seller"`
	OrderID         string `gorm:"type:char(36);not null;index:ix_seller_balance_ledger_order"`

	AmountCents int64  `gorm:"not null"`
	Currency    string `gorm:"type:char(3);not null"`
	Type        string `gorm:"type:varchar(8);not null"`

	IdempotencyKey string `gorm:"type:varchar(64);not null;uniqueIndex:ux_seller_balance_ledger_idem_key"`

	CreatedAt time.Time `gorm:"type:datetime(3);not null"`
}

func (SellerBalanceLedger) TableName() string { return "seller_balance_ledger" }

// PlatformCommissionLedger: platform's commission take per completed order.
type PlatformCommissionLedger struct {
	ID      string `gorm:"type:char(36);primaryKey"`
	OrderID string `gorm:"type:char(36);not null;index:ix_platform_commission_ledger_order"`

	AmountCents int64  `gorm:"not null"`
	Currency    string `gorm:"type:char(3);not null"`

	IdempotencyKey string `gorm:"type:varchar(64);not null;uniqueIndex:ux_platform_commission_ledger_idem_key"`

	CreatedAt time.Time `gorm:"type:datetime(3);not null"`
}

func (PlatformCommissionLedger) TableName() string { return "platform_commission_ledger" }

// CreditKeyFor / CommissionKeyFor derive the business keys that make posting
// idempotent per order.
func CreditKeyFor(orderID string) string     { return orderID + ":CREDIT" }
func CommissionKeyFor(orderID string) string { return orderID + ":COMMISSION" }
