package payments

import "time"

const (
	ModeDirect = "DIRECT"
	ModeEscrow = "ESCROW"

	StatusInitiated = "INITIATED"
	StatusPaid      = "PAID"

	// payout sub-state, sadece escrow modunda anlamlı
	PayoutInitiated = "INITIATED"
	PayoutReleased  = "RELEASED"
	PayoutFailed    = "FAILED"
)

// Payment is one attempt to collect funds for exactly one network order.
// InitKey carries the at-most-one-per-order guarantee; ProviderPaymentKey is
// the correlation key webhooks resolve against.
type Payment struct {
	ID      string `gorm:"type:char(36);primaryKey"`
	OrderID string `gorm:"type:char(36);not null;index:ix_network_payments_order"`

	Provider     string `gorm:"type:varchar(32);not null"`
	Mode         string `gorm:"type:varchar(16);not null"`
	Status       string `gorm:"type:varchar(16);not null"`
	PayoutStatus string `gorm:"type:varchar(16);not null;default:''"`

	AmountCents int64  `gorm:"not null"`
	Currency    string `gorm:"type:char(3);not null"`

	InitKey            string  `gorm:"type:varchar(64);not null;uniqueIndex:ux_network_payments_init_key"`
	ProviderPaymentKey *string `gorm:"type:varchar(192);uniqueIndex:ux_network_payments_provider_key"`
	CheckoutURL        *string `gorm:"type:varchar(255)"`

	ReleasedAt        *time.Time `gorm:"type:datetime(3)"`
	ReleaseAttemptKey *string    `gorm:"type:varchar(64)"`

	CreatedAt time.Time `gorm:"type:datetime(3);not null"`
	UpdatedAt time.Time `gorm:"type:datetime(3);not null"`
}

func (Payment) TableName() string { return "network_payments" }

const (
	InboxReceived  = "RECEIVED"
	InboxProcessed = "PROCESSED"
	InboxIgnored   = "IGNORED"
	InboxFailed    = "FAILED"
)

// PaymentEventInbox is the durable dedupe record for inbound provider
// webhooks. One row per provider event id; terminal status is written once.
type PaymentEventInbox struct {
	ID                string  `gorm:"type:char(36);primaryKey"`
	Provider          string  `gorm:"type:varchar(32);not null;uniqueIndex:ux_payment_event_inbox_provider_event,priority:1"`
	ProviderEventID   string  `gorm:"type:varchar(128);not null;uniqueIndex:ux_payment_event_inbox_provider_event,priority:2"`
	ProviderPaymentID *string `gorm:"type:varchar(128)"`
	PaymentID         *string `gorm:"type:char(36)"`

	Status       string  `gorm:"type:varchar(16);not null"`
	ErrorMessage *string `gorm:"type:varchar(255)"`
	RawJSON      []byte  `gorm:"type:json"`

	ReceivedAt  time.Time  `gorm:"type:datetime(3);not null"`
	ProcessedAt *time.Time `gorm:"type:datetime(3)"`
}

func (PaymentEventInbox) TableName() string { return "payment_event_inbox" }

// InitKeyFor derives the dedupe key guarding payment creation for an order.
func InitKeyFor(orderID string) string { return orderID + ":INITIATED" }
