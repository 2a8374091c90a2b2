package settlement

import "time"

// PayoutEventInbox mirrors the payment event inbox for fund-release
// callbacks and outcomes: one row per provider event id, written durably
// whether the release succeeded or failed.
type PayoutEventInbox struct {
	ID              string `gorm:"type:char(36);primaryKey"`
	Provider        string `gorm:"type:varchar(32);not null;uniqueIndex:ux_payout_event_inbox_provider_event,priority:1"`
	ProviderEventID string `gorm:"type:varchar(128);not null;uniqueIndex:ux_payout_event_inbox_provider_event,priority:2"`

	Status  string `gorm:"type:varchar(16);not null"`
	RawJSON []byte `gorm:"type:json"`

	ReceivedAt  time.Time  `gorm:"type:datetime(3);not null"`
	ProcessedAt *time.Time `gorm:"type:datetime(3)"`
}

func (PayoutEventInbox) TableName() string { return "payout_event_inbox" }

// ReleaseAttemptKeyFor / CompletionKeyFor derive the per-order business keys
// stamped on the release and confirmation writes.
func ReleaseAttemptKeyFor(orderID string) string { return orderID + ":RELEASE" }
func CompletionKeyFor(orderID string) string     { return orderID + ":CONFIRM" }
