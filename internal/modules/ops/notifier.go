// Package ops is the operator follow-up channel: durable failures that need
// a human (failed payouts, integrity mismatches) land here as alert mails.
package ops

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"pazarnet.com/app/internal/mailer"
)

type Notifier struct {
	mail   mailer.Service
	from   string
	to     []string
	logger *slog.Logger
}

func NewNotifier(mail mailer.Service, from string, to []string) *Notifier {
	return &Notifier{mail: mail, from: from, to: to, logger: slog.Default()}
}

func NewNotifierFromEnv(mail mailer.Service) *Notifier {
	from := os.Getenv("OPS_ALERT_FROM")
	if from == "" {
		from = "alerts@pazarnet.com"
	}
	var to []string
	for _, addr := range strings.Split(os.Getenv("OPS_ALERT_TO"), ",") {
		if a := strings.TrimSpace(addr); a != "" {
			to = append(to, a)
		}
	}
	return NewNotifier(mail, from, to)
}

func (n *Notifier) SetLogger(logger *slog.Logger) { n.logger = logger }

// PayoutFailed alerts operators that an escrow release failed and needs a
// manual retry. Alert delivery failures are logged, never propagated.
func (n *Notifier) PayoutFailed(ctx context.Context, orderID, paymentID, provider, reason string) {
	if n.mail == nil || len(n.to) == 0 {
		return
	}

	body := fmt.Sprintf(
		"Payout başarısız.\n\nOrder: %s\nPayment: %s\nProvider: %s\nSebep: %s\n\nAdmin panelden 'Retry Payout' ile tekrar deneyin.\n",
		orderID, paymentID, provider, reason)

	err := n.mail.Send(ctx, mailer.Email{
		FromName: "Pazarnet Ops",
		From:     n.from,
		To:       n.to,
		Subject:  "Payout FAILED - order " + orderID,
		TextBody: body,
	})
	if err != nil {
		n.logger.ErrorContext(ctx, "failed to send payout alert", "order_id", orderID, "err", err)
	}
}
