package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"pazarnet.com/app/internal/modules/payments"
)

type webhookBody struct {
	ProviderEventID   string  `json:"providerEventId"`
	ProviderPaymentID string  `json:"providerPaymentId"`
	PaidStatus        string  `json:"paidStatus"`
	PaidAmount        float64 `json:"paidAmount"`
	Currency          string  `json:"currency"`
}

func main() {
	url := flag.String("url", "http://localhost:8080/webhooks/ODEL", "Webhook URL (provider adı path'te)")
	secret := flag.String("secret", os.Getenv("DIRECT_PROVIDER_SECRET"), "Webhook secret")
	eventID := flag.String("event-id", "evt_"+uuid.NewString()[:8], "Provider event ID")
	paymentID := flag.String("payment-id", "", "Provider payment ID (pay_...)")
	status := flag.String("status", "success", "Paid status (success, failed)")
	amount := flag.Float64("amount", 50.00, "Paid amount (major units)")
	currency := flag.String("currency", "TRY", "Currency")
	dryRun := flag.Bool("dry-run", false, "Only print signature header, don't send")

	flag.Parse()

	if *secret == "" {
		fmt.Fprintf(os.Stderr, "Error: secret not provided and DIRECT_PROVIDER_SECRET not set\n")
		os.Exit(1)
	}
	if *paymentID == "" {
		fmt.Fprintf(os.Stderr, "Error: -payment-id is required (the pay_... ref returned at checkout)\n")
		os.Exit(1)
	}

	body, err := json.Marshal(webhookBody{
		ProviderEventID:   *eventID,
		ProviderPaymentID: *paymentID,
		PaidStatus:        *status,
		PaidAmount:        *amount,
		Currency:          *currency,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling payload: %v\n", err)
		os.Exit(1)
	}

	t := time.Now().Unix()
	sigHeader := fmt.Sprintf("t=%d,v1=%s", t, payments.ComputeSignature([]byte(*secret), t, body))

	fmt.Printf("%s: %s\n", payments.SignatureHeader, sigHeader)
	fmt.Printf("Body: %s\n", string(body))

	if *dryRun {
		fmt.Println("\n[DRY RUN] Not sending request")
		return
	}

	fmt.Printf("\nSending to %s...\n", *url)
	req, err := http.NewRequest("POST", *url, bytes.NewReader(body))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating request: %v\n", err)
		os.Exit(1)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(payments.SignatureHeader, sigHeader)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error sending request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	fmt.Printf("Status: %d\n", resp.StatusCode)
	fmt.Printf("Response: %s\n", string(respBody))

	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}
}
