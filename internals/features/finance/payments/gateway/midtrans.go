package gateway

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
)

/* =========================================================
   Midtrans (legacy provider, still live during migration)
========================================================= */

type MidtransProvider struct {
	serverKey string
	snap      snap.Client
	core      coreapi.Client
}

func NewMidtransProvider(serverKey string, useProduction bool) *MidtransProvider {
	env := midtrans.Sandbox
	if useProduction {
		env = midtrans.Production
	}
	p := &MidtransProvider{serverKey: serverKey}
	p.snap.New(serverKey, env)
	p.core.New(serverKey, env)
	return p
}

func (p *MidtransProvider) Name() string { return "midtrans" }

func (p *MidtransProvider) Initiate(ctx context.Context, in InitiateInput) (InitiateResult, error) {
	// Midtrans does not issue the order id; we mint it and it becomes the
	// provider reference echoed back in every notification.
	orderID := genOrderID("KMP")

	meta := map[string]string{
		"student_id":    in.StudentID.String(),
		"academic_year": in.AcademicYear,
		"semester":      in.Semester,
	}

	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderID,
			GrossAmt: in.Amount,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			Email: in.PayerEmail,
		},
		Metadata: meta,
	}
	if in.Description != "" {
		req.Items = &[]midtrans.ItemDetails{{
			ID:    orderID,
			Price: in.Amount,
			Qty:   1,
			Name:  truncate(in.Description, 50),
		}}
	}

	resp, err := p.snap.CreateTransaction(req)
	if err != nil {
		if err.StatusCode >= 400 && err.StatusCode < 500 {
			return InitiateResult{}, fmt.Errorf("%w: %s", ErrGatewayRejected, err.Message)
		}
		return InitiateResult{}, fmt.Errorf("%w: %s", ErrGatewayUnavailable, err.Message)
	}

	return InitiateResult{
		ProviderReference: orderID,
		AuthorizationURL:  resp.RedirectURL,
	}, nil
}

func (p *MidtransProvider) Verify(ctx context.Context, reference string) (VerifyResult, error) {
	resp, err := p.core.CheckTransaction(reference)
	if err != nil {
		if err.StatusCode == 404 {
			return VerifyResult{}, ErrReferenceNotFound
		}
		return VerifyResult{}, fmt.Errorf("%w: %s", ErrGatewayUnavailable, err.Message)
	}

	return VerifyResult{
		Status:   mapMidtransStatus(resp.TransactionStatus, resp.FraudStatus),
		PaidAt:   parseMidtransTime(firstNonEmpty(resp.SettlementTime, resp.TransactionTime)),
		Amount:   parseGrossAmount(resp.GrossAmount),
		Currency: firstNonEmpty(resp.Currency, "IDR"),
	}, nil
}

/* ---------- webhook ---------- */

type midtransNotif struct {
	TransactionTime   string            `json:"transaction_time"`
	TransactionStatus string            `json:"transaction_status"`
	StatusCode        string            `json:"status_code"`
	SignatureKey      string            `json:"signature_key"`
	OrderID           string            `json:"order_id"`
	GrossAmount       string            `json:"gross_amount"`
	FraudStatus       string            `json:"fraud_status"`
	SettlementTime    string            `json:"settlement_time"`
	Currency          string            `json:"currency"`
	Metadata          map[string]string `json:"metadata"`
}

// VerifySignature: Midtrans signs fields, not the raw body —
// SHA512(order_id + status_code + gross_amount + server_key) is carried
// inside the payload as signature_key. The header argument is unused here.
func (p *MidtransProvider) VerifySignature(rawBody []byte, _ string) bool {
	var n midtransNotif
	if err := json.Unmarshal(rawBody, &n); err != nil {
		return false
	}
	want := strings.ToLower(strings.TrimSpace(n.SignatureKey))
	if want == "" {
		return false
	}
	sum := sha512.Sum512([]byte(n.OrderID + n.StatusCode + n.GrossAmount + p.serverKey))
	got := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

func (p *MidtransProvider) ParseWebhookEvent(rawBody []byte) (WebhookEvent, error) {
	var n midtransNotif
	if err := json.Unmarshal(rawBody, &n); err != nil {
		return WebhookEvent{}, fmt.Errorf("invalid webhook payload: %w", err)
	}

	status := mapMidtransStatus(n.TransactionStatus, n.FraudStatus)
	ev := WebhookEvent{
		Type:      "midtrans." + strings.ToLower(n.TransactionStatus),
		Reference: n.OrderID,
		Status:    status,
		Amount:    parseGrossAmount(n.GrossAmount),
		Currency:  firstNonEmpty(n.Currency, "IDR"),
		PaidAt:    parseMidtransTime(firstNonEmpty(n.SettlementTime, n.TransactionTime)),
		Metadata: ChargeMetadata{
			AcademicYear: n.Metadata["academic_year"],
			Semester:     n.Metadata["semester"],
		},
	}
	if id, err := uuid.Parse(strings.TrimSpace(n.Metadata["student_id"])); err == nil {
		ev.Metadata.StudentID = &id
	}

	// Normalize the two transition-driving outcomes onto the shared types.
	switch status {
	case ChargeStatusSuccess:
		ev.Type = EventChargeSuccess
	case ChargeStatusFailed:
		ev.Type = EventChargeFailed
	}
	return ev, nil
}

/* ---------- mapping ---------- */

// mapMidtransStatus follows the settlement matrix: capture is only money
// in hand when fraud_status is accept.
func mapMidtransStatus(transactionStatus, fraudStatus string) string {
	ts := strings.ToLower(strings.TrimSpace(transactionStatus))
	fraud := strings.ToLower(strings.TrimSpace(fraudStatus))

	switch ts {
	case "capture":
		if fraud == "accept" || fraud == "" {
			return ChargeStatusSuccess
		}
		if fraud == "challenge" {
			return ChargeStatusPending
		}
		return ChargeStatusFailed
	case "settlement":
		return ChargeStatusSuccess
	case "deny", "cancel", "failure":
		return ChargeStatusFailed
	case "expire":
		return ChargeStatusAbandoned
	case "pending":
		return ChargeStatusPending
	}
	return ChargeStatusPending
}

func parseMidtransTime(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return &t
	}
	return nil
}

func parseGrossAmount(s string) int64 {
	if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
		return int64(f + 0.5)
	}
	return 0
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n]
}

func genOrderID(prefix string) string {
	now := time.Now().Format("20060102-150405")
	u := uuid.New().String()
	if len(u) > 8 {
		u = u[:8]
	}
	return prefix + "-" + now + "-" + strings.ToUpper(u)
}
