package gateway

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"testing"
)

func TestMapMidtransStatus(t *testing.T) {
	cases := []struct {
		ts, fraud string
		want      string
	}{
		{"capture", "accept", ChargeStatusSuccess},
		{"capture", "", ChargeStatusSuccess},
		{"capture", "challenge", ChargeStatusPending},
		{"capture", "deny", ChargeStatusFailed},
		{"settlement", "", ChargeStatusSuccess},
		{"deny", "", ChargeStatusFailed},
		{"cancel", "", ChargeStatusFailed},
		{"failure", "", ChargeStatusFailed},
		{"expire", "", ChargeStatusAbandoned},
		{"pending", "", ChargeStatusPending},
		{"whatever", "", ChargeStatusPending},
	}
	for _, c := range cases {
		if got := mapMidtransStatus(c.ts, c.fraud); got != c.want {
			t.Errorf("mapMidtransStatus(%q,%q) = %q, want %q", c.ts, c.fraud, got, c.want)
		}
	}
}

func midtransSignedBody(orderID, statusCode, grossAmount, serverKey, status string) []byte {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return []byte(fmt.Sprintf(`{
		"order_id": %q,
		"status_code": %q,
		"gross_amount": %q,
		"signature_key": %q,
		"transaction_status": %q,
		"settlement_time": "2025-09-01 10:15:00",
		"metadata": {
			"student_id": "7b9d6a57-4b43-4a07-9d1e-8a4d1a2e9f10",
			"academic_year": "2025-2026",
			"semester": "First"
		}
	}`, orderID, statusCode, grossAmount, hex.EncodeToString(sum[:]), status))
}

func TestMidtransVerifySignature(t *testing.T) {
	p := NewMidtransProvider("server-key", false)

	body := midtransSignedBody("KMP-1", "200", "500000.00", "server-key", "settlement")
	if !p.VerifySignature(body, "") {
		t.Fatal("valid signature_key rejected")
	}

	wrongKey := midtransSignedBody("KMP-1", "200", "500000.00", "other-key", "settlement")
	if p.VerifySignature(wrongKey, "") {
		t.Fatal("signature from wrong server key accepted")
	}

	if p.VerifySignature([]byte(`{"order_id":"KMP-1"}`), "") {
		t.Fatal("missing signature_key accepted")
	}
	if p.VerifySignature([]byte(`not json`), "") {
		t.Fatal("garbage body accepted")
	}
}

func TestMidtransParseWebhookEvent(t *testing.T) {
	p := NewMidtransProvider("server-key", false)

	ev, err := p.ParseWebhookEvent(midtransSignedBody("KMP-1", "200", "500000.00", "server-key", "settlement"))
	if err != nil {
		t.Fatalf("ParseWebhookEvent: %v", err)
	}
	if ev.Type != EventChargeSuccess {
		t.Fatalf("type = %q, want %q", ev.Type, EventChargeSuccess)
	}
	if ev.Status != ChargeStatusSuccess {
		t.Fatalf("status = %q", ev.Status)
	}
	if ev.Reference != "KMP-1" {
		t.Fatalf("reference = %q", ev.Reference)
	}
	if ev.Amount != 500000 {
		t.Fatalf("amount = %d", ev.Amount)
	}
	if ev.Currency != "IDR" {
		t.Fatalf("currency = %q, want IDR default", ev.Currency)
	}
	if ev.PaidAt == nil {
		t.Fatal("settlement_time not parsed")
	}
	if ev.Metadata.StudentID == nil || ev.Metadata.Semester != "First" {
		t.Fatal("metadata not carried")
	}

	// expire does not drive a transition by event type.
	ev, err = p.ParseWebhookEvent(midtransSignedBody("KMP-2", "407", "500000.00", "server-key", "expire"))
	if err != nil {
		t.Fatalf("ParseWebhookEvent: %v", err)
	}
	if ev.Recognized() {
		t.Fatal("expire must stay unrecognized")
	}
	if ev.Status != ChargeStatusAbandoned {
		t.Fatalf("status = %q, want abandoned", ev.Status)
	}
}

func TestParseGrossAmount(t *testing.T) {
	if got := parseGrossAmount("500000.00"); got != 500000 {
		t.Fatalf("parseGrossAmount = %d", got)
	}
	if got := parseGrossAmount("  12500.50 "); got != 12501 {
		t.Fatalf("parseGrossAmount rounding = %d", got)
	}
	if got := parseGrossAmount("junk"); got != 0 {
		t.Fatalf("parseGrossAmount junk = %d", got)
	}
}
