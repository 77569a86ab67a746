package gateway

import (
	"testing"
)

func TestNormalizePaystackStatus(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"success", ChargeStatusSuccess},
		{" Success ", ChargeStatusSuccess},
		{"failed", ChargeStatusFailed},
		{"reversed", ChargeStatusFailed},
		{"abandoned", ChargeStatusAbandoned},
		{"ongoing", ChargeStatusPending},
		{"", ChargeStatusPending},
	}
	for _, c := range cases {
		if got := normalizePaystackStatus(c.in); got != c.want {
			t.Errorf("normalizePaystackStatus(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestPaystackParseWebhookEvent(t *testing.T) {
	p := NewPaystackProvider("sk_test", "https://api.paystack.co", 0)

	body := []byte(`{
		"event": "charge.success",
		"data": {
			"reference": "PSK-2025-0001",
			"amount": 500000,
			"currency": "NGN",
			"paid_at": "2025-09-01T10:15:00Z",
			"metadata": {
				"student_id": "7b9d6a57-4b43-4a07-9d1e-8a4d1a2e9f10",
				"academic_year": "2025-2026",
				"semester": "Fall"
			}
		}
	}`)

	ev, err := p.ParseWebhookEvent(body)
	if err != nil {
		t.Fatalf("ParseWebhookEvent: %v", err)
	}
	if !ev.Recognized() {
		t.Fatal("charge.success not recognized")
	}
	if ev.Status != ChargeStatusSuccess {
		t.Fatalf("status = %q, want success", ev.Status)
	}
	if ev.Reference != "PSK-2025-0001" {
		t.Fatalf("reference = %q", ev.Reference)
	}
	if ev.Amount != 500000 || ev.Currency != "NGN" {
		t.Fatalf("amount/currency = %d/%s", ev.Amount, ev.Currency)
	}
	if ev.PaidAt == nil {
		t.Fatal("paid_at not parsed")
	}
	if ev.Metadata.StudentID == nil {
		t.Fatal("student_id metadata not parsed")
	}
	if ev.Metadata.AcademicYear != "2025-2026" || ev.Metadata.Semester != "Fall" {
		t.Fatalf("term metadata = %q/%q", ev.Metadata.AcademicYear, ev.Metadata.Semester)
	}
}

func TestPaystackParseWebhookEventUnknownType(t *testing.T) {
	p := NewPaystackProvider("sk_test", "https://api.paystack.co", 0)

	ev, err := p.ParseWebhookEvent([]byte(`{"event":"transfer.success","data":{"reference":"TRF-1"}}`))
	if err != nil {
		t.Fatalf("ParseWebhookEvent: %v", err)
	}
	if ev.Recognized() {
		t.Fatal("transfer.success must not drive a transition")
	}
}

func TestPaystackParseWebhookEventBadStudentID(t *testing.T) {
	p := NewPaystackProvider("sk_test", "https://api.paystack.co", 0)

	ev, err := p.ParseWebhookEvent([]byte(`{
		"event": "charge.success",
		"data": {"reference": "PSK-X", "metadata": {"student_id": "not-a-uuid"}}
	}`))
	if err != nil {
		t.Fatalf("ParseWebhookEvent: %v", err)
	}
	if ev.Metadata.StudentID != nil {
		t.Fatal("malformed student_id must be dropped, not guessed")
	}
}
