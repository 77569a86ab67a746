package gateway

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

/* =========================================================
   Provider capability

   Both live gateway integrations (paystack = current,
   midtrans = legacy) implement this; the reconciliation
   engine is written once against it.
========================================================= */

var (
	// ErrGatewayUnavailable: transport failure / timeout / provider 5xx.
	ErrGatewayUnavailable = errors.New("gateway unavailable")
	// ErrGatewayRejected: provider declined the request (bad amount, bad email).
	ErrGatewayRejected = errors.New("gateway rejected request")
	// ErrReferenceNotFound: the provider has no record of the reference.
	ErrReferenceNotFound = errors.New("reference not found at provider")
)

// Provider-side charge statuses, normalized.
const (
	ChargeStatusSuccess   = "success"
	ChargeStatusFailed    = "failed"
	ChargeStatusAbandoned = "abandoned"
	ChargeStatusPending   = "pending"
)

// Normalized webhook event types.
const (
	EventChargeSuccess = "charge.success"
	EventChargeFailed  = "charge.failed"
)

type InitiateInput struct {
	Amount       int64  // smallest currency unit
	Currency     string
	PayerEmail   string
	Description  string
	StudentID    uuid.UUID
	AcademicYear string
	Semester     string
}

type InitiateResult struct {
	ProviderReference string
	AuthorizationURL  string
}

type VerifyResult struct {
	Status   string // ChargeStatus*
	PaidAt   *time.Time
	Amount   int64
	Currency string
	Metadata ChargeMetadata
}

// ChargeMetadata is what we attach at initiation and read back from
// provider events; it is what makes webhook-first reconstruction possible.
type ChargeMetadata struct {
	StudentID    *uuid.UUID
	AcademicYear string
	Semester     string
	Description  string
}

type WebhookEvent struct {
	Type      string // raw provider event type
	Reference string
	Status    string // normalized ChargeStatus*
	Amount    int64
	Currency  string
	PaidAt    *time.Time
	Metadata  ChargeMetadata
}

// Recognized reports whether the event type drives a state transition.
func (e WebhookEvent) Recognized() bool {
	return e.Type == EventChargeSuccess || e.Type == EventChargeFailed
}

type Provider interface {
	Name() string
	Initiate(ctx context.Context, in InitiateInput) (InitiateResult, error)
	Verify(ctx context.Context, reference string) (VerifyResult, error)

	// VerifySignature must be called over the exact raw bytes received,
	// before any field of the payload is trusted.
	VerifySignature(rawBody []byte, signatureHeader string) bool
	ParseWebhookEvent(rawBody []byte) (WebhookEvent, error)
}

/* =========================================================
   Registry
========================================================= */

type Registry struct {
	providers   map[string]Provider
	defaultName string
}

func NewRegistry(defaultName string, providers ...Provider) *Registry {
	r := &Registry{
		providers:   make(map[string]Provider, len(providers)),
		defaultName: strings.ToLower(strings.TrimSpace(defaultName)),
	}
	for _, p := range providers {
		r.providers[strings.ToLower(p.Name())] = p
	}
	return r
}

func (r *Registry) Get(name string) (Provider, bool) {
	p, ok := r.providers[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

func (r *Registry) Default() (Provider, bool) {
	return r.Get(r.defaultName)
}
