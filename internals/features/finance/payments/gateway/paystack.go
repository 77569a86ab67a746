package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

/* =========================================================
   Paystack (current provider)
========================================================= */

type PaystackProvider struct {
	secretKey string
	baseURL   string
	timeout   time.Duration
}

func NewPaystackProvider(secretKey, baseURL string, timeout time.Duration) *PaystackProvider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &PaystackProvider{
		secretKey: secretKey,
		baseURL:   strings.TrimRight(baseURL, "/"),
		timeout:   timeout,
	}
}

func (p *PaystackProvider) Name() string { return "paystack" }

/* ---------- wire shapes ---------- */

type paystackMeta struct {
	StudentID    string `json:"student_id,omitempty"`
	AcademicYear string `json:"academic_year,omitempty"`
	Semester     string `json:"semester,omitempty"`
	Description  string `json:"description,omitempty"`
}

type paystackChargeData struct {
	Reference        string       `json:"reference"`
	AuthorizationURL string       `json:"authorization_url"`
	Status           string       `json:"status"`
	Amount           int64        `json:"amount"`
	Currency         string       `json:"currency"`
	PaidAt           string       `json:"paid_at"`
	GatewayResponse  string       `json:"gateway_response"`
	Metadata         paystackMeta `json:"metadata"`
}

type paystackEnvelope struct {
	Status  bool               `json:"status"`
	Message string             `json:"message"`
	Data    paystackChargeData `json:"data"`
}

/* ---------- operations ---------- */

func (p *PaystackProvider) Initiate(ctx context.Context, in InitiateInput) (InitiateResult, error) {
	body, err := json.Marshal(fiber.Map{
		"email":    in.PayerEmail,
		"amount":   in.Amount,
		"currency": in.Currency,
		"metadata": paystackMeta{
			StudentID:    in.StudentID.String(),
			AcademicYear: in.AcademicYear,
			Semester:     in.Semester,
			Description:  in.Description,
		},
	})
	if err != nil {
		return InitiateResult{}, err
	}

	code, raw, err := p.do(fiber.MethodPost, "/transaction/initialize", body)
	if err != nil {
		return InitiateResult{}, err
	}

	var env paystackEnvelope
	if uerr := json.Unmarshal(raw, &env); uerr != nil {
		return InitiateResult{}, fmt.Errorf("%w: bad response body", ErrGatewayUnavailable)
	}

	switch {
	case code >= 500:
		return InitiateResult{}, fmt.Errorf("%w: provider %d", ErrGatewayUnavailable, code)
	case code >= 400 || !env.Status:
		return InitiateResult{}, fmt.Errorf("%w: %s", ErrGatewayRejected, env.Message)
	}

	return InitiateResult{
		ProviderReference: env.Data.Reference,
		AuthorizationURL:  env.Data.AuthorizationURL,
	}, nil
}

func (p *PaystackProvider) Verify(ctx context.Context, reference string) (VerifyResult, error) {
	code, raw, err := p.do(fiber.MethodGet, "/transaction/verify/"+reference, nil)
	if err != nil {
		return VerifyResult{}, err
	}
	if code == fiber.StatusNotFound {
		return VerifyResult{}, ErrReferenceNotFound
	}
	if code >= 500 {
		return VerifyResult{}, fmt.Errorf("%w: provider %d", ErrGatewayUnavailable, code)
	}

	var env paystackEnvelope
	if uerr := json.Unmarshal(raw, &env); uerr != nil {
		return VerifyResult{}, fmt.Errorf("%w: bad response body", ErrGatewayUnavailable)
	}
	if !env.Status {
		return VerifyResult{}, ErrReferenceNotFound
	}

	return VerifyResult{
		Status:   normalizePaystackStatus(env.Data.Status),
		PaidAt:   parsePaystackTime(env.Data.PaidAt),
		Amount:   env.Data.Amount,
		Currency: env.Data.Currency,
		Metadata: env.Data.Metadata.toChargeMetadata(),
	}, nil
}

// VerifySignature checks x-paystack-signature: HMAC-SHA512 of the raw body
// keyed with the secret key.
func (p *PaystackProvider) VerifySignature(rawBody []byte, signatureHeader string) bool {
	return CheckHMACSHA512(rawBody, signatureHeader, p.secretKey)
}

func (p *PaystackProvider) ParseWebhookEvent(rawBody []byte) (WebhookEvent, error) {
	var payload struct {
		Event string             `json:"event"`
		Data  paystackChargeData `json:"data"`
	}
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		return WebhookEvent{}, fmt.Errorf("invalid webhook payload: %w", err)
	}

	ev := WebhookEvent{
		Type:      payload.Event,
		Reference: payload.Data.Reference,
		Amount:    payload.Data.Amount,
		Currency:  payload.Data.Currency,
		PaidAt:    parsePaystackTime(payload.Data.PaidAt),
		Metadata:  payload.Data.Metadata.toChargeMetadata(),
	}
	switch payload.Event {
	case EventChargeSuccess:
		ev.Status = ChargeStatusSuccess
	case EventChargeFailed:
		ev.Status = ChargeStatusFailed
	default:
		ev.Status = normalizePaystackStatus(payload.Data.Status)
	}
	return ev, nil
}

/* ---------- transport ---------- */

func (p *PaystackProvider) do(method, path string, body []byte) (int, []byte, error) {
	agent := fiber.AcquireAgent()
	req := agent.Request()
	req.Header.SetMethod(method)
	req.SetRequestURI(p.baseURL + path)
	if err := agent.Parse(); err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	agent.Set(fiber.HeaderAuthorization, "Bearer "+p.secretKey)
	agent.Timeout(p.timeout)
	if body != nil {
		agent.ContentType(fiber.MIMEApplicationJSON)
		agent.Body(body)
	}

	code, raw, errs := agent.Bytes()
	if len(errs) > 0 {
		return 0, nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, errs[0])
	}
	return code, raw, nil
}

/* ---------- mapping ---------- */

func normalizePaystackStatus(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "success":
		return ChargeStatusSuccess
	case "failed", "reversed":
		return ChargeStatusFailed
	case "abandoned":
		return ChargeStatusAbandoned
	default:
		return ChargeStatusPending
	}
}

func parsePaystackTime(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.000Z"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func (m paystackMeta) toChargeMetadata() ChargeMetadata {
	out := ChargeMetadata{
		AcademicYear: m.AcademicYear,
		Semester:     m.Semester,
		Description:  m.Description,
	}
	if id, err := uuid.Parse(strings.TrimSpace(m.StudentID)); err == nil {
		out.StudentID = &id
	}
	return out
}
