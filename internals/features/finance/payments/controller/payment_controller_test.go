package controller

import (
	"bytes"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"kampusku_backend/internals/features/finance/payments/gateway"
	svc "kampusku_backend/internals/features/finance/payments/service"
)

func webhookApp() (*fiber.App, string) {
	secret := "sk_test_webhook"
	registry := gateway.NewRegistry("paystack",
		gateway.NewPaystackProvider(secret, "https://api.paystack.co", time.Second))
	engine := svc.NewReconcileEngine(nil, nil, nil, registry)

	ctrl := NewPaymentController(nil, engine)
	app := fiber.New()
	app.Post("/payments/webhook/:provider", ctrl.Webhook)
	return app, secret
}

func TestWebhookRejectsForgedSignature(t *testing.T) {
	app, _ := webhookApp()

	body := []byte(`{"event":"charge.success","data":{"reference":"PSK-1"}}`)
	req := httptest.NewRequest(fiber.MethodPost, "/payments/webhook/paystack", bytes.NewReader(body))
	req.Header.Set("x-paystack-signature", "deadbeef")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestWebhookRejectsMissingSignature(t *testing.T) {
	app, _ := webhookApp()

	body := []byte(`{"event":"charge.success","data":{"reference":"PSK-1"}}`)
	req := httptest.NewRequest(fiber.MethodPost, "/payments/webhook/paystack", bytes.NewReader(body))

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestWebhookUnknownProvider(t *testing.T) {
	app, secret := webhookApp()

	body := []byte(`{"event":"charge.success"}`)
	req := httptest.NewRequest(fiber.MethodPost, "/payments/webhook/flutterwave", bytes.NewReader(body))
	req.Header.Set("x-signature", gateway.HMACSHA512Hex(body, secret))

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}
