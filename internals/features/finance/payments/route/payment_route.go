package route

import (
	"github.com/gofiber/fiber/v2"

	paymentController "kampusku_backend/internals/features/finance/payments/controller"
)

// PaymentUserRoutes: authenticated caller paths (initiate + verify + own history).
func PaymentUserRoutes(r fiber.Router, ctrl *paymentController.PaymentController) {
	payments := r.Group("/payments")
	payments.Post("/initiate", ctrl.InitiatePayment)
	payments.Get("/verify/:reference", ctrl.VerifyPayment)
	payments.Get("/me", ctrl.MyPayments)
}

// PaymentWebhookRoutes: provider-facing, no JWT — trust comes from the signature.
func PaymentWebhookRoutes(r fiber.Router, ctrl *paymentController.PaymentController) {
	r.Post("/payments/webhook/:provider", ctrl.Webhook)
	r.Post("/payments/webhook", ctrl.Webhook)
}

// PaymentAdminRoutes: per-student history + delivery debugging.
func PaymentAdminRoutes(r fiber.Router, ctrl *paymentController.PaymentController) {
	r.Get("/students/:id/payments", ctrl.StudentPayments)
	r.Get("/payments/events/:reference", ctrl.ListGatewayEvents)
}
