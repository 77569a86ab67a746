package controller

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	dto "kampusku_backend/internals/features/finance/payments/dto"
	"kampusku_backend/internals/features/finance/payments/gateway"
	model "kampusku_backend/internals/features/finance/payments/model"
	"kampusku_backend/internals/features/finance/payments/repository"
	svc "kampusku_backend/internals/features/finance/payments/service"
	helper "kampusku_backend/internals/helpers"
)

/* =======================================================================
   Controller
======================================================================= */

type PaymentController struct {
	DB        *gorm.DB
	Validator *validator.Validate
	Engine    *svc.ReconcileEngine
	Store     *repository.TransactionRepository
	Events    *repository.GatewayEventRepository
}

func NewPaymentController(db *gorm.DB, engine *svc.ReconcileEngine) *PaymentController {
	return &PaymentController{
		DB:        db,
		Validator: validator.New(),
		Engine:    engine,
		Store:     repository.NewTransactionRepository(db),
		Events:    repository.NewGatewayEventRepository(db),
	}
}

/* =======================================================================
   Handlers
======================================================================= */

// POST /payments/initiate
func (h *PaymentController) InitiatePayment(c *fiber.Ctx) error {
	var req dto.InitiatePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json: "+err.Error())
	}
	if err := h.Validator.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	tx, err := h.Engine.Initiate(c.UserContext(), svc.InitiateParams{
		StudentID:    req.StudentID,
		Amount:       req.Amount,
		Currency:     req.Currency,
		AcademicYear: req.AcademicYear,
		Semester:     req.Semester,
		PayerEmail:   req.PayerEmail,
		Description:  req.Description,
		Provider:     req.Provider,
	})
	if err != nil {
		return h.mapEngineError(c, err)
	}

	resp := dto.InitiatePaymentResponse{
		TransactionID:     tx.TransactionID,
		ProviderReference: tx.TransactionProviderReference,
	}
	if tx.TransactionAuthorizationURL != nil {
		resp.AuthorizationURL = *tx.TransactionAuthorizationURL
	}
	return helper.JsonCreated(c, "payment initiated", resp)
}

// GET /payments/verify/:reference
func (h *PaymentController) VerifyPayment(c *fiber.Ctx) error {
	ref := c.Params("reference")
	if ref == "" {
		return helper.JsonError(c, fiber.StatusBadRequest, "reference is required")
	}

	tx, providerStatus, err := h.Engine.ConfirmByReference(c.UserContext(), ref)
	if err != nil {
		return h.mapEngineError(c, err)
	}

	return helper.JsonOK(c, "ok", dto.VerifyPaymentResponse{
		ProviderStatus: providerStatus,
		Transaction:    dto.FromTransactionModel(tx),
	})
}

// POST /payments/webhook/:provider
//
// The raw body is handed to the engine untouched; it must verify the
// signature before a single field is trusted. Once the signature passes,
// the provider always gets a 200-class ack — ignored event types and
// missing local records included — so it stops redelivering.
func (h *PaymentController) Webhook(c *fiber.Ctx) error {
	providerName := c.Params("provider", model.GatewayProviderPaystack)
	rawBody := c.Body()
	signature := c.Get("x-paystack-signature")
	if signature == "" {
		signature = c.Get("x-signature")
	}

	outcome, err := h.Engine.HandleWebhook(c.UserContext(), providerName, rawBody, signature)
	if err != nil {
		switch {
		case errors.Is(err, svc.ErrSignatureInvalid):
			log.Printf("[WARN] webhook signature rejected (provider=%s ip=%s)", providerName, c.IP())
			return helper.JsonError(c, fiber.StatusUnauthorized, "invalid signature")
		case errors.Is(err, svc.ErrUnknownProvider):
			return helper.JsonError(c, fiber.StatusNotFound, "unknown provider")
		case outcome.Event.Type == "":
			// Signature passed but the payload did not parse.
			h.logEvent(c, providerName, outcome, rawBody, signature, model.GatewayEventStatusFailed, err.Error())
			return helper.JsonError(c, fiber.StatusBadRequest, "invalid payload")
		default:
			// Store-layer failure: let the provider retry the delivery.
			h.logEvent(c, providerName, outcome, rawBody, signature, model.GatewayEventStatusFailed, err.Error())
			return helper.JsonError(c, fiber.StatusInternalServerError, "webhook processing failed")
		}
	}

	status := model.GatewayEventStatusProcessed
	if outcome.Ignored {
		status = model.GatewayEventStatusIgnored
	}
	h.logEvent(c, providerName, outcome, rawBody, signature, status, outcome.Reason)

	return helper.JsonOK(c, "webhook received", fiber.Map{"received": true})
}

// GET /payments/me
func (h *PaymentController) MyPayments(c *fiber.Ctx) error {
	studentID, err := helper.GetStudentIDFromToken(c)
	if err != nil {
		return err
	}

	paging := helper.ResolvePaging(c, 20, 100)
	rows, total, err := h.Store.ListByStudent(c.UserContext(), studentID, paging.Offset, paging.Limit)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	return helper.JsonList(c, "ok", dto.FromTransactionModels(rows),
		helper.BuildPagination(total, paging.Page, paging.PerPage))
}

// GET /students/:id/payments (admin)
func (h *PaymentController) StudentPayments(c *fiber.Ctx) error {
	studentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid student id")
	}

	paging := helper.ResolvePaging(c, 20, 100)
	rows, total, err := h.Store.ListByStudent(c.UserContext(), studentID, paging.Offset, paging.Limit)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	return helper.JsonList(c, "ok", dto.FromTransactionModels(rows),
		helper.BuildPagination(total, paging.Page, paging.PerPage))
}

// GET /payments/events/:reference (admin, delivery debugging)
func (h *PaymentController) ListGatewayEvents(c *fiber.Ctx) error {
	ref := c.Params("reference")
	if ref == "" {
		return helper.JsonError(c, fiber.StatusBadRequest, "reference is required")
	}
	rows, err := h.Events.ListByReference(c.UserContext(), ref)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonOK(c, "ok", rows)
}

/* =======================================================================
   Internals
======================================================================= */

func (h *PaymentController) logEvent(c *fiber.Ctx, providerName string, outcome svc.WebhookOutcome, rawBody []byte, signature, status, reason string) {
	var txID *uuid.UUID
	if outcome.Transaction != nil {
		txID = &outcome.Transaction.TransactionID
	}
	ev, err := h.Events.Log(c.UserContext(), providerName, outcome.Event.Type, outcome.Event.Reference, rawBody, signature, txID)
	if err != nil {
		log.Printf("[ERROR] gateway event log failed: %v", err)
		return
	}
	if err := h.Events.MarkStatus(c.UserContext(), ev.GatewayEventID, status, reason); err != nil {
		log.Printf("[ERROR] gateway event status update failed: %v", err)
	}
}

func (h *PaymentController) mapEngineError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, svc.ErrStudentNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, "student not found")
	case errors.Is(err, svc.ErrUnknownProvider):
		return helper.JsonError(c, fiber.StatusBadRequest, "unknown payment provider")
	case errors.Is(err, repository.ErrTransactionNotFound), errors.Is(err, gateway.ErrReferenceNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, "transaction not found")
	case errors.Is(err, repository.ErrDuplicateReference):
		return helper.JsonError(c, fiber.StatusConflict, "duplicate provider reference")
	case errors.Is(err, gateway.ErrGatewayRejected):
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, gateway.ErrGatewayUnavailable):
		return helper.JsonError(c, fiber.StatusBadGateway, "payment gateway unavailable")
	case errors.Is(err, repository.ErrReconciliationConflict):
		log.Printf("[ERROR] reconciliation conflict surfaced to handler: %v", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "reconciliation conflict")
	default:
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
}
