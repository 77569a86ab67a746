package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"kampusku_backend/internals/features/finance/payments/gateway"
	model "kampusku_backend/internals/features/finance/payments/model"
	"kampusku_backend/internals/features/finance/payments/repository"
)

var (
	// ErrSignatureInvalid: webhook trust failure; reject, log, no state change.
	ErrSignatureInvalid = errors.New("invalid webhook signature")
	// ErrStudentNotFound: initiation for a student that does not exist.
	ErrStudentNotFound = errors.New("student not found")
	// ErrUnknownProvider: no registered gateway under that name.
	ErrUnknownProvider = errors.New("unknown payment provider")
)

/* =========================================================
   Collaborator contracts (implemented by repository /
   projection; faked in tests)
========================================================= */

type TransactionStore interface {
	Create(ctx context.Context, tx *model.Transaction) error
	FindByReference(ctx context.Context, ref string) (*model.Transaction, error)
	TransitionToTerminal(ctx context.Context, ref, newStatus string, paidAt *time.Time, rec *repository.Reconstruction) (*model.Transaction, bool, error)
}

// Projection applies the denormalized paid-state onto the student record.
// Must be idempotent per transaction id (set semantics on the history).
type Projection interface {
	ApplyPaid(ctx context.Context, studentID, transactionID uuid.UUID, academicYear, semester string) error
}

type StudentDirectory interface {
	Exists(ctx context.Context, studentID uuid.UUID) (bool, error)
}

/* =========================================================
   Engine
========================================================= */

// ReconcileEngine owns every mutation of a Transaction after creation.
// Two independent triggers feed it — the client verify call and the
// provider webhook — in any order, any number of times, including
// concurrently; the store's conditional update makes the first one win
// and every other one a safe no-op.
type ReconcileEngine struct {
	Store      TransactionStore
	Projection Projection
	Students   StudentDirectory
	Providers  *gateway.Registry
}

func NewReconcileEngine(store TransactionStore, projection Projection, students StudentDirectory, providers *gateway.Registry) *ReconcileEngine {
	return &ReconcileEngine{
		Store:      store,
		Projection: projection,
		Students:   students,
		Providers:  providers,
	}
}

/* ---------- initiation ---------- */

type InitiateParams struct {
	StudentID    uuid.UUID
	Amount       int64
	Currency     string
	AcademicYear string
	Semester     string
	PayerEmail   string
	Description  string
	Provider     string // empty = registry default
}

func (e *ReconcileEngine) Initiate(ctx context.Context, p InitiateParams) (*model.Transaction, error) {
	prov, ok := e.provider(p.Provider)
	if !ok {
		return nil, ErrUnknownProvider
	}

	exists, err := e.Students.Exists(ctx, p.StudentID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrStudentNotFound
	}

	res, err := prov.Initiate(ctx, gateway.InitiateInput{
		Amount:       p.Amount,
		Currency:     p.Currency,
		PayerEmail:   p.PayerEmail,
		Description:  p.Description,
		StudentID:    p.StudentID,
		AcademicYear: p.AcademicYear,
		Semester:     p.Semester,
	})
	if err != nil {
		return nil, err
	}

	tx := &model.Transaction{
		TransactionStudentID:         p.StudentID,
		TransactionProvider:          prov.Name(),
		TransactionProviderReference: res.ProviderReference,
		TransactionAmount:            p.Amount,
		TransactionCurrency:          p.Currency,
		TransactionStatus:            model.TransactionStatusPending,
		TransactionAcademicYear:      p.AcademicYear,
		TransactionSemester:          p.Semester,
	}
	if p.Description != "" {
		tx.TransactionDescription = &p.Description
	}
	if res.AuthorizationURL != "" {
		tx.TransactionAuthorizationURL = &res.AuthorizationURL
	}

	if err := e.Store.Create(ctx, tx); err != nil {
		// The charge exists at the provider even when this write fails;
		// the webhook reconstruction path will pick it up.
		return nil, err
	}
	return tx, nil
}

/* ---------- client-confirmation path ---------- */

// ConfirmByReference re-derives trust server-to-provider: the caller only
// supplies the reference, never a status. Returns the stored transaction
// and the provider-reported charge status.
func (e *ReconcileEngine) ConfirmByReference(ctx context.Context, ref string) (*model.Transaction, string, error) {
	tx, err := e.Store.FindByReference(ctx, ref)
	if err != nil {
		return nil, "", err
	}

	prov, ok := e.provider(tx.TransactionProvider)
	if !ok {
		return nil, "", ErrUnknownProvider
	}

	vr, err := prov.Verify(ctx, ref)
	if err != nil {
		return nil, "", err
	}

	switch vr.Status {
	case gateway.ChargeStatusSuccess:
		tx, changed, terr := e.Store.TransitionToTerminal(ctx, ref, model.TransactionStatusSuccess, vr.PaidAt, nil)
		if terr != nil {
			return nil, "", terr
		}
		e.applyProjection(ctx, tx, changed)
		return tx, vr.Status, nil

	case gateway.ChargeStatusFailed, gateway.ChargeStatusAbandoned:
		tx, _, terr := e.Store.TransitionToTerminal(ctx, ref, model.TransactionStatusFailed, nil, nil)
		if terr != nil {
			return nil, "", terr
		}
		return tx, vr.Status, nil

	default:
		// Still pending at the provider: no mutation.
		return tx, vr.Status, nil
	}
}

/* ---------- webhook path ---------- */

type WebhookOutcome struct {
	Event       gateway.WebhookEvent
	Transaction *model.Transaction
	Changed     bool
	Ignored     bool
	Reason      string
}

// HandleWebhook trusts nothing until the signature over the raw bytes
// checks out. Every verified event must be acknowledged by the caller,
// ignored ones included, or the provider retries forever.
func (e *ReconcileEngine) HandleWebhook(ctx context.Context, providerName string, rawBody []byte, signatureHeader string) (WebhookOutcome, error) {
	prov, ok := e.provider(providerName)
	if !ok {
		return WebhookOutcome{}, ErrUnknownProvider
	}

	if !prov.VerifySignature(rawBody, signatureHeader) {
		return WebhookOutcome{}, ErrSignatureInvalid
	}

	ev, err := prov.ParseWebhookEvent(rawBody)
	if err != nil {
		return WebhookOutcome{}, err
	}

	if !ev.Recognized() {
		return WebhookOutcome{Event: ev, Ignored: true, Reason: "unhandled event type"}, nil
	}
	if ev.Reference == "" {
		return WebhookOutcome{Event: ev, Ignored: true, Reason: "event without reference"}, nil
	}

	newStatus := model.TransactionStatusFailed
	if ev.Type == gateway.EventChargeSuccess {
		newStatus = model.TransactionStatusSuccess
	}

	var rec *repository.Reconstruction
	if ev.Metadata.StudentID != nil {
		rec = &repository.Reconstruction{
			StudentID:    *ev.Metadata.StudentID,
			Provider:     prov.Name(),
			Amount:       ev.Amount,
			Currency:     ev.Currency,
			AcademicYear: ev.Metadata.AcademicYear,
			Semester:     ev.Metadata.Semester,
			Description:  ev.Metadata.Description,
		}
	}

	tx, changed, err := e.Store.TransitionToTerminal(ctx, ev.Reference, newStatus, ev.PaidAt, rec)
	if err != nil {
		if errors.Is(err, repository.ErrTransactionNotFound) {
			// No local record and the event carries no student metadata:
			// nothing to reconstruct from. Ack so the provider stops
			// retrying; the audit log keeps the payload.
			return WebhookOutcome{Event: ev, Ignored: true, Reason: "no local transaction and no reconstruction metadata"}, nil
		}
		if errors.Is(err, repository.ErrReconciliationConflict) {
			log.Printf("[ERROR] reconciliation conflict on reference=%s: store invariant broken, investigate", ev.Reference)
		}
		return WebhookOutcome{Event: ev}, err
	}

	e.applyProjection(ctx, tx, changed)

	return WebhookOutcome{Event: ev, Transaction: tx, Changed: changed}, nil
}

/* ---------- shared ---------- */

// applyProjection runs exactly once per real pending→success transition.
// Failure is a recoverable inconsistency: the transaction record is the
// source of truth and the projection can be rebuilt from it.
func (e *ReconcileEngine) applyProjection(ctx context.Context, tx *model.Transaction, changed bool) {
	if !changed || tx == nil || tx.TransactionStatus != model.TransactionStatusSuccess {
		return
	}
	if err := e.Projection.ApplyPaid(ctx, tx.TransactionStudentID, tx.TransactionID, tx.TransactionAcademicYear, tx.TransactionSemester); err != nil {
		log.Printf("[ERROR] student projection update failed (transaction=%s student=%s): %v — rebuildable from payment_history",
			tx.TransactionID, tx.TransactionStudentID, err)
	}
}

func (e *ReconcileEngine) provider(name string) (gateway.Provider, bool) {
	if name == "" {
		return e.Providers.Default()
	}
	return e.Providers.Get(name)
}
