package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"kampusku_backend/internals/features/finance/payments/gateway"
	model "kampusku_backend/internals/features/finance/payments/model"
	"kampusku_backend/internals/features/finance/payments/repository"
)

/* =========================================================
   Fakes (mirror the store's conditional-update contract)
========================================================= */

type fakeStore struct {
	byRef map[string]*model.Transaction
}

func newFakeStore() *fakeStore {
	return &fakeStore{byRef: map[string]*model.Transaction{}}
}

func (s *fakeStore) Create(_ context.Context, tx *model.Transaction) error {
	if _, ok := s.byRef[tx.TransactionProviderReference]; ok {
		return repository.ErrDuplicateReference
	}
	if tx.TransactionID == uuid.Nil {
		tx.TransactionID = uuid.New()
	}
	cp := *tx
	s.byRef[tx.TransactionProviderReference] = &cp
	return nil
}

func (s *fakeStore) FindByReference(_ context.Context, ref string) (*model.Transaction, error) {
	tx, ok := s.byRef[ref]
	if !ok {
		return nil, repository.ErrTransactionNotFound
	}
	cp := *tx
	return &cp, nil
}

func (s *fakeStore) TransitionToTerminal(_ context.Context, ref, newStatus string, paidAt *time.Time, rec *repository.Reconstruction) (*model.Transaction, bool, error) {
	if !model.IsTerminalStatus(newStatus) {
		return nil, false, repository.ErrReconciliationConflict
	}

	tx, ok := s.byRef[ref]
	if ok {
		if tx.IsTerminal() {
			cp := *tx
			return &cp, false, nil
		}
		tx.TransactionStatus = newStatus
		if newStatus == model.TransactionStatusSuccess {
			if paidAt == nil {
				now := time.Now()
				paidAt = &now
			}
			tx.TransactionPaidAt = paidAt
		}
		cp := *tx
		return &cp, true, nil
	}

	if rec == nil {
		return nil, false, repository.ErrTransactionNotFound
	}
	built := &model.Transaction{
		TransactionID:                uuid.New(),
		TransactionStudentID:         rec.StudentID,
		TransactionProvider:          rec.Provider,
		TransactionProviderReference: ref,
		TransactionAmount:            rec.Amount,
		TransactionCurrency:          rec.Currency,
		TransactionStatus:            newStatus,
		TransactionAcademicYear:      rec.AcademicYear,
		TransactionSemester:          rec.Semester,
	}
	if newStatus == model.TransactionStatusSuccess {
		if paidAt == nil {
			now := time.Now()
			paidAt = &now
		}
		built.TransactionPaidAt = paidAt
	}
	s.byRef[ref] = built
	cp := *built
	return &cp, true, nil
}

type fakeProjection struct {
	applied []uuid.UUID // transaction ids, in call order
	fail    bool
}

func (p *fakeProjection) ApplyPaid(_ context.Context, _, transactionID uuid.UUID, _, _ string) error {
	if p.fail {
		return errors.New("projection down")
	}
	p.applied = append(p.applied, transactionID)
	return nil
}

type fakeDirectory struct {
	known map[uuid.UUID]bool
}

func (d *fakeDirectory) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	return d.known[id], nil
}

type fakeProvider struct {
	name      string
	initRef   string
	initErr   error
	verify    map[string]gateway.VerifyResult
	verifyErr error
	goodSig   string
	events    map[string]gateway.WebhookEvent
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Initiate(_ context.Context, _ gateway.InitiateInput) (gateway.InitiateResult, error) {
	if f.initErr != nil {
		return gateway.InitiateResult{}, f.initErr
	}
	return gateway.InitiateResult{
		ProviderReference: f.initRef,
		AuthorizationURL:  "https://checkout.example/" + f.initRef,
	}, nil
}

func (f *fakeProvider) Verify(_ context.Context, ref string) (gateway.VerifyResult, error) {
	if f.verifyErr != nil {
		return gateway.VerifyResult{}, f.verifyErr
	}
	vr, ok := f.verify[ref]
	if !ok {
		return gateway.VerifyResult{}, gateway.ErrReferenceNotFound
	}
	return vr, nil
}

func (f *fakeProvider) VerifySignature(_ []byte, sig string) bool { return sig == f.goodSig }

func (f *fakeProvider) ParseWebhookEvent(rawBody []byte) (gateway.WebhookEvent, error) {
	ev, ok := f.events[string(rawBody)]
	if !ok {
		return gateway.WebhookEvent{}, fmt.Errorf("unscripted payload")
	}
	return ev, nil
}

/* =========================================================
   Harness
========================================================= */

type engineFixture struct {
	engine     *ReconcileEngine
	store      *fakeStore
	projection *fakeProjection
	provider   *fakeProvider
	studentID  uuid.UUID
}

func newFixture(t *testing.T) *engineFixture {
	t.Helper()

	studentID := uuid.New()
	provider := &fakeProvider{
		name:    "paystack",
		initRef: "PSK-2025-0001",
		verify:  map[string]gateway.VerifyResult{},
		goodSig: "good",
		events:  map[string]gateway.WebhookEvent{},
	}
	store := newFakeStore()
	projection := &fakeProjection{}
	directory := &fakeDirectory{known: map[uuid.UUID]bool{studentID: true}}

	return &engineFixture{
		engine:     NewReconcileEngine(store, projection, directory, gateway.NewRegistry("paystack", provider)),
		store:      store,
		projection: projection,
		provider:   provider,
		studentID:  studentID,
	}
}

func (f *engineFixture) initiate(t *testing.T) *model.Transaction {
	t.Helper()
	tx, err := f.engine.Initiate(context.Background(), InitiateParams{
		StudentID:    f.studentID,
		Amount:       500000,
		Currency:     "NGN",
		AcademicYear: "2025-2026",
		Semester:     "Fall",
		PayerEmail:   "ada@student.example",
	})
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}
	return tx
}

/* =========================================================
   Initiation
========================================================= */

func TestInitiateCreatesPendingTransaction(t *testing.T) {
	f := newFixture(t)

	tx := f.initiate(t)
	if tx.TransactionStatus != model.TransactionStatusPending {
		t.Fatalf("status = %q, want pending", tx.TransactionStatus)
	}
	if tx.TransactionProviderReference != "PSK-2025-0001" {
		t.Fatalf("reference = %q", tx.TransactionProviderReference)
	}
	if tx.TransactionAuthorizationURL == nil {
		t.Fatal("authorization url missing")
	}
	if tx.TransactionPaidAt != nil {
		t.Fatal("paid_at must stay unset on initiation")
	}
}

func TestInitiateUnknownStudent(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.Initiate(context.Background(), InitiateParams{
		StudentID: uuid.New(),
		Amount:    500000,
		Currency:  "NGN",
	})
	if !errors.Is(err, ErrStudentNotFound) {
		t.Fatalf("err = %v, want ErrStudentNotFound", err)
	}
}

func TestInitiateUnknownProvider(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.Initiate(context.Background(), InitiateParams{
		StudentID: f.studentID,
		Provider:  "stripe",
	})
	if !errors.Is(err, ErrUnknownProvider) {
		t.Fatalf("err = %v, want ErrUnknownProvider", err)
	}
}

/* =========================================================
   Client-confirmation path
========================================================= */

func TestConfirmSuccessAppliesProjectionOnce(t *testing.T) {
	f := newFixture(t)
	tx := f.initiate(t)

	paidAt := time.Date(2025, 9, 1, 10, 15, 0, 0, time.UTC)
	f.provider.verify[tx.TransactionProviderReference] = gateway.VerifyResult{
		Status: gateway.ChargeStatusSuccess,
		PaidAt: &paidAt,
	}

	got, status, err := f.engine.ConfirmByReference(context.Background(), tx.TransactionProviderReference)
	if err != nil {
		t.Fatalf("ConfirmByReference: %v", err)
	}
	if status != gateway.ChargeStatusSuccess {
		t.Fatalf("provider status = %q", status)
	}
	if got.TransactionStatus != model.TransactionStatusSuccess {
		t.Fatalf("stored status = %q", got.TransactionStatus)
	}
	if got.TransactionPaidAt == nil || !got.TransactionPaidAt.Equal(paidAt) {
		t.Fatalf("paid_at = %v, want %v", got.TransactionPaidAt, paidAt)
	}
	if len(f.projection.applied) != 1 {
		t.Fatalf("projection applied %d times, want 1", len(f.projection.applied))
	}

	// Duplicate confirm: same terminal answer, no second projection.
	got2, _, err := f.engine.ConfirmByReference(context.Background(), tx.TransactionProviderReference)
	if err != nil {
		t.Fatalf("second ConfirmByReference: %v", err)
	}
	if got2.TransactionStatus != model.TransactionStatusSuccess {
		t.Fatalf("second confirm status = %q", got2.TransactionStatus)
	}
	if len(f.projection.applied) != 1 {
		t.Fatalf("projection applied %d times after duplicate, want 1", len(f.projection.applied))
	}
}

func TestConfirmPendingIsNoOp(t *testing.T) {
	f := newFixture(t)
	tx := f.initiate(t)

	f.provider.verify[tx.TransactionProviderReference] = gateway.VerifyResult{Status: gateway.ChargeStatusPending}

	got, status, err := f.engine.ConfirmByReference(context.Background(), tx.TransactionProviderReference)
	if err != nil {
		t.Fatalf("ConfirmByReference: %v", err)
	}
	if status != gateway.ChargeStatusPending {
		t.Fatalf("provider status = %q", status)
	}
	if got.TransactionStatus != model.TransactionStatusPending {
		t.Fatalf("stored status mutated to %q", got.TransactionStatus)
	}
	if len(f.projection.applied) != 0 {
		t.Fatal("projection must not run for pending")
	}
}

func TestConfirmAbandonedStoresFailed(t *testing.T) {
	f := newFixture(t)
	tx := f.initiate(t)

	f.provider.verify[tx.TransactionProviderReference] = gateway.VerifyResult{Status: gateway.ChargeStatusAbandoned}

	got, status, err := f.engine.ConfirmByReference(context.Background(), tx.TransactionProviderReference)
	if err != nil {
		t.Fatalf("ConfirmByReference: %v", err)
	}
	if status != gateway.ChargeStatusAbandoned {
		t.Fatalf("provider status = %q", status)
	}
	if got.TransactionStatus != model.TransactionStatusFailed {
		t.Fatalf("stored status = %q, want failed", got.TransactionStatus)
	}
	if got.TransactionPaidAt != nil {
		t.Fatal("failed transition must not set paid_at")
	}
}

func TestConfirmUnknownLocalReference(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.engine.ConfirmByReference(context.Background(), "PSK-GHOST")
	if !errors.Is(err, repository.ErrTransactionNotFound) {
		t.Fatalf("err = %v, want ErrTransactionNotFound", err)
	}
}

func TestConfirmGatewayDown(t *testing.T) {
	f := newFixture(t)
	tx := f.initiate(t)

	f.provider.verifyErr = gateway.ErrGatewayUnavailable

	_, _, err := f.engine.ConfirmByReference(context.Background(), tx.TransactionProviderReference)
	if !errors.Is(err, gateway.ErrGatewayUnavailable) {
		t.Fatalf("err = %v, want ErrGatewayUnavailable", err)
	}
	stored, _ := f.store.FindByReference(context.Background(), tx.TransactionProviderReference)
	if stored.TransactionStatus != model.TransactionStatusPending {
		t.Fatal("gateway outage must not mutate the transaction")
	}
}

/* =========================================================
   Webhook path
========================================================= */

func (f *engineFixture) scriptWebhook(body string, ev gateway.WebhookEvent) {
	f.provider.events[body] = ev
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.HandleWebhook(context.Background(), "paystack", []byte(`{}`), "forged")
	if !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("err = %v, want ErrSignatureInvalid", err)
	}
}

func TestWebhookSuccessThenDuplicate(t *testing.T) {
	f := newFixture(t)
	tx := f.initiate(t)

	body := `{"event":"charge.success"}`
	f.scriptWebhook(body, gateway.WebhookEvent{
		Type:      gateway.EventChargeSuccess,
		Reference: tx.TransactionProviderReference,
		Status:    gateway.ChargeStatusSuccess,
		Amount:    500000,
		Currency:  "NGN",
		Metadata:  gateway.ChargeMetadata{StudentID: &f.studentID, AcademicYear: "2025-2026", Semester: "Fall"},
	})

	out, err := f.engine.HandleWebhook(context.Background(), "paystack", []byte(body), "good")
	if err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}
	if !out.Changed || out.Ignored {
		t.Fatalf("outcome = %+v, want changed", out)
	}
	if out.Transaction.TransactionStatus != model.TransactionStatusSuccess {
		t.Fatalf("status = %q", out.Transaction.TransactionStatus)
	}
	if len(f.projection.applied) != 1 {
		t.Fatalf("projection applied %d times, want 1", len(f.projection.applied))
	}

	// Provider redelivery: acknowledged, nothing changes.
	out2, err := f.engine.HandleWebhook(context.Background(), "paystack", []byte(body), "good")
	if err != nil {
		t.Fatalf("duplicate HandleWebhook: %v", err)
	}
	if out2.Changed {
		t.Fatal("duplicate delivery must not transition again")
	}
	if len(f.projection.applied) != 1 {
		t.Fatalf("projection applied %d times after redelivery, want 1", len(f.projection.applied))
	}
}

func TestWebhookReconstructsMissingTransaction(t *testing.T) {
	f := newFixture(t)

	body := `{"event":"charge.success","ref":"PSK-ORPHAN"}`
	f.scriptWebhook(body, gateway.WebhookEvent{
		Type:      gateway.EventChargeSuccess,
		Reference: "PSK-ORPHAN",
		Status:    gateway.ChargeStatusSuccess,
		Amount:    500000,
		Currency:  "NGN",
		Metadata:  gateway.ChargeMetadata{StudentID: &f.studentID, AcademicYear: "2025-2026", Semester: "Fall"},
	})

	out, err := f.engine.HandleWebhook(context.Background(), "paystack", []byte(body), "good")
	if err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}
	if !out.Changed {
		t.Fatal("reconstruction must count as a transition")
	}
	tx := out.Transaction
	if tx.TransactionStatus != model.TransactionStatusSuccess {
		t.Fatalf("status = %q", tx.TransactionStatus)
	}
	if tx.TransactionStudentID != f.studentID {
		t.Fatal("student id not carried from metadata")
	}
	if tx.TransactionAmount != 500000 || tx.TransactionCurrency != "NGN" {
		t.Fatalf("amount/currency = %d/%s", tx.TransactionAmount, tx.TransactionCurrency)
	}
	if tx.TransactionAcademicYear != "2025-2026" || tx.TransactionSemester != "Fall" {
		t.Fatalf("term = %s/%s", tx.TransactionAcademicYear, tx.TransactionSemester)
	}
	if len(f.projection.applied) != 1 {
		t.Fatalf("projection applied %d times, want 1", len(f.projection.applied))
	}
}

func TestWebhookOrphanWithoutMetadataIsAcked(t *testing.T) {
	f := newFixture(t)

	body := `{"event":"charge.success","ref":"PSK-NO-META"}`
	f.scriptWebhook(body, gateway.WebhookEvent{
		Type:      gateway.EventChargeSuccess,
		Reference: "PSK-NO-META",
		Status:    gateway.ChargeStatusSuccess,
	})

	out, err := f.engine.HandleWebhook(context.Background(), "paystack", []byte(body), "good")
	if err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}
	if !out.Ignored {
		t.Fatal("orphan without metadata must be acked as ignored")
	}
	if len(f.projection.applied) != 0 {
		t.Fatal("projection must not run")
	}
}

func TestWebhookUnrecognizedEventIsAcked(t *testing.T) {
	f := newFixture(t)

	body := `{"event":"transfer.success"}`
	f.scriptWebhook(body, gateway.WebhookEvent{Type: "transfer.success", Reference: "TRF-1"})

	out, err := f.engine.HandleWebhook(context.Background(), "paystack", []byte(body), "good")
	if err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}
	if !out.Ignored {
		t.Fatal("unhandled event type must be acked as ignored")
	}
}

func TestWebhookFailedDoesNotProject(t *testing.T) {
	f := newFixture(t)
	tx := f.initiate(t)

	body := `{"event":"charge.failed"}`
	f.scriptWebhook(body, gateway.WebhookEvent{
		Type:      gateway.EventChargeFailed,
		Reference: tx.TransactionProviderReference,
		Status:    gateway.ChargeStatusFailed,
	})

	out, err := f.engine.HandleWebhook(context.Background(), "paystack", []byte(body), "good")
	if err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}
	if !out.Changed {
		t.Fatal("failed webhook must transition the pending row")
	}
	if out.Transaction.TransactionStatus != model.TransactionStatusFailed {
		t.Fatalf("status = %q", out.Transaction.TransactionStatus)
	}
	if len(f.projection.applied) != 0 {
		t.Fatal("failed transition must not touch the projection")
	}
}

/* =========================================================
   Confluence: both triggers, either order
========================================================= */

func TestWebhookThenConfirmConverge(t *testing.T) {
	f := newFixture(t)
	tx := f.initiate(t)
	ref := tx.TransactionProviderReference

	body := `{"event":"charge.success"}`
	f.scriptWebhook(body, gateway.WebhookEvent{
		Type:      gateway.EventChargeSuccess,
		Reference: ref,
		Status:    gateway.ChargeStatusSuccess,
	})
	f.provider.verify[ref] = gateway.VerifyResult{Status: gateway.ChargeStatusSuccess}

	if _, err := f.engine.HandleWebhook(context.Background(), "paystack", []byte(body), "good"); err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}
	got, _, err := f.engine.ConfirmByReference(context.Background(), ref)
	if err != nil {
		t.Fatalf("ConfirmByReference after webhook: %v", err)
	}
	if got.TransactionStatus != model.TransactionStatusSuccess {
		t.Fatalf("status = %q", got.TransactionStatus)
	}
	if len(f.projection.applied) != 1 {
		t.Fatalf("projection applied %d times, want exactly 1 across both triggers", len(f.projection.applied))
	}
}

func TestConfirmThenWebhookConverge(t *testing.T) {
	f := newFixture(t)
	tx := f.initiate(t)
	ref := tx.TransactionProviderReference

	f.provider.verify[ref] = gateway.VerifyResult{Status: gateway.ChargeStatusSuccess}
	body := `{"event":"charge.success"}`
	f.scriptWebhook(body, gateway.WebhookEvent{
		Type:      gateway.EventChargeSuccess,
		Reference: ref,
		Status:    gateway.ChargeStatusSuccess,
	})

	if _, _, err := f.engine.ConfirmByReference(context.Background(), ref); err != nil {
		t.Fatalf("ConfirmByReference: %v", err)
	}
	out, err := f.engine.HandleWebhook(context.Background(), "paystack", []byte(body), "good")
	if err != nil {
		t.Fatalf("HandleWebhook after confirm: %v", err)
	}
	if out.Changed {
		t.Fatal("webhook after confirm must be a no-op")
	}
	if len(f.projection.applied) != 1 {
		t.Fatalf("projection applied %d times, want exactly 1 across both triggers", len(f.projection.applied))
	}
}

func TestProjectionFailureDoesNotFailReconciliation(t *testing.T) {
	f := newFixture(t)
	tx := f.initiate(t)
	f.projection.fail = true

	f.provider.verify[tx.TransactionProviderReference] = gateway.VerifyResult{Status: gateway.ChargeStatusSuccess}

	got, _, err := f.engine.ConfirmByReference(context.Background(), tx.TransactionProviderReference)
	if err != nil {
		t.Fatalf("ConfirmByReference: %v", err)
	}
	if got.TransactionStatus != model.TransactionStatusSuccess {
		t.Fatal("transaction record is the source of truth and must still transition")
	}
}
