package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	model "kampusku_backend/internals/features/finance/payments/model"
)

var (
	// ErrDuplicateReference: a transaction with this provider reference
	// already exists (initiation race, 409).
	ErrDuplicateReference = errors.New("duplicate provider reference")
	// ErrTransactionNotFound: no transaction for the reference.
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrReconciliationConflict should be unreachable given the atomic
	// transition; if it surfaces, the store layer broke an invariant.
	ErrReconciliationConflict = errors.New("reconciliation conflict")
)

const uniqueViolation = "23505"

// Reconstruction carries the metadata needed to create a transaction
// directly in a terminal state when a webhook outruns (or outlives) the
// initiation record. All of it comes from the signed provider event.
type Reconstruction struct {
	StudentID    uuid.UUID
	Provider     string
	Amount       int64
	Currency     string
	AcademicYear string
	Semester     string
	Description  string
}

type TransactionRepository struct {
	DB *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{DB: db}
}

func (r *TransactionRepository) Create(ctx context.Context, tx *model.Transaction) error {
	if err := r.DB.WithContext(ctx).Create(tx).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateReference
		}
		return err
	}
	return nil
}

func (r *TransactionRepository) FindByReference(ctx context.Context, ref string) (*model.Transaction, error) {
	var tx model.Transaction
	err := r.DB.WithContext(ctx).
		First(&tx, "transaction_provider_reference = ? AND transaction_deleted_at IS NULL", ref).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &tx, nil
}

func (r *TransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	var tx model.Transaction
	err := r.DB.WithContext(ctx).
		First(&tx, "transaction_id = ? AND transaction_deleted_at IS NULL", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &tx, nil
}

func (r *TransactionRepository) ListByStudent(ctx context.Context, studentID uuid.UUID, offset, limit int) ([]model.Transaction, int64, error) {
	q := r.DB.WithContext(ctx).Model(&model.Transaction{}).
		Where("transaction_student_id = ? AND transaction_deleted_at IS NULL", studentID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.Transaction
	if err := q.Order("transaction_created_at DESC").Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// TransitionToTerminal drives the pending→terminal transition as a single
// conditional UPDATE keyed on reference + current status, so two concurrent
// confirmations cannot both win. Returns the stored row and whether this
// call performed the transition:
//   - row already terminal → no-op, (row, false)
//   - row pending         → CAS update, (row, true)
//   - no row + rec != nil → reconstructed directly in the terminal state
//   - no row + rec == nil → ErrTransactionNotFound
func (r *TransactionRepository) TransitionToTerminal(ctx context.Context, ref, newStatus string, paidAt *time.Time, rec *Reconstruction) (*model.Transaction, bool, error) {
	if !model.IsTerminalStatus(newStatus) {
		return nil, false, ErrReconciliationConflict
	}

	res := r.DB.WithContext(ctx).Exec(`
		UPDATE transactions
		   SET transaction_status  = ?,
		       transaction_paid_at = CASE WHEN ? = 'success'
		                                  THEN COALESCE(?, NOW())
		                                  ELSE transaction_paid_at END,
		       transaction_updated_at = NOW()
		 WHERE transaction_provider_reference = ?
		   AND transaction_status = 'pending'
		   AND transaction_deleted_at IS NULL
	`, newStatus, newStatus, paidAt, ref)
	if res.Error != nil {
		return nil, false, res.Error
	}

	if res.RowsAffected == 1 {
		tx, err := r.FindByReference(ctx, ref)
		if err != nil {
			return nil, false, err
		}
		return tx, true, nil
	}

	// 0 rows: either the row is already terminal (safe duplicate trigger)
	// or it does not exist yet (webhook arrived before the initiation
	// record was written).
	tx, err := r.FindByReference(ctx, ref)
	if err == nil {
		if !tx.IsTerminal() {
			return tx, false, ErrReconciliationConflict
		}
		return tx, false, nil
	}
	if !errors.Is(err, ErrTransactionNotFound) {
		return nil, false, err
	}
	if rec == nil {
		return nil, false, ErrTransactionNotFound
	}
	return r.reconstructTerminal(ctx, ref, newStatus, paidAt, rec)
}

func (r *TransactionRepository) reconstructTerminal(ctx context.Context, ref, newStatus string, paidAt *time.Time, rec *Reconstruction) (*model.Transaction, bool, error) {
	tx := &model.Transaction{
		TransactionStudentID:         rec.StudentID,
		TransactionProvider:          rec.Provider,
		TransactionProviderReference: ref,
		TransactionAmount:            rec.Amount,
		TransactionCurrency:          rec.Currency,
		TransactionStatus:            newStatus,
		TransactionAcademicYear:      rec.AcademicYear,
		TransactionSemester:          rec.Semester,
	}
	if rec.Description != "" {
		tx.TransactionDescription = &rec.Description
	}
	if newStatus == model.TransactionStatusSuccess {
		now := time.Now()
		if paidAt == nil {
			paidAt = &now
		}
		tx.TransactionPaidAt = paidAt
	}

	if err := r.DB.WithContext(ctx).Create(tx).Error; err != nil {
		if isUniqueViolation(err) {
			// Lost the insert race; whoever won performed the transition.
			stored, ferr := r.FindByReference(ctx, ref)
			if ferr != nil {
				return nil, false, ferr
			}
			return stored, false, nil
		}
		return nil, false, err
	}
	return tx, true, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
