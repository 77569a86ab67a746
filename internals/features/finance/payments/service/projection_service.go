package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* =========================================================
   Student payment projection
========================================================= */

// StudentProjection is the only writer of the denormalized payment fields
// on the student row. One statement keeps it idempotent: re-applying the
// same transaction id leaves payment_history unchanged.
type StudentProjection struct {
	DB *gorm.DB
}

func NewStudentProjection(db *gorm.DB) *StudentProjection {
	return &StudentProjection{DB: db}
}

func (p *StudentProjection) ApplyPaid(ctx context.Context, studentID, transactionID uuid.UUID, academicYear, semester string) error {
	txID := transactionID.String()

	res := p.DB.WithContext(ctx).Exec(`
		UPDATE students
		   SET student_current_term_payment_status = 'paid',
		       student_last_paid_semester          = ?,
		       student_last_paid_academic_year     = ?,
		       student_payment_history = CASE
		           WHEN ? = ANY(COALESCE(student_payment_history, '{}'))
		           THEN student_payment_history
		           ELSE array_append(COALESCE(student_payment_history, '{}'), ?)
		       END,
		       student_updated_at = NOW()
		 WHERE student_id = ?
		   AND student_deleted_at IS NULL
	`, semester, academicYear, txID, txID, studentID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("student %s not found for projection update", studentID)
	}
	return nil
}
