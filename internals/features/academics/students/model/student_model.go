package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

/* ===================== Enums (string) ===================== */

const (
	TermPaymentStatusPaid    = "paid"
	TermPaymentStatusUnpaid  = "unpaid"
	TermPaymentStatusPending = "pending"
)

/* ===================== Model ===================== */

type Student struct {
	StudentID uuid.UUID `gorm:"column:student_id;type:uuid;default:gen_random_uuid();primaryKey" json:"student_id"`

	StudentUserID *uuid.UUID `gorm:"column:student_user_id;type:uuid;index:idx_students_user" json:"student_user_id,omitempty"`

	StudentRegNumber string `gorm:"column:student_reg_number;type:varchar(20);not null;uniqueIndex:uq_students_reg_number" json:"student_reg_number"`
	StudentFullName  string `gorm:"column:student_full_name;not null" json:"student_full_name"`
	StudentEmail     string `gorm:"column:student_email;not null;uniqueIndex:uq_students_email" json:"student_email"`

	StudentDepartment *string `gorm:"column:student_department" json:"student_department,omitempty"`
	StudentLevel      *int    `gorm:"column:student_level" json:"student_level,omitempty"`

	// Payment projection — written only by the reconciliation engine.
	// payment_history is a set of transaction ids; duplicates forbidden.
	StudentCurrentTermPaymentStatus string         `gorm:"column:student_current_term_payment_status;type:varchar(10);not null;default:'unpaid'" json:"student_current_term_payment_status"`
	StudentLastPaidSemester         *string        `gorm:"column:student_last_paid_semester;type:varchar(16)" json:"student_last_paid_semester,omitempty"`
	StudentLastPaidAcademicYear     *string        `gorm:"column:student_last_paid_academic_year;type:varchar(16)" json:"student_last_paid_academic_year,omitempty"`
	StudentPaymentHistory           pq.StringArray `gorm:"column:student_payment_history;type:text[]" json:"student_payment_history,omitempty"`

	StudentCreatedAt time.Time      `gorm:"column:student_created_at;autoCreateTime" json:"student_created_at"`
	StudentUpdatedAt time.Time      `gorm:"column:student_updated_at;autoUpdateTime" json:"student_updated_at"`
	StudentDeletedAt gorm.DeletedAt `gorm:"column:student_deleted_at;index" json:"student_deleted_at,omitempty"`
}

func (Student) TableName() string { return "students" }
