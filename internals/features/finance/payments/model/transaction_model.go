package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* ===================== Enums (string) ===================== */

const (
	TransactionStatusPending = "pending"
	TransactionStatusSuccess = "success"
	TransactionStatusFailed  = "failed"
)

const (
	GatewayProviderPaystack = "paystack"
	GatewayProviderMidtrans = "midtrans"
)

/* ===================== Model ===================== */

// Transaction is one payment attempt against the gateway. The provider
// reference is globally unique and is the idempotency key for every
// reconciliation trigger (client verify call, webhook delivery).
type Transaction struct {
	TransactionID uuid.UUID `gorm:"column:transaction_id;type:uuid;default:gen_random_uuid();primaryKey" json:"transaction_id"`

	TransactionStudentID uuid.UUID `gorm:"column:transaction_student_id;type:uuid;not null;index:idx_transactions_student" json:"transaction_student_id"`

	TransactionProvider          string `gorm:"column:transaction_provider;type:varchar(16);not null;default:'paystack'" json:"transaction_provider"`
	TransactionProviderReference string `gorm:"column:transaction_provider_reference;not null;uniqueIndex:uq_transactions_provider_reference" json:"transaction_provider_reference"`

	// Amount in the provider's smallest currency unit (kobo, cents).
	TransactionAmount   int64  `gorm:"column:transaction_amount;not null;check:transaction_amount > 0" json:"transaction_amount"`
	TransactionCurrency string `gorm:"column:transaction_currency;type:varchar(3);not null" json:"transaction_currency"`

	TransactionStatus string `gorm:"column:transaction_status;type:varchar(16);not null;default:'pending'" json:"transaction_status"`

	// Billing period this payment covers.
	TransactionAcademicYear string `gorm:"column:transaction_academic_year;type:varchar(16);not null" json:"transaction_academic_year"`
	TransactionSemester     string `gorm:"column:transaction_semester;type:varchar(16);not null" json:"transaction_semester"`

	TransactionDescription      *string `gorm:"column:transaction_description" json:"transaction_description,omitempty"`
	TransactionAuthorizationURL *string `gorm:"column:transaction_authorization_url" json:"transaction_authorization_url,omitempty"`

	// Set only on the transition to success, never afterwards.
	TransactionPaidAt *time.Time `gorm:"column:transaction_paid_at" json:"transaction_paid_at,omitempty"`

	TransactionCreatedAt time.Time      `gorm:"column:transaction_created_at;autoCreateTime" json:"transaction_created_at"`
	TransactionUpdatedAt time.Time      `gorm:"column:transaction_updated_at;autoUpdateTime" json:"transaction_updated_at"`
	TransactionDeletedAt gorm.DeletedAt `gorm:"column:transaction_deleted_at;index" json:"transaction_deleted_at,omitempty"`
}

func (Transaction) TableName() string { return "transactions" }

/* ===================== Helpers ===================== */

func (t *Transaction) IsTerminal() bool {
	return t.TransactionStatus == TransactionStatusSuccess || t.TransactionStatus == TransactionStatusFailed
}

func IsTerminalStatus(s string) bool {
	return s == TransactionStatusSuccess || s == TransactionStatusFailed
}
