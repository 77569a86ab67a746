package dto

import (
	"time"

	"github.com/google/uuid"

	model "kampusku_backend/internals/features/finance/payments/model"
)

/* =========================================================
   REQUEST DTOs
========================================================= */

type InitiatePaymentRequest struct {
	StudentID    uuid.UUID `json:"student_id" validate:"required"`
	Amount       int64     `json:"amount" validate:"required,gt=0"`
	Currency     string    `json:"currency" validate:"required,len=3,alpha"`
	AcademicYear string    `json:"academic_year" validate:"required,max=16"`
	Semester     string    `json:"semester" validate:"required,oneof=Fall Spring Summer First Second"`
	PayerEmail   string    `json:"payer_email" validate:"required,email"`
	Description  string    `json:"description" validate:"omitempty,max=255"`
	Provider     string    `json:"provider" validate:"omitempty,oneof=paystack midtrans"`
}

/* =========================================================
   RESPONSE DTOs
========================================================= */

type TransactionResponse struct {
	TransactionID     uuid.UUID  `json:"transaction_id"`
	StudentID         uuid.UUID  `json:"student_id"`
	Provider          string     `json:"provider"`
	ProviderReference string     `json:"provider_reference"`
	Amount            int64      `json:"amount"`
	Currency          string     `json:"currency"`
	Status            string     `json:"status"`
	AcademicYear      string     `json:"academic_year"`
	Semester          string     `json:"semester"`
	Description       *string    `json:"description,omitempty"`
	AuthorizationURL  *string    `json:"authorization_url,omitempty"`
	PaidAt            *time.Time `json:"paid_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

type InitiatePaymentResponse struct {
	TransactionID     uuid.UUID `json:"internal_transaction_id"`
	ProviderReference string    `json:"provider_reference"`
	AuthorizationURL  string    `json:"authorization_url"`
}

type VerifyPaymentResponse struct {
	ProviderStatus string              `json:"provider_status"`
	Transaction    TransactionResponse `json:"transaction"`
}

/* =========================================================
   MAPPERS
========================================================= */

func FromTransactionModel(m *model.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:     m.TransactionID,
		StudentID:         m.TransactionStudentID,
		Provider:          m.TransactionProvider,
		ProviderReference: m.TransactionProviderReference,
		Amount:            m.TransactionAmount,
		Currency:          m.TransactionCurrency,
		Status:            m.TransactionStatus,
		AcademicYear:      m.TransactionAcademicYear,
		Semester:          m.TransactionSemester,
		Description:       m.TransactionDescription,
		AuthorizationURL:  m.TransactionAuthorizationURL,
		PaidAt:            m.TransactionPaidAt,
		CreatedAt:         m.TransactionCreatedAt,
		UpdatedAt:         m.TransactionUpdatedAt,
	}
}

func FromTransactionModels(rows []model.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(rows))
	for i := range rows {
		out = append(out, FromTransactionModel(&rows[i]))
	}
	return out
}
