package dto

import (
	"time"

	"github.com/google/uuid"

	model "kampusku_backend/internals/features/academics/students/model"
)

/* =========================================================
   REQUEST DTOs
========================================================= */

type CreateStudentRequest struct {
	FullName   string  `json:"full_name" validate:"required,max=120"`
	Email      string  `json:"email" validate:"required,email"`
	Department *string `json:"department,omitempty" validate:"omitempty,max=80"`
	Level      *int    `json:"level,omitempty" validate:"omitempty,min=100,max=900"`
	IntakeYear int     `json:"intake_year" validate:"omitempty,min=2000,max=2100"`
	UserID     *uuid.UUID `json:"user_id,omitempty"`
}

type UpdateStudentRequest struct {
	FullName   *string `json:"full_name,omitempty" validate:"omitempty,max=120"`
	Email      *string `json:"email,omitempty" validate:"omitempty,email"`
	Department *string `json:"department,omitempty" validate:"omitempty,max=80"`
	Level      *int    `json:"level,omitempty" validate:"omitempty,min=100,max=900"`
}

func (r UpdateStudentRequest) Apply(m *model.Student) {
	if r.FullName != nil {
		m.StudentFullName = *r.FullName
	}
	if r.Email != nil {
		m.StudentEmail = *r.Email
	}
	if r.Department != nil {
		m.StudentDepartment = r.Department
	}
	if r.Level != nil {
		m.StudentLevel = r.Level
	}
}

/* =========================================================
   RESPONSE DTOs
========================================================= */

type StudentResponse struct {
	StudentID  uuid.UUID `json:"student_id"`
	RegNumber  string    `json:"reg_number"`
	FullName   string    `json:"full_name"`
	Email      string    `json:"email"`
	Department *string   `json:"department,omitempty"`
	Level      *int      `json:"level,omitempty"`

	CurrentTermPaymentStatus string   `json:"current_term_payment_status"`
	LastPaidSemester         *string  `json:"last_paid_semester,omitempty"`
	LastPaidAcademicYear     *string  `json:"last_paid_academic_year,omitempty"`
	PaymentHistory           []string `json:"payment_history,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func FromStudentModel(m *model.Student) StudentResponse {
	return StudentResponse{
		StudentID:  m.StudentID,
		RegNumber:  m.StudentRegNumber,
		FullName:   m.StudentFullName,
		Email:      m.StudentEmail,
		Department: m.StudentDepartment,
		Level:      m.StudentLevel,

		CurrentTermPaymentStatus: m.StudentCurrentTermPaymentStatus,
		LastPaidSemester:         m.StudentLastPaidSemester,
		LastPaidAcademicYear:     m.StudentLastPaidAcademicYear,
		PaymentHistory:           m.StudentPaymentHistory,

		CreatedAt: m.StudentCreatedAt,
		UpdatedAt: m.StudentUpdatedAt,
	}
}

func FromStudentModels(rows []model.Student) []StudentResponse {
	out := make([]StudentResponse, 0, len(rows))
	for i := range rows {
		out = append(out, FromStudentModel(&rows[i]))
	}
	return out
}
