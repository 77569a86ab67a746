package dto

import (
	"time"

	"github.com/google/uuid"

	model "kampusku_backend/internals/features/academics/lecturers/model"
)

type CreateLecturerRequest struct {
	FullName   string     `json:"full_name" validate:"required,max=120"`
	Email      string     `json:"email" validate:"required,email"`
	Department *string    `json:"department,omitempty" validate:"omitempty,max=80"`
	Title      *string    `json:"title,omitempty" validate:"omitempty,max=40"`
	UserID     *uuid.UUID `json:"user_id,omitempty"`
}

type UpdateLecturerRequest struct {
	FullName   *string `json:"full_name,omitempty" validate:"omitempty,max=120"`
	Email      *string `json:"email,omitempty" validate:"omitempty,email"`
	Department *string `json:"department,omitempty" validate:"omitempty,max=80"`
	Title      *string `json:"title,omitempty" validate:"omitempty,max=40"`
}

func (r UpdateLecturerRequest) Apply(m *model.Lecturer) {
	if r.FullName != nil {
		m.LecturerFullName = *r.FullName
	}
	if r.Email != nil {
		m.LecturerEmail = *r.Email
	}
	if r.Department != nil {
		m.LecturerDepartment = r.Department
	}
	if r.Title != nil {
		m.LecturerTitle = r.Title
	}
}

type LecturerResponse struct {
	LecturerID uuid.UUID `json:"lecturer_id"`
	EmployeeID string    `json:"employee_id"`
	FullName   string    `json:"full_name"`
	Email      string    `json:"email"`
	Department *string   `json:"department,omitempty"`
	Title      *string   `json:"title,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func FromLecturerModel(m *model.Lecturer) LecturerResponse {
	return LecturerResponse{
		LecturerID: m.LecturerID,
		EmployeeID: m.LecturerEmployeeID,
		FullName:   m.LecturerFullName,
		Email:      m.LecturerEmail,
		Department: m.LecturerDepartment,
		Title:      m.LecturerTitle,
		CreatedAt:  m.LecturerCreatedAt,
		UpdatedAt:  m.LecturerUpdatedAt,
	}
}

func FromLecturerModels(rows []model.Lecturer) []LecturerResponse {
	out := make([]LecturerResponse, 0, len(rows))
	for i := range rows {
		out = append(out, FromLecturerModel(&rows[i]))
	}
	return out
}
