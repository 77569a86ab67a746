package dto

import (
	"time"

	"github.com/google/uuid"

	model "kampusku_backend/internals/features/academics/courses/model"
)

type CreateCourseRequest struct {
	Code         string     `json:"code" validate:"required,max=16"`
	Title        string     `json:"title" validate:"required,max=160"`
	Credits      int        `json:"credits" validate:"required,min=1,max=10"`
	Semester     string     `json:"semester" validate:"required,oneof=Fall Spring Summer First Second"`
	AcademicYear string     `json:"academic_year" validate:"required,len=9"`
	LecturerID   *uuid.UUID `json:"lecturer_id,omitempty"`
}

type UpdateCourseRequest struct {
	Title      *string    `json:"title,omitempty" validate:"omitempty,max=160"`
	Credits    *int       `json:"credits,omitempty" validate:"omitempty,min=1,max=10"`
	Semester   *string    `json:"semester,omitempty" validate:"omitempty,oneof=Fall Spring Summer First Second"`
	LecturerID *uuid.UUID `json:"lecturer_id,omitempty"`
}

func (r UpdateCourseRequest) Apply(m *model.Course) {
	if r.Title != nil {
		m.CourseTitle = *r.Title
	}
	if r.Credits != nil {
		m.CourseCredits = *r.Credits
	}
	if r.Semester != nil {
		m.CourseSemester = *r.Semester
	}
	if r.LecturerID != nil {
		m.CourseLecturerID = r.LecturerID
	}
}

type CourseResponse struct {
	CourseID     uuid.UUID  `json:"course_id"`
	Code         string     `json:"code"`
	Title        string     `json:"title"`
	Credits      int        `json:"credits"`
	Semester     string     `json:"semester"`
	AcademicYear string     `json:"academic_year"`
	LecturerID   *uuid.UUID `json:"lecturer_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func FromCourseModel(m *model.Course) CourseResponse {
	return CourseResponse{
		CourseID:     m.CourseID,
		Code:         m.CourseCode,
		Title:        m.CourseTitle,
		Credits:      m.CourseCredits,
		Semester:     m.CourseSemester,
		AcademicYear: m.CourseAcademicYear,
		LecturerID:   m.CourseLecturerID,
		CreatedAt:    m.CourseCreatedAt,
		UpdatedAt:    m.CourseUpdatedAt,
	}
}

func FromCourseModels(rows []model.Course) []CourseResponse {
	out := make([]CourseResponse, 0, len(rows))
	for i := range rows {
		out = append(out, FromCourseModel(&rows[i]))
	}
	return out
}

type EnrollRequest struct {
	StudentID uuid.UUID `json:"student_id" validate:"required"`
}

type EnrollmentResponse struct {
	EnrollmentID uuid.UUID `json:"enrollment_id"`
	StudentID    uuid.UUID `json:"student_id"`
	CourseID     uuid.UUID `json:"course_id"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

func FromEnrollmentModel(m *model.Enrollment) EnrollmentResponse {
	return EnrollmentResponse{
		EnrollmentID: m.EnrollmentID,
		StudentID:    m.EnrollmentStudentID,
		CourseID:     m.EnrollmentCourseID,
		Status:       m.EnrollmentStatus,
		CreatedAt:    m.EnrollmentCreatedAt,
	}
}

func FromEnrollmentModels(rows []model.Enrollment) []EnrollmentResponse {
	out := make([]EnrollmentResponse, 0, len(rows))
	for i := range rows {
		out = append(out, FromEnrollmentModel(&rows[i]))
	}
	return out
}
