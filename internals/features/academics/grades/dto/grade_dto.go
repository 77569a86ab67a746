package dto

import (
	"time"

	"github.com/google/uuid"

	model "kampusku_backend/internals/features/academics/grades/model"
)

type UpsertGradeRequest struct {
	EnrollmentID uuid.UUID `json:"enrollment_id" validate:"required"`
	Score        float64   `json:"score" validate:"min=0,max=100"`
}

type GradeResponse struct {
	GradeID      uuid.UUID  `json:"grade_id"`
	EnrollmentID uuid.UUID  `json:"enrollment_id"`
	Score        float64    `json:"score"`
	Letter       string     `json:"letter"`
	GradedBy     *uuid.UUID `json:"graded_by,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func FromGradeModel(m *model.Grade) GradeResponse {
	return GradeResponse{
		GradeID:      m.GradeID,
		EnrollmentID: m.GradeEnrollmentID,
		Score:        m.GradeScore,
		Letter:       m.GradeLetter,
		GradedBy:     m.GradeGradedBy,
		UpdatedAt:    m.GradeUpdatedAt,
	}
}

func FromGradeModels(rows []model.Grade) []GradeResponse {
	out := make([]GradeResponse, 0, len(rows))
	for i := range rows {
		out = append(out, FromGradeModel(&rows[i]))
	}
	return out
}

// GradeImportRow mirrors one line of the CSV upload.
type GradeImportRow struct {
	Line         int       `json:"line"`
	EnrollmentID uuid.UUID `json:"enrollment_id"`
	Score        float64   `json:"score"`
}

type GradeImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}
