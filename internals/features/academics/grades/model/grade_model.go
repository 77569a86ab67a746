package model

import (
	"time"

	"github.com/google/uuid"
)

// Grade holds the final score for one enrollment. One row per
// enrollment, upserted on re-entry.
type Grade struct {
	GradeID uuid.UUID `gorm:"column:grade_id;type:uuid;default:gen_random_uuid();primaryKey" json:"grade_id"`

	GradeEnrollmentID uuid.UUID `gorm:"column:grade_enrollment_id;type:uuid;not null;uniqueIndex:uq_grades_enrollment" json:"grade_enrollment_id"`

	GradeScore  float64 `gorm:"column:grade_score;not null;check:grade_score >= 0 AND grade_score <= 100" json:"grade_score"`
	GradeLetter string  `gorm:"column:grade_letter;type:varchar(2);not null" json:"grade_letter"`

	GradeGradedBy *uuid.UUID `gorm:"column:grade_graded_by;type:uuid" json:"grade_graded_by,omitempty"`

	GradeCreatedAt time.Time `gorm:"column:grade_created_at;autoCreateTime" json:"grade_created_at"`
	GradeUpdatedAt time.Time `gorm:"column:grade_updated_at;autoUpdateTime" json:"grade_updated_at"`
}

func (Grade) TableName() string { return "grades" }

// LetterFor maps a 0-100 score to the campus letter scale.
func LetterFor(score float64) string {
	switch {
	case score >= 85:
		return "A"
	case score >= 75:
		return "B"
	case score >= 65:
		return "C"
	case score >= 50:
		return "D"
	default:
		return "E"
	}
}
