package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	EnrollmentStatusActive  = "active"
	EnrollmentStatusDropped = "dropped"
)

// Enrollment links a student to a course. One row per pair, dropped
// rows keep the unique slot so a re-enroll reactivates instead of
// inserting a duplicate.
type Enrollment struct {
	EnrollmentID uuid.UUID `gorm:"column:enrollment_id;type:uuid;default:gen_random_uuid();primaryKey" json:"enrollment_id"`

	EnrollmentStudentID uuid.UUID `gorm:"column:enrollment_student_id;type:uuid;not null;uniqueIndex:uq_enrollments_student_course;index:idx_enrollments_student" json:"enrollment_student_id"`
	EnrollmentCourseID  uuid.UUID `gorm:"column:enrollment_course_id;type:uuid;not null;uniqueIndex:uq_enrollments_student_course;index:idx_enrollments_course" json:"enrollment_course_id"`

	EnrollmentStatus string `gorm:"column:enrollment_status;type:varchar(12);not null;default:'active'" json:"enrollment_status"`

	EnrollmentCreatedAt time.Time      `gorm:"column:enrollment_created_at;autoCreateTime" json:"enrollment_created_at"`
	EnrollmentUpdatedAt time.Time      `gorm:"column:enrollment_updated_at;autoUpdateTime" json:"enrollment_updated_at"`
	EnrollmentDeletedAt gorm.DeletedAt `gorm:"column:enrollment_deleted_at;index" json:"enrollment_deleted_at,omitempty"`
}

func (Enrollment) TableName() string { return "enrollments" }
