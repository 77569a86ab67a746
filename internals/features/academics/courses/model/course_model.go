package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Course struct {
	CourseID uuid.UUID `gorm:"column:course_id;type:uuid;default:gen_random_uuid();primaryKey" json:"course_id"`

	CourseCode  string `gorm:"column:course_code;type:varchar(16);not null;uniqueIndex:uq_courses_code" json:"course_code"`
	CourseTitle string `gorm:"column:course_title;not null" json:"course_title"`

	CourseCredits      int    `gorm:"column:course_credits;not null;check:course_credits > 0" json:"course_credits"`
	CourseSemester     string `gorm:"column:course_semester;type:varchar(16);not null" json:"course_semester"`
	CourseAcademicYear string `gorm:"column:course_academic_year;type:varchar(9);not null;index:idx_courses_year" json:"course_academic_year"`

	CourseLecturerID *uuid.UUID `gorm:"column:course_lecturer_id;type:uuid;index:idx_courses_lecturer" json:"course_lecturer_id,omitempty"`

	CourseCreatedAt time.Time      `gorm:"column:course_created_at;autoCreateTime" json:"course_created_at"`
	CourseUpdatedAt time.Time      `gorm:"column:course_updated_at;autoUpdateTime" json:"course_updated_at"`
	CourseDeletedAt gorm.DeletedAt `gorm:"column:course_deleted_at;index" json:"course_deleted_at,omitempty"`
}

func (Course) TableName() string { return "courses" }
