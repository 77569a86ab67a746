package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Lecturer struct {
	LecturerID uuid.UUID `gorm:"column:lecturer_id;type:uuid;default:gen_random_uuid();primaryKey" json:"lecturer_id"`

	LecturerUserID *uuid.UUID `gorm:"column:lecturer_user_id;type:uuid;index:idx_lecturers_user" json:"lecturer_user_id,omitempty"`

	LecturerEmployeeID string  `gorm:"column:lecturer_employee_id;type:varchar(12);not null;uniqueIndex:uq_lecturers_employee_id" json:"lecturer_employee_id"`
	LecturerFullName   string  `gorm:"column:lecturer_full_name;not null" json:"lecturer_full_name"`
	LecturerEmail      string  `gorm:"column:lecturer_email;not null;uniqueIndex:uq_lecturers_email" json:"lecturer_email"`
	LecturerDepartment *string `gorm:"column:lecturer_department" json:"lecturer_department,omitempty"`
	LecturerTitle      *string `gorm:"column:lecturer_title" json:"lecturer_title,omitempty"`

	LecturerCreatedAt time.Time      `gorm:"column:lecturer_created_at;autoCreateTime" json:"lecturer_created_at"`
	LecturerUpdatedAt time.Time      `gorm:"column:lecturer_updated_at;autoUpdateTime" json:"lecturer_updated_at"`
	LecturerDeletedAt gorm.DeletedAt `gorm:"column:lecturer_deleted_at;index" json:"lecturer_deleted_at,omitempty"`
}

func (Lecturer) TableName() string { return "lecturers" }
