package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleAdmin     = "admin"
	RoleRegistrar = "registrar"
	RoleStudent   = "student"
)

type User struct {
	UserID uuid.UUID `gorm:"column:user_id;type:uuid;default:gen_random_uuid();primaryKey" json:"user_id"`

	UserName  string `gorm:"column:user_name;not null" json:"user_name"`
	UserEmail string `gorm:"column:user_email;not null;uniqueIndex:uq_users_email" json:"user_email"`

	// Null for accounts that only sign in with Google.
	UserPassword *string `gorm:"column:user_password" json:"-"`
	UserGoogleID *string `gorm:"column:user_google_id;uniqueIndex:uq_users_google_id" json:"-"`

	UserRole string `gorm:"column:user_role;type:varchar(16);not null;default:'student'" json:"user_role"`

	UserStudentID *uuid.UUID `gorm:"column:user_student_id;type:uuid;index:idx_users_student" json:"user_student_id,omitempty"`

	UserCreatedAt time.Time      `gorm:"column:user_created_at;autoCreateTime" json:"user_created_at"`
	UserUpdatedAt time.Time      `gorm:"column:user_updated_at;autoUpdateTime" json:"user_updated_at"`
	UserDeletedAt gorm.DeletedAt `gorm:"column:user_deleted_at;index" json:"user_deleted_at,omitempty"`
}

func (User) TableName() string { return "users" }
