package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	model "kampusku_backend/internals/features/academics/students/model"
)

var ErrStudentNotFound = errors.New("student not found")

type StudentRepository struct {
	DB *gorm.DB
}

func NewStudentRepository(db *gorm.DB) *StudentRepository {
	return &StudentRepository{DB: db}
}

// Exists satisfies the reconciliation engine's StudentDirectory contract.
func (r *StudentRepository) Exists(ctx context.Context, studentID uuid.UUID) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.Student{}).
		Where("student_id = ? AND student_deleted_at IS NULL", studentID).
		Count(&n).Error
	return n > 0, err
}

func (r *StudentRepository) FindByID(ctx context.Context, studentID uuid.UUID) (*model.Student, error) {
	var s model.Student
	err := r.DB.WithContext(ctx).
		First(&s, "student_id = ? AND student_deleted_at IS NULL", studentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return &s, nil
}

// NextRegNumber mints REG-<year>-NNNN from the stored maximum, per intake
// year.
func (r *StudentRepository) NextRegNumber(ctx context.Context, year int) (string, error) {
	if year <= 0 {
		year = time.Now().Year()
	}
	prefix := fmt.Sprintf("REG-%04d-", year)

	var lastSeq int
	if err := r.DB.WithContext(ctx).Raw(`
		SELECT COALESCE(MAX(RIGHT(student_reg_number, 4)::int), 0)
		FROM students
		WHERE student_reg_number LIKE ?
		  AND RIGHT(student_reg_number, 4) ~ '^[0-9]+$'
	`, prefix+"%").Scan(&lastSeq).Error; err != nil {
		return "", fmt.Errorf("reg number sequence lookup failed: %w", err)
	}

	return fmt.Sprintf("%s%04d", prefix, lastSeq+1), nil
}
