package controller

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	courseModel "kampusku_backend/internals/features/academics/courses/model"
	dto "kampusku_backend/internals/features/academics/grades/dto"
	model "kampusku_backend/internals/features/academics/grades/model"
	helper "kampusku_backend/internals/helpers"
)

type GradeController struct {
	DB        *gorm.DB
	Validator *validator.Validate
}

func NewGradeController(db *gorm.DB) *GradeController {
	return &GradeController{DB: db, Validator: validator.New()}
}

// PUT /grades — idempotent upsert keyed on the enrollment.
func (h *GradeController) UpsertGrade(c *fiber.Ctx) error {
	var req dto.UpsertGradeRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json: "+err.Error())
	}
	if err := h.Validator.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	var active int64
	if err := h.DB.WithContext(c.UserContext()).Model(&courseModel.Enrollment{}).
		Where("enrollment_id = ? AND enrollment_status = ? AND enrollment_deleted_at IS NULL",
			req.EnrollmentID, courseModel.EnrollmentStatusActive).
		Count(&active).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	if active == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, "active enrollment not found")
	}

	gradedBy, _ := helper.GetUserIDFromToken(c)

	m, err := h.upsert(c, req.EnrollmentID, req.Score, gradedBy)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "grade upsert failed: "+err.Error())
	}
	return helper.JsonUpdated(c, "grade recorded", dto.FromGradeModel(m))
}

// GET /courses/:id/grades
func (h *GradeController) ListCourseGrades(c *fiber.Ctx) error {
	courseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid course id")
	}
	paging := helper.ResolvePaging(c, 50, 200)

	base := h.DB.WithContext(c.UserContext()).Model(&model.Grade{}).
		Joins("JOIN enrollments ON enrollments.enrollment_id = grades.grade_enrollment_id").
		Where("enrollments.enrollment_course_id = ?", courseID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	var rows []model.Grade
	if err := base.Order("grades.grade_updated_at DESC").
		Offset(paging.Offset).Limit(paging.Limit).
		Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	return helper.JsonList(c, "ok", dto.FromGradeModels(rows),
		helper.BuildPagination(total, paging.Page, paging.PerPage))
}

type gradeExportRow struct {
	EnrollmentID string
	RegNumber    string
	FullName     string
	Score        float64
	Letter       string
}

// GET /courses/:id/grades/export — CSV download for the registrar.
func (h *GradeController) ExportCourseGrades(c *fiber.Ctx) error {
	courseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid course id")
	}

	var rows []gradeExportRow
	if err := h.DB.WithContext(c.UserContext()).Raw(`
		SELECT e.enrollment_id::text AS enrollment_id,
		       s.student_reg_number  AS reg_number,
		       s.student_full_name   AS full_name,
		       COALESCE(g.grade_score, 0)    AS score,
		       COALESCE(g.grade_letter, '-') AS letter
		FROM enrollments e
		JOIN students s ON s.student_id = e.enrollment_student_id
		LEFT JOIN grades g ON g.grade_enrollment_id = e.enrollment_id
		WHERE e.enrollment_course_id = ?
		  AND e.enrollment_deleted_at IS NULL
		ORDER BY s.student_reg_number
	`, courseID).Scan(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	var b strings.Builder
	w := csv.NewWriter(&b)
	_ = w.Write([]string{"enrollment_id", "reg_number", "full_name", "score", "letter"})
	for _, r := range rows {
		_ = w.Write([]string{
			r.EnrollmentID,
			r.RegNumber,
			r.FullName,
			strconv.FormatFloat(r.Score, 'f', 2, 64),
			r.Letter,
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="grades-%s.csv"`, courseID))
	return c.SendString(b.String())
}

// POST /courses/:id/grades/import — multipart CSV upload.
// Header row expected: enrollment_id,score. Rows with unknown or
// inactive enrollments are skipped, not failed wholesale.
func (h *GradeController) ImportCourseGrades(c *fiber.Ctx) error {
	courseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid course id")
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "missing csv file")
	}
	f, err := fh.Open()
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "cannot open upload: "+err.Error())
	}
	defer f.Close()

	gradedBy, _ := helper.GetUserIDFromToken(c)

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	result := dto.GradeImportResult{}
	line := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "malformed csv: "+err.Error())
		}
		line++
		if line == 1 && len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[0]), "enrollment_id") {
			continue
		}
		if len(record) < 2 {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: expected 2 columns", line))
			continue
		}

		enrollmentID, err := uuid.Parse(strings.TrimSpace(record[0]))
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: invalid enrollment_id", line))
			continue
		}
		score, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if err != nil || score < 0 || score > 100 {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: invalid score", line))
			continue
		}

		var active int64
		if err := h.DB.WithContext(c.UserContext()).Model(&courseModel.Enrollment{}).
			Where("enrollment_id = ? AND enrollment_course_id = ? AND enrollment_status = ? AND enrollment_deleted_at IS NULL",
				enrollmentID, courseID, courseModel.EnrollmentStatusActive).
			Count(&active).Error; err != nil {
			return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
		}
		if active == 0 {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: enrollment not in this course", line))
			continue
		}

		if _, err := h.upsert(c, enrollmentID, score, gradedBy); err != nil {
			return helper.JsonError(c, fiber.StatusInternalServerError, "grade upsert failed: "+err.Error())
		}
		result.Imported++
	}

	return helper.JsonOK(c, "import finished", result)
}

func (h *GradeController) upsert(c *fiber.Ctx, enrollmentID uuid.UUID, score float64, gradedBy uuid.UUID) (*model.Grade, error) {
	letter := model.LetterFor(score)

	var by *uuid.UUID
	if gradedBy != uuid.Nil {
		by = &gradedBy
	}

	if err := h.DB.WithContext(c.UserContext()).Exec(`
		INSERT INTO grades (grade_enrollment_id, grade_score, grade_letter, grade_graded_by)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (grade_enrollment_id) DO UPDATE
		SET grade_score = EXCLUDED.grade_score,
		    grade_letter = EXCLUDED.grade_letter,
		    grade_graded_by = EXCLUDED.grade_graded_by,
		    grade_updated_at = NOW()
	`, enrollmentID, score, letter, by).Error; err != nil {
		return nil, err
	}

	var m model.Grade
	if err := h.DB.WithContext(c.UserContext()).
		First(&m, "grade_enrollment_id = ?", enrollmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("grade row missing after upsert")
		}
		return nil, err
	}
	return &m, nil
}
