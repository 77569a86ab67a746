package controller

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	dto "kampusku_backend/internals/features/academics/lecturers/dto"
	model "kampusku_backend/internals/features/academics/lecturers/model"
	helper "kampusku_backend/internals/helpers"
)

type LecturerController struct {
	DB        *gorm.DB
	Validator *validator.Validate
}

func NewLecturerController(db *gorm.DB) *LecturerController {
	return &LecturerController{DB: db, Validator: validator.New()}
}

// POST /lecturers
func (h *LecturerController) CreateLecturer(c *fiber.Ctx) error {
	var req dto.CreateLecturerRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json: "+err.Error())
	}
	if err := h.Validator.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	employeeID, err := h.nextEmployeeID(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	m := model.Lecturer{
		LecturerUserID:     req.UserID,
		LecturerEmployeeID: employeeID,
		LecturerFullName:   strings.TrimSpace(req.FullName),
		LecturerEmail:      strings.ToLower(strings.TrimSpace(req.Email)),
		LecturerDepartment: req.Department,
		LecturerTitle:      req.Title,
	}
	if err := h.DB.WithContext(c.UserContext()).Create(&m).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "create lecturer failed: "+err.Error())
	}
	return helper.JsonCreated(c, "lecturer created", dto.FromLecturerModel(&m))
}

// GET /lecturers/:id
func (h *LecturerController) GetLecturerByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid id")
	}
	var m model.Lecturer
	if err := h.DB.WithContext(c.UserContext()).
		First(&m, "lecturer_id = ? AND lecturer_deleted_at IS NULL", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "lecturer not found")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonOK(c, "ok", dto.FromLecturerModel(&m))
}

// GET /lecturers
func (h *LecturerController) ListLecturers(c *fiber.Ctx) error {
	paging := helper.ResolvePaging(c, 20, 100)

	q := h.DB.WithContext(c.UserContext()).Model(&model.Lecturer{}).
		Where("lecturer_deleted_at IS NULL")

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		like := "%" + search + "%"
		q = q.Where("lecturer_full_name ILIKE ? OR lecturer_employee_id ILIKE ?", like, like)
	}
	if dep := strings.TrimSpace(c.Query("department")); dep != "" {
		q = q.Where("lecturer_department = ?", dep)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	var rows []model.Lecturer
	if err := q.Order("lecturer_employee_id ASC").
		Offset(paging.Offset).Limit(paging.Limit).
		Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	return helper.JsonList(c, "ok", dto.FromLecturerModels(rows),
		helper.BuildPagination(total, paging.Page, paging.PerPage))
}

// PATCH /lecturers/:id
func (h *LecturerController) PatchLecturer(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid id")
	}
	var m model.Lecturer
	if err := h.DB.WithContext(c.UserContext()).
		First(&m, "lecturer_id = ? AND lecturer_deleted_at IS NULL", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "lecturer not found")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	var patch dto.UpdateLecturerRequest
	if err := c.BodyParser(&patch); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json: "+err.Error())
	}
	if err := h.Validator.Struct(patch); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	patch.Apply(&m)

	if err := h.DB.WithContext(c.UserContext()).Save(&m).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "save failed: "+err.Error())
	}
	return helper.JsonUpdated(c, "lecturer updated", dto.FromLecturerModel(&m))
}

// DELETE /lecturers/:id (soft)
func (h *LecturerController) DeleteLecturer(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid id")
	}
	res := h.DB.WithContext(c.UserContext()).
		Where("lecturer_id = ?", id).
		Delete(&model.Lecturer{})
	if res.Error != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, "lecturer not found")
	}
	return helper.JsonDeleted(c, "lecturer deleted", fiber.Map{"lecturer_id": id})
}

func (h *LecturerController) nextEmployeeID(c *fiber.Ctx) (string, error) {
	var lastSeq int
	if err := h.DB.WithContext(c.UserContext()).Raw(`
		SELECT COALESCE(MAX(RIGHT(lecturer_employee_id, 4)::int), 0)
		FROM lecturers
		WHERE lecturer_employee_id LIKE 'EMP-%'
		  AND RIGHT(lecturer_employee_id, 4) ~ '^[0-9]+$'
	`).Scan(&lastSeq).Error; err != nil {
		return "", fmt.Errorf("employee id sequence lookup failed: %w", err)
	}
	return fmt.Sprintf("EMP-%04d", lastSeq+1), nil
}
