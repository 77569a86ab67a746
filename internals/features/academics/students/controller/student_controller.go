package controller

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	dto "kampusku_backend/internals/features/academics/students/dto"
	model "kampusku_backend/internals/features/academics/students/model"
	"kampusku_backend/internals/features/academics/students/repository"
	helper "kampusku_backend/internals/helpers"
)

type StudentController struct {
	DB        *gorm.DB
	Validator *validator.Validate
	Repo      *repository.StudentRepository
}

func NewStudentController(db *gorm.DB) *StudentController {
	return &StudentController{
		DB:        db,
		Validator: validator.New(),
		Repo:      repository.NewStudentRepository(db),
	}
}

// POST /students
func (h *StudentController) CreateStudent(c *fiber.Ctx) error {
	var req dto.CreateStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json: "+err.Error())
	}
	if err := h.Validator.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	intake := req.IntakeYear
	if intake == 0 {
		intake = time.Now().Year()
	}
	regNumber, err := h.Repo.NextRegNumber(c.UserContext(), intake)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	m := model.Student{
		StudentUserID:                   req.UserID,
		StudentRegNumber:                regNumber,
		StudentFullName:                 strings.TrimSpace(req.FullName),
		StudentEmail:                    strings.ToLower(strings.TrimSpace(req.Email)),
		StudentDepartment:               req.Department,
		StudentLevel:                    req.Level,
		StudentCurrentTermPaymentStatus: model.TermPaymentStatusUnpaid,
	}
	if err := h.DB.WithContext(c.UserContext()).Create(&m).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "create student failed: "+err.Error())
	}
	return helper.JsonCreated(c, "student created", dto.FromStudentModel(&m))
}

// GET /students/:id
func (h *StudentController) GetStudentByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid id")
	}
	m, err := h.Repo.FindByID(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, repository.ErrStudentNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "student not found")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonOK(c, "ok", dto.FromStudentModel(m))
}

// GET /students?search=&department=&payment_status=&page=&per_page=
func (h *StudentController) ListStudents(c *fiber.Ctx) error {
	paging := helper.ResolvePaging(c, 20, 100)

	q := h.DB.WithContext(c.UserContext()).Model(&model.Student{}).
		Where("student_deleted_at IS NULL")

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		like := "%" + search + "%"
		q = q.Where("student_full_name ILIKE ? OR student_reg_number ILIKE ? OR student_email ILIKE ?", like, like, like)
	}
	if dep := strings.TrimSpace(c.Query("department")); dep != "" {
		q = q.Where("student_department = ?", dep)
	}
	if ps := strings.TrimSpace(c.Query("payment_status")); ps != "" {
		q = q.Where("student_current_term_payment_status = ?", ps)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	var rows []model.Student
	if err := q.Order("student_reg_number ASC").
		Offset(paging.Offset).Limit(paging.Limit).
		Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	return helper.JsonList(c, "ok", dto.FromStudentModels(rows),
		helper.BuildPagination(total, paging.Page, paging.PerPage))
}

// PATCH /students/:id
func (h *StudentController) PatchStudent(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid id")
	}
	m, err := h.Repo.FindByID(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, repository.ErrStudentNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "student not found")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	var patch dto.UpdateStudentRequest
	if err := c.BodyParser(&patch); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json: "+err.Error())
	}
	if err := h.Validator.Struct(patch); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	patch.Apply(m)

	if err := h.DB.WithContext(c.UserContext()).Save(m).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "save failed: "+err.Error())
	}
	return helper.JsonUpdated(c, "student updated", dto.FromStudentModel(m))
}

// DELETE /students/:id (soft)
func (h *StudentController) DeleteStudent(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid id")
	}
	res := h.DB.WithContext(c.UserContext()).
		Where("student_id = ?", id).
		Delete(&model.Student{})
	if res.Error != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, "student not found")
	}
	return helper.JsonDeleted(c, "student deleted", fiber.Map{"student_id": id})
}
