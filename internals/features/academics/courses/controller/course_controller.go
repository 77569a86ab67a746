package controller

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	dto "kampusku_backend/internals/features/academics/courses/dto"
	model "kampusku_backend/internals/features/academics/courses/model"
	helper "kampusku_backend/internals/helpers"
)

type CourseController struct {
	DB        *gorm.DB
	Validator *validator.Validate
}

func NewCourseController(db *gorm.DB) *CourseController {
	return &CourseController{DB: db, Validator: validator.New()}
}

/* =========================
   Courses
   ========================= */

// POST /courses
func (h *CourseController) CreateCourse(c *fiber.Ctx) error {
	var req dto.CreateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json: "+err.Error())
	}
	if err := h.Validator.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	m := model.Course{
		CourseCode:         strings.ToUpper(strings.TrimSpace(req.Code)),
		CourseTitle:        strings.TrimSpace(req.Title),
		CourseCredits:      req.Credits,
		CourseSemester:     req.Semester,
		CourseAcademicYear: req.AcademicYear,
		CourseLecturerID:   req.LecturerID,
	}
	if err := h.DB.WithContext(c.UserContext()).Create(&m).Error; err != nil {
		if isUniqueViolation(err) {
			return helper.JsonError(c, fiber.StatusConflict, "course code already exists")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "create course failed: "+err.Error())
	}
	return helper.JsonCreated(c, "course created", dto.FromCourseModel(&m))
}

// GET /courses/:id
func (h *CourseController) GetCourseByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid id")
	}
	var m model.Course
	if err := h.DB.WithContext(c.UserContext()).
		First(&m, "course_id = ? AND course_deleted_at IS NULL", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "course not found")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonOK(c, "ok", dto.FromCourseModel(&m))
}

// GET /courses
func (h *CourseController) ListCourses(c *fiber.Ctx) error {
	paging := helper.ResolvePaging(c, 20, 100)

	q := h.DB.WithContext(c.UserContext()).Model(&model.Course{}).
		Where("course_deleted_at IS NULL")

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		like := "%" + search + "%"
		q = q.Where("course_code ILIKE ? OR course_title ILIKE ?", like, like)
	}
	if year := strings.TrimSpace(c.Query("academic_year")); year != "" {
		q = q.Where("course_academic_year = ?", year)
	}
	if sem := strings.TrimSpace(c.Query("semester")); sem != "" {
		q = q.Where("course_semester = ?", sem)
	}
	if lecturer := strings.TrimSpace(c.Query("lecturer_id")); lecturer != "" {
		lid, err := uuid.Parse(lecturer)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "invalid lecturer_id")
		}
		q = q.Where("course_lecturer_id = ?", lid)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	var rows []model.Course
	if err := q.Order("course_code ASC").
		Offset(paging.Offset).Limit(paging.Limit).
		Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	return helper.JsonList(c, "ok", dto.FromCourseModels(rows),
		helper.BuildPagination(total, paging.Page, paging.PerPage))
}

// PATCH /courses/:id
func (h *CourseController) PatchCourse(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid id")
	}
	var m model.Course
	if err := h.DB.WithContext(c.UserContext()).
		First(&m, "course_id = ? AND course_deleted_at IS NULL", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "course not found")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	var patch dto.UpdateCourseRequest
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
	return helper.JsonUpdated(c, "course updated", dto.FromCourseModel(&m))
}

// DELETE /courses/:id (soft)
func (h *CourseController) DeleteCourse(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid id")
	}
	res := h.DB.WithContext(c.UserContext()).
		Where("course_id = ?", id).
		Delete(&model.Course{})
	if res.Error != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, "course not found")
	}
	return helper.JsonDeleted(c, "course deleted", fiber.Map{"course_id": id})
}

/* =========================
   Enrollments
   ========================= */

// POST /courses/:id/enrollments
func (h *CourseController) EnrollStudent(c *fiber.Ctx) error {
	courseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid course id")
	}

	var req dto.EnrollRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json: "+err.Error())
	}
	if err := h.Validator.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	var exists int64
	if err := h.DB.WithContext(c.UserContext()).Model(&model.Course{}).
		Where("course_id = ? AND course_deleted_at IS NULL", courseID).
		Count(&exists).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	if exists == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, "course not found")
	}

	// Dropped enrollments keep the unique slot, so re-enroll reactivates.
	var existing model.Enrollment
	err = h.DB.WithContext(c.UserContext()).
		First(&existing, "enrollment_student_id = ? AND enrollment_course_id = ?", req.StudentID, courseID).Error
	switch {
	case err == nil:
		if existing.EnrollmentStatus == model.EnrollmentStatusActive {
			return helper.JsonError(c, fiber.StatusConflict, "student already enrolled")
		}
		existing.EnrollmentStatus = model.EnrollmentStatusActive
		if err := h.DB.WithContext(c.UserContext()).Save(&existing).Error; err != nil {
			return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
		}
		return helper.JsonUpdated(c, "enrollment reactivated", dto.FromEnrollmentModel(&existing))
	case errors.Is(err, gorm.ErrRecordNotFound):
		// fall through to insert
	default:
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	m := model.Enrollment{
		EnrollmentStudentID: req.StudentID,
		EnrollmentCourseID:  courseID,
		EnrollmentStatus:    model.EnrollmentStatusActive,
	}
	if err := h.DB.WithContext(c.UserContext()).Create(&m).Error; err != nil {
		if isUniqueViolation(err) {
			return helper.JsonError(c, fiber.StatusConflict, "student already enrolled")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "enroll failed: "+err.Error())
	}
	return helper.JsonCreated(c, "student enrolled", dto.FromEnrollmentModel(&m))
}

// GET /courses/:id/enrollments
func (h *CourseController) ListEnrollments(c *fiber.Ctx) error {
	courseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid course id")
	}
	paging := helper.ResolvePaging(c, 50, 200)

	q := h.DB.WithContext(c.UserContext()).Model(&model.Enrollment{}).
		Where("enrollment_course_id = ? AND enrollment_deleted_at IS NULL", courseID)
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		q = q.Where("enrollment_status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	var rows []model.Enrollment
	if err := q.Order("enrollment_created_at ASC").
		Offset(paging.Offset).Limit(paging.Limit).
		Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	return helper.JsonList(c, "ok", dto.FromEnrollmentModels(rows),
		helper.BuildPagination(total, paging.Page, paging.PerPage))
}

// DELETE /courses/:id/enrollments/:student_id (drop, keeps the row)
func (h *CourseController) DropEnrollment(c *fiber.Ctx) error {
	courseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid course id")
	}
	studentID, err := uuid.Parse(c.Params("student_id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid student id")
	}

	res := h.DB.WithContext(c.UserContext()).Model(&model.Enrollment{}).
		Where("enrollment_course_id = ? AND enrollment_student_id = ? AND enrollment_status = ?",
			courseID, studentID, model.EnrollmentStatusActive).
		Update("enrollment_status", model.EnrollmentStatusDropped)
	if res.Error != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, "active enrollment not found")
	}
	return helper.JsonUpdated(c, "enrollment dropped", fiber.Map{
		"course_id":  courseID,
		"student_id": studentID,
	})
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
