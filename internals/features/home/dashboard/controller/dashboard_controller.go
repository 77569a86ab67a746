package controller

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	helper "kampusku_backend/internals/helpers"
)

type DashboardController struct {
	DB *gorm.DB
}

func NewDashboardController(db *gorm.DB) *DashboardController {
	return &DashboardController{DB: db}
}

type dashboardCounts struct {
	Students  int64 `json:"students"`
	Lecturers int64 `json:"lecturers"`
	Courses   int64 `json:"courses"`
}

type termRevenue struct {
	AcademicYear string `json:"academic_year"`
	Semester     string `json:"semester"`
	Transactions int64  `json:"transactions"`
	TotalAmount  int64  `json:"total_amount"`
}

type paymentStatusSlice struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// GET /dashboard — registrar overview: registry counts, settled
// revenue per term, and the current payment-status breakdown.
func (h *DashboardController) Overview(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var counts dashboardCounts
	if err := h.DB.WithContext(ctx).Raw(`
		SELECT
			(SELECT COUNT(*) FROM students  WHERE student_deleted_at  IS NULL) AS students,
			(SELECT COUNT(*) FROM lecturers WHERE lecturer_deleted_at IS NULL) AS lecturers,
			(SELECT COUNT(*) FROM courses   WHERE course_deleted_at   IS NULL) AS courses
	`).Scan(&counts).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	var revenue []termRevenue
	if err := h.DB.WithContext(ctx).Raw(`
		SELECT transaction_academic_year AS academic_year,
		       transaction_semester      AS semester,
		       COUNT(*)                  AS transactions,
		       SUM(transaction_amount)   AS total_amount
		FROM transactions
		WHERE transaction_status = 'success'
		  AND transaction_deleted_at IS NULL
		GROUP BY transaction_academic_year, transaction_semester
		ORDER BY transaction_academic_year DESC, transaction_semester
	`).Scan(&revenue).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	var breakdown []paymentStatusSlice
	if err := h.DB.WithContext(ctx).Raw(`
		SELECT student_current_term_payment_status AS status, COUNT(*) AS count
		FROM students
		WHERE student_deleted_at IS NULL
		GROUP BY student_current_term_payment_status
		ORDER BY student_current_term_payment_status
	`).Scan(&breakdown).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	return helper.JsonOK(c, "ok", fiber.Map{
		"counts":                  counts,
		"revenue_per_term":        revenue,
		"payment_status_by_count": breakdown,
	})
}
