package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	gradeController "kampusku_backend/internals/features/academics/grades/controller"
)

func GradeAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := gradeController.NewGradeController(db)

	r.Put("/grades", ctrl.UpsertGrade)
	r.Get("/courses/:id/grades", ctrl.ListCourseGrades)
	r.Get("/courses/:id/grades/export", ctrl.ExportCourseGrades)
	r.Post("/courses/:id/grades/import", ctrl.ImportCourseGrades)
}
