package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	studentController "kampusku_backend/internals/features/academics/students/controller"
)

// StudentAdminRoutes: registry management, admin only.
func StudentAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := studentController.NewStudentController(db)

	students := r.Group("/students")
	students.Post("/", ctrl.CreateStudent)
	students.Get("/", ctrl.ListStudents)
	students.Get("/:id", ctrl.GetStudentByID)
	students.Patch("/:id", ctrl.PatchStudent)
	students.Delete("/:id", ctrl.DeleteStudent)
}
