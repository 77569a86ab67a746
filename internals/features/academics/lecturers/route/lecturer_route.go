package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	lecturerController "kampusku_backend/internals/features/academics/lecturers/controller"
)

func LecturerAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := lecturerController.NewLecturerController(db)

	lecturers := r.Group("/lecturers")
	lecturers.Post("/", ctrl.CreateLecturer)
	lecturers.Get("/", ctrl.ListLecturers)
	lecturers.Get("/:id", ctrl.GetLecturerByID)
	lecturers.Patch("/:id", ctrl.PatchLecturer)
	lecturers.Delete("/:id", ctrl.DeleteLecturer)
}
