package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	courseController "kampusku_backend/internals/features/academics/courses/controller"
)

func CourseAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := courseController.NewCourseController(db)

	courses := r.Group("/courses")
	courses.Post("/", ctrl.CreateCourse)
	courses.Get("/", ctrl.ListCourses)
	courses.Get("/:id", ctrl.GetCourseByID)
	courses.Patch("/:id", ctrl.PatchCourse)
	courses.Delete("/:id", ctrl.DeleteCourse)

	courses.Post("/:id/enrollments", ctrl.EnrollStudent)
	courses.Get("/:id/enrollments", ctrl.ListEnrollments)
	courses.Delete("/:id/enrollments/:student_id", ctrl.DropEnrollment)
}
