package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	dashboardController "kampusku_backend/internals/features/home/dashboard/controller"
)

func DashboardAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := dashboardController.NewDashboardController(db)
	r.Get("/dashboard", ctrl.Overview)
}
