package route

import (
	"github.com/gofiber/fiber/v2"

	authController "kampusku_backend/internals/features/users/auth/controller"
	service "kampusku_backend/internals/features/users/auth/service"
)

// AuthRoutes: public entry points. Logout sits here too because it
// carries its own bearer token.
func AuthRoutes(r fiber.Router, svc *service.AuthService) {
	ctrl := authController.NewAuthController(svc)

	auth := r.Group("/auth")
	auth.Post("/register", ctrl.Register)
	auth.Post("/login", ctrl.Login)
	auth.Post("/google", ctrl.GoogleLogin)
	auth.Post("/refresh", ctrl.Refresh)
	auth.Post("/logout", ctrl.Logout)
}
