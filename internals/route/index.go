package route

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kampusku_backend/internals/configs"
	courseRoute "kampusku_backend/internals/features/academics/courses/route"
	gradeRoute "kampusku_backend/internals/features/academics/grades/route"
	lecturerRoute "kampusku_backend/internals/features/academics/lecturers/route"
	studentRepo "kampusku_backend/internals/features/academics/students/repository"
	studentRoute "kampusku_backend/internals/features/academics/students/route"
	paymentController "kampusku_backend/internals/features/finance/payments/controller"
	"kampusku_backend/internals/features/finance/payments/gateway"
	paymentRepo "kampusku_backend/internals/features/finance/payments/repository"
	paymentRoute "kampusku_backend/internals/features/finance/payments/route"
	paymentService "kampusku_backend/internals/features/finance/payments/service"
	dashboardRoute "kampusku_backend/internals/features/home/dashboard/route"
	authRoute "kampusku_backend/internals/features/users/auth/route"
	authService "kampusku_backend/internals/features/users/auth/service"
	userModel "kampusku_backend/internals/features/users/auth/model"
	authMw "kampusku_backend/internals/middlewares/auth"
)

// SetupRoutes wires the whole HTTP surface:
//
//	/api/auth          public auth endpoints
//	/payments/webhook  public, signature-gated
//	/api/u             any authenticated user
//	/api/a             admin / registrar only
func SetupRoutes(app *fiber.App, db *gorm.DB, cfg configs.Config) {
	registry := buildGatewayRegistry(cfg.Payment)

	engine := paymentService.NewReconcileEngine(
		paymentRepo.NewTransactionRepository(db),
		paymentService.NewStudentProjection(db),
		studentRepo.NewStudentRepository(db),
		registry,
	)
	payCtrl := paymentController.NewPaymentController(db, engine)

	authSvc := authService.NewAuthService(db, cfg.JWTSecret, cfg.JWTRefreshSecret, cfg.GoogleClientID)

	// Public: auth + provider webhooks (trust = HMAC signature, not JWT).
	api := app.Group("/api")
	authRoute.AuthRoutes(api, authSvc)
	paymentRoute.PaymentWebhookRoutes(app, payCtrl)

	jwtGuard := authMw.AuthJWT(authMw.AuthJWTOpts{
		Secret: cfg.JWTSecret,
		BlacklistChecker: func(raw string) (bool, error) {
			return authSvc.IsBlacklisted(context.Background(), raw)
		},
		AllowCookieFallback: true,
	})

	// Authenticated user space.
	userGroup := api.Group("/u", jwtGuard)
	paymentRoute.PaymentUserRoutes(userGroup, payCtrl)

	// Staff space.
	adminGroup := api.Group("/a", jwtGuard,
		authMw.RequireRole(userModel.RoleAdmin, userModel.RoleRegistrar))
	studentRoute.StudentAdminRoutes(adminGroup, db)
	lecturerRoute.LecturerAdminRoutes(adminGroup, db)
	courseRoute.CourseAdminRoutes(adminGroup, db)
	gradeRoute.GradeAdminRoutes(adminGroup, db)
	dashboardRoute.DashboardAdminRoutes(adminGroup, db)
	paymentRoute.PaymentAdminRoutes(adminGroup, payCtrl)
}

func buildGatewayRegistry(p configs.PaymentConfig) *gateway.Registry {
	var providers []gateway.Provider
	if p.PaystackSecretKey != "" {
		providers = append(providers,
			gateway.NewPaystackProvider(p.PaystackSecretKey, p.PaystackBaseURL, p.GatewayTimeout))
	}
	if p.MidtransServerKey != "" {
		providers = append(providers,
			gateway.NewMidtransProvider(p.MidtransServerKey, p.MidtransUseProd))
	}
	return gateway.NewRegistry(p.DefaultProvider, providers...)
}
