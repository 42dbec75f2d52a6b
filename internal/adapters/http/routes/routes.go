package routes

import (
	"time"

	"membership-portal/internal/adapters/http/handlers"
	"membership-portal/internal/adapters/http/middleware"
	"membership-portal/internal/adapters/persistence/repositories"
	"membership-portal/internal/config"
	"membership-portal/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, store repositories.Store, cfg *config.Config) {
	// Initialize services
	authService := services.NewAuthService(store, cfg)
	memberService := services.NewMemberService(store)
	paymentService := services.NewPaymentService(store)
	changeService := services.NewChangeRequestService(store)
	benefitService := services.NewBenefitService(store)
	messageService := services.NewMessageService(store)
	yearService := services.NewYearService(store)
	cardService := services.NewCardService(store)
	questionService := services.NewQuestionService(store)
	recipientService := services.NewRecipientService(store)
	dashboardService := services.NewDashboardService(store)

	// Initialize handlers
	h := &routeHandlers{
		health:    handlers.NewHealthHandler(cfg),
		auth:      handlers.NewAuthHandler(authService, cfg),
		profile:   handlers.NewProfileHandler(authService, memberService, paymentService, changeService, benefitService, cardService),
		member:    handlers.NewMemberHandler(memberService, paymentService, cardService),
		benefit:   handlers.NewBenefitHandler(benefitService),
		change:    handlers.NewChangeRequestHandler(changeService),
		message:   handlers.NewMessageHandler(messageService),
		year:      handlers.NewYearHandler(yearService),
		settings:  handlers.NewSettingsHandler(questionService, recipientService, cardService),
		dashboard: handlers.NewDashboardHandler(dashboardService),
	}

	// Health check & root routes
	app.Get("/", h.health.Root)
	app.Get("/health", h.health.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	setupAPIV1Routes(app.Group("/api/v1"), h, cfg)
}

type routeHandlers struct {
	health    *handlers.HealthHandler
	auth      *handlers.AuthHandler
	profile   *handlers.ProfileHandler
	member    *handlers.MemberHandler
	benefit   *handlers.BenefitHandler
	change    *handlers.ChangeRequestHandler
	message   *handlers.MessageHandler
	year      *handlers.YearHandler
	settings  *handlers.SettingsHandler
	dashboard *handlers.DashboardHandler
}

// setupAPIV1Routes configures API v1 routes
func setupAPIV1Routes(router fiber.Router, h *routeHandlers, cfg *config.Config) {
	router.Get("/", h.health.APIInfo)

	// Auth routes (public)
	setupAuthRoutes(router.Group("/auth"), h.auth, cfg)

	// Public form data
	publicCache := middleware.PublicCache(5 * time.Minute)
	router.Get("/questions", publicCache, h.settings.PublicQuestions)
	router.Get("/payment-recipients", publicCache, h.settings.PublicRecipients)
	router.Get("/years/active", h.year.Active)

	// Profile routes (authenticated members)
	profileRoutes := router.Group("/profile", middleware.AuthMiddleware(cfg), middleware.NoCacheHeaders())
	setupProfileRoutes(profileRoutes, h.profile)

	// Notification routes (authenticated members)
	notificationRoutes := router.Group("/notifications", middleware.AuthMiddleware(cfg), middleware.NoCacheHeaders())
	setupNotificationRoutes(notificationRoutes, h.message)

	// Admin routes; capabilities and mandalam scope are enforced per service call
	adminRoutes := router.Group("/admin", middleware.AuthMiddleware(cfg), middleware.AdminOnly(), middleware.NoCacheHeaders())
	setupAdminRoutes(adminRoutes, h)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	limit := middleware.AuthRateLimiter(cfg)

	// Public routes
	router.Post("/register", limit, handler.Register)
	router.Post("/login", limit, handler.Login)
	router.Post("/refresh", limit, handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupProfileRoutes configures the member's own routes
func setupProfileRoutes(router fiber.Router, handler *handlers.ProfileHandler) {
	router.Get("/", handler.GetProfile)
	router.Put("/fields", handler.UpdateField)
	router.Get("/change-requests", handler.ChangeRequests)
	router.Get("/fee", handler.Fee)
	router.Post("/payment", handler.SubmitPayment)
	router.Get("/benefits", handler.Benefits)
	router.Get("/card", handler.Card)
	router.Put("/password", handler.ChangePassword)
}

// setupNotificationRoutes configures the member inbox
func setupNotificationRoutes(router fiber.Router, handler *handlers.MessageHandler) {
	router.Get("/", handler.Inbox)
	router.Get("/unread-count", handler.UnreadCount)
	router.Put("/read-all", handler.MarkAllRead)
	router.Put("/:id/read", handler.MarkRead)
}

// setupAdminRoutes configures admin routes
func setupAdminRoutes(router fiber.Router, h *routeHandlers) {
	router.Get("/dashboard", h.dashboard.GetAdminDashboard)

	// Members
	members := router.Group("/members")
	members.Get("/", h.member.ListMembers)
	members.Get("/:id", h.member.GetMember)
	members.Put("/:id", h.member.UpdateMember)
	members.Put("/:id/approval", h.member.SetApproval)
	members.Put("/:id/status", h.member.SetStatus)
	members.Put("/:id/role", h.member.AssignRole)
	members.Put("/:id/payment", h.member.ResolvePayment)
	members.Get("/:id/card", h.member.MemberCard)

	// Benefits
	members.Get("/:id/benefits", h.benefit.List)
	members.Post("/:id/benefits", h.benefit.Create)
	members.Put("/:id/benefits/:benefitId", h.benefit.Update)
	members.Delete("/:id/benefits/:benefitId", h.benefit.Delete)

	router.Get("/admins", h.member.ListAdmins)
	router.Get("/payments/pending", h.member.PendingPayments)

	// Change requests
	router.Get("/change-requests", h.change.ListPending)
	router.Put("/change-requests/:id/review", h.change.Review)

	// Messages
	router.Post("/messages", h.message.Send)
	templates := router.Group("/message-templates")
	templates.Get("/", h.message.ListTemplates)
	templates.Post("/", h.message.CreateTemplate)
	templates.Put("/:id", h.message.UpdateTemplate)
	templates.Delete("/:id", h.message.DeleteTemplate)

	// Years
	years := router.Group("/years")
	years.Get("/", h.year.List)
	years.Post("/", h.year.Create)
	years.Put("/:year/activate", h.year.Activate)

	// Settings
	questions := router.Group("/questions")
	questions.Get("/", h.settings.ListQuestions)
	questions.Post("/", h.settings.CreateQuestion)
	questions.Put("/:id", h.settings.UpdateQuestion)
	questions.Delete("/:id", h.settings.DeleteQuestion)

	recipients := router.Group("/payment-recipients")
	recipients.Get("/", h.settings.ListRecipients)
	recipients.Post("/", h.settings.CreateRecipient)
	recipients.Put("/:id", h.settings.UpdateRecipient)
	recipients.Delete("/:id", h.settings.DeleteRecipient)

	cards := router.Group("/card-templates")
	cards.Get("/", h.settings.ListCardTemplates)
	cards.Post("/", h.settings.CreateCardTemplate)
	cards.Put("/:id", h.settings.UpdateCardTemplate)
	cards.Delete("/:id", h.settings.DeleteCardTemplate)
}
