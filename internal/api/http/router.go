package http

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/marketplace-service/internal/api/http/handlers"
	"github.com/spec-kit/marketplace-service/internal/auth"
	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/realtime"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health          *handlers.HealthHandler
	Auth            *handlers.AuthHandler
	Users           *handlers.UsersHandler
	Jobs            *handlers.JobsHandler
	Tokens          *handlers.TokensHandler
	Devices         *handlers.DevicesHandler
	Subscriptions   *handlers.SubscriptionsHandler
	Notifications   *handlers.NotificationsHandler
	Support         *handlers.SupportHandler
	Hub             *realtime.Hub
	AuthMiddleware  *auth.AuthMiddleware
	MetricsGatherer prometheus.Gatherer
	UploadsDir      string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	if cfg.MetricsGatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.MetricsGatherer, promhttp.HandlerOpts{})))
	}

	if cfg.UploadsDir != "" {
		app.Static("/uploads", cfg.UploadsDir)
	}

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/password/update", cfg.Auth.UpdatePassword)
	authGroup.Get("/all-users", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin), cfg.Auth.ListUsers)

	userGroup := api.Group("/user", cfg.AuthMiddleware.Handle)
	userGroup.Put("/update-profile", cfg.Users.UpdateProfile)
	userGroup.Put("/update-profile-image", cfg.Users.UpdateProfileImage)

	jobs := api.Group("/jobs")
	jobs.Get("/open", cfg.Jobs.ListOpen)
	jobs.Get("/list", cfg.Jobs.ListPosted)
	jobs.Get("/collector-list", cfg.Jobs.ListCollected)
	jobs.Post("/create", cfg.AuthMiddleware.Handle, cfg.Jobs.Create)
	jobs.Post("/complete", cfg.AuthMiddleware.Handle, cfg.Jobs.Complete)
	jobs.Delete("/:id", cfg.AuthMiddleware.Handle, cfg.Jobs.Delete)

	tokens := api.Group("/token")
	tokens.Post("/create", cfg.AuthMiddleware.Handle, cfg.Tokens.Create)
	tokens.Get("/all", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin), cfg.Tokens.ListAll)
	tokens.Get("/all/:status", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin), cfg.Tokens.ListByStatus)
	tokens.Patch("/status/:quantity/:token", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin), cfg.Tokens.Issue)
	tokens.Get("/list/:mobile", cfg.Tokens.ListByMobile)
	tokens.Get("/:mobile", cfg.Tokens.GetActive)

	fcm := api.Group("/fcm", cfg.AuthMiddleware.Handle)
	fcm.Post("/save-fcm", cfg.Devices.SaveToken)
	fcm.Post("/subscribe", cfg.Devices.Subscribe)

	admin := api.Group("/admin")
	admin.Post("/subscribe", cfg.Subscriptions.Subscribe)
	admin.Get("/subscriptions", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin), cfg.Subscriptions.List)

	notification := api.Group("/notification", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin))
	notification.Post("/send", cfg.Notifications.Send)
	notification.Get("/history", cfg.Notifications.History)

	support := api.Group("/support")
	support.Post("/create", cfg.Support.Create)
	support.Get("/all", cfg.Support.List)
	support.Post("/resolve", cfg.Support.Resolve)

	if cfg.Hub != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		app.Get("/ws/dashboard", websocket.New(cfg.Hub.Handler()))
	}
}
