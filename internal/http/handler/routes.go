package handler

import (
	"github.com/gofiber/fiber/v2"

	"podapi/internal/http/middleware"
	"podapi/internal/service"
)

// Services bundles the use cases the HTTP layer exposes.
type Services struct {
	Auth          service.AuthService
	Files         service.FileService
	Jobs          service.JobService
	Notifications service.NotificationService
	DBConnections service.DatabaseConnectionService
}

// RegisterRoutes attaches the API routes to app. Ops endpoints other than
// /health and /healthz (metrics, swagger) are mounted by the caller.
func RegisterRoutes(app *fiber.App, db Pinger, svc Services) {
	app.Get("/", Welcome())
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", Liveness())

	authn := middleware.Auth(svc.Auth)

	a := app.Group("/auth")
	a.Post("/signup-login", SignupLogin(svc.Auth))
	a.Post("/signup", Signup(svc.Auth))
	a.Post("/login", Login(svc.Auth))
	a.Post("/forgot-password", ForgotPassword(svc.Auth))
	a.Post("/verify-otp", VerifyOTP(svc.Auth))
	a.Post("/reset-password", ResetPassword(svc.Auth))
	a.Put("/user/timezone", authn, UpdateTimezone(svc.Auth))

	f := app.Group("/files", authn)
	f.Get("/", ListFiles(svc.Files))
	f.Post("/", CreateFile(svc.Files))
	// before /:id
	f.Get("/search/", SearchFiles(svc.Files))
	f.Get("/:id", GetFile(svc.Files))
	f.Put("/:id", UpdateFile(svc.Files))
	f.Put("/:id/auto-confirm", EnableAutoConfirm(svc.Files))
	f.Delete("/:id", DeleteFile(svc.Files))
	f.Post("/:id/document", UploadDocument(svc.Files))
	f.Get("/:id/document", DocumentURL(svc.Files))
	f.Get("/:id/document/content", DocumentContent(svc.Files))

	app.Get("/history/:file_id", authn, FileHistory(svc.Files))

	j := app.Group("/jobs", authn)
	j.Post("/", CreateJob(svc.Jobs))
	j.Get("/", ListJobs(svc.Jobs))
	j.Get("/search/", SearchJobs(svc.Jobs))
	j.Get("/:id", GetJob(svc.Jobs))
	j.Put("/:id", UpdateJob(svc.Jobs))
	j.Delete("/:id", DeleteJob(svc.Jobs))

	n := app.Group("/notifications", authn)
	n.Get("/", ListNotifications(svc.Notifications))
	n.Post("/", CreateNotification(svc.Notifications))

	app.Post("/db-connection", authn, CreateDatabaseConnection(svc.DBConnections))
}
