package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	handler.ensureDependencies()

	app.Get("/healthz", handler.Health)
	registerAPIRoutes(app, handler)
}

func registerAPIRoutes(app *fiber.App, handler *Handler) {
	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", handler.Register)
	auth.Post("/login", handler.Login)
	auth.Post("/forgot-password", handler.ForgotPassword)
	auth.Post("/reset-password", handler.ResetPassword)
	auth.Post("/logout", handler.AuthRequired, handler.Logout)
	auth.Get("/me", handler.AuthRequired, handler.Me)

	api.Get("/banks", handler.ListActiveBanks)

	receipts := api.Group("/receipts", handler.AuthRequired)
	receipts.Get("", handler.ReceiptHistory)
	receipts.Post("", handler.UploadReceipt)
	receipts.Get("/:id/file", handler.ReceiptFile)
	receipts.Delete("/:id", handler.DeleteReceipt)

	admin := api.Group("/admin", handler.AuthRequired, handler.AdminOnly)

	users := admin.Group("/users")
	users.Get("", handler.ListUsers)
	users.Get("/pending", handler.ListPendingUsers)
	users.Patch("/:id", handler.UpdateUser)
	users.Delete("/:id", handler.DeleteUser)
	users.Post("/:id/approve", handler.ApproveUser)
	users.Post("/:id/reject", handler.RejectUser)

	banks := admin.Group("/banks")
	banks.Get("", handler.ListAllBanks)
	banks.Post("", handler.CreateBank)
	banks.Patch("/:id", handler.UpdateBank)
	banks.Delete("/:id", handler.DeleteBank)
	banks.Post("/:id/restore", handler.RestoreBank)

	adminReceipts := admin.Group("/receipts")
	adminReceipts.Get("", handler.ListAllReceipts)
	adminReceipts.Post("/:id/approve", handler.ApproveReceipt)
	adminReceipts.Post("/:id/reject", handler.RejectReceipt)

	admin.Get("/statistics", handler.Statistics)
}
