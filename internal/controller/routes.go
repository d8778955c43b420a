package controller

import (
	"github.com/gofiber/fiber/v2"

	"clipfeed_backend/internal/middleware"
)

// SetupRoutes mounts every endpoint under /api. The Init*Controller functions must have run.
func SetupRoutes(app *fiber.App) {
	api := app.Group("/api", middleware.RequestID())

	// Auth Routes
	auth := api.Group("/auth")
	auth.Post("/register", Register)
	auth.Post("/login", Login)

	api.Get("/me", middleware.AuthMiddleware(), GetMe)
	api.Get("/me/logins", middleware.AuthMiddleware(), GetLoginHistory)

	// Wallet
	wallet := api.Group("/wallet", middleware.AuthMiddleware())
	wallet.Get("/", GetWallet)
	wallet.Post("/exchange", ExchangeCoins)
	wallet.Get("/entries", ListLedgerEntries)

	// Packages and purchases
	api.Get("/packages", ListPackages)
	subs := api.Group("/subscriptions", middleware.AuthMiddleware())
	subs.Post("/memberships", JoinMembership)
	subs.Get("/memberships", GetMyMemberships)
	subs.Post("/vip", UpgradeVip)
	subs.Get("/vip", GetMyVip)

	// Content
	api.Post("/videos", middleware.AuthMiddleware(), CreateVideo)
	api.Post("/streams", middleware.AuthMiddleware(), CreateStream)
	api.Get("/content/:kind/:id", middleware.OptionalAuth(), GetContent)
	api.Post("/content/:kind/:id/like", middleware.AuthMiddleware(), LikeContent)
	api.Delete("/content/:kind/:id/like", middleware.AuthMiddleware(), LikeContent)
	api.Get("/users/:id/content", middleware.OptionalAuth(), ListOwnerContent)
}
