package main

import (
	"io"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"shopreel/internal/config"
	"shopreel/internal/http/handlers"
	applog "shopreel/internal/log"
	"shopreel/internal/repos"
	"shopreel/internal/services"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	// Auth wiring
	userRepo := repos.NewUserRepo(db)
	authSvc := &services.AuthService{Users: userRepo}
	authH := &handlers.AuthHandler{Auth: authSvc}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Log and avoid leaking internals
			applog.Error(c, "server.error", err, nil)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"msg": "Something went wrong. Please try again.",
			})
		},
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: time.Minute,
	}))

	// ---------- Routes ----------
	deps := handlers.NewDeps(db, cfg)
	api := app.Group("/api/v1")

	// Auth (login throttled)
	api.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"msg": "Too many attempts. Please try again later."})
		},
	}), authH.Login)
	api.Post("/logout", authH.Logout)

	// Catalog & promo
	api.Get("/products/:id", deps.ProductHandler.Detail)
	api.Post("/promo/validate", deps.PromoHandler.Validate)

	// Buyer: addresses, orders, notifications
	user := api.Group("", handlers.RequireUser(authSvc))
	user.Get("/addresses", deps.AddressHandler.List)
	user.Post("/addresses", deps.AddressHandler.Add)
	user.Delete("/addresses/:id", deps.AddressHandler.Delete)

	user.Post("/orders", deps.OrderHandler.Place)
	user.Get("/orders", deps.OrderHandler.History)
	user.Get("/orders/:id", deps.OrderHandler.View)
	user.Post("/orders/:id/cancel", deps.OrderHandler.Cancel)

	user.Get("/notifications", deps.NotificationHandler.List)
	user.Post("/notifications/read-all", deps.NotificationHandler.MarkAllRead)
	user.Post("/notifications/:id/read", deps.NotificationHandler.MarkRead)
	user.Delete("/notifications/:id", deps.NotificationHandler.Delete)

	// Seller
	seller := api.Group("/seller", handlers.RequireSeller(authSvc))
	seller.Get("/orders", deps.OrderHandler.SellerList)
	seller.Get("/orders/:id", deps.OrderHandler.View)
	seller.Patch("/orders/:id/status", deps.OrderHandler.UpdateStatus)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"msg": "Not found"})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}
