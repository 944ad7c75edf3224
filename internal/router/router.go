// Package router wires handlers, middleware and routes onto the Echo
// instance. Authorization is applied here and only here: public reads carry
// no gate, mutations require a resolved caller, moderation requires the
// ADMIN role.
package router

import (
	"path/filepath"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/locaspot/booking-api/internal/config"
	"github.com/locaspot/booking-api/internal/handler"
	"github.com/locaspot/booking-api/internal/middleware"
	"github.com/locaspot/booking-api/internal/model"
)

// Deps collects everything the router needs. All dependencies are
// constructed in main and injected; the router holds no state of its own.
type Deps struct {
	Cfg          config.Config
	RateCfg      config.RateLimitConfig
	Redis        *redis.Client
	Users        middleware.UserLoader
	Views        *middleware.ViewCache
	Auth         *handler.AuthHandler
	Products     *handler.ProductHandler
	Reservations *handler.ReservationHandler
	Admin        *handler.AdminHandler
}

// New builds the Echo instance with all routes registered.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("booking"))
	e.Use(middleware.ResolveUser(d.Cfg.JWTSecret, d.Users))

	requireAuth := middleware.RequireAuth()
	requireAdmin := middleware.RequireRole(model.RoleAdmin)
	limit := middleware.RateLimit(d.RateCfg, d.Redis)

	// --- Infrastructure ---
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echoprometheus.NewHandler())

	// Uploaded files are served straight from the public directory.
	e.Static("/avatars", filepath.Join(d.Cfg.PublicDir, "avatars"))
	e.Static("/uploads", filepath.Join(d.Cfg.PublicDir, "uploads"))
	e.Static("/documents", filepath.Join(d.Cfg.PublicDir, "documents"))

	// --- Auth ---
	auth := e.Group("/auth")
	auth.POST("/register", d.Auth.Register, limit)
	auth.POST("/login", d.Auth.Login, limit)
	auth.POST("/logout", d.Auth.Logout)
	auth.GET("/me", d.Auth.Me, requireAuth)

	// --- Products ---
	e.GET("/products", d.Products.List, d.Views.Middleware(middleware.ViewProducts))
	e.GET("/products/:id", d.Products.Get)
	e.POST("/products", d.Products.Create, requireAuth, limit)
	e.PUT("/products/:id", d.Products.Update, requireAuth, limit)
	e.DELETE("/products/:id", d.Products.Delete, requireAuth, limit)

	// --- Reservations ---
	e.GET("/reservations", d.Reservations.List, requireAuth)
	e.POST("/reservations", d.Reservations.Create, requireAuth, limit)
	e.PUT("/reservations/:id", d.Reservations.UpdateStatus, requireAdmin, limit)
	e.DELETE("/reservations/:id", d.Reservations.Delete, requireAdmin, limit)

	// --- Admin moderation ---
	admin := e.Group("/admin", requireAdmin)
	admin.GET("/users", d.Admin.ListUsers, d.Views.Middleware(middleware.ViewAdmin))
	admin.GET("/reservations", d.Admin.ListReservations, d.Views.Middleware(middleware.ViewAdmin))
	admin.PATCH("/users/:id", d.Admin.PatchUser, limit)
	admin.PATCH("/products/:id", d.Admin.PatchProduct, limit)
	admin.DELETE("/products/:id", d.Products.Delete, limit)

	return e
}
