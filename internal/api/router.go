package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/bloodcare/donation-system/docs"
	"github.com/bloodcare/donation-system/internal/api/handler"
	"github.com/bloodcare/donation-system/internal/api/middleware"
	"github.com/bloodcare/donation-system/internal/core/ports"
	"github.com/bloodcare/donation-system/internal/core/service"
	mongodb "github.com/bloodcare/donation-system/internal/infrastructure/db/mongo"
	redisdb "github.com/bloodcare/donation-system/internal/infrastructure/db/redis"
)

// Deps carries everything the router needs that is constructed in main:
// live connections, the geo dataset, and the funding pipeline entry point.
type Deps struct {
	DB    *mongo.Database
	Redis *redis.Client
	Geo   ports.GeoDirectory
	Log   zerolog.Logger

	JWTSecret     string
	WebhookSecret string

	// Funding events are acknowledged at the edge and processed by the
	// dispatcher's workers; the handler only needs the enqueue function.
	FundingService ports.FundingService
	EnqueueFunding func(ports.FundingEventInput)
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("bloodcare"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(deps.DB)
	requestRepo := mongodb.NewRequestRepository(deps.DB)
	authRepo := mongodb.NewAuthRepository(deps.DB)
	pendingCache := redisdb.NewPendingCache(deps.Redis, deps.Log)

	userService := service.NewUserService(userRepo, deps.Geo, deps.Log)
	requestService := service.NewRequestService(requestRepo, userRepo, deps.Geo, pendingCache, deps.Log)
	authService := service.NewAuthService(authRepo, userService, deps.JWTSecret, 24*time.Hour)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	requestHandler := handler.NewRequestHandler(requestService)
	geoHandler := handler.NewGeoHandler(deps.Geo)
	fundingHandler := handler.NewFundingHandler(deps.FundingService, deps.EnqueueFunding, deps.WebhookSecret)

	authRequired := middleware.Auth(deps.JWTSecret)

	// --- Auth routes ---
	e.POST("/v1/auth/register", authHandler.Register)
	e.POST("/v1/auth/login", authHandler.Login)

	// --- Donation requests ---
	// Reads of the pending board and of a single request are public.
	e.GET("/v1/donation-requests/pending", requestHandler.ListPending)
	e.GET("/v1/donation-requests/mine", requestHandler.Mine, authRequired)
	e.GET("/v1/donation-requests/:id", requestHandler.Get)
	e.GET("/v1/donation-requests", requestHandler.List, authRequired)
	e.POST("/v1/donation-requests", requestHandler.Create, authRequired)
	e.PATCH("/v1/donation-requests/:id", requestHandler.Update, authRequired)
	e.PATCH("/v1/donation-requests/:id/donate", requestHandler.Pledge, authRequired)
	e.PATCH("/v1/donation-requests/:id/status", requestHandler.UpdateStatus, authRequired)
	e.DELETE("/v1/donation-requests/:id", requestHandler.Delete, authRequired)

	// --- User directory ---
	e.GET("/v1/users", userHandler.List, authRequired)
	e.GET("/v1/users/:email", userHandler.Get, authRequired)
	e.PATCH("/v1/users/:email", userHandler.Update, authRequired)
	e.GET("/v1/donors", userHandler.SearchDonors)

	// --- Geo dataset (public) ---
	e.GET("/v1/geo/districts", geoHandler.Districts)
	e.GET("/v1/geo/districts/:district/upazilas", geoHandler.Upazilas)

	// --- Fundings ---
	e.POST("/v1/fundings/webhook", fundingHandler.Webhook)
	e.GET("/v1/fundings", fundingHandler.List, authRequired)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.DB, deps.Redis)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)

	// --- Observability and docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
