package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/rentloop/rentloop-api/api/swagger"
	"github.com/rentloop/rentloop-api/internal/handler"
	"github.com/rentloop/rentloop-api/internal/middleware"
	"github.com/rentloop/rentloop-api/internal/models"
	"github.com/rentloop/rentloop-api/internal/repository"
	"github.com/rentloop/rentloop-api/internal/service"
	"github.com/rentloop/rentloop-api/pkg/cache"
	"github.com/rentloop/rentloop-api/pkg/config"
	"github.com/rentloop/rentloop-api/pkg/database"
	"github.com/rentloop/rentloop-api/pkg/logger"
	corsmiddleware "github.com/rentloop/rentloop-api/pkg/middleware/cors"
	reqidmiddleware "github.com/rentloop/rentloop-api/pkg/middleware/requestid"
)

// @title RentLoop API
// @version 0.1.0
// @description Availability and reservation engine for the RentLoop rental marketplace
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect redis", "error", err)
	}

	resourceRepo := repository.NewResourceRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	blockRepo := repository.NewBlockRepository(db)
	reservationRepo := repository.NewReservationRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(cfg.JWT)

	notificationSvc := service.NewNotificationService(
		&service.LogNotificationSink{Logger: logr},
		&service.LogEmailSink{Logger: logr},
		cfg.Notifications,
		logr,
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	notificationSvc.Start(ctx)
	defer notificationSvc.Stop()

	availabilitySvc := service.NewAvailabilityService(
		resourceRepo, scheduleRepo, blockRepo, reservationRepo,
		cacheRepo, metricsSvc,
		cfg.Availability.CacheEnabled, cfg.Availability.CacheTTL,
		logr,
	)
	reservationSvc := service.NewReservationService(
		reservationRepo, blockRepo, resourceRepo,
		notificationSvc, availabilitySvc, metricsSvc,
		cfg.Holds.WriteShadowBlocks, logr,
	)
	holdSvc := service.NewHoldService(
		blockRepo, resourceRepo, availabilitySvc, reservationSvc,
		metricsSvc, cfg.Holds.TTL, logr,
	)
	availabilitySvc.AttachSweeper(holdSvc, cfg.Holds.SweepInterval)
	go holdSvc.RunSweeper(ctx, cfg.Holds.SweepInterval)

	scheduleSvc := service.NewScheduleService(scheduleRepo, blockRepo, resourceRepo, availabilitySvc, logr)

	availabilityHandler := handler.NewAvailabilityHandler(availabilitySvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc)
	holdHandler := handler.NewHoldHandler(holdSvc)
	reservationHandler := handler.NewReservationHandler(reservationSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))

	authed.GET("/resources/:id/availability", availabilityHandler.Query)
	authed.GET("/resources/:id/availability/check", availabilityHandler.Check)
	authed.GET("/owners/me/calendar", availabilityHandler.OwnerCalendar)

	authed.GET("/resources/:id/schedule/weekly", scheduleHandler.GetWeekly)
	authed.PUT("/resources/:id/schedule/weekly/:dow", scheduleHandler.UpsertWeekly)
	authed.PUT("/resources/:id/schedule/exceptions/:date", scheduleHandler.UpsertException)
	authed.DELETE("/resources/:id/schedule/exceptions/:date", scheduleHandler.DeleteException)

	authed.POST("/blocks", scheduleHandler.CreateBlock)
	authed.DELETE("/blocks/:id", scheduleHandler.DeleteBlock)

	authed.POST("/reservations", reservationHandler.Create)
	authed.GET("/reservations/:id", reservationHandler.Get)
	authed.POST("/reservations/:id/status", reservationHandler.Transition)

	// Hold finalize/cancel are payment-provider callbacks keyed by token;
	// opening a hold stays behind auth.
	authed.POST("/holds", holdHandler.Begin)
	api.POST("/holds/:token/finalize", holdHandler.Finalize)
	api.POST("/holds/:token/cancel", holdHandler.Cancel)

	// Staff escape hatch: admins may sweep on demand.
	authed.POST("/holds/sweep",
		middleware.RequireRoles(models.RoleAdmin, models.RoleSupport),
		func(c *gin.Context) {
			swept, err := holdSvc.SweepExpired(c.Request.Context())
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"swept": swept})
		})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
