package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4" // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/salon-booking/internal/config" // Internal config loader
	"github.com/iliyamo/salon-booking/internal/database"
	"github.com/iliyamo/salon-booking/internal/handler"
	"github.com/iliyamo/salon-booking/internal/jobs"
	"github.com/iliyamo/salon-booking/internal/logging"
	"github.com/iliyamo/salon-booking/internal/metrics"
	"github.com/iliyamo/salon-booking/internal/middleware"
	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/notify"
	"github.com/iliyamo/salon-booking/internal/payment"
	"github.com/iliyamo/salon-booking/internal/queue"
	"github.com/iliyamo/salon-booking/internal/realtime"
	"github.com/iliyamo/salon-booking/internal/repository"
	"github.com/iliyamo/salon-booking/internal/router" // Internal router setup
	"github.com/iliyamo/salon-booking/internal/seed"
	"github.com/iliyamo/salon-booking/internal/service"
)

func main() {
	cfg := config.Load() // Load environment config

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.Open(cfg)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.DBAutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			logger.Fatal("migrate", zap.Error(err))
		}
	}

	rdb := config.NewRedisClient(config.LoadRedisConfig(), logger)
	if rdb != nil {
		defer rdb.Close()
	}
	cacheCfg := config.LoadCacheConfig()
	rabbitCfg := config.LoadRabbitConfig()
	metrics.Register()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	services := repository.NewServiceRepo(db)
	bookings := repository.NewBookingRepo(db)
	profiles := repository.NewProfileRepo(db)

	var notifier realtime.Notifier = realtime.NewLocal()
	var cache handler.CacheInvalidator
	var redisPing func(context.Context) error
	if rdb != nil {
		notifier = realtime.NewRedis(rdb, logger)
		cache = middleware.NewCatalogCache(rdb, cacheCfg.Prefix)
		redisPing = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	var events handler.BookingEvents
	if rabbitCfg.Enabled {
		events = service.NewBookingPublisher(rabbitCfg, logger)
		consumer := &queue.Consumer{
			URL:    rabbitCfg.URL,
			Queue:  rabbitCfg.Queue,
			LogDir: "logs",
			Mailer: notify.NewMailer(config.LoadSMTPConfig(), logger),
			Logger: logger,
		}
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("booking consumer stopped", zap.Error(err))
			}
		}()
	}

	scheduler := jobs.NewScheduler(logger)
	if err := jobs.Register(scheduler, bookings, logger); err != nil {
		logger.Fatal("schedule jobs", zap.Error(err))
	}
	scheduler.Start()

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.Validator = middleware.NewValidator()
	e.Use(echomw.Recover(), echomw.RequestID(), middleware.RequestLog(logger))

	deps := router.Deps{
		JWTSecret: cfg.JWTSecret,
		Redis:     rdb,
		Cache:     cacheCfg,
		RateLimit: config.LoadRateLimitConfig(),
		Logger:    logger,
	}
	router.RegisterRoutes(e, &handler.ReadyHandler{DB: db, Redis: redisPing})
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens, logger), deps)
	router.RegisterPublic(e,
		&handler.CatalogHandler{Services: services},
		&handler.BookingHandler{
			Services: services,
			Bookings: bookings,
			Gateway:  payment.NewDemoGateway(),
			Notifier: notifier,
			Events:   events,
			Loc:      cfg.SalonTZ,
			Logger:   logger,
		}, deps)
	router.RegisterProfile(e, &handler.ProfileHandler{Users: users, Profiles: profiles, Bookings: bookings}, deps)
	router.RegisterAdmin(e,
		&handler.AdminBookingHandler{Bookings: bookings, Notifier: notifier, Logger: logger},
		&handler.AdminServiceHandler{
			Services: services,
			Cache:    cache,
			Seed:     func() ([]model.Service, error) { return seed.Load(cfg.SeedFile) },
			Logger:   logger,
		}, deps)

	addr := ":" + cfg.Port // Address string with port
	go func() {
		logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
	scheduler.Stop(shutdownCtx)
}
