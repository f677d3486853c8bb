package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/localnerve/paperdb/internal/config"
	"github.com/localnerve/paperdb/internal/database"
	"github.com/localnerve/paperdb/internal/handlers"
	"github.com/localnerve/paperdb/internal/logging"
	"github.com/localnerve/paperdb/internal/middleware"
	"github.com/localnerve/paperdb/internal/services"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/localnerve/paperdb/docs/api" // Swagger docs
)

// @title PaperDB API
// @version 1.0.0
// @description Versioned paper submission and peer-review workflow service
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/localnerve/paperdb
// @contact.email info@localnerve.com

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name cookie_session

func main() {
	configPath := flag.String("config", "", "path to a config file (default ./config.yaml if present)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.ValidateServer(); err != nil {
		log.Fatalf("Invalid server configuration: %v", err)
	}

	logger, err := logging.NewLogger(&cfg.Log)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.Connect(cfg, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	opts := []services.Option{services.WithPolicy(cfg.Workflow)}

	var rdb *goredis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = services.NewRedisClient(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("redis unavailable, search cache disabled", zap.Error(err))
			rdb = nil
		} else {
			defer rdb.Close()
			opts = append(opts, services.WithCache(services.NewRedisSearchCache(rdb, cfg.Redis.TTL)))
		}
	}

	if cfg.MailEnabled() {
		opts = append(opts, services.WithNotifier(services.NewMailNotifier(cfg.Mail)))
	} else {
		logger.Info("SMTP not configured, reviewer notifications disabled")
	}

	engine := services.NewEngine(db, logger, opts...)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(middleware.RequestLogger(logger.Named("http")))
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("paperdb")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	health := &handlers.HealthHandler{Config: cfg, DB: db, Redis: rdb, Logger: logger}
	app.Get("/health", health.Health)

	// The Authorizer client is created on the first authenticated request
	sessions := services.NewAuthorizerSessions(cfg.Authz, logger.Named("authorizer"))
	handlers.Register(app, engine, sessions)

	// 404 handler
	app.Use(handlers.NotFoundHandler)

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		logger.Info("gracefully shutting down")
		_ = app.Shutdown()
	}()

	// Start server
	logger.Info("starting server", zap.String("port", cfg.Port))
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	logger.Info("server stopped")
}
