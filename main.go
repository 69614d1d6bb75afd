package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"marketplace-system/auth"
	"marketplace-system/config"
	"marketplace-system/handlers"
	"marketplace-system/models"
	"marketplace-system/services"
	"marketplace-system/store"
	"marketplace-system/utils"
	"marketplace-system/workers"
)

func main() {
	cfg := config.LoadConfig()

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if cfg.IsProd {
		logrus.SetLevel(logrus.InfoLevel)
	} else {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if cfg.DatabaseURL == "" {
		logrus.Fatal("DATABASE_URL environment variable not set")
	}
	if cfg.JWTSecret == "" {
		logrus.Fatal("JWT_SECRET environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect to database: %v", err)
	}
	if err := store.Migrate(db); err != nil {
		logrus.Fatalf("failed to migrate database: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	if err := utils.InitMedia(); err != nil {
		logrus.Fatalf("failed to initialize media storage: %v", err)
	}

	docStore := store.NewPGStore(db, rdb)

	// The hosted identity service is the normal provider; the store-backed
	// one keeps local development self-contained.
	var provider auth.Provider
	if cfg.AuthServiceURL != "" {
		provider = auth.NewClient(cfg.AuthServiceURL, cfg.AuthToken)
	} else {
		logrus.Warn("AUTH_SERVICE_URL not set, using local identity provider")
		provider = auth.NewLocalProvider(docStore)
	}

	engine := services.NewPromotionEngine(models.RankThresholds)
	ledger := services.NewPointsLedger(docStore, engine)
	referrals := services.NewReferralService(docStore, ledger)
	registration := services.NewRegistrationService(docStore, provider, referrals)
	orders := services.NewOrderService(docStore)
	posts := services.NewPostService(docStore)

	app := fiber.New(fiber.Config{
		BodyLimit: 20 * 1024 * 1024, // post images
	})

	allowedOrigins := cfg.AllowedOrigins
	if allowedOrigins == "" {
		logrus.Warn("ALLOWED_ORIGINS not set, using default: http://localhost:3000")
		allowedOrigins = "http://localhost:3000"
	}
	var origins []string
	for _, o := range strings.Split(allowedOrigins, ",") {
		origins = append(origins, strings.TrimSpace(o))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(origins, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	handlers.SetupAuthRoutes(app, registration, provider, cfg.JWTSecret)
	handlers.SetupProfileRoutes(app, docStore, referrals, rdb, cfg.JWTSecret)
	handlers.SetupPostRoutes(app, docStore, posts, orders, cfg.JWTSecret)
	handlers.SetupOrderRoutes(app, docStore, orders, cfg.JWTSecret)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workers.NewReconcileWorker(docStore, ledger).Start(ctx)

	watcher := workers.NewPromotionWatcher(docStore)
	cancelWatch, err := watcher.Start()
	if err != nil {
		logrus.Fatalf("failed to start promotion watcher: %v", err)
	}
	defer cancelWatch()

	go func() {
		if err := app.Listen(":" + cfg.AppPort); err != nil {
			logrus.Errorf("server error: %v", err)
		}
	}()
	logrus.Infof("server running on http://localhost:%s", cfg.AppPort)

	<-ctx.Done()
	logrus.Info("shutting down server...")
	if err := app.Shutdown(); err != nil {
		logrus.Errorf("shutdown error: %v", err)
	}
}
