package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/mark-baumann/JobAgent/internal/config"
	"github.com/mark-baumann/JobAgent/internal/domain/fiber/handler"
	"github.com/mark-baumann/JobAgent/internal/middleware"
	"github.com/mark-baumann/JobAgent/internal/model"
	"github.com/mark-baumann/JobAgent/internal/repository"
	"github.com/mark-baumann/JobAgent/internal/service"
	"github.com/mark-baumann/JobAgent/internal/usecase"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		slog.Warn("could not load .env file")
	}

	log, closeLog := config.SetupLogger()
	defer func() { _ = closeLog() }()
	slog.SetDefault(log)

	appConfig := config.LoadAppConfig()

	app := fiber.New(fiber.Config{
		AppName: appConfig.Name,
		ErrorHandler: func(ctx *fiber.Ctx, err error) error {
			// Status code defaults to 500
			code := fiber.StatusInternalServerError

			// Retrieve the custom status code if it's a *fiber.Error
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}

			message := err.Error()
			if message == "" {
				message = "Internal Server Error"
			}

			return ctx.Status(code).JSON(fiber.Map{"error": message})
		},
	})
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))
	app.Use(recover.New(recover.Config{
		EnableStackTrace: appConfig.Env != "production",
	}))
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed, // 1
	}))
	app.Use(pprof.New(pprof.Config{
		Next: func(c *fiber.Ctx) bool {
			return appConfig.Env == "production"
		},
	}))
	app.Use(healthcheck.New())
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(middleware.RateLimiter(50, 1*time.Minute))

	db := ConnectDB(log)

	runRepo := repository.NewGenerationRunRepository(db)
	openAI := service.NewOpenAIService(log)
	converter := service.NewCloudConvertService(config.LoadCloudConvertConfig(), log)

	generationUC := usecase.NewGenerationUsecase(runRepo, openAI, log)
	exportUC := usecase.NewExportUsecase(runRepo, converter, config.LoadExportConfig().TemplatePath, log)
	handler := handler.NewGenerateHandler(generationUC, exportUC)

	handler.RegisterRoutes(app)

	// Monitor goroutine count
	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			log.Debug("goroutine count", "active", runtime.NumGoroutine())
		}
	}()

	log.Info("server running", "port", appConfig.Port)
	if err := app.Listen(appConfig.Port); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func ConnectDB(log *slog.Logger) *gorm.DB {
	dbConfig := config.LoadDBConfig()
	appConfig := config.LoadAppConfig()

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=Europe/Berlin",
		dbConfig.Host,
		dbConfig.User,
		dbConfig.Password,
		dbConfig.Name,
		dbConfig.Port,
		dbConfig.SSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Error("could not connect to database", "error", err)
		os.Exit(1)
	}
	pgDB, err := db.DB()
	if err != nil {
		log.Error("could not get database instance", "error", err)
		os.Exit(1)
	}
	if appConfig.Env != "production" {
		pgDB.SetMaxIdleConns(5)
		pgDB.SetMaxOpenConns(10)
		pgDB.SetConnMaxLifetime(30 * time.Minute)
	} else {
		pgDB.SetMaxIdleConns(20)
		pgDB.SetMaxOpenConns(200)
		pgDB.SetConnMaxLifetime(time.Hour)
	}

	if err := db.AutoMigrate(&model.GenerationRun{}); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	return db
}
