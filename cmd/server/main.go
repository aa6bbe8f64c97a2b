package main

import (
	"context"
	"errors"
	"log"
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
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/fahrezy/interview-pilot/internal/config"
	"github.com/fahrezy/interview-pilot/internal/domain/fiber/handler"
	"github.com/fahrezy/interview-pilot/internal/middleware"
	"github.com/fahrezy/interview-pilot/internal/model"
	"github.com/fahrezy/interview-pilot/internal/repository"
	"github.com/fahrezy/interview-pilot/internal/service"
	"github.com/fahrezy/interview-pilot/internal/usecase"
)

func main() {
	ctx := context.Background()
	if err := godotenv.Load(); err != nil {
		log.Println("Could not load .env file")
	}

	appConfig := config.LoadAppConfig()

	app := fiber.New(fiber.Config{
		AppName: appConfig.Name,
		ErrorHandler: func(ctx *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError

			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}

			message := err.Error()
			if message == "" {
				message = "Internal Server Error"
			}

			return ctx.Status(code).JSON(fiber.Map{"success": false, "message": message})
		},
	})
	app.Use(logger.New())
	allowOrigins := appConfig.BaseURL
	if allowOrigins == "" {
		allowOrigins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowCredentials: allowOrigins != "*",
	}))
	app.Use(recover.New(recover.Config{
		EnableStackTrace: appConfig.Env != "production",
	}))
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
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
	app.Use(middleware.RateLimiter(100, 1*time.Minute))

	db := ConnectDB()

	interviewRepo := repository.NewInterviewRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	userRepo := repository.NewUserRepository(db)

	gemini, err := service.NewGeminiService(ctx)
	if err != nil {
		log.Fatal(err)
	}
	voice := service.NewVapiService()

	catalogUC := usecase.NewCatalogUsecase(interviewRepo, gemini)
	sessionUC := usecase.NewSessionUsecase(sessionRepo, interviewRepo, voice, gemini)
	roadmapUC := usecase.NewRoadmapUsecase(gemini)

	handler.NewInterviewHandler(catalogUC).RegisterRoutes(app)
	handler.NewSessionHandler(sessionUC).RegisterRoutes(app)
	handler.NewAdminHandler(catalogUC).RegisterRoutes(app)
	handler.NewRoadmapHandler(roadmapUC).RegisterRoutes(app)
	handler.NewAuthHandler(userRepo).RegisterRoutes(app)

	log.Println("Server running on ", appConfig.Port)
	if err := app.Listen(appConfig.Port); err != nil {
		log.Fatal(err)
	}
}

func ConnectDB() *gorm.DB {
	dbConfig := config.LoadDBConfig()

	db, err := gorm.Open(postgres.Open(dbConfig.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}
	pgDB, err := db.DB()
	if err != nil {
		log.Fatalf("Could not get database instance: %v", err)
	}
	pgDB.SetMaxIdleConns(dbConfig.MaxIdleConns)
	pgDB.SetMaxOpenConns(dbConfig.MaxOpenConns)
	pgDB.SetConnMaxLifetime(dbConfig.ConnMaxLifetime)

	if err := db.AutoMigrate(&model.Interview{}, &model.InterviewSession{}, &model.User{}); err != nil {
		log.Fatal("migration failed: ", err)
	}
	return db
}
