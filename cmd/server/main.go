package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/parleyhq/parley-backend/internal/api"
	"github.com/parleyhq/parley-backend/internal/auth"
	"github.com/parleyhq/parley-backend/internal/config"
	"github.com/parleyhq/parley-backend/internal/database"
	"github.com/parleyhq/parley-backend/internal/filestorage"
	"github.com/parleyhq/parley-backend/internal/providers"
	"github.com/parleyhq/parley-backend/internal/providers/googleai"
	"github.com/parleyhq/parley-backend/internal/providers/openai"
	"github.com/parleyhq/parley-backend/internal/repository/postgres"
	"github.com/parleyhq/parley-backend/internal/services"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}

	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := database.RunMigrations(cfg.Database); err != nil {
		logrus.WithError(err).Fatal("Failed to run migrations")
	}

	app := fiber.New(fiber.Config{
		AppName:      "Parley Backend",
		ErrorHandler: customErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     getOrigins(),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	registered, err := buildProviders(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize providers")
	}
	router := providers.NewRouter(registered, providers.DefaultRoutingRules())
	catalog := providers.NewCatalog()

	chatRepo := postgres.NewChatRepository(db.DB)
	messageRepo := postgres.NewMessageRepository(db.DB)
	promptRepo := postgres.NewCustomPromptRepository(db.DB)

	var files *filestorage.S3Store
	if cfg.Storage.Bucket != "" {
		files, err = filestorage.NewS3Store(context.Background(), cfg.Storage)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to initialize file storage")
		}
	} else {
		logrus.Warn("File storage not configured; uploads disabled")
	}

	svc := &services.Services{
		Chat:    services.NewChatService(chatRepo, messageRepo, promptRepo, router, catalog),
		Prompts: services.NewCustomPromptService(promptRepo),
		Files:   files,
		Catalog: catalog,
	}

	jwtSecret := cfg.Auth.JWTSecret
	if jwtSecret == "" {
		jwtSecret = "change-me-in-production" // Default for development
		logrus.Warn("Using default JWT secret. Set PARLEY_JWT_SECRET in production!")
	}
	jwtService := auth.NewJWTService(jwtSecret, cfg.Auth.Issuer)

	api.SetupRoutes(app, svc, jwtService)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logrus.WithField("addr", addr).Info("Parley backend starting")
	if err := app.Listen(addr); err != nil {
		logrus.WithError(err).Fatal("Failed to start server")
	}
}

// buildProviders registers every family with credentials configured. Routing
// to an unregistered family fails with an unsupported-model error.
func buildProviders(cfg *config.Config) (map[string]providers.Provider, error) {
	registered := make(map[string]providers.Provider)

	if cfg.OpenAI.APIKey != "" {
		p, err := openai.NewProvider(cfg.OpenAI)
		if err != nil {
			return nil, err
		}
		registered[providers.ProviderOpenAI] = p
	}

	if cfg.GoogleAI.APIKey != "" {
		p, err := googleai.NewProvider(context.Background(), cfg.GoogleAI)
		if err != nil {
			return nil, err
		}
		registered[providers.ProviderGoogleAI] = p
	}

	if len(registered) == 0 {
		logrus.Warn("No provider API keys configured; every dispatch will fail routing")
	}

	return registered, nil
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}

func getOrigins() string {
	origins := os.Getenv("PARLEY_CORS_ORIGINS")
	if origins == "" {
		return "http://localhost:5173,http://localhost:3000"
	}
	return origins
}
