package main

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5"
	"github.com/sabirama/tutorial-hub-sub000/internal/config"
	"github.com/sabirama/tutorial-hub-sub000/internal/database"
	"github.com/sabirama/tutorial-hub-sub000/internal/models"
	"github.com/sabirama/tutorial-hub-sub000/internal/repository"
	"github.com/sabirama/tutorial-hub-sub000/internal/routes"
	"github.com/sabirama/tutorial-hub-sub000/pkg/utils"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.DBUrl == "" {
		log.Fatal("DB_URL is required")
	}
	if err := database.ConnectDB(cfg.DBUrl); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB()

	if err := seedDefaultAdmin(cfg); err != nil {
		log.Fatalf("Failed to seed admin account: %v", err)
	}
	if err := cleanupExpiredTokens(); err != nil {
		log.Printf("Token cleanup failed: %v", err)
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 6 * 1024 * 1024,
	})

	app.Use(cors.New())
	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})
	app.Static("/uploads", cfg.UploadDir)

	routes.RegisterRoutes(app, cfg, database.DB)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

// seedDefaultAdmin creates the bootstrap admin account on first start. It is
// a no-op when the configured email already has an account.
func seedDefaultAdmin(cfg *config.Config) error {
	if cfg.DefaultAdminEmail == "" || cfg.DefaultAdminPassword == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	accountRepo := repository.NewAccountRepository(database.DB)
	_, err := accountRepo.GetByEmail(ctx, cfg.DefaultAdminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hashed, err := utils.HashPassword(cfg.DefaultAdminPassword)
	if err != nil {
		return err
	}

	admin := &models.Account{
		Email:        cfg.DefaultAdminEmail,
		Username:     "admin",
		PasswordHash: hashed,
		Role:         models.RoleAdmin,
		Status:       models.AccountStatusActive,
		Verified:     true,
	}
	if err := accountRepo.Create(ctx, admin); err != nil {
		return err
	}

	log.Printf("Seeded default admin account %s", cfg.DefaultAdminEmail)
	return nil
}

func cleanupExpiredTokens() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tokenRepo := repository.NewTokenRepository(database.DB)
	return tokenRepo.DeleteExpired(ctx, 30*24*time.Hour)
}
