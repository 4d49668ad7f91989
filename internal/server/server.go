package server

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/tradegate/backoffice/internal/config"
	"github.com/tradegate/backoffice/internal/mailer"
	"github.com/tradegate/backoffice/internal/storage"
)

// Deps carries everything route construction needs.
type Deps struct {
	DB    *gorm.DB
	Cfg   *config.Config
	Mail  mailer.Mailer
	Files *storage.Store
	Redis *redis.Client
}

func New(deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit:    25 * 1024 * 1024,
		ErrorHandler: errorHandler,
	})

	app.Static("/uploads", "./uploads", fiber.Static{
		Compress:  true,
		ByteRange: true,
		Browse:    false,
		MaxAge:    3600,
	})

	SetupRoutes(app, deps)

	return app
}

// errorHandler turns fiber errors into their declared status and shields
// everything else behind a generic 500.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}
	log.Printf("❌ %s %s: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
}
