package main

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/tradegate/backoffice/internal/config"
	"github.com/tradegate/backoffice/internal/database"
	"github.com/tradegate/backoffice/internal/mailer"
	"github.com/tradegate/backoffice/internal/models"
	"github.com/tradegate/backoffice/internal/seed"
	"github.com/tradegate/backoffice/internal/server"
	"github.com/tradegate/backoffice/internal/storage"
)

func main() {
	cfg := config.Load()

	if err := cfg.ValidateSecrets(); err != nil {
		log.Fatal("❌ JWT configuration error: ", err)
	}
	log.Println("✅ JWT secrets validated")

	// ========== DATABASE SETUP ==========
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("❌ Database connection failed: ", err)
	}
	database.DB = db

	if err := database.Migrate(db); err != nil {
		log.Fatal("❌ Migration failed: ", err)
	}
	log.Println("✅ Database migrated")

	// ========== STORAGE SETUP ==========
	files, err := storage.New(cfg)
	if err != nil {
		log.Fatal("❌ Storage initialization failed: ", err)
	}
	log.Printf("💾 Storage mode: %s", files.Mode())

	// ========== REDIS (optional, shared rate limiting) ==========
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Printf("⚠️  Redis unreachable, falling back to in-memory rate limiting: %v", err)
			rdb = nil
		} else {
			log.Println("✅ Redis connected")
		}
		cancel()
	}

	// ========== SEED DEFAULT DATA ==========
	if err := seed.Run(db, cfg); err != nil {
		log.Println("⚠️  Seed failed: ", err)
	}

	// ========== BACKGROUND JOBS ==========
	go cleanupExpiredResetTokens(db)

	// ========== START SERVER ==========
	app := server.New(server.Deps{
		DB:    db,
		Cfg:   cfg,
		Mail:  mailer.New(cfg),
		Files: files,
		Redis: rdb,
	})

	log.Printf("🚀 Back office API starting on %s", cfg.ServerAddr)
	if err := app.Listen(cfg.ServerAddr); err != nil {
		log.Fatal("❌ Failed to start server: ", err)
	}
}

func cleanupExpiredResetTokens(db *gorm.DB) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		result := db.Where("expires_at < ?", time.Now()).Delete(&models.PasswordResetToken{})
		if result.Error != nil {
			log.Printf("⚠️  Reset token cleanup failed: %v", result.Error)
			continue
		}
		if result.RowsAffected > 0 {
			log.Printf("🧹 Cleaned up %d expired reset tokens", result.RowsAffected)
		}
	}
}
