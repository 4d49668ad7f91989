// Command seed provisions permission catalogs and system roles, then
// rewrites any legacy plaintext credentials with bcrypt digests. Safe to
// run repeatedly.
package main

import (
	"log"

	"github.com/tradegate/backoffice/internal/config"
	"github.com/tradegate/backoffice/internal/database"
	"github.com/tradegate/backoffice/internal/seed"
)

func main() {
	cfg := config.Load()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("❌ Database connection failed: ", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatal("❌ Migration failed: ", err)
	}

	if err := seed.Run(db, cfg); err != nil {
		log.Fatal("❌ Seed failed: ", err)
	}

	if err := seed.HashLegacyPasswords(db); err != nil {
		log.Fatal("❌ Password migration failed: ", err)
	}
	log.Println("✅ Legacy passwords migrated")
}
