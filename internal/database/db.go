package database

import (
	"fmt"
	"log"

	"github.com/tradegate/backoffice/internal/config"
	"github.com/tradegate/backoffice/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Connect(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.DBDriver {
	case "mysql":
		dsn := fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName,
		)
		dialector = mysql.Open(dsn)
	case "postgres":
		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort,
		)
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, err
	}

	DB = db

	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.PlatformAdmin{},
		&models.PlatformRole{},
		&models.PlatformPermission{},
		&models.Merchant{},
		&models.Branch{},
		&models.MerchantUser{},
		&models.Permission{},
		&models.BranchRole{},
		&models.Buyer{},
		&models.BuyerRole{},
		&models.BuyerPermission{},
		&models.BuyerUser{},
		&models.ClientRole{},
		&models.Client{},
		&models.Category{},
		&models.Product{},
		&models.ProductImage{},
		&models.Order{},
		&models.OrderItem{},
		&models.PasswordResetToken{},
	)
	if err != nil {
		return err
	}
	log.Println("Database migrated successfully!")
	return nil
}
