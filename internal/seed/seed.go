// Package seed provisions the permission catalogs, system roles, and the
// bootstrap platform admin. Every step is idempotent so it can run on each
// startup.
package seed

import (
	"fmt"
	"log"
	"os"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tradegate/backoffice/internal/auth"
	"github.com/tradegate/backoffice/internal/config"
	"github.com/tradegate/backoffice/internal/models"
)

var actions = []struct {
	key   string
	label string
}{
	{"create", "Create"},
	{"view", "View"},
	{"update", "Update"},
	{"delete", "Delete"},
}

var platformResources = []struct {
	key   string
	group string
}{
	{"platform-admin", "Platform"},
	{"platform-role", "Platform"},
	{"platform-permission", "Platform"},
	{"platform-role-permission", "Platform"},
	{"merchant", "Merchant"},
	{"branch", "Merchant"},
	{"user", "Merchant"},
	{"permission", "Merchant"},
	{"branch-role", "Merchant"},
	{"branch-role-permission", "Merchant"},
	{"product", "Catalog"},
	{"category", "Catalog"},
	{"product-image", "Catalog"},
	{"product-category", "Catalog"},
}

var merchantResources = []struct {
	key   string
	group string
}{
	{"merchant", "Merchant"},
	{"branch", "Merchant"},
	{"user", "Merchant"},
	{"permission", "Merchant"},
	{"branch-role", "Merchant"},
	{"branch-role-permission", "Merchant"},
	{"product", "Catalog"},
	{"category", "Catalog"},
	{"product-image", "Catalog"},
	{"product-category", "Catalog"},
	{"order", "Orders"},
}

var buyerPermissions = []models.BuyerPermission{
	{Name: "place_orders", Description: "Place orders", Module: "orders"},
	{Name: "approve_orders", Description: "Approve orders", Module: "orders"},
	{Name: "view_orders", Description: "View orders", Module: "orders"},
	{Name: "view_invoices", Description: "View invoices", Module: "invoices"},
	{Name: "manage_addresses", Description: "Manage company addresses", Module: "buyers"},
	{Name: "manage_payment_methods", Description: "Manage payment methods", Module: "buyers"},
	{Name: "manage_team", Description: "Manage buyer team members", Module: "buyers"},
	{Name: "view_reports", Description: "View buyer reports", Module: "reports"},
}

// Run seeds everything: permission grids, system roles, the default client
// role, and the bootstrap platform admin.
func Run(db *gorm.DB, cfg *config.Config) error {
	if err := seedPlatformPermissions(db); err != nil {
		return fmt.Errorf("seed platform permissions: %w", err)
	}
	if err := seedMerchantPermissions(db); err != nil {
		return fmt.Errorf("seed merchant permissions: %w", err)
	}
	if err := seedBuyerPermissions(db); err != nil {
		return fmt.Errorf("seed buyer permissions: %w", err)
	}
	if err := seedPlatformRoles(db); err != nil {
		return fmt.Errorf("seed platform roles: %w", err)
	}
	if err := seedClientRole(db, cfg); err != nil {
		return fmt.Errorf("seed client role: %w", err)
	}
	if err := seedBootstrapAdmin(db); err != nil {
		return fmt.Errorf("seed bootstrap admin: %w", err)
	}
	log.Println("✅ Seed complete")
	return nil
}

func describe(action, resource string) string {
	return action + " " + strings.ReplaceAll(resource, "-", " ")
}

func seedPlatformPermissions(db *gorm.DB) error {
	for _, r := range platformResources {
		for _, a := range actions {
			perm := models.PlatformPermission{
				KeyName:     a.key + "-" + r.key,
				Description: describe(a.label, r.key),
				GroupName:   r.group,
			}
			if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&perm).Error; err != nil {
				return err
			}
		}
	}
	// Support-role extras outside the action grid.
	extras := []models.PlatformPermission{
		{KeyName: "approve-merchant", Description: "Approve merchant", GroupName: "Merchants"},
		{KeyName: "suspend-branch", Description: "Suspend branch", GroupName: "Merchants"},
	}
	for i := range extras {
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&extras[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedMerchantPermissions(db *gorm.DB) error {
	for _, r := range merchantResources {
		for _, a := range actions {
			perm := models.Permission{
				KeyName:     a.key + "-" + r.key,
				Description: describe(a.label, r.key),
				GroupName:   r.group,
			}
			if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&perm).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func seedBuyerPermissions(db *gorm.DB) error {
	for i := range buyerPermissions {
		perm := buyerPermissions[i]
		perm.ID = 0
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&perm).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedPlatformRoles(db *gorm.DB) error {
	var superAdmin models.PlatformRole
	if err := db.Where(models.PlatformRole{Name: "Super Admin"}).
		Attrs(models.PlatformRole{Description: "Full access"}).
		FirstOrCreate(&superAdmin).Error; err != nil {
		return err
	}

	all := []models.PlatformPermission{}
	if err := db.Find(&all).Error; err != nil {
		return err
	}
	if err := db.Model(&superAdmin).Association("Permissions").Replace(&all); err != nil {
		return err
	}

	var support models.PlatformRole
	if err := db.Where(models.PlatformRole{Name: "Support"}).
		Attrs(models.PlatformRole{Description: "Support staff"}).
		FirstOrCreate(&support).Error; err != nil {
		return err
	}

	supportPerms := []models.PlatformPermission{}
	if err := db.Where("key_name IN ?", []string{"approve-merchant", "suspend-branch"}).
		Find(&supportPerms).Error; err != nil {
		return err
	}
	return db.Model(&support).Association("Permissions").Replace(&supportPerms)
}

func seedClientRole(db *gorm.DB, cfg *config.Config) error {
	var role models.ClientRole
	return db.Where(models.ClientRole{Name: cfg.DefaultClientRole}).
		Attrs(models.ClientRole{IsActive: true}).
		FirstOrCreate(&role).Error
}

// seedBootstrapAdmin creates the first platform admin from
// BOOTSTRAP_ADMIN_EMAIL / BOOTSTRAP_ADMIN_PASSWORD so a fresh deployment is
// reachable. Skipped when any platform admin already exists.
func seedBootstrapAdmin(db *gorm.DB) error {
	email := auth.NormalizeEmail(os.Getenv("BOOTSTRAP_ADMIN_EMAIL"))
	password := os.Getenv("BOOTSTRAP_ADMIN_PASSWORD")
	if email == "" || password == "" {
		return nil
	}

	var count int64
	if err := db.Model(&models.PlatformAdmin{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	var role models.PlatformRole
	if err := db.Where("name = ?", "Super Admin").First(&role).Error; err != nil {
		return err
	}

	digest, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	admin := models.PlatformAdmin{
		FirstName:      "Platform",
		LastName:       "Admin",
		Email:          email,
		Password:       digest,
		Status:         "active",
		PlatformRoleID: &role.ID,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	log.Printf("✅ Bootstrap platform admin created: %s", email)
	return nil
}

// HashLegacyPasswords rewrites any plaintext credential columns with bcrypt
// digests. Rows already hashed are left untouched.
func HashLegacyPasswords(db *gorm.DB) error {
	admins := []models.PlatformAdmin{}
	if err := db.Find(&admins).Error; err != nil {
		return err
	}
	for i := range admins {
		if err := rehash(db, &models.PlatformAdmin{}, admins[i].ID, "password", admins[i].Password); err != nil {
			return err
		}
	}

	staff := []models.MerchantUser{}
	if err := db.Find(&staff).Error; err != nil {
		return err
	}
	for i := range staff {
		if err := rehash(db, &models.MerchantUser{}, staff[i].ID, "password", staff[i].Password); err != nil {
			return err
		}
	}

	buyers := []models.BuyerUser{}
	if err := db.Find(&buyers).Error; err != nil {
		return err
	}
	for i := range buyers {
		if err := rehash(db, &models.BuyerUser{}, buyers[i].ID, "password_hash", buyers[i].PasswordHash); err != nil {
			return err
		}
	}

	clients := []models.Client{}
	if err := db.Find(&clients).Error; err != nil {
		return err
	}
	for i := range clients {
		if err := rehash(db, &models.Client{}, clients[i].ID, "password", clients[i].Password); err != nil {
			return err
		}
	}
	return nil
}

func rehash(db *gorm.DB, model any, id uint, column, current string) error {
	if current == "" || auth.IsHashed(current) {
		return nil
	}
	digest, err := auth.HashPassword(current)
	if err != nil {
		return err
	}
	return db.Model(model).Where("id = ?", id).Update(column, digest).Error
}
