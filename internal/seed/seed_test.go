package seed_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tradegate/backoffice/internal/auth"
	"github.com/tradegate/backoffice/internal/models"
	"github.com/tradegate/backoffice/internal/seed"
	"github.com/tradegate/backoffice/internal/testutils"
)

func TestRun(t *testing.T) {
	db := testutils.TestDB(t)
	cfg := testutils.TestConfig()

	assert.NoError(t, seed.Run(db, cfg))

	t.Run("Permission grids exist", func(t *testing.T) {
		var platformCount, merchantCount, buyerCount int64
		db.Model(&models.PlatformPermission{}).Count(&platformCount)
		db.Model(&models.Permission{}).Count(&merchantCount)
		db.Model(&models.BuyerPermission{}).Count(&buyerCount)

		// 14 resources x 4 actions + 2 extras.
		assert.EqualValues(t, 58, platformCount)
		// 11 resources x 4 actions.
		assert.EqualValues(t, 44, merchantCount)
		assert.EqualValues(t, 8, buyerCount)
	})

	t.Run("Super Admin holds every platform permission", func(t *testing.T) {
		var role models.PlatformRole
		assert.NoError(t, db.Preload("Permissions").Where("name = ?", "Super Admin").First(&role).Error)
		assert.Len(t, role.Permissions, 58)
	})

	t.Run("Support holds only its extras", func(t *testing.T) {
		var role models.PlatformRole
		assert.NoError(t, db.Preload("Permissions").Where("name = ?", "Support").First(&role).Error)
		assert.Len(t, role.Permissions, 2)
	})

	t.Run("Default client role exists", func(t *testing.T) {
		var role models.ClientRole
		assert.NoError(t, db.Where("name = ?", cfg.DefaultClientRole).First(&role).Error)
		assert.True(t, role.IsActive)
	})

	t.Run("Running twice changes nothing", func(t *testing.T) {
		assert.NoError(t, seed.Run(db, cfg))

		var platformCount, roleCount int64
		db.Model(&models.PlatformPermission{}).Count(&platformCount)
		db.Model(&models.PlatformRole{}).Count(&roleCount)
		assert.EqualValues(t, 58, platformCount)
		assert.EqualValues(t, 2, roleCount)
	})
}

func TestHashLegacyPasswords(t *testing.T) {
	db := testutils.TestDB(t)

	hashed, err := auth.HashPassword("already-hashed")
	assert.NoError(t, err)

	admin := models.PlatformAdmin{Email: "a@x.test", Password: "plaintext-1", Status: "active"}
	staff := models.MerchantUser{Email: "b@x.test", Password: hashed, Status: "active"}
	buyer := models.BuyerUser{Email: "c@x.test", PasswordHash: "plaintext-2", Status: "active"}
	client := models.Client{Email: "d@x.test", Password: "", Status: "active"}
	assert.NoError(t, db.Create(&admin).Error)
	assert.NoError(t, db.Create(&staff).Error)
	assert.NoError(t, db.Create(&buyer).Error)
	assert.NoError(t, db.Create(&client).Error)

	assert.NoError(t, seed.HashLegacyPasswords(db))

	var reAdmin models.PlatformAdmin
	assert.NoError(t, db.First(&reAdmin, admin.ID).Error)
	assert.True(t, auth.IsHashed(reAdmin.Password))
	assert.True(t, auth.CheckPassword("plaintext-1", reAdmin.Password))

	var reStaff models.MerchantUser
	assert.NoError(t, db.First(&reStaff, staff.ID).Error)
	assert.Equal(t, hashed, reStaff.Password, "hashed credentials stay untouched")

	var reBuyer models.BuyerUser
	assert.NoError(t, db.First(&reBuyer, buyer.ID).Error)
	assert.True(t, auth.CheckPassword("plaintext-2", reBuyer.PasswordHash))

	var reClient models.Client
	assert.NoError(t, db.First(&reClient, client.ID).Error)
	assert.Empty(t, reClient.Password, "empty credentials stay empty")
}
