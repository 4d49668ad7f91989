package client_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tradegate/backoffice/internal/models"
	"github.com/tradegate/backoffice/internal/testutils"
)

func registerBody() map[string]interface{} {
	return map[string]interface{}{
		"first_name": "Kim",
		"last_name":  "Lee",
		"email":      "kim@shopper.test",
		"password":   "secret123",
	}
}

func TestClientRegister(t *testing.T) {
	t.Run("Success - Default role is created on first registration", func(t *testing.T) {
		app, db, _ := testutils.SetupTestApp(t)

		resp, err := testutils.MakeRequest(app, "POST", "/api/v1/client/auth/register", registerBody(), "")
		assert.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.Code)

		var role models.ClientRole
		assert.NoError(t, db.First(&role).Error)
		assert.Equal(t, "Buyer", role.Name)
		assert.True(t, role.IsActive)

		var created models.Client
		assert.NoError(t, db.First(&created).Error)
		assert.Equal(t, "kim@shopper.test", created.Email)
		assert.Equal(t, "active", created.Status)
		assert.True(t, created.IsActive)
		assert.NotNil(t, created.ClientRoleID)
		assert.Equal(t, role.ID, *created.ClientRoleID)
		assert.NotEqual(t, "secret123", created.Password)
	})

	t.Run("Success - Existing default role is reused case-insensitively", func(t *testing.T) {
		app, db, _ := testutils.SetupTestApp(t)
		assert.NoError(t, db.Create(&models.ClientRole{Name: "buyer", IsActive: true}).Error)

		resp, err := testutils.MakeRequest(app, "POST", "/api/v1/client/auth/register", registerBody(), "")
		assert.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.Code)

		var count int64
		db.Model(&models.ClientRole{}).Count(&count)
		assert.EqualValues(t, 1, count)
	})

	t.Run("Success - Explicit role id wins over the default", func(t *testing.T) {
		app, db, _ := testutils.SetupTestApp(t)
		vip := models.ClientRole{Name: "VIP", IsActive: true}
		assert.NoError(t, db.Create(&vip).Error)

		body := registerBody()
		body["platform_client_role_id"] = vip.ID
		resp, err := testutils.MakeRequest(app, "POST", "/api/v1/client/auth/register", body, "")
		assert.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.Code)

		var created models.Client
		assert.NoError(t, db.First(&created).Error)
		assert.Equal(t, vip.ID, *created.ClientRoleID)
	})

	t.Run("Failure - Duplicate email is 409", func(t *testing.T) {
		app, _, _ := testutils.SetupTestApp(t)

		resp, err := testutils.MakeRequest(app, "POST", "/api/v1/client/auth/register", registerBody(), "")
		assert.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.Code)

		resp, err = testutils.MakeRequest(app, "POST", "/api/v1/client/auth/register", registerBody(), "")
		assert.NoError(t, err)
		assert.Equal(t, http.StatusConflict, resp.Code)

		var body map[string]string
		testutils.ParseResponse(t, resp, &body)
		assert.Equal(t, "Email already exists", body["error"])
	})
}

func TestClientLogin(t *testing.T) {
	t.Run("Success - Registered client can log in", func(t *testing.T) {
		app, _, _ := testutils.SetupTestApp(t)

		resp, err := testutils.MakeRequest(app, "POST", "/api/v1/client/auth/register", registerBody(), "")
		assert.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.Code)

		login, err := testutils.MakeRequest(app, "POST", "/api/v1/client/auth/login", map[string]interface{}{
			"email":    "kim@shopper.test",
			"password": "secret123",
		}, "")
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, login.Code)
	})

	t.Run("Failure - is_active=false blocks login with 403", func(t *testing.T) {
		app, db, _ := testutils.SetupTestApp(t)

		resp, err := testutils.MakeRequest(app, "POST", "/api/v1/client/auth/register", registerBody(), "")
		assert.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.Code)

		assert.NoError(t, db.Model(&models.Client{}).
			Where("email = ?", "kim@shopper.test").
			Update("is_active", false).Error)

		login, err := testutils.MakeRequest(app, "POST", "/api/v1/client/auth/login", map[string]interface{}{
			"email":    "kim@shopper.test",
			"password": "secret123",
		}, "")
		assert.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, login.Code)
	})
}
