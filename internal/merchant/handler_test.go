package merchant_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tradegate/backoffice/internal/models"
	"github.com/tradegate/backoffice/internal/seed"
	"github.com/tradegate/backoffice/internal/testutils"
)

func registerBody() map[string]interface{} {
	return map[string]interface{}{
		"business_name":  "Northwind Traders",
		"business_email": "office@northwind.test",
		"email":          "owner@northwind.test",
		"first_name":     "Sam",
		"last_name":      "Field",
		"password":       "secret123",
	}
}

func TestMerchantRegister(t *testing.T) {
	t.Run("Success - Merchant, main branch, admin role, and owner user", func(t *testing.T) {
		app, db, _ := testutils.SetupTestApp(t)
		assert.NoError(t, seed.Run(db, testutils.TestConfig()))

		resp, err := testutils.MakeRequest(app, "POST", "/api/v1/merchant/auth/register", registerBody(), "")
		assert.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.Code)

		var body struct {
			MerchantID     uint `json:"merchant_id"`
			MerchantUserID uint `json:"merchant_user_id"`
			RoleID         uint `json:"role_id"`
		}
		testutils.ParseResponse(t, resp, &body)
		assert.NotZero(t, body.MerchantID)
		assert.NotZero(t, body.MerchantUserID)
		assert.NotZero(t, body.RoleID)

		var branch models.Branch
		assert.NoError(t, db.Where("merchant_id = ?", body.MerchantID).First(&branch).Error)
		assert.Equal(t, "Main Branch", branch.Name)

		var role models.BranchRole
		assert.NoError(t, db.Preload("Permissions").First(&role, body.RoleID).Error)
		assert.Equal(t, "Merchant Admin", role.Name)
		assert.NotEmpty(t, role.Permissions, "admin role should absorb the seeded catalog")

		var user models.MerchantUser
		assert.NoError(t, db.First(&user, body.MerchantUserID).Error)
		assert.Equal(t, body.MerchantID, user.MerchantID)
		assert.NotNil(t, user.BranchID)
		assert.Equal(t, branch.ID, *user.BranchID)
	})

	t.Run("Failure - Duplicate business email is 409", func(t *testing.T) {
		app, _, _ := testutils.SetupTestApp(t)

		resp, err := testutils.MakeRequest(app, "POST", "/api/v1/merchant/auth/register", registerBody(), "")
		assert.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.Code)

		dup := registerBody()
		dup["email"] = "second@northwind.test"
		resp, err = testutils.MakeRequest(app, "POST", "/api/v1/merchant/auth/register", dup, "")
		assert.NoError(t, err)
		assert.Equal(t, http.StatusConflict, resp.Code)
	})

	t.Run("Failure - Validation errors are batched", func(t *testing.T) {
		app, _, _ := testutils.SetupTestApp(t)

		resp, err := testutils.MakeRequest(app, "POST", "/api/v1/merchant/auth/register", map[string]interface{}{}, "")
		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.Code)

		var body struct {
			Errors map[string][]string `json:"errors"`
		}
		testutils.ParseResponse(t, resp, &body)
		assert.Contains(t, body.Errors, "business_name")
		assert.Contains(t, body.Errors, "email")
		assert.Contains(t, body.Errors, "password")
	})
}

func TestMerchantLoginPermissions(t *testing.T) {
	app, db, _ := testutils.SetupTestApp(t)
	assert.NoError(t, seed.Run(db, testutils.TestConfig()))

	resp, err := testutils.MakeRequest(app, "POST", "/api/v1/merchant/auth/register", registerBody(), "")
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.Code)

	login, err := testutils.MakeRequest(app, "POST", "/api/v1/merchant/auth/login", map[string]interface{}{
		"email":    "owner@northwind.test",
		"password": "secret123",
	}, "")
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, login.Code)

	var loginBody map[string]interface{}
	testutils.ParseResponse(t, login, &loginBody)
	assert.NotNil(t, loginBody["merchant_id"])

	me, err := testutils.MakeRequest(app, "GET", "/api/v1/merchant/auth/me", nil, loginBody["access_token"].(string))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, me.Code)

	var meBody struct {
		Permissions []string `json:"permissions"`
	}
	testutils.ParseResponse(t, me, &meBody)
	assert.Contains(t, meBody.Permissions, "create-product")
	assert.Contains(t, meBody.Permissions, "view-order")
}
