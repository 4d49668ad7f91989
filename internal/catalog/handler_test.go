package catalog_test

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/tradegate/backoffice/internal/models"
	"github.com/tradegate/backoffice/internal/seed"
	"github.com/tradegate/backoffice/internal/testutils"
)

func merchantToken(t *testing.T, app *fiber.App, db *gorm.DB, email string) string {
	t.Helper()
	assert.NoError(t, seed.Run(db, testutils.TestConfig()))

	resp, err := testutils.MakeRequest(app, "POST", "/api/v1/merchant/auth/register", map[string]interface{}{
		"business_name": "Shop " + email,
		"email":         email,
		"first_name":    "Sam",
		"last_name":     "Field",
		"password":      "secret123",
	}, "")
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.Code)

	login, err := testutils.MakeRequest(app, "POST", "/api/v1/merchant/auth/login", map[string]interface{}{
		"email":    email,
		"password": "secret123",
	}, "")
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, login.Code)

	var body map[string]interface{}
	testutils.ParseResponse(t, login, &body)
	return body["access_token"].(string)
}

func TestProductCRUD(t *testing.T) {
	t.Run("Success - Create sanitizes the description", func(t *testing.T) {
		app, db, _ := testutils.SetupTestApp(t)
		token := merchantToken(t, app, db, "owner@shop.test")

		resp, err := testutils.MakeRequest(app, "POST", "/api/v1/merchant/products", map[string]interface{}{
			"name":        "Widget",
			"sku":         "W-100",
			"description": `<p>Sturdy widget</p><script>alert("x")</script>`,
			"price_cents": 1500,
			"stock":       10,
		}, token)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.Code)

		var product models.Product
		testutils.ParseResponse(t, resp, &product)
		assert.EqualValues(t, 1, product.MerchantID)
		assert.Contains(t, product.Description, "Sturdy widget")
		assert.NotContains(t, product.Description, "<script>")
		assert.Equal(t, "active", product.Status)
	})

	t.Run("Failure - Negative price is a validation error", func(t *testing.T) {
		app, db, _ := testutils.SetupTestApp(t)
		token := merchantToken(t, app, db, "owner@shop.test")

		resp, err := testutils.MakeRequest(app, "POST", "/api/v1/merchant/products", map[string]interface{}{
			"name":        "Widget",
			"price_cents": -5,
		}, token)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("Failure - Another merchant's product is invisible", func(t *testing.T) {
		app, db, _ := testutils.SetupTestApp(t)
		token := merchantToken(t, app, db, "owner@shop.test")

		foreign := models.Product{MerchantID: 42, Name: "Import", PriceCents: 900, Stock: 1, Status: "active"}
		assert.NoError(t, db.Create(&foreign).Error)

		resp, err := testutils.MakeRequest(app, "GET", "/api/v1/merchant/products/1", nil, token)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.Code)

		update, err := testutils.MakeRequest(app, "PUT", "/api/v1/merchant/products/1", map[string]interface{}{
			"name": "Hijacked",
		}, token)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, update.Code)

		del, err := testutils.MakeRequest(app, "DELETE", "/api/v1/merchant/products/1", nil, token)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, del.Code)
	})

	t.Run("Success - Update replaces category links within the merchant", func(t *testing.T) {
		app, db, _ := testutils.SetupTestApp(t)
		token := merchantToken(t, app, db, "owner@shop.test")

		own := models.Category{MerchantID: 1, Name: "Hardware", Status: "active"}
		foreign := models.Category{MerchantID: 42, Name: "Other", Status: "active"}
		assert.NoError(t, db.Create(&own).Error)
		assert.NoError(t, db.Create(&foreign).Error)

		resp, err := testutils.MakeRequest(app, "POST", "/api/v1/merchant/products", map[string]interface{}{
			"name":         "Widget",
			"price_cents":  1500,
			"stock":        10,
			"category_ids": []uint{own.ID, foreign.ID},
		}, token)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.Code)

		var created models.Product
		testutils.ParseResponse(t, resp, &created)

		var product models.Product
		assert.NoError(t, db.Preload("Categories").First(&product, created.ID).Error)
		assert.Len(t, product.Categories, 1, "foreign categories must be dropped")
		assert.Equal(t, "Hardware", product.Categories[0].Name)
	})
}

func TestStorefrontBrowse(t *testing.T) {
	app, db, _ := testutils.SetupTestApp(t)

	assert.NoError(t, db.Create(&models.Product{MerchantID: 1, Name: "Widget", PriceCents: 1500, Stock: 5, Status: "active"}).Error)
	assert.NoError(t, db.Create(&models.Product{MerchantID: 1, Name: "Old Widget", PriceCents: 100, Stock: 0, Status: "archived"}).Error)
	assert.NoError(t, db.Create(&models.Product{MerchantID: 2, Name: "Gadget", PriceCents: 2500, Stock: 3, Status: "active"}).Error)

	t.Run("Success - Only active products are listed", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "GET", "/api/v1/client/products", nil, "")
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.Code)

		var body struct {
			Data []models.Product `json:"data"`
		}
		testutils.ParseResponse(t, resp, &body)
		assert.Len(t, body.Data, 2)
		for _, p := range body.Data {
			assert.Equal(t, "active", p.Status)
		}
	})

	t.Run("Success - Merchant filter", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "GET", "/api/v1/client/products?merchant_id=2", nil, "")
		assert.NoError(t, err)

		var body struct {
			Data []models.Product `json:"data"`
		}
		testutils.ParseResponse(t, resp, &body)
		assert.Len(t, body.Data, 1)
		assert.Equal(t, "Gadget", body.Data[0].Name)
	})

	t.Run("Failure - Archived product detail is 404", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "GET", "/api/v1/client/products/2", nil, "")
		assert.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}
