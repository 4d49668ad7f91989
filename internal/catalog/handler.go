// Package catalog manages merchant products and categories, and exposes a
// read-only storefront view for marketplace clients.
package catalog

import (
	"errors"
	"log"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"

	"github.com/tradegate/backoffice/internal/auth"
	"github.com/tradegate/backoffice/internal/models"
	"github.com/tradegate/backoffice/internal/response"
	"github.com/tradegate/backoffice/internal/storage"
	"github.com/tradegate/backoffice/internal/validate"
)

type Handler struct {
	db        *gorm.DB
	files     *storage.Store
	sanitizer *bluemonday.Policy
}

func NewHandler(db *gorm.DB, files *storage.Store) *Handler {
	return &Handler{
		db:        db,
		files:     files,
		sanitizer: bluemonday.UGCPolicy(),
	}
}

// merchantID pulls the caller's merchant from the verified access claims.
func merchantID(c *fiber.Ctx) (uint, bool) {
	claims, ok := auth.Claims(c)
	if !ok || claims.OrgID == 0 {
		return 0, false
	}
	return claims.OrgID, true
}

type productInput struct {
	Name        string `json:"name"`
	SKU         string `json:"sku"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents"`
	Currency    string `json:"currency"`
	Stock       int    `json:"stock"`
	Status      string `json:"status"`
	CategoryIDs []uint `json:"category_ids"`
}

func (h *Handler) validateProduct(in *productInput) validate.Errors {
	errs := validate.Errors{}
	if !validate.IsNonEmptyString(in.Name) {
		errs.Add("name", "name is required")
	}
	if in.PriceCents < 0 {
		errs.Add("price_cents", "price_cents must not be negative")
	}
	if in.Stock < 0 {
		errs.Add("stock", "stock must not be negative")
	}
	return errs
}

func (h *Handler) ListProducts(c *fiber.Ctx) error {
	mid, ok := merchantID(c)
	if !ok {
		return response.Forbidden(c, "No merchant scope")
	}

	q := h.db.WithContext(c.UserContext()).
		Preload("Images").
		Preload("Categories").
		Where("merchant_id = ?", mid)

	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if search := c.Query("q"); search != "" {
		q = q.Where("name LIKE ?", "%"+search+"%")
	}

	products := []models.Product{}
	if err := q.Order("id DESC").Find(&products).Error; err != nil {
		return err
	}
	return response.OK(c, products)
}

func (h *Handler) GetProduct(c *fiber.Ctx) error {
	mid, ok := merchantID(c)
	if !ok {
		return response.Forbidden(c, "No merchant scope")
	}

	var product models.Product
	err := h.db.WithContext(c.UserContext()).
		Preload("Images").
		Preload("Categories").
		Where("merchant_id = ?", mid).
		First(&product, "id = ?", c.Params("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c)
		}
		return err
	}
	return response.OK(c, product)
}

func (h *Handler) CreateProduct(c *fiber.Ctx) error {
	mid, ok := merchantID(c)
	if !ok {
		return response.Forbidden(c, "No merchant scope")
	}

	var in productInput
	if err := c.BodyParser(&in); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if errs := h.validateProduct(&in); errs.Any() {
		return response.ValidationErrors(c, errs)
	}

	product := models.Product{
		MerchantID:  mid,
		Name:        strings.TrimSpace(in.Name),
		SKU:         strings.TrimSpace(in.SKU),
		Description: h.sanitizer.Sanitize(in.Description),
		PriceCents:  in.PriceCents,
		Stock:       in.Stock,
		Status:      "active",
	}
	if in.Currency != "" {
		product.Currency = strings.ToUpper(in.Currency)
	}
	if in.Status != "" {
		product.Status = in.Status
	}

	ctx := c.UserContext()
	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&product).Error; err != nil {
			return err
		}
		if len(in.CategoryIDs) == 0 {
			return nil
		}
		categories := []models.Category{}
		if err := tx.Where("merchant_id = ? AND id IN ?", mid, in.CategoryIDs).
			Find(&categories).Error; err != nil {
			return err
		}
		return tx.Model(&product).Association("Categories").Replace(&categories)
	})
	if err != nil {
		return err
	}
	return response.Created(c, product)
}

func (h *Handler) UpdateProduct(c *fiber.Ctx) error {
	mid, ok := merchantID(c)
	if !ok {
		return response.Forbidden(c, "No merchant scope")
	}

	var product models.Product
	err := h.db.WithContext(c.UserContext()).
		Where("merchant_id = ?", mid).
		First(&product, "id = ?", c.Params("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c)
		}
		return err
	}

	var in productInput
	if err := c.BodyParser(&in); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if errs := h.validateProduct(&in); errs.Any() {
		return response.ValidationErrors(c, errs)
	}

	updates := map[string]any{
		"name":        strings.TrimSpace(in.Name),
		"sku":         strings.TrimSpace(in.SKU),
		"description": h.sanitizer.Sanitize(in.Description),
		"price_cents": in.PriceCents,
		"stock":       in.Stock,
	}
	if in.Currency != "" {
		updates["currency"] = strings.ToUpper(in.Currency)
	}
	if in.Status != "" {
		updates["status"] = in.Status
	}

	ctx := c.UserContext()
	err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&product).Updates(updates).Error; err != nil {
			return err
		}
		if in.CategoryIDs == nil {
			return nil
		}
		categories := []models.Category{}
		if err := tx.Where("merchant_id = ? AND id IN ?", mid, in.CategoryIDs).
			Find(&categories).Error; err != nil {
			return err
		}
		return tx.Model(&product).Association("Categories").Replace(&categories)
	})
	if err != nil {
		return err
	}
	return response.OK(c, product)
}

func (h *Handler) DeleteProduct(c *fiber.Ctx) error {
	mid, ok := merchantID(c)
	if !ok {
		return response.Forbidden(c, "No merchant scope")
	}

	res := h.db.WithContext(c.UserContext()).
		Where("merchant_id = ?", mid).
		Delete(&models.Product{}, "id = ?", c.Params("id"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return response.NotFound(c)
	}
	return response.NoContent(c)
}

// UploadImage attaches a multipart "image" file to a product. The file goes
// through the configured storage backend; only the URL is persisted.
func (h *Handler) UploadImage(c *fiber.Ctx) error {
	mid, ok := merchantID(c)
	if !ok {
		return response.Forbidden(c, "No merchant scope")
	}

	var product models.Product
	err := h.db.WithContext(c.UserContext()).
		Where("merchant_id = ?", mid).
		First(&product, "id = ?", c.Params("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c)
		}
		return err
	}

	file, err := c.FormFile("image")
	if err != nil {
		return response.BadRequest(c, "image file is required")
	}
	if !strings.HasPrefix(file.Header.Get("Content-Type"), "image/") {
		return response.BadRequest(c, "Only image uploads are accepted")
	}

	url, err := h.files.Save(file)
	if err != nil {
		return err
	}

	position, _ := strconv.Atoi(c.FormValue("position", "0"))
	image := models.ProductImage{
		ProductID: product.ID,
		URL:       url,
		AltText:   c.FormValue("alt_text"),
		Position:  position,
	}
	if err := h.db.WithContext(c.UserContext()).Create(&image).Error; err != nil {
		return err
	}
	return response.Created(c, image)
}

func (h *Handler) DeleteImage(c *fiber.Ctx) error {
	mid, ok := merchantID(c)
	if !ok {
		return response.Forbidden(c, "No merchant scope")
	}

	var image models.ProductImage
	err := h.db.WithContext(c.UserContext()).
		Joins("JOIN products ON products.id = product_images.product_id").
		Where("products.merchant_id = ? AND product_images.id = ?", mid, c.Params("imageId")).
		First(&image).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c)
		}
		return err
	}

	if err := h.files.Delete(image.URL); err != nil {
		// Row removal still proceeds; a stray file beats a broken listing.
		log.Printf("delete stored file %s: %v", image.URL, err)
	}
	if err := h.db.WithContext(c.UserContext()).Delete(&image).Error; err != nil {
		return err
	}
	return response.NoContent(c)
}

// Browse lists active products across all merchants for storefront clients.
func (h *Handler) Browse(c *fiber.Ctx) error {
	q := h.db.WithContext(c.UserContext()).
		Preload("Images").
		Where("status = ?", "active")

	if search := c.Query("q"); search != "" {
		q = q.Where("name LIKE ?", "%"+search+"%")
	}
	if mid := c.Query("merchant_id"); mid != "" {
		q = q.Where("merchant_id = ?", mid)
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(c.Query("per_page", "25"))
	if perPage < 1 || perPage > 100 {
		perPage = 25
	}

	products := []models.Product{}
	if err := q.Limit(perPage).Offset((page - 1) * perPage).
		Order("id DESC").Find(&products).Error; err != nil {
		return err
	}
	return response.OK(c, fiber.Map{
		"data":     products,
		"page":     page,
		"per_page": perPage,
	})
}

func (h *Handler) BrowseGet(c *fiber.Ctx) error {
	var product models.Product
	err := h.db.WithContext(c.UserContext()).
		Preload("Images").
		Preload("Categories").
		Where("status = ?", "active").
		First(&product, "id = ?", c.Params("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c)
		}
		return err
	}
	return response.OK(c, product)
}
