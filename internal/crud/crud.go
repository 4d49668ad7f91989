// Package crud provides a generic REST resource over a GORM model. Each
// admin-facing entity mounts one Resource instead of repeating the same
// five handlers per table.
package crud

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/tradegate/backoffice/internal/response"
)

// Scope narrows every query of a Resource, e.g. to the caller's merchant.
type Scope func(c *fiber.Ctx, tx *gorm.DB) *gorm.DB

// Resource serves list/get/create/update/delete for model T.
type Resource[T any] struct {
	db       *gorm.DB
	preloads []string
	scope    Scope
}

func NewResource[T any](db *gorm.DB) *Resource[T] {
	return &Resource[T]{db: db}
}

// Preload adds associations loaded on List and Get.
func (r *Resource[T]) Preload(assocs ...string) *Resource[T] {
	r.preloads = append(r.preloads, assocs...)
	return r
}

// Scoped applies s to every query.
func (r *Resource[T]) Scoped(s Scope) *Resource[T] {
	r.scope = s
	return r
}

// Mount registers the five routes on router.
func (r *Resource[T]) Mount(router fiber.Router) {
	router.Get("/", r.List)
	router.Get("/:id", r.Get)
	router.Post("/", r.Create)
	router.Put("/:id", r.Update)
	router.Delete("/:id", r.Delete)
}

func (r *Resource[T]) query(c *fiber.Ctx) *gorm.DB {
	tx := r.db.WithContext(c.UserContext())
	for _, p := range r.preloads {
		tx = tx.Preload(p)
	}
	if r.scope != nil {
		tx = r.scope(c, tx)
	}
	return tx
}

func (r *Resource[T]) List(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(c.Query("per_page", "25"))
	if perPage < 1 || perPage > 100 {
		perPage = 25
	}

	var total int64
	var model T
	if err := r.query(c).Model(&model).Count(&total).Error; err != nil {
		return err
	}

	items := []T{}
	if err := r.query(c).
		Limit(perPage).
		Offset((page - 1) * perPage).
		Order("id DESC").
		Find(&items).Error; err != nil {
		return err
	}

	return response.OK(c, fiber.Map{
		"data":     items,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

func (r *Resource[T]) Get(c *fiber.Ctx) error {
	var item T
	if err := r.query(c).First(&item, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c)
		}
		return err
	}
	return response.OK(c, item)
}

func (r *Resource[T]) Create(c *fiber.Ctx) error {
	var item T
	if err := c.BodyParser(&item); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := r.db.WithContext(c.UserContext()).Create(&item).Error; err != nil {
		return err
	}
	return response.Created(c, item)
}

func (r *Resource[T]) Update(c *fiber.Ctx) error {
	var item T
	if err := r.query(c).First(&item, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c)
		}
		return err
	}

	patch := map[string]any{}
	if err := c.BodyParser(&patch); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	delete(patch, "id")
	delete(patch, "created_at")

	if err := r.db.WithContext(c.UserContext()).Model(&item).Updates(patch).Error; err != nil {
		return err
	}
	return response.OK(c, item)
}

func (r *Resource[T]) Delete(c *fiber.Ctx) error {
	var item T
	if err := r.query(c).First(&item, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c)
		}
		return err
	}
	if err := r.db.WithContext(c.UserContext()).Delete(&item).Error; err != nil {
		return err
	}
	return response.NoContent(c)
}
