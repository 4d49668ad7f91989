// Package order handles storefront checkout for clients and fulfillment
// views for merchants.
package order

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tradegate/backoffice/internal/auth"
	"github.com/tradegate/backoffice/internal/models"
	"github.com/tradegate/backoffice/internal/response"
	"github.com/tradegate/backoffice/internal/validate"
)

var orderStatuses = map[string]bool{
	"pending":   true,
	"confirmed": true,
	"shipped":   true,
	"delivered": true,
	"cancelled": true,
}

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

type checkoutItem struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

type checkoutInput struct {
	Items           []checkoutItem `json:"items"`
	ShippingAddress map[string]any `json:"shipping_address"`
}

// Create places an order for the authenticated client. All items must come
// from a single merchant; stock is reserved inside the transaction.
func (h *Handler) Create(c *fiber.Ctx) error {
	clientID, ok := auth.ActorID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var in checkoutInput
	if err := c.BodyParser(&in); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	errs := validate.Errors{}
	if len(in.Items) == 0 {
		errs.Add("items", "At least one item is required")
	}
	for i, item := range in.Items {
		if item.ProductID == 0 {
			errs.Add("items", fmt.Sprintf("items[%d].product_id is required", i))
		}
		if item.Quantity < 1 {
			errs.Add("items", fmt.Sprintf("items[%d].quantity must be at least 1", i))
		}
	}
	if errs.Any() {
		return response.ValidationErrors(c, errs)
	}

	quantities := map[uint]int{}
	ids := make([]uint, 0, len(in.Items))
	for _, item := range in.Items {
		if quantities[item.ProductID] == 0 {
			ids = append(ids, item.ProductID)
		}
		quantities[item.ProductID] += item.Quantity
	}

	var shipping datatypes.JSON
	if in.ShippingAddress != nil {
		raw, err := json.Marshal(in.ShippingAddress)
		if err != nil {
			return response.BadRequest(c, "Invalid shipping address")
		}
		shipping = datatypes.JSON(raw)
	}

	order := models.Order{
		Number:          "ORD-" + strings.ToUpper(uuid.New().String()[:13]),
		ClientID:        clientID,
		Status:          "pending",
		ShippingAddress: shipping,
	}

	ctx := c.UserContext()
	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products := []models.Product{}
		if err := tx.Where("id IN ? AND status = ?", ids, "active").
			Find(&products).Error; err != nil {
			return err
		}
		if len(products) != len(ids) {
			return fiber.NewError(fiber.StatusBadRequest, "One or more products are unavailable")
		}

		for _, p := range products {
			if order.MerchantID == 0 {
				order.MerchantID = p.MerchantID
				order.Currency = p.Currency
			} else if p.MerchantID != order.MerchantID {
				return fiber.NewError(fiber.StatusBadRequest, "All items must belong to the same merchant")
			}

			qty := quantities[p.ID]
			if p.Stock < qty {
				return fiber.NewError(fiber.StatusConflict,
					fmt.Sprintf("Insufficient stock for %s", p.Name))
			}

			order.Items = append(order.Items, models.OrderItem{
				ProductID: p.ID,
				Name:      p.Name,
				UnitCents: p.PriceCents,
				Quantity:  qty,
			})
			order.TotalCents += p.PriceCents * int64(qty)

			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", p.ID, qty).
				Update("stock", gorm.Expr("stock - ?", qty))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected != 1 {
				return fiber.NewError(fiber.StatusConflict,
					fmt.Sprintf("Insufficient stock for %s", p.Name))
			}
		}

		return tx.Create(&order).Error
	})
	if err != nil {
		return err
	}
	return response.Created(c, order)
}

// ListForClient returns the caller's own orders, newest first.
func (h *Handler) ListForClient(c *fiber.Ctx) error {
	clientID, ok := auth.ActorID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	orders := []models.Order{}
	if err := h.db.WithContext(c.UserContext()).
		Preload("Items").
		Where("client_id = ?", clientID).
		Order("id DESC").
		Find(&orders).Error; err != nil {
		return err
	}
	return response.OK(c, orders)
}

func (h *Handler) GetForClient(c *fiber.Ctx) error {
	clientID, ok := auth.ActorID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var order models.Order
	err := h.db.WithContext(c.UserContext()).
		Preload("Items").
		Where("client_id = ?", clientID).
		First(&order, "id = ?", c.Params("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c)
		}
		return err
	}
	return response.OK(c, order)
}

// ListForMerchant returns orders placed against the caller's merchant.
func (h *Handler) ListForMerchant(c *fiber.Ctx) error {
	claims, ok := auth.Claims(c)
	if !ok || claims.OrgID == 0 {
		return response.Forbidden(c, "No merchant scope")
	}

	q := h.db.WithContext(c.UserContext()).
		Preload("Items").
		Where("merchant_id = ?", claims.OrgID)
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	orders := []models.Order{}
	if err := q.Order("id DESC").Find(&orders).Error; err != nil {
		return err
	}
	return response.OK(c, orders)
}

// UpdateStatus moves a merchant's order to a new status.
func (h *Handler) UpdateStatus(c *fiber.Ctx) error {
	claims, ok := auth.Claims(c)
	if !ok || claims.OrgID == 0 {
		return response.Forbidden(c, "No merchant scope")
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if !orderStatuses[body.Status] {
		return response.BadRequest(c, "Invalid order status")
	}

	var order models.Order
	err := h.db.WithContext(c.UserContext()).
		Where("merchant_id = ?", claims.OrgID).
		First(&order, "id = ?", c.Params("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c)
		}
		return err
	}

	if err := h.db.WithContext(c.UserContext()).
		Model(&order).Update("status", body.Status).Error; err != nil {
		return err
	}
	return response.OK(c, order)
}
