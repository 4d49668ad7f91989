package client

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/tradegate/backoffice/internal/auth"
	"github.com/tradegate/backoffice/internal/config"
	"github.com/tradegate/backoffice/internal/models"
	"github.com/tradegate/backoffice/internal/response"
	"github.com/tradegate/backoffice/internal/validate"
)

type Handler struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewHandler(db *gorm.DB, cfg *config.Config) *Handler {
	return &Handler{db: db, cfg: cfg}
}

func (h *Handler) Register(c *fiber.Ctx) error {
	var body struct {
		FirstName    string `json:"first_name"`
		LastName     string `json:"last_name"`
		Email        string `json:"email"`
		Phone        string `json:"phone"`
		Password     string `json:"password"`
		ClientRoleID *uint  `json:"platform_client_role_id"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	email := auth.NormalizeEmail(body.Email)

	errs := validate.Errors{}
	if !validate.IsNonEmptyString(body.FirstName) {
		errs.Add("first_name", "first_name is required")
	}
	if !validate.IsNonEmptyString(body.LastName) {
		errs.Add("last_name", "last_name is required")
	}
	if !validate.IsValidEmail(email) {
		errs.Add("email", "Email is required and must be valid")
	}
	if !validate.IsNonEmptyString(body.Password) {
		errs.Add("password", "Password is required")
	} else if len(strings.TrimSpace(body.Password)) < 6 {
		errs.Add("password", "Password must be at least 6 characters")
	}
	if errs.Any() {
		return response.ValidationErrors(c, errs)
	}

	ctx := c.UserContext()

	var existing models.Client
	if err := h.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error; err == nil {
		return response.Conflict(c, "Email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	roleID, err := h.resolveRoleID(c, body.ClientRoleID)
	if err != nil {
		return err
	}

	digest, err := auth.HashPassword(body.Password)
	if err != nil {
		return err
	}

	m := models.Client{
		ClientRoleID: roleID,
		FirstName:    strings.TrimSpace(body.FirstName),
		LastName:     strings.TrimSpace(body.LastName),
		Email:        email,
		Phone:        body.Phone,
		Password:     digest,
		Status:       "active",
		IsActive:     true,
	}
	if err := h.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}

	return response.Created(c, fiber.Map{"id": m.ID})
}

// resolveRoleID honors an explicit role, otherwise finds or creates the
// configured default client role.
func (h *Handler) resolveRoleID(c *fiber.Ctx, requested *uint) (*uint, error) {
	if requested != nil {
		return requested, nil
	}
	ctx := c.UserContext()

	var role models.ClientRole
	err := h.db.WithContext(ctx).
		Where("LOWER(name) = ?", strings.ToLower(h.cfg.DefaultClientRole)).
		First(&role).Error
	if err == nil {
		return &role.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	role = models.ClientRole{Name: h.cfg.DefaultClientRole, IsActive: true}
	if err := h.db.WithContext(ctx).Create(&role).Error; err != nil {
		return nil, err
	}
	return &role.ID, nil
}
