package platform

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/tradegate/backoffice/internal/auth"
	"github.com/tradegate/backoffice/internal/models"
	"github.com/tradegate/backoffice/internal/response"
	"github.com/tradegate/backoffice/internal/validate"
)

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

func (h *Handler) Register(c *fiber.Ctx) error {
	var body struct {
		FirstName      string `json:"first_name"`
		LastName       string `json:"last_name"`
		Email          string `json:"email"`
		Phone          string `json:"phone"`
		Password       string `json:"password"`
		PlatformRoleID *uint  `json:"platform_role_id"`
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

	var existing models.PlatformAdmin
	if err := h.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error; err == nil {
		return response.Conflict(c, "Email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if body.PlatformRoleID != nil {
		var role models.PlatformRole
		if err := h.db.WithContext(ctx).First(&role, *body.PlatformRoleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.BadRequest(c, "platform_role_id does not exist")
			}
			return err
		}
	}

	digest, err := auth.HashPassword(body.Password)
	if err != nil {
		return err
	}

	admin := models.PlatformAdmin{
		FirstName:      body.FirstName,
		LastName:       body.LastName,
		Email:          email,
		Password:       digest,
		Phone:          body.Phone,
		Status:         "active",
		PlatformRoleID: body.PlatformRoleID,
	}
	if err := h.db.WithContext(ctx).Create(&admin).Error; err != nil {
		return err
	}

	return response.Created(c, fiber.Map{"id": admin.ID})
}
