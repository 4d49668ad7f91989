package merchant

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

// Register creates the merchant, its main branch, a default admin role with
// the full permission catalog, and the first staff user in one transaction.
func (h *Handler) Register(c *fiber.Ctx) error {
	var body struct {
		BusinessName  string `json:"business_name"`
		BusinessEmail string `json:"business_email"`
		Email         string `json:"email"`
		Phone         string `json:"phone"`
		FirstName     string `json:"first_name"`
		LastName      string `json:"last_name"`
		Password      string `json:"password"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	businessEmail := body.BusinessEmail
	if businessEmail == "" {
		businessEmail = body.Email
	}
	merchantEmail := auth.NormalizeEmail(businessEmail)
	userEmail := auth.NormalizeEmail(body.Email)

	errs := validate.Errors{}
	if !validate.IsNonEmptyString(body.BusinessName) {
		errs.Add("business_name", "business_name is required")
	}
	if !validate.IsValidEmail(merchantEmail) {
		errs.Add("business_email", "business_email (or email) must be valid")
	}
	if !validate.IsValidEmail(userEmail) {
		errs.Add("email", "email is required and must be valid")
	}
	if !validate.IsNonEmptyString(body.FirstName) {
		errs.Add("first_name", "first_name is required")
	}
	if !validate.IsNonEmptyString(body.LastName) {
		errs.Add("last_name", "last_name is required")
	}
	if !validate.IsNonEmptyString(body.Password) {
		errs.Add("password", "password is required")
	} else if len(strings.TrimSpace(body.Password)) < 6 {
		errs.Add("password", "Password must be at least 6 characters")
	}
	if errs.Any() {
		return response.ValidationErrors(c, errs)
	}

	ctx := c.UserContext()

	var existingMerchant models.Merchant
	if err := h.db.WithContext(ctx).Where("email = ?", merchantEmail).First(&existingMerchant).Error; err == nil {
		return response.Conflict(c, "Business email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	var existingUser models.MerchantUser
	if err := h.db.WithContext(ctx).Where("email = ?", userEmail).First(&existingUser).Error; err == nil {
		return response.Conflict(c, "User email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	var (
		merchantID uint
		userID     uint
		roleID     uint
	)
	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m := models.Merchant{
			Name:   body.BusinessName,
			Email:  merchantEmail,
			Phone:  body.Phone,
			Status: "active",
		}
		if err := tx.Create(&m).Error; err != nil {
			return err
		}

		branch := models.Branch{
			MerchantID: m.ID,
			Name:       "Main Branch",
			Status:     "active",
		}
		if err := tx.Create(&branch).Error; err != nil {
			return err
		}

		role := models.BranchRole{
			MerchantID:  m.ID,
			Name:        "Merchant Admin",
			Description: "Default merchant administrator",
			IsSystem:    true,
		}
		if err := tx.Create(&role).Error; err != nil {
			return err
		}

		if tx.Migrator().HasTable(&models.Permission{}) {
			var perms []models.Permission
			if err := tx.Find(&perms).Error; err != nil {
				return err
			}
			if len(perms) > 0 {
				if err := tx.Model(&role).Association("Permissions").Append(&perms); err != nil {
					return err
				}
			}
		}

		digest, err := auth.HashPassword(body.Password)
		if err != nil {
			return err
		}

		user := models.MerchantUser{
			MerchantID:   m.ID,
			BranchID:     &branch.ID,
			FirstName:    body.FirstName,
			LastName:     body.LastName,
			Email:        userEmail,
			Password:     digest,
			Phone:        body.Phone,
			BranchRoleID: &role.ID,
			Status:       "active",
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		merchantID = m.ID
		userID = user.ID
		roleID = role.ID
		return nil
	})
	if err != nil {
		return err
	}

	return response.Created(c, fiber.Map{
		"merchant_id":      merchantID,
		"merchant_user_id": userID,
		"role_id":          roleID,
	})
}
