package buyer

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

// Register creates a buyer company, its default admin role with every known
// buyer permission, and the first user — all in one transaction. Nothing
// partial may persist.
func (h *Handler) Register(c *fiber.Ctx) error {
	var body struct {
		CompanyName                string `json:"company_name"`
		BusinessRegistrationNumber string `json:"business_registration_number"`
		TaxID                      string `json:"tax_id"`
		CompanyEmail               string `json:"company_email"`
		Email                      string `json:"email"`
		Phone                      string `json:"phone"`
		FirstName                  string `json:"first_name"`
		LastName                   string `json:"last_name"`
		Password                   string `json:"password"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	companyEmail := body.CompanyEmail
	if companyEmail == "" {
		companyEmail = body.Email
	}
	buyerEmail := auth.NormalizeEmail(companyEmail)
	userEmail := auth.NormalizeEmail(body.Email)

	errs := validate.Errors{}
	if !validate.IsNonEmptyString(body.CompanyName) {
		errs.Add("company_name", "company_name is required")
	}
	if !validate.IsValidEmail(buyerEmail) {
		errs.Add("company_email", "company_email (or email) must be valid")
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

	var existingBuyer models.Buyer
	if err := h.db.WithContext(ctx).Where("email = ?", buyerEmail).First(&existingBuyer).Error; err == nil {
		return response.Conflict(c, "Company email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	var existingUser models.BuyerUser
	if err := h.db.WithContext(ctx).Where("email = ?", userEmail).First(&existingUser).Error; err == nil {
		return response.Conflict(c, "User email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	var (
		buyerID uint
		userID  uint
		roleID  uint
	)
	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		company := models.Buyer{
			CompanyName:                body.CompanyName,
			BusinessRegistrationNumber: body.BusinessRegistrationNumber,
			TaxID:                      body.TaxID,
			Email:                      buyerEmail,
			Phone:                      body.Phone,
			Status:                     "active",
		}
		if err := tx.Create(&company).Error; err != nil {
			return err
		}

		role := models.BuyerRole{
			BuyerID:     company.ID,
			Name:        "Buyer Admin",
			Description: "Default buyer administrator",
			IsSystem:    true,
		}
		if err := tx.Create(&role).Error; err != nil {
			return err
		}

		// The permission catalog is an optional collaborator; an absent
		// table means grants are unsupported, not an error.
		if tx.Migrator().HasTable(&models.BuyerPermission{}) {
			var perms []models.BuyerPermission
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

		user := models.BuyerUser{
			BuyerID:      company.ID,
			FirstName:    body.FirstName,
			LastName:     body.LastName,
			Email:        userEmail,
			PasswordHash: digest,
			Phone:        body.Phone,
			RoleID:       &role.ID,
			Status:       "active",
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		buyerID = company.ID
		userID = user.ID
		roleID = role.ID
		return nil
	})
	if err != nil {
		return err
	}

	return response.Created(c, fiber.Map{
		"buyer_id":      buyerID,
		"buyer_user_id": userID,
		"role_id":       roleID,
	})
}
