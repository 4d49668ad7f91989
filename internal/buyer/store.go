package buyer

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tradegate/backoffice/internal/auth"
	"github.com/tradegate/backoffice/internal/models"
)

// Store maps buyer_users (and their parent company) onto the generic actor
// shape.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*auth.Actor, error) {
	var u models.BuyerUser
	err := s.db.WithContext(ctx).
		Preload("Role").Preload("Buyer").
		Where("email = ?", email).
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.actor(&u), nil
}

func (s *Store) FindByID(ctx context.Context, id uint) (*auth.Actor, error) {
	var u models.BuyerUser
	err := s.db.WithContext(ctx).
		Preload("Role").Preload("Buyer").
		First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.actor(&u), nil
}

func (s *Store) UpdatePassword(ctx context.Context, id uint, digest string) error {
	return s.db.WithContext(ctx).
		Model(&models.BuyerUser{}).
		Where("id = ?", id).
		Update("password_hash", digest).Error
}

func (s *Store) RecordLogin(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).
		Model(&models.BuyerUser{}).
		Where("id = ?", id).
		Update("last_login_at", time.Now()).Error
}

func (s *Store) Permissions(ctx context.Context, id uint) ([]string, error) {
	var names []string
	err := s.db.WithContext(ctx).
		Table("buyer_permissions").
		Joins("JOIN buyer_role_permissions ON buyer_role_permissions.buyer_permission_id = buyer_permissions.id").
		Joins("JOIN buyer_users ON buyer_users.role_id = buyer_role_permissions.buyer_role_id").
		Where("buyer_users.id = ?", id).
		Pluck("buyer_permissions.name", &names).Error
	return names, err
}

func (s *Store) actor(u *models.BuyerUser) *auth.Actor {
	a := &auth.Actor{
		ID:             u.ID,
		OrgID:          u.BuyerID,
		Email:          u.Email,
		PasswordDigest: u.PasswordHash,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Phone:          u.Phone,
		Active:         u.Status == "active",
	}
	if u.RoleID != nil {
		a.RoleID = *u.RoleID
	}
	if u.Role != nil {
		a.RoleName = u.Role.Name
	}
	if u.Buyer != nil {
		a.ParentSuspended = u.Buyer.Status == "suspended"
	}
	return a
}
