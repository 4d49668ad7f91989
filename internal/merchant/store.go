package merchant

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tradegate/backoffice/internal/auth"
	"github.com/tradegate/backoffice/internal/models"
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*auth.Actor, error) {
	var u models.MerchantUser
	err := s.db.WithContext(ctx).
		Preload("BranchRole").Preload("Merchant").
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
	var u models.MerchantUser
	err := s.db.WithContext(ctx).
		Preload("BranchRole").Preload("Merchant").
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
		Model(&models.MerchantUser{}).
		Where("id = ?", id).
		Update("password", digest).Error
}

func (s *Store) RecordLogin(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).
		Model(&models.MerchantUser{}).
		Where("id = ?", id).
		Update("last_login_at", time.Now()).Error
}

func (s *Store) Permissions(ctx context.Context, id uint) ([]string, error) {
	var names []string
	err := s.db.WithContext(ctx).
		Table("permissions").
		Joins("JOIN branch_role_permissions ON branch_role_permissions.permission_id = permissions.id").
		Joins("JOIN merchant_users ON merchant_users.branch_role_id = branch_role_permissions.branch_role_id").
		Where("merchant_users.id = ?", id).
		Pluck("permissions.key_name", &names).Error
	return names, err
}

func (s *Store) actor(u *models.MerchantUser) *auth.Actor {
	a := &auth.Actor{
		ID:             u.ID,
		OrgID:          u.MerchantID,
		Email:          u.Email,
		PasswordDigest: u.Password,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Phone:          u.Phone,
		Active:         u.Status == "active",
	}
	if u.BranchRoleID != nil {
		a.RoleID = *u.BranchRoleID
	}
	if u.BranchRole != nil {
		a.RoleName = u.BranchRole.Name
	}
	if u.Merchant != nil {
		a.ParentSuspended = u.Merchant.Status == "suspended"
	}
	return a
}
