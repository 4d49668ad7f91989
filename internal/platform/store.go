package platform

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tradegate/backoffice/internal/auth"
	"github.com/tradegate/backoffice/internal/models"
)

// Store maps platform_admins onto the generic actor shape. Platform admins
// have no parent entity.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*auth.Actor, error) {
	var a models.PlatformAdmin
	err := s.db.WithContext(ctx).
		Preload("PlatformRole").
		Where("email = ?", email).
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.actor(&a), nil
}

func (s *Store) FindByID(ctx context.Context, id uint) (*auth.Actor, error) {
	var a models.PlatformAdmin
	err := s.db.WithContext(ctx).
		Preload("PlatformRole").
		First(&a, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.actor(&a), nil
}

func (s *Store) UpdatePassword(ctx context.Context, id uint, digest string) error {
	return s.db.WithContext(ctx).
		Model(&models.PlatformAdmin{}).
		Where("id = ?", id).
		Update("password", digest).Error
}

func (s *Store) RecordLogin(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).
		Model(&models.PlatformAdmin{}).
		Where("id = ?", id).
		Update("last_login_at", time.Now()).Error
}

func (s *Store) Permissions(ctx context.Context, id uint) ([]string, error) {
	var names []string
	err := s.db.WithContext(ctx).
		Table("platform_permissions").
		Joins("JOIN platform_role_permissions ON platform_role_permissions.platform_permission_id = platform_permissions.id").
		Joins("JOIN platform_admins ON platform_admins.platform_role_id = platform_role_permissions.platform_role_id").
		Where("platform_admins.id = ?", id).
		Pluck("platform_permissions.key_name", &names).Error
	return names, err
}

func (s *Store) actor(m *models.PlatformAdmin) *auth.Actor {
	a := &auth.Actor{
		ID:             m.ID,
		Email:          m.Email,
		PasswordDigest: m.Password,
		FirstName:      m.FirstName,
		LastName:       m.LastName,
		Phone:          m.Phone,
		Active:         m.Status == "active",
	}
	if m.PlatformRoleID != nil {
		a.RoleID = *m.PlatformRoleID
	}
	if m.PlatformRole != nil {
		a.RoleName = m.PlatformRole.Name
	}
	return a
}
