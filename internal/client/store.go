package client

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tradegate/backoffice/internal/auth"
	"github.com/tradegate/backoffice/internal/models"
)

// Store maps marketplace clients onto the generic actor shape. A client's
// is_active flag acts as a second kill switch alongside status.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*auth.Actor, error) {
	var m models.Client
	err := s.db.WithContext(ctx).
		Preload("Role").
		Where("email = ?", email).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.actor(&m), nil
}

func (s *Store) FindByID(ctx context.Context, id uint) (*auth.Actor, error) {
	var m models.Client
	err := s.db.WithContext(ctx).
		Preload("Role").
		First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.actor(&m), nil
}

func (s *Store) UpdatePassword(ctx context.Context, id uint, digest string) error {
	return s.db.WithContext(ctx).
		Model(&models.Client{}).
		Where("id = ?", id).
		Update("password", digest).Error
}

func (s *Store) RecordLogin(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).
		Model(&models.Client{}).
		Where("id = ?", id).
		Update("last_login_at", time.Now()).Error
}

func (s *Store) Permissions(ctx context.Context, id uint) ([]string, error) {
	// Clients carry a role for storefront feature gating but no granular
	// permission catalog.
	return []string{}, nil
}

func (s *Store) actor(m *models.Client) *auth.Actor {
	a := &auth.Actor{
		ID:             m.ID,
		Email:          m.Email,
		PasswordDigest: m.Password,
		FirstName:      m.FirstName,
		LastName:       m.LastName,
		Phone:          m.Phone,
		Active:         m.Status == "active" && m.IsActive,
	}
	if m.ClientRoleID != nil {
		a.RoleID = *m.ClientRoleID
	}
	if m.Role != nil {
		a.RoleName = m.Role.Name
	}
	return a
}
