package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tradegate/backoffice/internal/config"
	"github.com/tradegate/backoffice/internal/mailer"
	"github.com/tradegate/backoffice/internal/models"
)

// ErrInvalidResetToken covers every consume failure: unknown, expired,
// already used, or issued for a different actor kind. Externally they are
// indistinguishable.
var ErrInvalidResetToken = errors.New("invalid or expired reset token")

var actorLabels = map[ActorKind]string{
	KindPlatform: "Platform Admin",
	KindMerchant: "Merchant User",
	KindBuyer:    "Buyer User",
	KindClient:   "Client",
}

// ResetService runs the password-reset protocol for every registered actor
// kind against the shared password_reset_tokens table.
type ResetService struct {
	db     *gorm.DB
	cfg    *config.Config
	mail   mailer.Mailer
	stores map[ActorKind]ActorStore
}

func NewResetService(db *gorm.DB, cfg *config.Config, mail mailer.Mailer) *ResetService {
	return &ResetService{
		db:     db,
		cfg:    cfg,
		mail:   mail,
		stores: make(map[ActorKind]ActorStore),
	}
}

func (s *ResetService) register(kind ActorKind, store ActorStore) {
	s.stores[kind] = store
}

// RequestReset issues a fresh single-use token and emails the raw value.
// An unknown email is not an error; the caller responds identically either
// way. Mail dispatch failure is the one infra error allowed to bubble.
func (s *ResetService) RequestReset(ctx context.Context, kind ActorKind, email string) error {
	store, ok := s.stores[kind]
	if !ok {
		return fmt.Errorf("unsupported actor type %q", kind)
	}
	email = NormalizeEmail(email)
	if email == "" {
		return nil
	}
	actor, err := store.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if actor == nil {
		return nil
	}

	raw, err := newResetToken()
	if err != nil {
		return err
	}
	expiresAt := time.Now().Add(s.cfg.ResetTokenTTL)

	// Invalidate-then-insert runs in one transaction so two concurrent
	// requests cannot both leave an extra outstanding token behind.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.PasswordResetToken{}).
			Where("actor_type = ? AND actor_id = ? AND used_at IS NULL", string(kind), actor.ID).
			Update("used_at", time.Now()).Error; err != nil {
			return err
		}
		return tx.Create(&models.PasswordResetToken{
			ActorType: string(kind),
			ActorID:   actor.ID,
			Email:     email,
			TokenHash: hashResetToken(raw),
			ExpiresAt: expiresAt,
		}).Error
	})
	if err != nil {
		return err
	}

	return s.sendResetEmail(ctx, kind, email, raw)
}

// ResetPassword consumes a raw token and installs a new credential. The
// token row is claimed first with a guarded update so a concurrent second
// consume fails even inside the TTL window.
func (s *ResetService) ResetPassword(ctx context.Context, kind ActorKind, rawToken, password string) error {
	store, ok := s.stores[kind]
	if !ok {
		return fmt.Errorf("unsupported actor type %q", kind)
	}

	var row models.PasswordResetToken
	err := s.db.WithContext(ctx).
		Where("token_hash = ? AND used_at IS NULL AND expires_at > ?", hashResetToken(rawToken), time.Now()).
		Order("id DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrInvalidResetToken
	}
	if err != nil {
		return err
	}
	if row.ActorType != string(kind) {
		return ErrInvalidResetToken
	}

	claim := s.db.WithContext(ctx).Model(&models.PasswordResetToken{}).
		Where("id = ? AND used_at IS NULL", row.ID).
		Update("used_at", time.Now())
	if claim.Error != nil {
		return claim.Error
	}
	if claim.RowsAffected != 1 {
		return ErrInvalidResetToken
	}

	digest, err := HashPassword(password)
	if err != nil {
		return err
	}
	return store.UpdatePassword(ctx, row.ActorID, digest)
}

// CleanupExpired deletes token rows past their TTL. Run it periodically;
// expired rows are dead weight since consume filters on expires_at anyway.
func (s *ResetService) CleanupExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("expires_at < ?", time.Now()).
		Delete(&models.PasswordResetToken{})
	return res.RowsAffected, res.Error
}

func (s *ResetService) sendResetEmail(ctx context.Context, kind ActorKind, email, rawToken string) error {
	label := actorLabels[kind]
	minutes := int(s.cfg.ResetTokenTTL.Minutes())
	link := s.resetLink(kind, rawToken)

	text := fmt.Sprintf(
		"You requested a password reset for your %s account.\n\nReset link: %s\n\nThis link expires in %d minutes.",
		label, link, minutes,
	)
	html := fmt.Sprintf(
		"<p>You requested a password reset for your %s account.</p><p><a href=%q>Reset your password</a></p><p>This link expires in %d minutes.</p>",
		label, link, minutes,
	)

	return s.mail.Send(ctx, mailer.Message{
		To:      email,
		Subject: "Reset Your Password",
		Text:    text,
		HTML:    html,
	})
}

func (s *ResetService) resetLink(kind ActorKind, rawToken string) string {
	base := strings.TrimRight(s.cfg.FrontendBaseURL, "/")
	params := url.Values{}
	params.Set("reset", "1")
	params.Set("actor", string(kind))
	params.Set("token", rawToken)
	return base + "/login?" + params.Encode()
}

func newResetToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func hashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
