package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tradegate/backoffice/internal/config"
)

// ErrUnauthorized is the single outcome for every token failure: bad
// signature, expired, malformed, or wrong actor kind. Callers never learn
// which.
var ErrUnauthorized = errors.New("unauthorized")

// ActorKind discriminates the four isolated trust domains. A token minted
// for one kind is never accepted by another.
type ActorKind string

const (
	KindPlatform ActorKind = "platform"
	KindMerchant ActorKind = "merchant"
	KindBuyer    ActorKind = "buyer"
	KindClient   ActorKind = "client"
)

type AccessClaims struct {
	Type   string `json:"type"`
	Email  string `json:"email"`
	OrgID  uint   `json:"org_id,omitempty"`
	RoleID uint   `json:"role_id,omitempty"`
	jwt.RegisteredClaims
}

// RefreshClaims carry only the actor kind and subject. Mutable profile
// fields stay out so a refresh token survives role and email changes.
type RefreshClaims struct {
	Type string `json:"type"`
	jwt.RegisteredClaims
}

type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenIssuer(cfg *config.Config) *TokenIssuer {
	return &TokenIssuer{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
	}
}

func (t *TokenIssuer) AccessTTL() time.Duration  { return t.accessTTL }
func (t *TokenIssuer) RefreshTTL() time.Duration { return t.refreshTTL }

func (t *TokenIssuer) IssueAccess(kind ActorKind, a *Actor) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		Type:   string(kind),
		Email:  a.Email,
		OrgID:  a.OrgID,
		RoleID: a.RoleID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(int(a.ID)),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.accessTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.accessSecret)
}

func (t *TokenIssuer) IssueRefresh(kind ActorKind, a *Actor) (string, error) {
	now := time.Now()
	claims := RefreshClaims{
		Type: string(kind),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(int(a.ID)),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.refreshTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.refreshSecret)
}

func (t *TokenIssuer) VerifyAccess(token string, kind ActorKind) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := t.verify(token, claims, t.accessSecret); err != nil {
		return nil, ErrUnauthorized
	}
	if claims.Type != string(kind) {
		return nil, ErrUnauthorized
	}
	return claims, nil
}

func (t *TokenIssuer) VerifyRefresh(token string, kind ActorKind) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := t.verify(token, claims, t.refreshSecret); err != nil {
		return nil, ErrUnauthorized
	}
	if claims.Type != string(kind) {
		return nil, ErrUnauthorized
	}
	return claims, nil
}

func (t *TokenIssuer) verify(token string, claims jwt.Claims, secret []byte) error {
	parsed, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !parsed.Valid {
		return ErrUnauthorized
	}
	return nil
}

// SubjectID converts the string subject of a claim set back into an actor id.
func SubjectID(subject string) (uint, error) {
	id, err := strconv.Atoi(subject)
	if err != nil || id <= 0 {
		return 0, ErrUnauthorized
	}
	return uint(id), nil
}
