package auth

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/tradegate/backoffice/internal/config"
)

// Cookie names are actor-kind-scoped so sessions for different actor types
// can coexist in one browser.

func AccessCookieName(kind ActorKind) string {
	return string(kind) + "_access_token"
}

func RefreshCookieName(kind ActorKind) string {
	return string(kind) + "_refresh_token"
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// ExtractAccessToken checks the Authorization header first, then the
// kind-scoped cookie.
func ExtractAccessToken(c *fiber.Ctx, kind ActorKind) string {
	if tok := bearerToken(c); tok != "" {
		return tok
	}
	return c.Cookies(AccessCookieName(kind))
}

// ExtractRefreshToken checks the kind-scoped cookie, then the Authorization
// header, then a refresh_token body field for non-cookie clients.
func ExtractRefreshToken(c *fiber.Ctx, kind ActorKind) string {
	if tok := c.Cookies(RefreshCookieName(kind)); tok != "" {
		return tok
	}
	if tok := bearerToken(c); tok != "" {
		return tok
	}
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.BodyParser(&body); err == nil {
		return body.RefreshToken
	}
	return ""
}

func sessionCookie(cfg *config.Config, name, value string, ttl time.Duration) *fiber.Cookie {
	cookie := &fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HTTPOnly: true,
		Secure:   cfg.Production(),
		SameSite: fiber.CookieSameSiteLaxMode,
	}
	if cfg.Production() {
		cookie.SameSite = fiber.CookieSameSiteNoneMode
	}
	return cookie
}

// AttachSession sets both httpOnly session cookies with max-age mirroring
// each token's TTL.
func AttachSession(c *fiber.Ctx, cfg *config.Config, kind ActorKind, access, refresh string, accessTTL, refreshTTL time.Duration) {
	c.Cookie(sessionCookie(cfg, AccessCookieName(kind), access, accessTTL))
	c.Cookie(sessionCookie(cfg, RefreshCookieName(kind), refresh, refreshTTL))
}

// ClearSession expires both cookies with the same attribute profile used to
// set them; mismatched attributes silently fail to clear in some clients.
func ClearSession(c *fiber.Ctx, cfg *config.Config, kind ActorKind) {
	for _, name := range []string{AccessCookieName(kind), RefreshCookieName(kind)} {
		cookie := sessionCookie(cfg, name, "", 0)
		cookie.MaxAge = -1
		cookie.Expires = time.Now().Add(-time.Hour)
		c.Cookie(cookie)
	}
}
