package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tradegate/backoffice/internal/response"
)

const (
	localsActorID     = "actor_id"
	localsActorClaims = "actor_claims"
)

// Protected rejects requests without a valid access token for this engine's
// actor kind. Claims land in locals for downstream handlers.
func (e *Engine) Protected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := ExtractAccessToken(c, e.actor.Kind)
		if token == "" {
			return response.Unauthorized(c, "Unauthorized")
		}
		claims, err := e.issuer.VerifyAccess(token, e.actor.Kind)
		if err != nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		id, err := SubjectID(claims.Subject)
		if err != nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		c.Locals(localsActorID, id)
		c.Locals(localsActorClaims, claims)
		return c.Next()
	}
}

// RequirePermission gates a route on one resolved permission name. Must run
// after Protected.
func (e *Engine) RequirePermission(name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := ActorID(c)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}
		permissions, err := e.actor.Store.Permissions(c.UserContext(), id)
		if err != nil {
			return err
		}
		for _, p := range permissions {
			if p == name {
				return c.Next()
			}
		}
		return response.Forbidden(c, "You don't have permission to perform this action")
	}
}

// ActorID returns the authenticated actor id stashed by Protected.
func ActorID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals(localsActorID).(uint)
	return id, ok
}

// Claims returns the verified access claims stashed by Protected.
func Claims(c *fiber.Ctx) (*AccessClaims, bool) {
	claims, ok := c.Locals(localsActorClaims).(*AccessClaims)
	return claims, ok
}
