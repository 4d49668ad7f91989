package auth

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/tradegate/backoffice/internal/config"
	"github.com/tradegate/backoffice/internal/response"
	"github.com/tradegate/backoffice/internal/validate"
)

// Actor is the store-agnostic view of one authenticable identity. Each of
// the four actor kinds maps its own table onto this shape.
type Actor struct {
	ID              uint
	OrgID           uint // owning company id (buyer/merchant), 0 when none
	Email           string
	PasswordDigest  string
	FirstName       string
	LastName        string
	Phone           string
	RoleID          uint
	RoleName        string
	Active          bool
	ParentSuspended bool
}

// Authenticable is true only when the actor and any parent entity are both
// in good standing.
func (a *Actor) Authenticable() bool {
	return a.Active && !a.ParentSuspended
}

// ActorStore is the narrow credential-store contract each actor kind
// implements. FindByEmail and FindByID return (nil, nil) when no record
// exists.
type ActorStore interface {
	FindByEmail(ctx context.Context, email string) (*Actor, error)
	FindByID(ctx context.Context, id uint) (*Actor, error)
	UpdatePassword(ctx context.Context, id uint, digest string) error
	RecordLogin(ctx context.Context, id uint) error
	Permissions(ctx context.Context, id uint) ([]string, error)
}

// ActorConfig parameterizes the engine for one actor kind. The four kinds
// run the identical protocol; only the store, the org field label, and the
// profile shape differ.
type ActorConfig struct {
	Kind  ActorKind
	Store ActorStore

	// OrgKey names the owning-company id in login/me bodies
	// ("buyer_id", "merchant_id"); empty omits the field.
	OrgKey string

	// Profile contributes extra response fields for login and me.
	Profile func(a *Actor) fiber.Map
}

// Engine implements login, refresh, logout, me, and the password-reset
// endpoints for a single actor kind.
type Engine struct {
	cfg    *config.Config
	issuer *TokenIssuer
	reset  *ResetService
	actor  ActorConfig
}

func NewEngine(cfg *config.Config, issuer *TokenIssuer, reset *ResetService, actor ActorConfig) *Engine {
	if reset != nil {
		reset.register(actor.Kind, actor.Store)
	}
	return &Engine{cfg: cfg, issuer: issuer, reset: reset, actor: actor}
}

func (e *Engine) Kind() ActorKind { return e.actor.Kind }

func (e *Engine) Login(c *fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	errs := validate.Errors{}
	if !validate.IsValidEmail(body.Email) {
		errs.Add("email", "Email is required and must be valid")
	}
	if !validate.IsNonEmptyString(body.Password) {
		errs.Add("password", "Password is required")
	}
	if errs.Any() {
		return response.ValidationErrors(c, errs)
	}

	actor, err := e.actor.Store.FindByEmail(c.UserContext(), NormalizeEmail(body.Email))
	if err != nil {
		return err
	}
	// A credential that is not a recognized hash is legacy plaintext; such
	// accounts fail closed with the same generic response as a miss.
	if actor == nil || !IsHashed(actor.PasswordDigest) {
		return response.Unauthorized(c, "Invalid credentials")
	}
	if !actor.Active {
		return response.Forbidden(c, "Account is not active")
	}
	if actor.ParentSuspended {
		return response.Forbidden(c, "Account is suspended")
	}
	if !CheckPassword(body.Password, actor.PasswordDigest) {
		return response.Unauthorized(c, "Invalid credentials")
	}

	access, err := e.issuer.IssueAccess(e.actor.Kind, actor)
	if err != nil {
		return err
	}
	refresh, err := e.issuer.IssueRefresh(e.actor.Kind, actor)
	if err != nil {
		return err
	}
	AttachSession(c, e.cfg, e.actor.Kind, access, refresh, e.issuer.AccessTTL(), e.issuer.RefreshTTL())

	// Best effort; a failed stamp must never fail the login.
	go func(id uint) {
		if err := e.actor.Store.RecordLogin(context.Background(), id); err != nil {
			log.Printf("record last login for %s %d: %v", e.actor.Kind, id, err)
		}
	}(actor.ID)

	body2 := fiber.Map{
		"id":            actor.ID,
		"email":         actor.Email,
		"role_id":       nullableID(actor.RoleID),
		"role_name":     nullableString(actor.RoleName),
		"access_token":  access,
		"refresh_token": refresh,
	}
	e.decorate(body2, actor)
	return response.OK(c, body2)
}

func (e *Engine) Refresh(c *fiber.Ctx) error {
	token := ExtractRefreshToken(c, e.actor.Kind)
	if token == "" {
		return response.Unauthorized(c, "Unauthorized")
	}
	claims, err := e.issuer.VerifyRefresh(token, e.actor.Kind)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := SubjectID(claims.Subject)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	// Never trust the token alone: a refresh token must not outlive an
	// actor's suspension.
	actor, err := e.actor.Store.FindByID(c.UserContext(), id)
	if err != nil || actor == nil || !actor.Authenticable() {
		return response.Unauthorized(c, "Unauthorized")
	}

	access, err := e.issuer.IssueAccess(e.actor.Kind, actor)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	refresh, err := e.issuer.IssueRefresh(e.actor.Kind, actor)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	AttachSession(c, e.cfg, e.actor.Kind, access, refresh, e.issuer.AccessTTL(), e.issuer.RefreshTTL())

	return response.OK(c, fiber.Map{
		"ok":            true,
		"access_token":  access,
		"refresh_token": refresh,
	})
}

func (e *Engine) Logout(c *fiber.Ctx) error {
	ClearSession(c, e.cfg, e.actor.Kind)
	return response.NoContent(c)
}

func (e *Engine) Me(c *fiber.Ctx) error {
	id, ok := ActorID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	actor, err := e.actor.Store.FindByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	if actor == nil {
		return response.NotFound(c)
	}
	permissions, err := e.actor.Store.Permissions(c.UserContext(), actor.ID)
	if err != nil {
		return err
	}
	if permissions == nil {
		permissions = []string{}
	}

	body := fiber.Map{
		"id":          actor.ID,
		"email":       actor.Email,
		"first_name":  actor.FirstName,
		"last_name":   actor.LastName,
		"phone":       nullableString(actor.Phone),
		"role_id":     nullableID(actor.RoleID),
		"role_name":   nullableString(actor.RoleName),
		"status":      actorStatus(actor),
		"permissions": permissions,
	}
	e.decorate(body, actor)
	return response.OK(c, body)
}

func (e *Engine) ForgotPassword(c *fiber.Ctx) error {
	var body struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := e.reset.RequestReset(c.UserContext(), e.actor.Kind, body.Email); err != nil {
		return err
	}
	// Identical body whether or not the account exists.
	return response.OK(c, fiber.Map{
		"ok":      true,
		"message": "If the account exists, a password reset link has been sent.",
	})
}

func (e *Engine) ResetPassword(c *fiber.Ctx) error {
	var body struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if body.Token == "" || body.Password == "" {
		return response.BadRequest(c, "token and password are required")
	}
	if len(strings.TrimSpace(body.Password)) < 6 {
		return response.BadRequest(c, "Password must be at least 6 characters")
	}
	if err := e.reset.ResetPassword(c.UserContext(), e.actor.Kind, body.Token, body.Password); err != nil {
		if errors.Is(err, ErrInvalidResetToken) {
			return response.BadRequest(c, "Invalid or expired reset link")
		}
		return err
	}
	return response.OK(c, fiber.Map{"ok": true, "message": "Password reset successful"})
}

func (e *Engine) decorate(body fiber.Map, actor *Actor) {
	if e.actor.OrgKey != "" {
		body[e.actor.OrgKey] = actor.OrgID
	}
	if e.actor.Profile != nil {
		for k, v := range e.actor.Profile(actor) {
			body[k] = v
		}
	}
}

func actorStatus(a *Actor) string {
	if a.Active {
		return "active"
	}
	return "inactive"
}

func nullableID(id uint) interface{} {
	if id == 0 {
		return nil
	}
	return id
}

func nullableString(v string) interface{} {
	if v == "" {
		return nil
	}
	return v
}
