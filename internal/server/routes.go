package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/gorm"

	"github.com/tradegate/backoffice/internal/auth"
	"github.com/tradegate/backoffice/internal/buyer"
	"github.com/tradegate/backoffice/internal/catalog"
	"github.com/tradegate/backoffice/internal/client"
	"github.com/tradegate/backoffice/internal/crud"
	"github.com/tradegate/backoffice/internal/merchant"
	"github.com/tradegate/backoffice/internal/models"
	"github.com/tradegate/backoffice/internal/order"
	"github.com/tradegate/backoffice/internal/platform"
	"github.com/tradegate/backoffice/internal/ratelimit"
)

func SetupRoutes(app *fiber.App, deps Deps) {
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     deps.Cfg.FrontendBaseURL,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS, PATCH",
		AllowCredentials: true,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	issuer := auth.NewTokenIssuer(deps.Cfg)
	reset := auth.NewResetService(deps.DB, deps.Cfg, deps.Mail)

	platformEngine := auth.NewEngine(deps.Cfg, issuer, reset, auth.ActorConfig{
		Kind:  auth.KindPlatform,
		Store: platform.NewStore(deps.DB),
	})
	merchantEngine := auth.NewEngine(deps.Cfg, issuer, reset, auth.ActorConfig{
		Kind:   auth.KindMerchant,
		Store:  merchant.NewStore(deps.DB),
		OrgKey: "merchant_id",
	})
	buyerEngine := auth.NewEngine(deps.Cfg, issuer, reset, auth.ActorConfig{
		Kind:   auth.KindBuyer,
		Store:  buyer.NewStore(deps.DB),
		OrgKey: "buyer_id",
	})
	clientEngine := auth.NewEngine(deps.Cfg, issuer, reset, auth.ActorConfig{
		Kind:  auth.KindClient,
		Store: client.NewStore(deps.DB),
	})

	api := app.Group("/api/v1")

	mountAuth(api.Group("/platform"), deps, platformEngine, platform.NewHandler(deps.DB).Register)
	mountAuth(api.Group("/merchant"), deps, merchantEngine, merchant.NewHandler(deps.DB).Register)
	mountAuth(api.Group("/buyer"), deps, buyerEngine, buyer.NewHandler(deps.DB).Register)
	mountAuth(api.Group("/client"), deps, clientEngine, client.NewHandler(deps.DB, deps.Cfg).Register)

	mountPlatformAdmin(api.Group("/platform"), deps, platformEngine)
	mountMerchantBackOffice(api.Group("/merchant"), deps, merchantEngine)
	mountStorefront(api.Group("/client"), deps, clientEngine)
}

// mountAuth wires the shared auth protocol for one actor kind under
// <group>/auth. Credential endpoints sit behind per-IP rate limits.
func mountAuth(g fiber.Router, deps Deps, e *auth.Engine, register fiber.Handler) {
	kind := string(e.Kind())
	loginLimit := ratelimit.New(deps.Redis, kind+":login", 5, 15*time.Minute)
	resetLimit := ratelimit.New(deps.Redis, kind+":reset", 3, 15*time.Minute)
	refreshLimit := ratelimit.New(deps.Redis, kind+":refresh", 30, 5*time.Minute)

	a := g.Group("/auth")
	a.Post("/register", loginLimit, register)
	a.Post("/login", loginLimit, e.Login)
	a.Post("/refresh", refreshLimit, e.Refresh)
	a.Post("/logout", e.Logout)
	a.Get("/me", e.Protected(), e.Me)
	a.Post("/forgot-password", resetLimit, e.ForgotPassword)
	a.Post("/reset-password", resetLimit, e.ResetPassword)
}

// mountGuarded registers a CRUD resource with per-action permission checks
// matching the seeded "<action>-<resource>" keys.
func mountGuarded[T any](g fiber.Router, res *crud.Resource[T], e *auth.Engine, resource string) {
	g.Get("/", e.RequirePermission("view-"+resource), res.List)
	g.Get("/:id", e.RequirePermission("view-"+resource), res.Get)
	g.Post("/", e.RequirePermission("create-"+resource), res.Create)
	g.Put("/:id", e.RequirePermission("update-"+resource), res.Update)
	g.Delete("/:id", e.RequirePermission("delete-"+resource), res.Delete)
}

func mountPlatformAdmin(g fiber.Router, deps Deps, e *auth.Engine) {
	g.Use(e.Protected())

	mountGuarded(g.Group("/platform-admins"),
		crud.NewResource[models.PlatformAdmin](deps.DB).Preload("PlatformRole"), e, "platform-admin")
	mountGuarded(g.Group("/platform-roles"),
		crud.NewResource[models.PlatformRole](deps.DB).Preload("Permissions"), e, "platform-role")
	mountGuarded(g.Group("/platform-permissions"),
		crud.NewResource[models.PlatformPermission](deps.DB), e, "platform-permission")
	mountGuarded(g.Group("/merchants"),
		crud.NewResource[models.Merchant](deps.DB).Preload("Branches"), e, "merchant")
	mountGuarded(g.Group("/branches"),
		crud.NewResource[models.Branch](deps.DB), e, "branch")
}

func merchantScope(c *fiber.Ctx, tx *gorm.DB) *gorm.DB {
	claims, ok := auth.Claims(c)
	if !ok {
		return tx.Where("1 = 0")
	}
	return tx.Where("merchant_id = ?", claims.OrgID)
}

func mountMerchantBackOffice(g fiber.Router, deps Deps, e *auth.Engine) {
	g.Use(e.Protected())

	mountGuarded(g.Group("/branches"),
		crud.NewResource[models.Branch](deps.DB).Scoped(merchantScope), e, "branch")
	mountGuarded(g.Group("/users"),
		crud.NewResource[models.MerchantUser](deps.DB).Preload("BranchRole").Scoped(merchantScope), e, "user")
	mountGuarded(g.Group("/branch-roles"),
		crud.NewResource[models.BranchRole](deps.DB).Preload("Permissions").Scoped(merchantScope), e, "branch-role")
	mountGuarded(g.Group("/categories"),
		crud.NewResource[models.Category](deps.DB).Scoped(merchantScope), e, "category")

	// The permission catalog is global and read-only for merchant staff.
	perms := crud.NewResource[models.Permission](deps.DB)
	g.Get("/permissions", e.RequirePermission("view-permission"), perms.List)
	g.Get("/permissions/:id", e.RequirePermission("view-permission"), perms.Get)

	products := catalog.NewHandler(deps.DB, deps.Files)
	p := g.Group("/products")
	p.Get("/", e.RequirePermission("view-product"), products.ListProducts)
	p.Get("/:id", e.RequirePermission("view-product"), products.GetProduct)
	p.Post("/", e.RequirePermission("create-product"), products.CreateProduct)
	p.Put("/:id", e.RequirePermission("update-product"), products.UpdateProduct)
	p.Delete("/:id", e.RequirePermission("delete-product"), products.DeleteProduct)
	p.Post("/:id/images", e.RequirePermission("create-product-image"), products.UploadImage)
	p.Delete("/:id/images/:imageId", e.RequirePermission("delete-product-image"), products.DeleteImage)

	orders := order.NewHandler(deps.DB)
	o := g.Group("/orders")
	o.Get("/", e.RequirePermission("view-order"), orders.ListForMerchant)
	o.Put("/:id/status", e.RequirePermission("update-order"), orders.UpdateStatus)
}

func mountStorefront(g fiber.Router, deps Deps, e *auth.Engine) {
	products := catalog.NewHandler(deps.DB, deps.Files)
	g.Get("/products", products.Browse)
	g.Get("/products/:id", products.BrowseGet)

	orders := order.NewHandler(deps.DB)
	o := g.Group("/orders", e.Protected())
	o.Post("/", orders.Create)
	o.Get("/", orders.ListForClient)
	o.Get("/:id", orders.GetForClient)
}
