package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/pos-templui/internal/app/domain/auth"
	"github.com/FACorreiaa/pos-templui/internal/app/domain/catalog"
	"github.com/FACorreiaa/pos-templui/internal/app/domain/pos"
	"github.com/FACorreiaa/pos-templui/internal/app/domain/profiles"
	"github.com/FACorreiaa/pos-templui/internal/app/domain/provisioning"
	"github.com/FACorreiaa/pos-templui/internal/app/domain/session"
	"github.com/FACorreiaa/pos-templui/internal/app/handlers"
	"github.com/FACorreiaa/pos-templui/internal/app/middleware"
	"github.com/FACorreiaa/pos-templui/internal/app/models"
	"github.com/FACorreiaa/pos-templui/internal/app/observability/metrics"
	"github.com/FACorreiaa/pos-templui/internal/app/platform"
	"github.com/FACorreiaa/pos-templui/internal/app/services/stripe"
	database "github.com/FACorreiaa/pos-templui/internal/db"
	"github.com/FACorreiaa/pos-templui/internal/pkg/cache"
	"github.com/FACorreiaa/pos-templui/internal/pkg/config"
)

// Pinger reports database liveness for /healthz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DB is the pool the repositories and the health probe share.
type DB interface {
	database.Querier
	Pinger
}

type AppHandlers struct {
	Base         *handlers.BaseHandler
	Auth         *auth.AuthHandlers
	Session      *session.Handler
	Guard        *session.Guard
	Profiles     *profiles.Handler
	Provisioning *provisioning.Handler
	Products     *catalog.ProductsHandler
	POS          *pos.Handler
	Caches       *cache.CacheManager
}

func Setup(r *gin.Engine, db DB, cfg *config.Config, m *metrics.AppMetrics, log *zap.Logger) {
	h := setupDependencies(db, cfg, m, log)
	setupRouter(r, h, db, log)
}

func setupDependencies(db database.Querier, cfg *config.Config, m *metrics.AppMetrics, log *zap.Logger) *AppHandlers {
	baseHandler := handlers.NewBaseHandler(log, handlers.PollTrigger(cfg.Session.PollInterval))

	platformClient := platform.NewClient(cfg.Platform, log.Named("platform"))
	caches := cache.NewCacheManager(15*time.Minute, log)

	// Repositories
	profilesRepo := profiles.NewRepository(db, log)
	catalogRepo := catalog.NewRepository(db, log)
	salesRepo := pos.NewSalesRepository(db, log)
	cartsRepo := pos.NewCartRepository(db, log)

	// Services
	authService := auth.NewAuthService(platformClient, profilesRepo, log)
	guard := session.NewGuard(platformClient, profilesRepo, log.Named("session"), m.SessionChecksTotal)
	profilesService := profiles.NewService(profilesRepo, platformClient, log)
	provisioningService := provisioning.NewService(platformClient, profilesRepo, catalogRepo,
		cfg.Provisioning.RollbackOrphans, m.ProvisioningOutcomesTotal, log)

	var payments pos.PaymentProvider
	if cfg.Payments.CardEnabled() {
		payments = stripe.NewStripeProvider(cfg.Payments.StripeSecretKey)
	} else {
		log.Info("STRIPE_SECRET_KEY or STRIPE_PUBLISHABLE_KEY not set, POS accepts cash only")
	}
	checkout := pos.NewCheckoutService(catalogRepo, salesRepo, payments, cfg.POS.Currency, m.CheckoutsTotal, log)

	return &AppHandlers{
		Base:         baseHandler,
		Auth:         auth.NewAuthHandlers(baseHandler, authService),
		Session:      session.NewHandler(guard),
		Guard:        guard,
		Profiles:     profiles.NewHandler(baseHandler, profilesService, caches.Directory),
		Provisioning: provisioning.NewHandler(baseHandler, provisioningService, catalogRepo, caches.Branches),
		Products:     catalog.NewProductsHandler(baseHandler, catalogRepo, cfg.POS.Currency),
		POS:          pos.NewHandler(baseHandler, catalogRepo, cartsRepo, checkout,
			cfg.POS.DesktopBreakpoint, cfg.POS.Currency, cfg.Payments.StripePublishableKey),
		Caches:       caches,
	}
}

func setupRouter(r *gin.Engine, h *AppHandlers, db Pinger, log *zap.Logger) {
	r.GET("/healthz", healthz(db))

	public := r.Group("/")
	{
		public.GET("/", func(c *gin.Context) { c.Redirect(http.StatusSeeOther, "/dashboard") })
		public.GET(session.LoginPath, h.Auth.LoginPage)
		public.POST(session.LoginPath, h.Auth.LoginHandler)
		public.POST("/auth/logout", h.Auth.LogoutHandler)
		public.GET("/session/check", h.Session.HandleCheck)
	}

	protected := r.Group("/")
	protected.Use(h.Guard.Middleware())
	{
		protected.GET("/dashboard", h.Base.ShowDashboard)

		catalogGroup := protected.Group("/products")
		catalogGroup.Use(middleware.RequireRole(log, models.RoleAdmin, models.RoleOwner, models.RoleManager, models.RoleVendor))
		{
			catalogGroup.GET("", h.Products.ShowProducts)
		}

		posGroup := protected.Group("/pos")
		posGroup.Use(middleware.RequireRole(log, models.RoleAdmin, models.RoleOwner, models.RoleManager, models.RoleCashier))
		{
			posGroup.GET("", h.POS.Show)
			posGroup.POST("/cart", h.POS.AddToCart)
			posGroup.DELETE("/cart/:id", h.POS.RemoveFromCart)
			posGroup.POST("/customer", h.POS.SaveCustomer)
			posGroup.POST("/checkout", h.POS.Checkout)
			posGroup.POST("/checkout/confirm", h.POS.ConfirmCard)
			posGroup.POST("/checkout/cancel", h.POS.CancelCard)
		}

		admin := protected.Group("/admin")
		admin.Use(middleware.RequireRole(log, models.RoleAdmin))
		{
			admin.GET("/users", h.Profiles.ShowDirectory)
			admin.GET("/users/table", h.Profiles.FilterDirectory)
			admin.GET("/users/new", h.Provisioning.ShowForm)
			admin.GET("/users/new/code", h.Provisioning.RegenerateCode)
			admin.POST("/users", h.Provisioning.Create)
			admin.GET("/users/:id/edit", h.Profiles.ShowEdit)
			admin.POST("/users/:id", h.Profiles.Update)
			admin.DELETE("/users/:id", h.Profiles.Delete)
			admin.GET("/cache", func(c *gin.Context) {
				c.JSON(http.StatusOK, h.Caches.GetAllMetrics())
			})
		}
	}

	r.NoRoute(h.Base.ShowNotFound)
}

func healthz(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
