package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/obohub-backend/api/controllers"
	"github.com/angelmondragon/obohub-backend/api/middleware"
	"github.com/angelmondragon/obohub-backend/internal/catalog"
	"github.com/angelmondragon/obohub-backend/internal/checkout"
	"github.com/angelmondragon/obohub-backend/pkg/config"
	"github.com/angelmondragon/obohub-backend/pkg/logger"
	"github.com/angelmondragon/obohub-backend/pkg/metrics"
	"github.com/angelmondragon/obohub-backend/pkg/redis"
)

type sessionRegistry interface {
	middleware.SessionProvider
	controllers.SessionEnder
}

type redisStore interface {
	redis.IdempotencyStore
	middleware.RateLimiterStore
}

// Deps are the collaborators the router hands to middleware and controllers.
// Redis and Gatherer are optional; without Redis, idempotency and rate
// limiting are disabled.
type Deps struct {
	Config        *config.Config
	Logger        *logger.Logger
	Catalog       *catalog.Catalog
	Authenticator middleware.Authenticator
	Sessions      sessionRegistry
	Redis         redisStore
	HTTPMetrics   *metrics.HTTPMetrics
	Gatherer      prometheus.Gatherer
	Readiness     map[string]controllers.Pinger
}

func NewRouter(d Deps) http.Handler {
	cfg, logg := d.Config, d.Logger
	pricing := checkout.PricingFromConfig(cfg.Checkout)

	var idemStore redis.IdempotencyStore
	var rateStore middleware.RateLimiterStore
	if d.Redis != nil {
		idemStore = d.Redis
		rateStore = d.Redis
	}
	idempotent := middleware.Idempotency(idemStore, logg)
	promoPolicy := middleware.NewRateLimitPolicy(
		"promo",
		cfg.RateLimit.PromoWindow,
		cfg.RateLimit.PromoIPLimit,
		cfg.RateLimit.PromoUserLimit,
	)

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg, d.HTTPMetrics),
		middleware.RequestID(logg),
		middleware.Logging(logg, d.HTTPMetrics),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.Readiness))
	})
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/catalog", func(r chi.Router) {
		r.Get("/products", controllers.CatalogList(d.Catalog, logg))
		r.Get("/products/{productID}", controllers.CatalogProduct(d.Catalog, logg))
		r.Get("/categories", controllers.CatalogCategories(d.Catalog))
		r.Get("/highlights", controllers.CatalogHighlights(d.Catalog))
	})

	r.Get("/api/v1/returns/reasons", controllers.ReturnsReasons())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(
			middleware.Auth(d.Authenticator, logg),
			middleware.Shop(d.Sessions, logg),
		)

		r.Route("/session", func(r chi.Router) {
			r.Get("/", controllers.SessionGet(logg))
			r.Post("/logout", controllers.SessionLogout(d.Sessions, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(logg))
			r.Delete("/", controllers.CartClear(logg))
			r.Post("/items", controllers.CartAddItem(d.Catalog, logg))
			r.Patch("/items", controllers.CartUpdateItem(logg))
			r.Delete("/items/{productID}", controllers.CartRemoveItem(logg))
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", controllers.WishlistGet(logg))
			r.Post("/toggle", controllers.WishlistToggle(d.Catalog, logg))
		})

		r.Route("/account", func(r chi.Router) {
			r.Get("/profile", controllers.AccountGetProfile(logg))
			r.Patch("/profile", controllers.AccountUpdateProfile(logg))
			r.Get("/addresses", controllers.AccountListAddresses(logg))
			r.With(idempotent).Post("/addresses", controllers.AccountAddAddress(logg))
			r.Patch("/addresses/{addressID}", controllers.AccountUpdateAddress(logg))
			r.Delete("/addresses/{addressID}", controllers.AccountDeleteAddress(logg))
			r.Post("/addresses/{addressID}/default", controllers.AccountSetDefaultAddress(logg))
		})

		r.Route("/promo", func(r chi.Router) {
			r.Get("/", controllers.PromoList(logg))
			r.With(middleware.RateLimit(promoPolicy, rateStore, logg)).Post("/", controllers.PromoApply(logg))
			r.Delete("/", controllers.PromoRemove(logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/quote", controllers.CheckoutQuote(pricing, logg))
			r.Get("/payment-methods", controllers.CheckoutPaymentMethods(pricing, logg))
			r.With(idempotent).Post("/", controllers.CheckoutPlaceOrder(pricing, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrdersList(logg))
			r.Get("/{orderID}", controllers.OrdersGet(logg))
			if !cfg.App.IsProd() {
				r.With(idempotent).Post("/{orderID}/advance", controllers.OrdersAdvance(logg))
			}
		})

		r.Route("/returns", func(r chi.Router) {
			r.Get("/", controllers.ReturnsList(logg))
			r.Get("/eligible-orders", controllers.ReturnsEligibleOrders(logg))
			r.With(idempotent).Post("/", controllers.ReturnsCreate(logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.NotificationsList(logg))
			r.Post("/read-all", controllers.NotificationsMarkAllRead(logg))
			r.Post("/{notificationID}/read", controllers.NotificationsMarkRead(logg))
		})
	})

	return r
}
