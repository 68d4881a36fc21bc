package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hims91/audio-nature-nexus-backend/api/controllers"
	webhookcontrollers "github.com/hims91/audio-nature-nexus-backend/api/controllers/webhooks"
	"github.com/hims91/audio-nature-nexus-backend/api/middleware"
	"github.com/hims91/audio-nature-nexus-backend/internal/cart"
	"github.com/hims91/audio-nature-nexus-backend/internal/catalog"
	checkoutsvc "github.com/hims91/audio-nature-nexus-backend/internal/checkout"
	"github.com/hims91/audio-nature-nexus-backend/internal/notifications"
	"github.com/hims91/audio-nature-nexus-backend/internal/orders"
	stripewebhook "github.com/hims91/audio-nature-nexus-backend/internal/webhooks/stripe"
	"github.com/hims91/audio-nature-nexus-backend/pkg/config"
	"github.com/hims91/audio-nature-nexus-backend/pkg/logger"
	"github.com/hims91/audio-nature-nexus-backend/pkg/stripe"
)

// RouterParams collects everything the HTTP surface depends on.
type RouterParams struct {
	Config        *config.Config
	Logger        *logger.Logger
	DB            controllers.Pinger
	Redis         controllers.Pinger
	PubSub        controllers.Pinger
	Catalog       catalog.Repository
	Carts         cart.Service
	Checkout      checkoutsvc.Service
	Orders        orders.Service
	Notifications notifications.Service
	StripeClient  *stripe.Client
	WebhookSvc    *stripewebhook.Service
	WebhookGuard  *stripewebhook.IdempotencyGuard
	Metrics       *prometheus.Registry
}

func NewRouter(params RouterParams) http.Handler {
	cfg := params.Config
	logg := params.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, params.DB, params.Redis, params.PubSub))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(params.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(params.WebhookSvc, params.StripeClient, params.WebhookGuard, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", controllers.ListProducts(params.Catalog, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Post("/", controllers.CartCreate(params.Carts, logg))
			r.Route("/{cartToken}", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(params.Carts, logg))
				r.Post("/items", controllers.CartAddItem(params.Carts, logg))
				r.Delete("/items/{itemId}", controllers.CartRemoveItem(params.Carts, logg))
			})
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/quote", controllers.CheckoutQuote(params.Checkout, logg))
			r.Post("/sessions", controllers.CheckoutBegin(params.Checkout, logg))
			r.Get("/sessions/{sessionId}/order", controllers.OrderBySession(params.Checkout, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.AdminAuth(cfg.Admin, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminListOrders(params.Orders, logg))
			r.Get("/{orderId}", controllers.AdminOrderDetail(params.Orders, logg))
			r.Patch("/{orderId}/status", controllers.AdminUpdateOrderStatus(params.Orders, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(params.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(params.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(params.Notifications, logg))
		})
	})

	return r
}
