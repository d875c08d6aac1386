package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yonasbekele/serenity-backend/api/controllers"
	webhookcontrollers "github.com/yonasbekele/serenity-backend/api/controllers/webhooks"
	"github.com/yonasbekele/serenity-backend/api/middleware"
	"github.com/yonasbekele/serenity-backend/internal/auth"
	"github.com/yonasbekele/serenity-backend/internal/bookings"
	"github.com/yonasbekele/serenity-backend/internal/payments"
	"github.com/yonasbekele/serenity-backend/internal/transactions"
	"github.com/yonasbekele/serenity-backend/internal/users"
	chapawebhook "github.com/yonasbekele/serenity-backend/internal/webhooks/chapa"
	"github.com/yonasbekele/serenity-backend/pkg/chapa"
	"github.com/yonasbekele/serenity-backend/pkg/config"
	"github.com/yonasbekele/serenity-backend/pkg/db"
	"github.com/yonasbekele/serenity-backend/pkg/logger"
	"github.com/yonasbekele/serenity-backend/pkg/metrics"
	"github.com/yonasbekele/serenity-backend/pkg/redis"
)

// RouterParams bundles everything the HTTP surface depends on.
type RouterParams struct {
	Config       *config.Config
	Logger       *logger.Logger
	DB           db.Pinger
	Redis        *redis.Client
	Registry     *prometheus.Registry
	HTTPMetrics  *metrics.HTTPMetrics
	AuthService  auth.Service
	Bookings     bookings.Service
	Payments     payments.Service
	Transactions transactions.Service
	UsersRepo    users.Repository
	ChapaClient  *chapa.Client
	WebhookSvc   *chapawebhook.Service
	WebhookGuard *chapawebhook.IdempotencyGuard
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(p.HTTPMetrics),
		middleware.CORS(cfg.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, p.DB, p.Redis, logg))
	})

	if p.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.AuthLogin(p.AuthService, logg))
	})

	// The gateway calls back without credentials; the HMAC signature is the
	// authentication.
	r.Post("/api/v1/payments/callback", webhookcontrollers.ChapaWebhook(p.WebhookSvc, p.ChapaClient, p.WebhookGuard, logg))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Get("/api/v1/ping", controllers.PrivatePing())

		r.Route("/api/v1/bookings", func(r chi.Router) {
			r.Post("/", controllers.BookingCreate(p.Bookings, logg))
			r.Get("/", controllers.BookingList(p.Bookings, logg))
			r.Get("/{bookingID}", controllers.BookingGet(p.Bookings, logg))
			r.Patch("/{bookingID}", controllers.BookingUpdate(p.Bookings, logg))
			r.Delete("/{bookingID}", controllers.BookingDelete(p.Bookings, logg))
		})

		r.Route("/api/v1/payments", func(r chi.Router) {
			r.Post("/initialize", controllers.PaymentInitialize(p.Payments, logg))
			r.Get("/transactions", controllers.PaymentTransactions(p.Transactions, logg))
		})

		r.Get("/api/v1/loyalty/tier", controllers.LoyaltyTier(p.UsersRepo, logg))
	})

	return r
}
