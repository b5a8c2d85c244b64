package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/latsops/pos-backend/api/controllers"
	"github.com/latsops/pos-backend/api/middleware"
	authsvc "github.com/latsops/pos-backend/internal/auth"
	checkoutsvc "github.com/latsops/pos-backend/internal/checkout"
	"github.com/latsops/pos-backend/pkg/auth/session"
	"github.com/latsops/pos-backend/pkg/config"
	"github.com/latsops/pos-backend/pkg/db"
	"github.com/latsops/pos-backend/pkg/logger"
	"github.com/latsops/pos-backend/pkg/redis"
)

// Params bundles everything the router needs.
type Params struct {
	Config           *config.Config
	Logger           *logger.Logger
	DBPinger         db.Pinger
	RedisPinger      redis.Pinger
	IdempotencyStore redis.IdempotencyStore
	SessionChecker   session.Checker
	AuthService      authsvc.Service
	CheckoutService  *checkoutsvc.Service
}

func NewRouter(p Params) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(p.Logger),
		middleware.RequestID(p.Logger),
		middleware.Logging(p.Logger),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(p.Config))
		r.Get("/ready", controllers.HealthReady(p.Config, p.Logger,
			controllers.Dep("database", p.DBPinger),
			controllers.Dep("redis", p.RedisPinger),
		))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.AuthLogin(p.AuthService, p.Logger))
		r.Post("/logout", controllers.AuthLogout(p.AuthService, p.Config.JWT, p.Logger))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(p.Config.JWT, p.SessionChecker, p.Logger))

		r.Get("/ping", controllers.PrivatePing())

		// Idempotency rides inline on the endpoint, not on the group: a
		// group-level Use runs before this subrouter has matched "/sales",
		// so the route pattern the middleware sees would still be the
		// wildcard and its rule would never fire.
		idem := middleware.Idempotency(p.IdempotencyStore, p.Config.Sale.IdempotencyTTL, p.Logger)
		r.With(idem).Post("/sales", controllers.ProcessSale(p.CheckoutService, p.Logger))
		r.Get("/sales/{orderId}", controllers.SaleConfirmation(p.CheckoutService, p.Logger))
	})

	return r
}
