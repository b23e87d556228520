// Package subscriptiontracker собирает HTTP API трекера подписок.
package subscriptiontracker

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/auth/callback"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/health"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/payment/paymentcreate"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/payment/paymentlist"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/payment/paymentread"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/payment/paymentremove"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/payment/paymentupdate"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/subscription/create"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/subscription/list"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/subscription/read"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/subscription/remove"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/subscription/summary"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/subscription/update"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/user/closeaccount"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/user/me"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/oauth"
	"github.com/magabrotheeeer/subscription-tracker/internal/metrics"
	authservice "github.com/magabrotheeeer/subscription-tracker/internal/services/auth"
	pmservice "github.com/magabrotheeeer/subscription-tracker/internal/services/paymentmethod"
	subservice "github.com/magabrotheeeer/subscription-tracker/internal/services/subscription"
	userservice "github.com/magabrotheeeer/subscription-tracker/internal/services/user"
)

// Dependencies — сервисы и настройки, нужные маршрутам.
type Dependencies struct {
	Logger         *slog.Logger
	Auth           *authservice.Service
	Users          *userservice.Service
	Subscriptions  *subservice.Service
	PaymentMethods *pmservice.Service
	DB             health.Pinger
	Metrics        *metrics.Collector
	Gatherer       prometheus.Gatherer
	RateLimit      float64
	RateBurst      int
	CookieSecure   bool
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, d Dependencies) {
	logger := d.Logger

	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		middlewarectx.MetricsMiddleware(d.Metrics),
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middlewarectx.RateLimitMiddleware(d.RateLimit, d.RateBurst, logger))

		// Открытые конечные точки
		r.Get("/auth/google/login", login.New(logger, d.Auth, d.CookieSecure, oauth.GenerateState).ServeHTTP)
		r.Get("/auth/google/callback", callback.New(logger, d.Auth).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(d.Auth, logger))

			r.Post("/auth/logout", logout.New(logger, d.Auth).ServeHTTP)

			r.Get("/users/me", me.New(logger, d.Users).ServeHTTP)
			r.Delete("/users/me", closeaccount.New(logger, d.Users, d.Auth).ServeHTTP)

			r.Post("/subscriptions", create.New(logger, d.Subscriptions).ServeHTTP)
			r.Get("/subscriptions", list.New(logger, d.Subscriptions).ServeHTTP)
			r.Get("/subscriptions/summary", summary.New(logger, d.Subscriptions).ServeHTTP)
			r.Get("/subscriptions/{id}", read.New(logger, d.Subscriptions).ServeHTTP)
			r.Put("/subscriptions/{id}", update.New(logger, d.Subscriptions).ServeHTTP)
			r.Delete("/subscriptions/{id}", remove.New(logger, d.Subscriptions).ServeHTTP)

			r.Post("/payment-methods", paymentcreate.New(logger, d.PaymentMethods).ServeHTTP)
			r.Get("/payment-methods", paymentlist.New(logger, d.PaymentMethods).ServeHTTP)
			r.Get("/payment-methods/{id}", paymentread.New(logger, d.PaymentMethods).ServeHTTP)
			r.Put("/payment-methods/{id}", paymentupdate.New(logger, d.PaymentMethods).ServeHTTP)
			r.Delete("/payment-methods/{id}", paymentremove.New(logger, d.PaymentMethods).ServeHTTP)
		})
	})

	r.Get("/health", health.New(logger, d.DB).ServeHTTP)
	r.Handle("/metrics", metrics.Handler(d.Gatherer))
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
