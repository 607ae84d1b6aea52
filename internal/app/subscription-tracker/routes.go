// Package subscriptiontracker собирает зависимости сервиса и регистрирует маршруты.
package subscriptiontracker

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/auth/session"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/auth/signin"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/auth/signup"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/health"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/home"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/subscription/create"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/subscription/list"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/subscription/read"
	userlist "github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/user/list"
	userread "github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/user/read"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/response"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/apperr"
	"github.com/magabrotheeeer/subscription-tracker/internal/metrics"
)

// Deps зависимости обработчиков.
type Deps struct {
	Auth interface {
		signup.Service
		signin.Service
	}
	Users interface {
		userlist.Service
		userread.Service
	}
	Subscriptions interface {
		create.Service
		list.Service
		read.Service
	}
	Tokens middlewarectx.TokenParser
	Guard  middlewarectx.UserGetter
	DB     health.Pinger
	Gate   *middlewarectx.Gate
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, deps Deps) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		metrics.Middleware,
	)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.WriteError(w, r, logger, "router.NotFound",
			&apperr.HTTPError{Status: http.StatusNotFound, Message: "Not Found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.WriteError(w, r, logger, "router.MethodNotAllowed",
			&apperr.HTTPError{Status: http.StatusMethodNotAllowed, Message: "Method Not Allowed"})
	})

	r.Get("/", home.Handler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(deps.Gate.Middleware)

		r.Get("/health", health.New(logger, deps.DB).ServeHTTP)

		// Открытые конечные точки
		r.Route("/auth", func(r chi.Router) {
			r.Post("/sign-up", signup.New(logger, deps.Auth).ServeHTTP)
			r.Post("/sign-in", signin.New(logger, deps.Auth).ServeHTTP)
			r.Post("/sign-out", session.SignOut)
			r.Post("/verify", session.Verify)
		})

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.Authorize(deps.Tokens, deps.Guard, logger))

			r.Get("/user", userlist.New(logger, deps.Users).ServeHTTP)
			r.Get("/user/{id}", userread.New(logger, deps.Users).ServeHTTP)

			r.Post("/subscriptions", create.New(logger, deps.Subscriptions).ServeHTTP)
			r.Get("/subscriptions", list.New(logger, deps.Subscriptions).ServeHTTP)
			r.Get("/subscriptions/{id}", read.New(logger, deps.Subscriptions).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
