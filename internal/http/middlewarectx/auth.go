// Package middlewarectx содержит HTTP middleware сервиса: проверку JWT
// с загрузкой пользователя в контекст и фильтр запросов по частоте и ботам.
package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-tracker/internal/http/response"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/jwt"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
	"github.com/magabrotheeeer/subscription-tracker/internal/storage"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// User ключ аутентифицированного пользователя в контексте.
const User Key = "user"

// TokenParser проверяет JWT и возвращает claims.
type TokenParser interface {
	ParseToken(tokenStr string) (*jwt.CustomClaims, error)
}

// UserGetter загружает пользователя по ID.
type UserGetter interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
}

const unauthorizedMessage = "Unauthorized"

// Authorize возвращает middleware, который требует заголовок "Authorization: Bearer <token>".
//
// Нет заголовка, префикса или токена: 401 "Unauthorized". Токен не прошёл проверку:
// 401 с текстом ошибки проверки. Пользователь из токена не найден: 401 "Unauthorized".
// Иначе пользователь кладётся в контекст запроса.
func Authorize(tokens TokenParser, users UserGetter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.Authorize"

			log := log.With(
				sl.Op(op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Info("missing or invalid authorization header")
				unauthorized(w, r, unauthorizedMessage)
				return
			}
			tokenStr := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
			if tokenStr == "" {
				log.Info("empty bearer token")
				unauthorized(w, r, unauthorizedMessage)
				return
			}

			claims, err := tokens.ParseToken(tokenStr)
			if err != nil {
				log.Info("invalid token", sl.Err(err))
				unauthorized(w, r, err.Error())
				return
			}

			user, err := users.GetUser(r.Context(), claims.UserID)
			if err != nil {
				var cast *storage.CastError
				if errors.Is(err, storage.ErrNotFound) || errors.As(err, &cast) {
					log.Info("token user not found", slog.String("user_id", claims.UserID))
					unauthorized(w, r, unauthorizedMessage)
					return
				}
				response.WriteError(w, r, log, op, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// UserFromContext возвращает пользователя, положенного Authorize.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(User).(*models.User)
	return user, ok && user != nil
}

// WithUser кладёт пользователя в контекст.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, User, user)
}

func unauthorized(w http.ResponseWriter, r *http.Request, message string) {
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, response.Error(message))
}
