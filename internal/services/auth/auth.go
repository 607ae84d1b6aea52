// Package services содержит логику регистрации и входа пользователей.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/apperr"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/jwt"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/password"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/metrics"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
	"github.com/magabrotheeeer/subscription-tracker/internal/storage"
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// WithTx выполняет fn в транзакции и откатывает её при ошибке.
	WithTx(ctx context.Context, fn func(tx storage.Tx) error) error
	// GetUserByEmail возвращает пользователя или storage.ErrNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// EventPublisher публикует событие о новом пользователе.
type EventPublisher interface {
	UserRegistered(ctx context.Context, user *models.User) error
}

// Result токен и пользователь, возвращаемые после регистрации или входа.
type Result struct {
	Token string
	User  *models.User
}

// AuthService отвечает за регистрацию и вход.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
	events   EventPublisher
	log      *slog.Logger
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker, events EventPublisher, log *slog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
		events:   events,
		log:      log,
	}
}

// SignUp регистрирует пользователя и выпускает для него токен.
//
// Проверка почты, вставка и выпуск токена выполняются в одной транзакции,
// любая ошибка её откатывает. Занятая почта даёт 409 "User already exists".
// Событие user.registered публикуется после фиксации, его ошибка только логируется.
func (s *AuthService) SignUp(ctx context.Context, name, email, rawPassword string) (*Result, error) {
	const op = "services.auth.SignUp"

	var res Result
	err := s.users.WithTx(ctx, func(tx storage.Tx) error {
		normalized := models.NormalizeEmail(email)

		_, err := tx.GetUserByEmail(ctx, normalized)
		if err == nil {
			return apperr.Conflict("User already exists")
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return err
		}

		hashed, err := password.GetHash(rawPassword)
		if err != nil {
			return err
		}

		user := models.NewUser(name, normalized, hashed)
		if err = models.ValidateUser(user); err != nil {
			return err
		}

		created, err := tx.CreateUser(ctx, user)
		if err != nil {
			return err
		}

		token, err := s.jwtMaker.GenerateToken(created.ID)
		if err != nil {
			return err
		}

		res = Result{Token: token, User: created}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	metrics.SignUps.Inc()
	s.log.Info("user registered", slog.String("user_id", res.User.ID))

	if err := s.events.UserRegistered(ctx, res.User); err != nil {
		s.log.Warn("failed to publish user.registered", slog.String("user_id", res.User.ID), sl.Err(err))
	}
	return &res, nil
}

// SignIn проверяет пароль пользователя и выпускает токен.
func (s *AuthService) SignIn(ctx context.Context, email, rawPassword string) (*Result, error) {
	const op = "services.auth.SignIn"

	user, err := s.users.GetUserByEmail(ctx, models.NormalizeEmail(email))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return nil, apperr.Unauthorized("Invalid credentials")
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.jwtMaker.GenerateToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Result{Token: token, User: user}, nil
}
