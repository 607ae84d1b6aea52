// Package services содержит чтение пользователей для защищённых маршрутов.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/apperr"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
	"github.com/magabrotheeeer/subscription-tracker/internal/storage"
)

// UserRepository чтение пользователей из хранилища.
type UserRepository interface {
	ListUsers(ctx context.Context) ([]*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// UserService отдаёт пользователей без хэшей паролей.
type UserService struct {
	users UserRepository
}

// NewUserService создает новый экземпляр UserService.
func NewUserService(users UserRepository) *UserService {
	return &UserService{users: users}
}

// List возвращает всех пользователей.
func (s *UserService) List(ctx context.Context) ([]models.PublicUser, error) {
	const op = "services.user.List"
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return models.PublicUsers(users), nil
}

// Get возвращает пользователя по ID. Неизвестный ID даёт 404 "User not found!",
// некорректный ID возвращается как *storage.CastError.
func (s *UserService) Get(ctx context.Context, id string) (*models.PublicUser, error) {
	const op = "services.user.Get"
	user, err := s.users.GetUser(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound("User not found!")
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	public := user.Public()
	return &public, nil
}
