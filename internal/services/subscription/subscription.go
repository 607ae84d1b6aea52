// Package services содержит бизнес-логику для управления подписками и кешированием.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/apperr"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
	"github.com/magabrotheeeer/subscription-tracker/internal/storage"
)

// CacheTTL время жизни подписки в кеше.
const CacheTTL = time.Hour

// SubscriptionRepository определяет методы для работы с подписками в хранилище.
type SubscriptionRepository interface {
	// CreateSubscription сохраняет подписку.
	CreateSubscription(ctx context.Context, sub models.Subscription) (*models.Subscription, error)
	// GetSubscription возвращает подписку по ID или storage.ErrNotFound.
	GetSubscription(ctx context.Context, id string) (*models.Subscription, error)
	// ListSubscriptionsByUser возвращает подписки пользователя.
	ListSubscriptionsByUser(ctx context.Context, userID string) ([]*models.Subscription, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(ctx context.Context, key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// SubscriptionService реализует бизнес-логику работы с подписками, включая кеширование.
type SubscriptionService struct {
	repo  SubscriptionRepository
	cache Cache
	log   *slog.Logger
	now   func() time.Time
}

// NewSubscriptionService создает новый экземпляр SubscriptionService.
func NewSubscriptionService(repo SubscriptionRepository, cache Cache, log *slog.Logger) *SubscriptionService {
	return &SubscriptionService{
		repo:  repo,
		cache: cache,
		log:   log,
		now:   time.Now,
	}
}

func cacheKey(id string) string {
	return "subscription:" + id
}

// Create применяет значения по умолчанию, вычисляет дату продления и статус,
// проверяет правила полей и сохраняет подписку пользователя userID.
func (s *SubscriptionService) Create(ctx context.Context, userID string, in models.SubscriptionInput) (*models.Subscription, error) {
	const op = "services.subscription.Create"

	now := s.now()
	in.UserID = userID
	in.ApplyDefaults()
	in.Apply(models.DeriveSubscriptionFields(in, now))
	if err := models.ValidateSubscription(in, now); err != nil {
		return nil, err
	}

	created, err := s.repo.CreateSubscription(ctx, in.Subscription())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("created new subscription", slog.String("id", created.ID))

	if err := s.cache.Set(ctx, cacheKey(created.ID), created, CacheTTL); err != nil {
		s.log.Warn("failed to cache subscription", slog.String("key", cacheKey(created.ID)), sl.Err(err))
	}
	return created, nil
}

// Get возвращает подписку пользователя, сначала из кеша, затем из хранилища.
// Чужая или несуществующая подписка даёт 404 "Subscription not found!".
func (s *SubscriptionService) Get(ctx context.Context, userID, id string) (*models.Subscription, error) {
	const op = "services.subscription.Get"

	var result *models.Subscription
	found, err := s.cache.Get(ctx, cacheKey(id), &result)
	if err != nil {
		s.log.Warn("failed to read from cache", slog.String("key", cacheKey(id)), sl.Err(err))
	}
	if !found || result == nil {
		result, err = s.repo.GetSubscription(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.NotFound("Subscription not found!")
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err := s.cache.Set(ctx, cacheKey(id), result, CacheTTL); err != nil {
			s.log.Warn("failed to add to cache", slog.String("key", cacheKey(id)), sl.Err(err))
		}
	}

	if result.UserID != userID {
		return nil, apperr.NotFound("Subscription not found!")
	}
	return result, nil
}

// List возвращает подписки пользователя.
func (s *SubscriptionService) List(ctx context.Context, userID string) ([]*models.Subscription, error) {
	const op = "services.subscription.List"
	subs, err := s.repo.ListSubscriptionsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return subs, nil
}
