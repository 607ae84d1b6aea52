// Package services содержит фоновую проверку истёкших подписок.
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/metrics"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// SubscriptionRepository переводит просроченные подписки в expired.
type SubscriptionRepository interface {
	ExpireOverdueSubscriptions(ctx context.Context, now time.Time) ([]*models.Subscription, error)
}

// Cache удаляет устаревшие записи кеша.
type Cache interface {
	Invalidate(ctx context.Context, key string) error
}

// EventPublisher публикует событие истечения подписки.
type EventPublisher interface {
	SubscriptionExpired(ctx context.Context, sub *models.Subscription) error
}

// SchedulerService периодически помечает подписки с прошедшей датой продления как expired.
type SchedulerService struct {
	repo     SubscriptionRepository
	cache    Cache
	events   EventPublisher
	log      *slog.Logger
	interval time.Duration
	now      func() time.Time
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(repo SubscriptionRepository, cache Cache, events EventPublisher, interval time.Duration, log *slog.Logger) *SchedulerService {
	return &SchedulerService{
		repo:     repo,
		cache:    cache,
		events:   events,
		log:      log,
		interval: interval,
		now:      time.Now,
	}
}

// Run выполняет проверку сразу и затем с заданным интервалом до отмены ctx.
func (s *SchedulerService) Run(ctx context.Context) {
	s.ExpireOverdue(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.ExpireOverdue(ctx)
		}
	}
}

// ExpireOverdue выполняет одну проверку и возвращает число истёкших подписок.
// Ошибки кеша и брокера только логируются.
func (s *SchedulerService) ExpireOverdue(ctx context.Context) int {
	const op = "services.scheduler.ExpireOverdue"
	log := s.log.With(sl.Op(op))

	expired, err := s.repo.ExpireOverdueSubscriptions(ctx, s.now())
	if err != nil {
		log.Error("failed to expire subscriptions", sl.Err(err))
		return 0
	}
	if len(expired) == 0 {
		log.Debug("no overdue subscriptions found")
		return 0
	}
	log.Info("expired overdue subscriptions", slog.Int("count", len(expired)))
	metrics.SubscriptionsExpired.Add(float64(len(expired)))

	for _, sub := range expired {
		key := "subscription:" + sub.ID
		if err := s.cache.Invalidate(ctx, key); err != nil {
			log.Warn("failed to invalidate cache", slog.String("key", key), sl.Err(err))
		}
		if err := s.events.SubscriptionExpired(ctx, sub); err != nil {
			log.Warn("failed to publish subscription.expired", slog.String("id", sub.ID), sl.Err(err))
		}
	}
	return len(expired)
}
