// Package events публикует доменные события сервиса в RabbitMQ.
package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// UserRegistered тело события user.registered.
type UserRegistered struct {
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// SubscriptionExpired тело события subscription.expired.
type SubscriptionExpired struct {
	SubscriptionID string    `json:"subscriptionId"`
	UserID         string    `json:"userId"`
	Name           string    `json:"name"`
	RenewalDate    time.Time `json:"renewalDate"`
}

// Publisher публикует события через канал RabbitMQ.
// Канал не рассчитан на конкурентную публикацию, поэтому вызовы сериализуются.
type Publisher struct {
	mu       sync.Mutex
	ch       rabbitmq.Channel
	exchange string
}

// NewPublisher создаёт публикатор поверх открытого канала.
func NewPublisher(ch rabbitmq.Channel, exchange string) *Publisher {
	return &Publisher{ch: ch, exchange: exchange}
}

// UserRegistered публикует событие регистрации пользователя.
func (p *Publisher) UserRegistered(ctx context.Context, user *models.User) error {
	const op = "events.UserRegistered"
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	event := UserRegistered{
		UserID:    user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := rabbitmq.PublishMessage(p.ch, p.exchange, rabbitmq.RoutingUserRegistered, event); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SubscriptionExpired публикует событие истечения подписки.
func (p *Publisher) SubscriptionExpired(ctx context.Context, sub *models.Subscription) error {
	const op = "events.SubscriptionExpired"
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	event := SubscriptionExpired{
		SubscriptionID: sub.ID,
		UserID:         sub.UserID,
		Name:           sub.Name,
		RenewalDate:    sub.RenewalDate,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := rabbitmq.PublishMessage(p.ch, p.exchange, rabbitmq.RoutingSubscriptionExpired, event); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Nop публикатор для запуска без брокера.
type Nop struct{}

// UserRegistered ничего не делает.
func (Nop) UserRegistered(context.Context, *models.User) error { return nil }

// SubscriptionExpired ничего не делает.
func (Nop) SubscriptionExpired(context.Context, *models.Subscription) error { return nil }
