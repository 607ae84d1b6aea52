package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

const subscriptionColumns = `id, name, price, currency, frequency, category, payment_method,
	status, start_date, renewal_date, user_id, created_at, updated_at`

func scanSubscription(row scanner) (*models.Subscription, error) {
	s := &models.Subscription{}
	if err := row.Scan(&s.ID, &s.Name, &s.Price, &s.Currency, &s.Frequency, &s.Category,
		&s.PaymentMethod, &s.Status, &s.StartDate, &s.RenewalDate, &s.UserID,
		&s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return s, nil
}

// CreateSubscription сохраняет подписку и возвращает её с ID и датами.
func (s *Queries) CreateSubscription(ctx context.Context, sub models.Subscription) (*models.Subscription, error) {
	const op = "storage.CreateSubscription"

	query := `INSERT INTO subscriptions (name, price, currency, frequency, category,
			      payment_method, status, start_date, renewal_date, user_id)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			  RETURNING ` + subscriptionColumns
	created, err := scanSubscription(s.q.QueryRowContext(ctx, query,
		sub.Name, sub.Price, sub.Currency, sub.Frequency, sub.Category,
		sub.PaymentMethod, sub.Status, sub.StartDate, sub.RenewalDate, sub.UserID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, classify(err, "user", sub.UserID))
	}
	return created, nil
}

// GetSubscription возвращает подписку по ID.
func (s *Queries) GetSubscription(ctx context.Context, id string) (*models.Subscription, error) {
	const op = "storage.GetSubscription"

	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, &CastError{Path: "id", Value: id, Err: err})
	}

	query := `SELECT ` + subscriptionColumns + `
			  FROM subscriptions
			  WHERE id = $1`
	sub, err := scanSubscription(s.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, classify(err, "id", id))
	}
	return sub, nil
}

// ListSubscriptionsByUser возвращает подписки пользователя, новые первыми.
func (s *Queries) ListSubscriptionsByUser(ctx context.Context, userID string) ([]*models.Subscription, error) {
	const op = "storage.ListSubscriptionsByUser"

	query := `SELECT ` + subscriptionColumns + `
			  FROM subscriptions
			  WHERE user_id = $1
			  ORDER BY created_at DESC, id`
	rows, err := s.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, classify(err, "user", userID))
	}
	defer func() {
		_ = rows.Close()
	}()

	result := []*models.Subscription{}
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, sub)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ExpireOverdueSubscriptions переводит в expired подписки, дата продления
// которых раньше now, и возвращает изменённые записи.
func (s *Queries) ExpireOverdueSubscriptions(ctx context.Context, now time.Time) ([]*models.Subscription, error) {
	const op = "storage.ExpireOverdueSubscriptions"

	query := `UPDATE subscriptions
			  SET status = 'expired', updated_at = $1
			  WHERE status <> 'expired' AND renewal_date < $1
			  RETURNING ` + subscriptionColumns
	rows, err := s.q.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := []*models.Subscription{}
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, sub)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
