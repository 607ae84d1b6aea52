package services_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/apperr"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
	services "github.com/magabrotheeeer/subscription-tracker/internal/services/subscription"
	"github.com/magabrotheeeer/subscription-tracker/internal/storage"
)

type SubscriptionRepoMock struct {
	mock.Mock
}

func (m *SubscriptionRepoMock) CreateSubscription(ctx context.Context, sub models.Subscription) (*models.Subscription, error) {
	args := m.Called(ctx, sub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *SubscriptionRepoMock) GetSubscription(ctx context.Context, id string) (*models.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *SubscriptionRepoMock) ListSubscriptionsByUser(ctx context.Context, userID string) ([]*models.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Subscription), args.Error(1)
}

type CacheMock struct {
	mock.Mock
}

func (m *CacheMock) Get(ctx context.Context, key string, result any) (bool, error) {
	args := m.Called(ctx, key, result)
	return args.Bool(0), args.Error(1)
}

func (m *CacheMock) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func ptr[T any](v T) *T {
	return &v
}

const (
	ownerID = "550e8400-e29b-41d4-a716-446655440000"
	subID   = "6f1c1c8e-5f8a-4b4c-9d8e-2f4f6c1a7b3d"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newService(repo *SubscriptionRepoMock, cache *CacheMock) *services.SubscriptionService {
	svc := services.NewSubscriptionService(repo, cache, newNoopLogger())
	svc.SetNow(func() time.Time { return now })
	return svc
}

func TestSubscriptionService_Create(t *testing.T) {
	t.Run("defaults and derived fields are persisted", func(t *testing.T) {
		repo := new(SubscriptionRepoMock)
		cache := new(CacheMock)
		start := now.AddDate(0, 0, -3)

		repo.On("CreateSubscription", mock.Anything, mock.MatchedBy(func(s models.Subscription) bool {
			return s.Name == "Netflix" &&
				s.Currency == models.CurrencyINR &&
				s.Frequency == models.FrequencyDaily &&
				s.Status == models.StatusExpired &&
				s.RenewalDate.Equal(start.AddDate(0, 0, 1)) &&
				s.UserID == ownerID
		})).Return(&models.Subscription{ID: subID, UserID: ownerID}, nil).Once()
		cache.On("Set", mock.Anything, "subscription:"+subID, mock.Anything, services.CacheTTL).Return(nil).Once()

		created, err := newService(repo, cache).Create(context.Background(), ownerID, models.SubscriptionInput{
			Name:          ptr(" Netflix "),
			Price:         ptr(9.99),
			Frequency:     ptr(models.FrequencyDaily),
			Category:      ptr("entertainment"),
			PaymentMethod: ptr("Card"),
			StartDate:     ptr(start),
		})
		require.NoError(t, err)
		assert.Equal(t, subID, created.ID)
		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("rule violations are returned before persisting", func(t *testing.T) {
		repo := new(SubscriptionRepoMock)
		cache := new(CacheMock)
		start := now.AddDate(0, 0, -3)

		_, err := newService(repo, cache).Create(context.Background(), ownerID, models.SubscriptionInput{
			Name:          ptr("Netflix"),
			Price:         ptr(9.99),
			Category:      ptr("entertainment"),
			PaymentMethod: ptr("Card"),
			StartDate:     ptr(start),
			RenewalDate:   ptr(start.AddDate(0, 0, -1)),
		})

		var verr *models.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "Renewal date must be after start date!", verr.Message("renewalDate"))
		repo.AssertNotCalled(t, "CreateSubscription", mock.Anything, mock.Anything)
	})

	t.Run("cache failure is not fatal", func(t *testing.T) {
		repo := new(SubscriptionRepoMock)
		cache := new(CacheMock)
		repo.On("CreateSubscription", mock.Anything, mock.Anything).Return(&models.Subscription{ID: subID}, nil).Once()
		cache.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis down")).Once()

		_, err := newService(repo, cache).Create(context.Background(), ownerID, models.SubscriptionInput{
			Name:          ptr("Netflix"),
			Price:         ptr(9.99),
			Category:      ptr("entertainment"),
			PaymentMethod: ptr("Card"),
			StartDate:     ptr(now.AddDate(0, 0, -1)),
		})
		assert.NoError(t, err)
	})

	t.Run("store error", func(t *testing.T) {
		repo := new(SubscriptionRepoMock)
		cache := new(CacheMock)
		repo.On("CreateSubscription", mock.Anything, mock.Anything).Return(nil, errors.New("db down")).Once()

		_, err := newService(repo, cache).Create(context.Background(), ownerID, models.SubscriptionInput{
			Name:          ptr("Netflix"),
			Price:         ptr(9.99),
			Category:      ptr("entertainment"),
			PaymentMethod: ptr("Card"),
			StartDate:     ptr(now.AddDate(0, 0, -1)),
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "services.subscription.Create")
	})
}

func TestSubscriptionService_Get(t *testing.T) {
	stored := &models.Subscription{ID: subID, Name: "Netflix", UserID: ownerID}

	tests := []struct {
		name       string
		userID     string
		setupMocks func(r *SubscriptionRepoMock, c *CacheMock)
		wantStatus int
		wantErr    bool
	}{
		{
			name:   "cache hit",
			userID: ownerID,
			setupMocks: func(_ *SubscriptionRepoMock, c *CacheMock) {
				c.On("Get", mock.Anything, "subscription:"+subID, mock.Anything).
					Run(func(args mock.Arguments) {
						*(args.Get(2).(**models.Subscription)) = stored
					}).
					Return(true, nil).Once()
			},
		},
		{
			name:   "cache miss reads store and fills cache",
			userID: ownerID,
			setupMocks: func(r *SubscriptionRepoMock, c *CacheMock) {
				c.On("Get", mock.Anything, "subscription:"+subID, mock.Anything).Return(false, nil).Once()
				r.On("GetSubscription", mock.Anything, subID).Return(stored, nil).Once()
				c.On("Set", mock.Anything, "subscription:"+subID, stored, services.CacheTTL).Return(nil).Once()
			},
		},
		{
			name:   "cache error falls back to store",
			userID: ownerID,
			setupMocks: func(r *SubscriptionRepoMock, c *CacheMock) {
				c.On("Get", mock.Anything, mock.Anything, mock.Anything).Return(false, errors.New("redis down")).Once()
				r.On("GetSubscription", mock.Anything, subID).Return(stored, nil).Once()
				c.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
			},
		},
		{
			name:   "not found",
			userID: ownerID,
			setupMocks: func(r *SubscriptionRepoMock, c *CacheMock) {
				c.On("Get", mock.Anything, mock.Anything, mock.Anything).Return(false, nil).Once()
				r.On("GetSubscription", mock.Anything, subID).Return(nil, storage.ErrNotFound).Once()
			},
			wantErr:    true,
			wantStatus: http.StatusNotFound,
		},
		{
			name:   "other user's subscription",
			userID: "someone-else",
			setupMocks: func(r *SubscriptionRepoMock, c *CacheMock) {
				c.On("Get", mock.Anything, mock.Anything, mock.Anything).Return(false, nil).Once()
				r.On("GetSubscription", mock.Anything, subID).Return(stored, nil).Once()
				c.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
			},
			wantErr:    true,
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(SubscriptionRepoMock)
			cache := new(CacheMock)
			tt.setupMocks(repo, cache)

			got, err := newService(repo, cache).Get(context.Background(), tt.userID, subID)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, got)
				var appErr *apperr.Error
				require.True(t, errors.As(err, &appErr))
				assert.Equal(t, tt.wantStatus, appErr.Status)
				assert.Equal(t, "Subscription not found!", appErr.Message)
			} else {
				require.NoError(t, err)
				assert.Equal(t, stored, got)
			}
			repo.AssertExpectations(t)
			cache.AssertExpectations(t)
		})
	}
}

func TestSubscriptionService_List(t *testing.T) {
	repo := new(SubscriptionRepoMock)
	repo.On("ListSubscriptionsByUser", mock.Anything, ownerID).
		Return([]*models.Subscription{{ID: subID, UserID: ownerID}}, nil).Once()

	subs, err := newService(repo, new(CacheMock)).List(context.Background(), ownerID)
	require.NoError(t, err)
	require.Len(t, subs, 1)

	repo.On("ListSubscriptionsByUser", mock.Anything, "broken").Return(nil, errors.New("db down")).Once()
	_, err = newService(repo, new(CacheMock)).List(context.Background(), "broken")
	assert.Error(t, err)
}
