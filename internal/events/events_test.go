package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

type ChannelMock struct {
	mock.Mock
}

func (m *ChannelMock) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	args := m.Called(exchange, key, mandatory, immediate, msg)
	return args.Error(0)
}

func testUser() *models.User {
	return &models.User{
		ID:           "550e8400-e29b-41d4-a716-446655440000",
		Name:         "John Doe",
		Email:        "john@example.com",
		PasswordHash: "$2a$10$secret",
		CreatedAt:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestPublisher_UserRegistered(t *testing.T) {
	ch := new(ChannelMock)
	var body []byte
	ch.On("Publish", rabbitmq.Exchange, rabbitmq.RoutingUserRegistered, false, false, mock.Anything).
		Run(func(args mock.Arguments) {
			body = args.Get(4).(amqp.Publishing).Body
		}).
		Return(nil).Once()

	p := NewPublisher(ch, rabbitmq.Exchange)
	err := p.UserRegistered(context.Background(), testUser())
	require.NoError(t, err)
	ch.AssertExpectations(t)

	var event map[string]any
	require.NoError(t, json.Unmarshal(body, &event))
	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", event["userId"])
	assert.Equal(t, "john@example.com", event["email"])
	assert.NotContains(t, string(body), "secret")
}

func TestPublisher_UserRegisteredError(t *testing.T) {
	ch := new(ChannelMock)
	ch.On("Publish", mock.Anything, mock.Anything, false, false, mock.Anything).
		Return(errors.New("connection lost")).Once()

	p := NewPublisher(ch, rabbitmq.Exchange)
	err := p.UserRegistered(context.Background(), testUser())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "events.UserRegistered")
}

func TestPublisher_CanceledContext(t *testing.T) {
	ch := new(ChannelMock)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewPublisher(ch, rabbitmq.Exchange).UserRegistered(ctx, testUser())
	assert.ErrorIs(t, err, context.Canceled)
	ch.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestNop(t *testing.T) {
	assert.NoError(t, Nop{}.UserRegistered(context.Background(), testUser()))
}

func TestPublisher_SubscriptionExpired(t *testing.T) {
	ch := new(ChannelMock)
	var body []byte
	ch.On("Publish", rabbitmq.Exchange, rabbitmq.RoutingSubscriptionExpired, false, false, mock.Anything).
		Run(func(args mock.Arguments) {
			body = args.Get(4).(amqp.Publishing).Body
		}).
		Return(nil).Once()

	sub := &models.Subscription{
		ID:          "sub-1",
		Name:        "Netflix",
		UserID:      "550e8400-e29b-41d4-a716-446655440000",
		RenewalDate: time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, NewPublisher(ch, rabbitmq.Exchange).SubscriptionExpired(context.Background(), sub))
	ch.AssertExpectations(t)

	var event map[string]any
	require.NoError(t, json.Unmarshal(body, &event))
	assert.Equal(t, "sub-1", event["subscriptionId"])
	assert.Equal(t, "Netflix", event["name"])
}
