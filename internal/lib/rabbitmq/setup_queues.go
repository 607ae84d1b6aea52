// Package rabbitmq содержит подключение к RabbitMQ, объявление очередей
// и публикацию JSON сообщений.
package rabbitmq

// Exchange имя exchange событий сервиса.
const Exchange = "subscription-tracker"

// Ключи маршрутизации событий.
const (
	RoutingUserRegistered      = "user.registered"
	RoutingSubscriptionExpired = "subscription.expired"
)

// QueueConfig очередь и ключ, по которому она привязана к exchange.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// EventQueues возвращает очереди, которые объявляет сервис.
func EventQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "user.registered", RoutingKey: RoutingUserRegistered},
		{QueueName: "subscription.expired", RoutingKey: RoutingSubscriptionExpired},
	}
}
