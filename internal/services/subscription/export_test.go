package services

import "time"

// SetNow подменяет часы сервиса в тестах.
func (s *SubscriptionService) SetNow(now func() time.Time) {
	s.now = now
}
