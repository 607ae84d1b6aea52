package services

import "time"

// SetNow подменяет часы планировщика в тестах.
func (s *SchedulerService) SetNow(now func() time.Time) {
	s.now = now
}
