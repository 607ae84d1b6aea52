package middlewarectx

import "time"

// SetNow подменяет часы фильтра в тестах.
func (g *Gate) SetNow(now func() time.Time) {
	g.now = now
}
