package resilience

import "golang.org/x/sync/singleflight"

// SingleFlight is a typed view over x/sync/singleflight. The zero value is ready to use.
type SingleFlight[V any] struct {
	group singleflight.Group
}

// Do runs fn once per key among concurrent callers; shared reports whether
// the result was handed to more than one caller.
func (g *SingleFlight[V]) Do(key string, fn func() (V, error)) (V, error, bool) {
	raw, err, shared := g.group.Do(key, func() (any, error) {
		return fn()
	})
	value, _ := raw.(V)
	return value, err, shared
}

// Forget drops an in-flight key so the next caller starts a fresh fn.
func (g *SingleFlight[V]) Forget(key string) {
	g.group.Forget(key)
}
