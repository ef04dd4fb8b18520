// Package cache provides a generic, thread-safe LRU cache with an optional
// idle timeout.
//
// Entries are evicted when the cache exceeds its capacity (least recently
// used first) or when they have not been touched for longer than the idle
// timeout. The HTTP layer keeps form-editing sessions in it so that
// abandoned sessions cannot grow memory without bound.
//
//	sessions := cache.NewLRU[string, *validation.Form](1024,
//		cache.WithIdleTimeout[string, *validation.Form](30*time.Minute),
//	)
//	sessions.Put(id, engine.NewForm())
//	form, ok := sessions.Get(id)
package cache
