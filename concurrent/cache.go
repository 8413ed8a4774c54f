// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package concurrent holds small primitives shared across goroutines.
package concurrent

import "sync"

// Cache is a map safe for concurrent use whose values are built at most
// once per key.
type Cache[K comparable, V any] struct {
	mu   sync.Mutex
	data map[K]V
}

// NewCache returns an empty [Cache].
func NewCache[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{
		data: make(map[K]V),
	}
}

// Get returns the value stored for k.
func (c *Cache[K, V]) Get(k K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.data[k]
	return v, ok
}

// GetOr returns the value stored for k, building and storing it with f
// when absent. Errors from f are returned and nothing is stored. f runs
// with the cache locked and must not call back into c.
func (c *Cache[K, V]) GetOr(k K, f func() (V, error)) (V, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.data[k]
	if ok {
		return v, nil
	}

	v, err := f()
	if err != nil {
		return v, err
	}

	c.data[k] = v
	return v, nil
}
