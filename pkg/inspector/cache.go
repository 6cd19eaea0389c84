package inspector

// cached holds a derived value together with the inputs it was computed from
type cached[K comparable, V any] struct {
	key   K
	value V
	ok    bool
}

// lookup returns the value only when it was computed from key
func (c *cached[K, V]) lookup(key K) (V, bool) {
	if c.ok && c.key == key {
		return c.value, true
	}
	var zero V
	return zero, false
}

func (c *cached[K, V]) store(key K, value V) {
	c.key, c.value, c.ok = key, value, true
}

// last returns the most recent value whatever it was computed from
func (c *cached[K, V]) last() (V, bool) {
	return c.value, c.ok
}
