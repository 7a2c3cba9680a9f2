package packet

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
)

// Counter manages a session's outgoing message counter. The counter is
// 16 bits wide and wraps modulo 0x10000. It is safe for concurrent use.
type Counter struct {
	mu    sync.Mutex
	value uint16
}

// NewCounter creates a counter initialized to a random value, which reduces
// collisions with counters of earlier runs against the same appliance.
func NewCounter() *Counter {
	return &Counter{value: randomCounterInit()}
}

// NewCounterWithValue creates a counter with a specific initial value.
// Used for testing.
func NewCounterWithValue(initial uint16) *Counter {
	return &Counter{value: initial}
}

// Next increments the counter and returns the new value.
func (c *Counter) Next() uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value++
	return c.value
}

// Current returns the current counter value without incrementing.
func (c *Counter) Current() uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// randomCounterInit generates a random initial counter value.
func randomCounterInit() uint16 {
	var buf [2]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// Fall back to a fixed start if random fails (should never happen).
		return 1
	}
	return binary.LittleEndian.Uint16(buf[:])
}
