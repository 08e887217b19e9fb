package testutil

import "sync"

// StepCounter numbers harness steps. The first call to Next returns 1.
//
// Safe for concurrent use.
type StepCounter struct {
	mu  sync.Mutex
	seq int64
}

// NewStepCounter creates a counter starting at 0.
func NewStepCounter() *StepCounter {
	return &StepCounter{}
}

// Next increments and returns the next step number.
func (c *StepCounter) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}

// Current returns the last number handed out.
func (c *StepCounter) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// Reset makes the next call to Next return 1 again.
func (c *StepCounter) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq = 0
}
