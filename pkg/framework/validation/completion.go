package validation

import (
	"context"
	"sync"
)

// Completion carries the single outcome of one request-add to whoever is
// waiting on it.
type Completion struct {
	once   sync.Once
	done   chan struct{}
	result Result
}

func NewCompletion() *Completion {
	return &Completion{done: make(chan struct{})}
}

// Resolve stores r and wakes waiters. Only the first call has any effect;
// it returns false for every later call.
func (c *Completion) Resolve(r Result) bool {
	resolved := false
	c.once.Do(func() {
		c.result = r
		close(c.done)
		resolved = true
	})
	return resolved
}

func (c *Completion) Done() <-chan struct{} {
	return c.done
}

// Result returns the outcome and whether it is available yet.
func (c *Completion) Result() (Result, bool) {
	select {
	case <-c.done:
		return c.result, true
	default:
		return Result{}, false
	}
}

// Wait blocks until the completion resolves or ctx ends.
func (c *Completion) Wait(ctx context.Context) (Result, error) {
	select {
	case <-c.done:
		return c.result, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}
