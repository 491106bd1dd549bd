package extensions

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator hands out entry identifiers. Whoever creates entries owns one.
type IDGenerator interface {
	Next() string
}

// CounterIDGenerator yields "0", "1", "2", ... and is safe for concurrent use.
type CounterIDGenerator struct {
	last atomic.Int64
}

func NewCounterIDGenerator() *CounterIDGenerator {
	g := &CounterIDGenerator{}
	g.last.Store(-1)
	return g
}

// IDObserver is told about every id that lands in state.
type IDObserver interface {
	Observe(id string)
}

func (g *CounterIDGenerator) Next() string {
	return strconv.FormatInt(g.last.Add(1), 10)
}

// Observe moves the counter past id when id is numeric. Ids written by
// callers that pick their own keys are never handed out afterwards.
func (g *CounterIDGenerator) Observe(id string) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n < 0 {
		return
	}
	for {
		last := g.last.Load()
		if n <= last || g.last.CompareAndSwap(last, n) {
			return
		}
	}
}

// UUIDGenerator yields random v4 UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) Next() string {
	return uuid.New().String()
}
