package testfixtures

import (
	"fmt"
	"sync/atomic"
)

// IDGenerator hands out sequential identifiers like "meeting-1", "meeting-2"
// so tests can name the records a service will create before creating them.
type IDGenerator struct {
	prefix  string
	counter atomic.Uint64
}

// NewIDGenerator constructs a generator for the given prefix. An empty prefix
// defaults to "id".
func NewIDGenerator(prefix string) *IDGenerator {
	if prefix == "" {
		prefix = "id"
	}
	return &IDGenerator{prefix: prefix}
}

// Next consumes and returns the next identifier in the sequence.
func (g *IDGenerator) Next() string {
	return fmt.Sprintf("%s-%d", g.prefix, g.counter.Add(1))
}

// Peek reports the identifier the next call to Next will produce without
// consuming it.
func (g *IDGenerator) Peek() string {
	return fmt.Sprintf("%s-%d", g.prefix, g.counter.Load()+1)
}

// NextFunc adapts the generator to the id-function dependency the services
// take. A nil generator yields empty identifiers.
func (g *IDGenerator) NextFunc() func() string {
	if g == nil {
		return func() string { return "" }
	}
	return g.Next
}
