package testutil

import (
	"fmt"
	"sync/atomic"
)

// SequentialTokens hands out scope tokens "<prefix>-1", "<prefix>-2", ...
// so that traces built from a fresh generator are byte-identical across
// runs. It implements units.TokenGenerator.
type SequentialTokens struct {
	prefix string
	n      atomic.Int64
}

// NewSequentialTokens creates a generator. An empty prefix becomes "scope".
func NewSequentialTokens(prefix string) *SequentialTokens {
	if prefix == "" {
		prefix = "scope"
	}
	return &SequentialTokens{prefix: prefix}
}

// Generate returns the next token.
func (g *SequentialTokens) Generate() string {
	return fmt.Sprintf("%s-%d", g.prefix, g.n.Add(1))
}
