package typeid

import (
	"strconv"
	"sync/atomic"

	"go.jetify.com/typeid/v2"
)

const (
	PrefixDiagram = "diag"
	PrefixSession = "sess"
)

// New returns a fresh sortable identifier such as "diag_01h...".
func New(prefix string) string {
	id := typeid.MustGenerate(prefix)
	return id.String()
}

func NewDiagramID() string { return New(PrefixDiagram) }
func NewSessionID() string { return New(PrefixSession) }

// Generator hands out short identifiers unique within one diagram, such
// as "grid-0" or "arrow-3". Each diagram owns its own generator so ids
// stay stable across rebuilds of that diagram and never leak between
// diagrams. Numbers are never reused for the lifetime of the generator.
type Generator struct {
	next atomic.Uint64
}

func NewGenerator() *Generator { return &Generator{} }

// Next returns kind followed by the next number.
func (g *Generator) Next(kind string) string {
	n := g.next.Add(1) - 1
	return kind + "-" + strconv.FormatUint(n, 10)
}
