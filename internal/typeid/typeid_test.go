package typeid_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gotypeid "go.jetify.com/typeid/v2"

	"github.com/inamate/graphpad/internal/typeid"
)

func TestNewIDsParse(t *testing.T) {
	tests := []struct {
		id     string
		prefix string
	}{
		{typeid.NewDiagramID(), typeid.PrefixDiagram},
		{typeid.NewSessionID(), typeid.PrefixSession},
	}
	for _, tt := range tests {
		parsed, err := gotypeid.Parse(tt.id)
		require.NoError(t, err, tt.id)
		assert.Equal(t, tt.prefix, parsed.Prefix())
	}

	assert.NotEqual(t, typeid.NewSessionID(), typeid.NewSessionID())
}

func TestGeneratorNeverRepeats(t *testing.T) {
	g := typeid.NewGenerator()
	assert.Equal(t, "grid-0", g.Next("grid"))
	assert.Equal(t, "arrow-1", g.Next("arrow"))

	const workers, per = 8, 200
	seen := sync.Map{}
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range per {
				id := g.Next("m")
				_, dup := seen.LoadOrStore(id, true)
				assert.False(t, dup, id)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, "z-1602", g.Next("z"))
}

func TestGeneratorsAreIndependent(t *testing.T) {
	a, b := typeid.NewGenerator(), typeid.NewGenerator()
	a.Next("x")
	a.Next("x")
	assert.Equal(t, "x-0", b.Next("x"))
}
