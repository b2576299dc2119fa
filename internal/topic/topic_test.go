package topic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomProviderDrawsFromCatalog(t *testing.T) {
	p := NewRandomProvider()
	for i := 0; i < 100; i++ {
		assert.Contains(t, Catalog, p.Next())
	}
}

func TestSeededProviderIsDeterministic(t *testing.T) {
	a := NewSeededProvider(42, nil)
	b := NewSeededProvider(42, nil)
	for i := 0; i < 20; i++ {
		require.Equal(t, a.Next(), b.Next())
	}
}

func TestSeededProviderCustomTopics(t *testing.T) {
	p := NewSeededProvider(1, []string{"only"})
	assert.Equal(t, "only", p.Next())
}

func TestFixed(t *testing.T) {
	assert.Equal(t, "Animals", Fixed("Animals").Next())
}
