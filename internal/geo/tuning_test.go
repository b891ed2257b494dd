package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetBoundaryEpsilonIsVisibleImmediately(t *testing.T) {
	prev := BoundaryEpsilon()
	defer SetBoundaryEpsilon(prev)

	SetBoundaryEpsilon(1e-3)
	assert.Equal(t, 1e-3, BoundaryEpsilon())
}

// TestBuildSeedsBoundaryEpsilon checks that Build publishes its
// boundaryEpsilon argument through the package-level accessor, since
// region caches read it from there on every lookup rather than from a
// value captured at construction time.
func TestBuildSeedsBoundaryEpsilon(t *testing.T) {
	squareCatalog(t)
	assert.Equal(t, 1e-5, BoundaryEpsilon())

	Build(nil, 32, 2e-4)
	assert.Equal(t, 2e-4, BoundaryEpsilon())
}
