package muni

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func square(minX, minY, maxX, maxY float64) orb.Ring {
	return orb.Ring{
		{minX, minY}, {maxX, minY}, {maxX, maxY}, {minX, maxY}, {minX, minY},
	}
}

func TestLocator_Locate(t *testing.T) {
	l := NewLocator([]Municipality{
		{Name: "Helsinki", Boundary: square(24.8, 60.1, 25.1, 60.3)},
		{Name: "Vantaa", Boundary: square(24.7, 60.3, 25.2, 60.4)},
	})

	name, ok := l.Locate(orb.Point{24.95, 60.2})
	assert.True(t, ok)
	assert.Equal(t, "Helsinki", name)

	name, ok = l.Locate(orb.Point{25.0, 60.35})
	assert.True(t, ok)
	assert.Equal(t, "Vantaa", name)
}

func TestLocator_OutsideAllBoundaries(t *testing.T) {
	l := NewLocator([]Municipality{
		{Name: "Helsinki", Boundary: square(24.8, 60.1, 25.1, 60.3)},
	})

	_, ok := l.Locate(orb.Point{30.0, 65.0})
	assert.False(t, ok)
}

func TestLocator_BoundingBoxHitOutsidePolygon(t *testing.T) {
	// A triangle whose bounding box covers the whole unit square. Points in
	// the box but outside the triangle must not match.
	l := NewLocator([]Municipality{
		{Name: "Kolmio", Boundary: orb.Ring{{0, 0}, {1, 0}, {0, 1}, {0, 0}}},
	})

	name, ok := l.Locate(orb.Point{0.2, 0.2})
	assert.True(t, ok)
	assert.Equal(t, "Kolmio", name)

	_, ok = l.Locate(orb.Point{0.9, 0.9})
	assert.False(t, ok)
}

func TestLocator_Empty(t *testing.T) {
	l := NewLocator(nil)
	assert.Equal(t, 0, l.Len())

	_, ok := l.Locate(orb.Point{24.9, 60.2})
	assert.False(t, ok)
}
