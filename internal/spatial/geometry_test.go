package spatial

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func TestContains(t *testing.T) {
	square := orb.Ring{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	closed := orb.Ring{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}
	triangle := orb.Ring{{0, 0}, {10, 0}, {0, 10}}
	concave := orb.Ring{{0, 0}, {10, 0}, {10, 10}, {5, 3}, {0, 10}}

	tests := []struct {
		name string
		ring orb.Ring
		p    orb.Point
		want bool
	}{
		{"square center", square, orb.Point{5, 5}, true},
		{"square outside", square, orb.Point{15, 5}, false},
		{"closed ring center", closed, orb.Point{5, 5}, true},
		{"triangle inside", triangle, orb.Point{2, 2}, true},
		{"triangle bbox but outside", triangle, orb.Point{8, 8}, false},
		{"concave notch", concave, orb.Point{5, 8}, false},
		{"concave arm", concave, orb.Point{1, 8}, true},
		{"degenerate", orb.Ring{{0, 0}, {10, 10}}, orb.Point{5, 5}, false},
		{"empty", nil, orb.Point{0, 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Contains(tt.ring, tt.p))
		})
	}
}

func TestNearest(t *testing.T) {
	areas := []SpawnArea{
		{Name: "a", Centroid: orb.Point{0, 0}},
		{Name: "b", Centroid: orb.Point{100, 0}},
	}
	i, d := Nearest(areas, orb.Point{70, 0})
	assert.Equal(t, 1, i)
	assert.InDelta(t, 30, d, 1e-9)

	i, _ = Nearest(nil, orb.Point{})
	assert.Equal(t, -1, i)
}

func TestCentroid(t *testing.T) {
	assert.Equal(t, orb.Point{5, 5}, Centroid(orb.Ring{{0, 0}, {10, 0}, {10, 10}, {0, 10}}))
	assert.Equal(t, orb.Point{5, 5}, Centroid(orb.Ring{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}))
	assert.Equal(t, orb.Point{}, Centroid(nil))
}
