package spatial

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Contains reports whether p lies inside ring, using an even-odd ray cast.
// Every edge whose endpoints straddle p's latitude toggles the result when
// its intersection at that latitude lies east of p. Rings with fewer than
// three vertices contain nothing.
func Contains(ring orb.Ring, p orb.Point) bool {
	if len(ring) < 3 {
		return false
	}
	if !ring.Bound().Contains(p) {
		return false
	}

	inside := false
	for i, j := 0, len(ring)-1; i < len(ring); j, i = i, i+1 {
		xi, yi := ring[i][0], ring[i][1]
		xj, yj := ring[j][0], ring[j][1]
		if (yi > p[1]) != (yj > p[1]) {
			x := (xj-xi)*(p[1]-yi)/(yj-yi) + xi
			if p[0] < x {
				inside = !inside
			}
		}
	}
	return inside
}

// Nearest returns the index of the area whose centroid is closest to p and
// the distance to it, or -1 when areas is empty.
func Nearest(areas []SpawnArea, p orb.Point) (int, float64) {
	best, bestDist := -1, 0.0
	for i := range areas {
		d := planar.Distance(areas[i].Centroid, p)
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, bestDist
}

// Centroid is the vertex mean of ring, ignoring a closing vertex.
func Centroid(ring orb.Ring) orb.Point {
	n := len(ring)
	if n > 1 && ring.Closed() {
		n--
	}
	if n == 0 {
		return orb.Point{}
	}
	var c orb.Point
	for _, v := range ring[:n] {
		c[0] += v[0]
		c[1] += v[1]
	}
	c[0] /= float64(n)
	c[1] /= float64(n)
	return c
}
