package domain

import "github.com/paulmach/orb"

// PolygonRings flattens a district geometry into its polygon rings. Polygons
// and multi-polygons contribute every ring, collections are walked
// recursively, and any other geometry contributes nothing.
func PolygonRings(g orb.Geometry) []orb.Ring {
	switch geom := g.(type) {
	case orb.Polygon:
		return append([]orb.Ring(nil), geom...)
	case orb.MultiPolygon:
		var rings []orb.Ring
		for _, p := range geom {
			rings = append(rings, p...)
		}
		return rings
	case orb.Collection:
		var rings []orb.Ring
		for _, child := range geom {
			rings = append(rings, PolygonRings(child)...)
		}
		return rings
	default:
		return nil
	}
}

// RingContains is the even-odd ray casting test. Ring points are (lng, lat).
func RingContains(ring orb.Ring, pt orb.Point) bool {
	n := len(ring)
	if n < 3 {
		return false
	}
	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		vi, vj := ring[i], ring[j]
		if (vi[1] > pt[1]) != (vj[1] > pt[1]) &&
			pt[0] < (vj[0]-vi[0])*(pt[1]-vi[1])/(vj[1]-vi[1])+vi[0] {
			inside = !inside
		}
		j = i
	}
	return inside
}

// FilterByGeometry keeps the events lying inside any ring of g. Rings form a
// union: holes are not subtracted. A nil geometry or no events gives an
// empty result.
func FilterByGeometry(events []Catastrophe, g orb.Geometry) []Catastrophe {
	out := make([]Catastrophe, 0)
	if g == nil || len(events) == 0 {
		return out
	}
	rings := PolygonRings(g)
	if len(rings) == 0 {
		return out
	}
	for i := range events {
		pt := orb.Point{events[i].Location.Lng, events[i].Location.Lat}
		for _, ring := range rings {
			if RingContains(ring, pt) {
				out = append(out, events[i])
				break
			}
		}
	}
	return out
}
