package narrowphase

import (
	"github.com/golang/geo/r3"

	"github.com/shacklettbp/miwe/geom"
)

// clipPolygon runs one Sutherland-Hodgman pass of input against
// clippingPlane, keeping the portion of the polygon behind the plane
// (signed distance <= 0) and inserting an intersection vertex at every
// edge that crosses the plane.
func clipPolygon(clippingPlane geom.Plane, input []r3.Vector) []r3.Vector {
	if len(input) == 0 {
		return nil
	}
	var out []r3.Vector

	v1 := input[len(input)-1]
	d1 := getDistanceFromPlane(clippingPlane, v1)

	for _, v2 := range input {
		d2 := getDistanceFromPlane(clippingPlane, v2)

		switch {
		case d1 <= 0 && d2 <= 0:
			out = append(out, v2)
		case d1 <= 0 && d2 > 0:
			out = append(out, geom.PlaneIntersection(clippingPlane, v1, v2))
		case d2 <= 0 && d1 > 0:
			out = append(out, geom.PlaneIntersection(clippingPlane, v1, v2), v2)
		}

		v1, d1 = v2, d2
	}

	return out
}
