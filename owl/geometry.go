// Package owl implements the road-network model Localization queries:
// roads containing sections, sections containing lanes, lanes carrying an
// ordered stream of quadrilateral geometry elements. The name follows the
// original engine's "OWL" (OpenPASS World Layer) road model.
package owl

import (
	"math"

	"github.com/hlrs-vis/openpass-sub007/model"
)

const containmentTolerance = 1e-6

// LaneGeometryElement is a trapezoid-like quadrilateral with corners
// A, B (start edge) and D, C (end edge), an s-axis running along its
// length and a t-axis running across it, each with an offset. SOffset is
// the element's offset relative to the start of its owning lane.
type LaneGeometryElement struct {
	A, B, C, D model.Vector2d

	SAxis       model.Vector2d // unit vector along the lane's direction of travel
	TAxis       model.Vector2d // unit vector across the lane, left-positive
	SAxisOffset float64
	TAxisOffset float64
	SOffset     float64
	HeadingRad  float64 // the section's heading this element is relative to

	LengthM float64 // extent along s, used for perimeter sampling stride math
}

// Contains reports whether p lies within the quadrilateral (on-edge matches
// within containmentTolerance count as contained), by testing the two
// triangles {A,B,C} and {C,B,D}.
func (e LaneGeometryElement) Contains(p model.Vector2d) bool {
	return pointInTriangle(p, e.A, e.B, e.C) || pointInTriangle(p, e.C, e.B, e.D)
}

// pointInTriangle tests containment via barycentric coordinates, accepting
// on-edge matches within containmentTolerance.
func pointInTriangle(p, a, b, c model.Vector2d) bool {
	v0 := c.Sub(a)
	v1 := b.Sub(a)
	v2 := p.Sub(a)

	dot00 := v0.Dot(v0)
	dot01 := v0.Dot(v1)
	dot02 := v0.Dot(v2)
	dot11 := v1.Dot(v1)
	dot12 := v1.Dot(v2)

	denom := dot00*dot11 - dot01*dot01
	if math.Abs(denom) < 1e-12 {
		return false
	}
	invDenom := 1.0 / denom
	u := (dot11*dot02 - dot01*dot12) * invDenom
	v := (dot00*dot12 - dot01*dot02) * invDenom

	const tol = containmentTolerance
	return u >= -tol && v >= -tol && (u+v) <= 1+tol
}

// Project computes the road coordinates (s, t, heading) of p against this
// element. When the t-axis has near-zero magnitude an orthogonal vector
// derived from the s-axis is used instead.
func (e LaneGeometryElement) Project(p model.Vector2d, sectionHeading float64) (s, t, heading float64) {
	rel := p.Sub(e.A)

	s = rel.Dot(e.SAxis) + e.SAxisOffset + e.SOffset

	tAxis := e.TAxis
	if tAxis.Length() < 1e-9 {
		tAxis = model.Vector2d{X: -e.SAxis.Y, Y: e.SAxis.X}
	}
	t = rel.Dot(tAxis) + e.TAxisOffset

	heading = model.NormalizeAngle(e.HeadingRad - sectionHeading)
	return s, t, heading
}

// Reconstruct returns the world point corresponding to (s, t) on this
// element, the inverse of Project.
func (e LaneGeometryElement) Reconstruct(s, t float64) model.Vector2d {
	tAxis := e.TAxis
	if tAxis.Length() < 1e-9 {
		tAxis = model.Vector2d{X: -e.SAxis.Y, Y: e.SAxis.X}
	}
	sRel := s - e.SAxisOffset - e.SOffset
	tRel := t - e.TAxisOffset
	return e.A.Add(e.SAxis.Scale(sRel)).Add(tAxis.Scale(tRel))
}

// HalfWidth returns the half-width of the element at its midpoint, used by
// the coverage engine to compute left/right remainders.
func (e LaneGeometryElement) HalfWidth() float64 {
	leftEdge := e.B.Sub(e.A).Length()
	rightEdge := e.C.Sub(e.D).Length()
	return (leftEdge + rightEdge) / 4.0
}

// BuildQuadrilateral constructs a LaneGeometryElement from a rectangular
// strip: a start point, a heading, a length, and a (left, right) half-width
// pair, by translating along the s-axis and offsetting across the t-axis.
func BuildQuadrilateral(start model.Vector2d, heading, length, leftWidth, rightWidth, sOffset float64) LaneGeometryElement {
	sAxis := model.Vector2d{X: math.Cos(heading), Y: math.Sin(heading)}
	tAxis := model.Vector2d{X: -math.Sin(heading), Y: math.Cos(heading)}

	end := start.Add(sAxis.Scale(length))

	a := start.Add(tAxis.Scale(leftWidth))
	b := start.Sub(tAxis.Scale(rightWidth))
	d := end.Add(tAxis.Scale(leftWidth))
	c := end.Sub(tAxis.Scale(rightWidth))

	return LaneGeometryElement{
		A: a, B: b, C: c, D: d,
		SAxis:       sAxis,
		TAxis:       tAxis,
		SAxisOffset: 0,
		TAxisOffset: 0,
		SOffset:     sOffset,
		HeadingRad:  heading,
		LengthM:     length,
	}
}

// Polygon builds an agent's rotated-rectangle polygon from its bounding
// box by translate-then-rotate, and samples its perimeter at strideM
// spacing.
func Polygon(box model.BoundingBox, strideM float64) []model.Vector2d {
	halfLen := box.LengthM / 2
	halfWidth := box.WidthM / 2
	offset := box.RearAxleToCenterM

	// corners relative to the box's own frame, offset to account for the
	// reference-point-to-center shift, then rotated and translated.
	local := []model.Vector2d{
		{X: offset + halfLen, Y: halfWidth},  // front-left
		{X: offset + halfLen, Y: -halfWidth}, // front-right
		{X: offset - halfLen, Y: -halfWidth}, // rear-right
		{X: offset - halfLen, Y: halfWidth},  // rear-left
	}

	center := model.Vector2d{X: box.CenterX, Y: box.CenterY}
	corners := make([]model.Vector2d, len(local))
	for i, l := range local {
		corners[i] = center.Add(l.Rotate(box.Yaw))
	}

	perimeter := corners
	if strideM > 0 {
		perimeter = samplePerimeter(corners, strideM)
	}
	return perimeter
}

// samplePerimeter walks the closed polygon defined by corners and emits
// points every strideM along each edge, always including the corners
// themselves.
func samplePerimeter(corners []model.Vector2d, strideM float64) []model.Vector2d {
	points := make([]model.Vector2d, 0, len(corners)*2)
	n := len(corners)
	for i := 0; i < n; i++ {
		a := corners[i]
		b := corners[(i+1)%n]
		points = append(points, a)

		edge := b.Sub(a)
		edgeLen := edge.Length()
		if edgeLen <= strideM || edgeLen == 0 {
			continue
		}
		steps := int(edgeLen / strideM)
		for s := 1; s <= steps; s++ {
			frac := (float64(s) * strideM) / edgeLen
			points = append(points, a.Add(edge.Scale(frac)))
		}
	}
	return points
}

// FrontCorners returns the midpoint of the two front corners (index 0, 1
// from Polygon's corner ordering) — the main-lane locator point.
func FrontCorners(box model.BoundingBox) (frontLeft, frontRight, midpoint model.Vector2d) {
	halfLen := box.LengthM / 2
	halfWidth := box.WidthM / 2
	offset := box.RearAxleToCenterM
	center := model.Vector2d{X: box.CenterX, Y: box.CenterY}

	frontLeft = center.Add(model.Vector2d{X: offset + halfLen, Y: halfWidth}.Rotate(box.Yaw))
	frontRight = center.Add(model.Vector2d{X: offset + halfLen, Y: -halfWidth}.Rotate(box.Yaw))
	midpoint = model.Vector2d{X: (frontLeft.X + frontRight.X) / 2, Y: (frontLeft.Y + frontRight.Y) / 2}
	return frontLeft, frontRight, midpoint
}
