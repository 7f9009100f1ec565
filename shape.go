package trellis

import "math"

// Tessellation resolutions. Connections and ellipses are sampled into
// polylines/polygons once per draw; these counts keep curves smooth at
// typical zoom without flooding the vertex stream.
const (
	curveSegments   = 24
	ellipseSegments = 32
	cornerSegments  = 4
)

// perpendicular returns the unit normal of the segment a→b. Degenerate
// segments fall back to a vertical normal.
func perpendicular(a, b Vec2) (float64, float64) {
	dx := b.X - a.X
	dy := b.Y - a.Y
	ln := math.Sqrt(dx*dx + dy*dy)
	if ln < 1e-10 {
		return 0, -1
	}
	return -dy / ln, dx / ln
}

// miterNormal returns the join normal at pts[i] for an open polyline,
// averaged from the adjacent segment normals and widened at sharp corners,
// clamped to 2x so spikes stay bounded.
func miterNormal(pts []Vec2, i int) (float64, float64) {
	n := len(pts)
	switch {
	case i == 0:
		return perpendicular(pts[0], pts[1])
	case i == n-1:
		return perpendicular(pts[n-2], pts[n-1])
	}
	nx0, ny0 := perpendicular(pts[i-1], pts[i])
	nx1, ny1 := perpendicular(pts[i], pts[i+1])
	nx, ny := nx0+nx1, ny0+ny1
	ln := math.Sqrt(nx*nx + ny*ny)
	if ln > 1e-10 {
		nx /= ln
		ny /= ln
	}
	dot := nx0*nx + ny0*ny
	if dot > 0.1 {
		scale := 1.0 / dot
		if scale > 2.0 {
			scale = 2.0
		}
		nx *= scale
		ny *= scale
	}
	return nx, ny
}

// appendQuadBezier samples the quadratic bezier from a through control c to
// b into buf and returns it. Produces segments+1 points.
func appendQuadBezier(buf []Vec2, a, c, b Vec2, segments int) []Vec2 {
	for i := 0; i <= segments; i++ {
		t := float64(i) / float64(segments)
		u := 1 - t
		buf = append(buf, Vec2{
			X: u*u*a.X + 2*u*t*c.X + t*t*b.X,
			Y: u*u*a.Y + 2*u*t*c.Y + t*t*b.Y,
		})
	}
	return buf
}

// appendEllipse traces an ellipse outline centered on (cx, cy) into buf.
func appendEllipse(buf []Vec2, cx, cy, rx, ry float64, segments int) []Vec2 {
	for i := 0; i < segments; i++ {
		a := float64(i) / float64(segments) * 2 * math.Pi
		buf = append(buf, Vec2{X: cx + math.Cos(a)*rx, Y: cy + math.Sin(a)*ry})
	}
	return buf
}

// appendRoundedRect traces a rounded rectangle outline centered on
// (cx, cy) into buf, one quarter arc per corner.
func appendRoundedRect(buf []Vec2, cx, cy, halfW, halfH, r float64) []Vec2 {
	// Corner arc centers and angle ranges, clockwise from top-left in
	// screen orientation (y down).
	corners := [4][4]float64{
		{cx - halfW + r, cy - halfH + r, math.Pi, 3 * math.Pi / 2},
		{cx + halfW - r, cy - halfH + r, 3 * math.Pi / 2, 2 * math.Pi},
		{cx + halfW - r, cy + halfH - r, 0, math.Pi / 2},
		{cx - halfW + r, cy + halfH - r, math.Pi / 2, math.Pi},
	}
	for _, c := range corners {
		for i := 0; i <= cornerSegments; i++ {
			a := c[2] + (c[3]-c[2])*float64(i)/float64(cornerSegments)
			buf = append(buf, Vec2{X: c[0] + math.Cos(a)*r, Y: c[1] + math.Sin(a)*r})
		}
	}
	return buf
}

// connControlPoint returns the control point for a curved connection: the
// midpoint of the span pushed sideways by a fraction of its length.
func connControlPoint(x1, y1, x2, y2 float64) (float64, float64) {
	mx, my := (x1+x2)/2, (y1+y2)/2
	dx, dy := x2-x1, y2-y1
	dist := math.Hypot(dx, dy)
	if dist < 1e-10 {
		return mx, my
	}
	bulge := dist * 0.18
	if bulge > 48 {
		bulge = 48
	}
	return mx - dy/dist*bulge, my + dx/dist*bulge
}
