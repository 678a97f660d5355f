// seehuhn.de/go/icon - a trend-line icon renderer
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package icon

import (
	"math"
	"testing"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"
)

func almostEqual(a, b float32, epsilon float64) bool {
	return math.Abs(float64(a-b)) <= epsilon
}

// TestStrokeHorizontal checks exact coverage for a horizontal butt-capped
// stroke. The line (2.5,8)→(13.5,8) with width 4 covers the band
// x ∈ [2.5, 13.5], y ∈ [6, 10].
func TestStrokeHorizontal(t *testing.T) {
	const size = 16
	clip := rect.Rect{LLx: 0, LLy: 0, URx: size, URy: size}
	r := NewRasterizer(clip)
	r.Width = 4
	r.Cap = graphics.LineCapButt

	g := newCoverageGrid(size)
	r.StrokePolyline([]vec.Vec2{{X: 2.5, Y: 8}, {X: 13.5, Y: 8}}, g.emit)

	cases := []struct {
		x, y int
		want float32
	}{
		{8, 7, 1},    // interior
		{8, 9, 1},    // interior
		{2, 7, 0.5},  // left end, half covered by x >= 2.5
		{13, 9, 0.5}, // right end, half covered by x <= 13.5
		{8, 5, 0},    // above the band
		{8, 10, 0},   // below the band
		{1, 7, 0},    // beyond the start cap
	}
	for _, c := range cases {
		if got := g.at(c.x, c.y); !almostEqual(got, c.want, 1e-6) {
			t.Errorf("pixel (%d,%d): expected coverage %g, got %g",
				c.x, c.y, c.want, got)
		}
	}
}

// TestStrokeCaps checks the three cap styles on the segment (8,8)→(12,8)
// with width 4. The start cap region is to the left of x=8.
func TestStrokeCaps(t *testing.T) {
	const size = 16
	clip := rect.Rect{LLx: 0, LLy: 0, URx: size, URy: size}
	pts := []vec.Vec2{{X: 8, Y: 8}, {X: 12, Y: 8}}

	stroke := func(capStyle graphics.LineCapStyle) *coverageGrid {
		r := NewRasterizer(clip)
		r.Width = 4
		r.Cap = capStyle
		g := newCoverageGrid(size)
		r.StrokePolyline(pts, g.emit)
		return g
	}

	butt := stroke(graphics.LineCapButt)
	round := stroke(graphics.LineCapRound)
	square := stroke(graphics.LineCapSquare)

	// Pixel (7,8) is entirely outside the butt rectangle but entirely
	// inside the round cap disc.
	if c := butt.at(7, 8); c != 0 {
		t.Errorf("butt cap: pixel (7,8) should be empty, got %g", c)
	}
	if c := round.at(7, 8); !almostEqual(c, 1, 1e-3) {
		t.Errorf("round cap: pixel (7,8) should be full, got %g", c)
	}

	// Pixel (6,8) is clipped by the round cap circle but fully inside
	// the square cap extension.
	if c := round.at(6, 8); c < 0.5 || c > 0.95 {
		t.Errorf("round cap: pixel (6,8) should be partial, got %g", c)
	}
	if c := square.at(6, 8); !almostEqual(c, 1, 1e-6) {
		t.Errorf("square cap: pixel (6,8) should be full, got %g", c)
	}
	if c := square.at(6, 6); !almostEqual(c, 1, 1e-6) {
		t.Errorf("square cap: pixel (6,6) should be full, got %g", c)
	}
}

// TestStrokeJoins checks the join styles at a right-angle corner. The path
// goes right along y=2 and then down along x=10, stroked with width 2, so
// the outer corner pixel is (10,1). A miter join fills it completely, a
// bevel join cuts off exactly half, and a round join gives a quarter-disc
// area of about π/4.
func TestStrokeJoins(t *testing.T) {
	const size = 16
	clip := rect.Rect{LLx: 0, LLy: 0, URx: size, URy: size}
	pts := []vec.Vec2{{X: 2, Y: 2}, {X: 10, Y: 2}, {X: 10, Y: 10}}

	stroke := func(joinStyle graphics.LineJoinStyle) *coverageGrid {
		r := NewRasterizer(clip)
		r.Width = 2
		r.Cap = graphics.LineCapButt
		r.Join = joinStyle
		g := newCoverageGrid(size)
		r.StrokePolyline(pts, g.emit)
		return g
	}

	if c := stroke(graphics.LineJoinMiter).at(10, 1); !almostEqual(c, 1, 1e-6) {
		t.Errorf("miter join: corner pixel should be full, got %g", c)
	}
	if c := stroke(graphics.LineJoinBevel).at(10, 1); !almostEqual(c, 0.5, 1e-6) {
		t.Errorf("bevel join: corner pixel should be half covered, got %g", c)
	}
	if c := stroke(graphics.LineJoinRound).at(10, 1); c < 0.6 || c > 0.9 {
		t.Errorf("round join: corner pixel should be about π/4, got %g", c)
	}

	// Pixel (8,2) is interior for all join styles.
	for _, join := range []graphics.LineJoinStyle{
		graphics.LineJoinMiter, graphics.LineJoinBevel, graphics.LineJoinRound,
	} {
		if c := stroke(join).at(8, 2); !almostEqual(c, 1, 1e-6) {
			t.Errorf("join style %d: interior pixel (8,2) should be full, got %g", join, c)
		}
	}
}

// TestStrokeDegenerate checks that unusable polylines emit nothing.
func TestStrokeDegenerate(t *testing.T) {
	clip := rect.Rect{LLx: 0, LLy: 0, URx: 8, URy: 8}
	r := NewRasterizer(clip)
	r.Width = 2

	emitted := false
	emit := func(y, xMin int, coverage []float32) { emitted = true }

	r.StrokePolyline(nil, emit)
	r.StrokePolyline([]vec.Vec2{{X: 4, Y: 4}}, emit)
	r.StrokePolyline([]vec.Vec2{{X: 4, Y: 4}, {X: 4, Y: 4}, {X: 4, Y: 4}}, emit)

	if emitted {
		t.Error("degenerate polyline emitted coverage")
	}
}
