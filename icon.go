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

// Package icon renders an upward trend-line on an orange disc onto a
// transparent square canvas, at any pixel size, and encodes the result
// as PNG. Output is deterministic: identical input produces byte-identical
// files.
package icon

//go:generate go run ./gen

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"

	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"
)

// ErrInvalidSize is returned when a requested icon size is not positive.
var ErrInvalidSize = errors.New("icon size must be positive")

// Icon colors.
var (
	discColor  = color.NRGBA{R: 255, G: 152, B: 0, A: 255}   // orange background disc
	trendColor = color.NRGBA{R: 255, G: 255, B: 255, A: 255} // white trend line
	alertColor = color.NRGBA{R: 255, G: 255, B: 255, A: 200} // translucent alert line
)

// Target names one icon file of the standard set.
type Target struct {
	Size int    // pixel dimension of the square image
	Name string // file name, without directory
}

// DefaultSet is the classic browser-extension icon set.
var DefaultSet = []Target{
	{Size: 16, Name: "icon16.png"},
	{Size: 48, Name: "icon48.png"},
	{Size: 128, Name: "icon128.png"},
}

// metrics holds the derived geometry for one icon size. All values use
// integer floor division so that the same size always yields the same
// pixel geometry.
type metrics struct {
	margin int // inset between canvas edge and disc
	stroke int // trend line width
	center int // canvas centre coordinate
	yLine  int // alert line y position
}

func metricsFor(size int) metrics {
	return metrics{
		margin: size / 8,
		stroke: max(2, size/16),
		center: size / 2,
		yLine:  size/2 - size/8,
	}
}

// Render draws the trend-line icon at the given pixel size onto a fresh
// transparent canvas. It returns ErrInvalidSize if size is not positive.
//
// For sizes below 8 the margin rounds to zero and the disc touches the
// canvas edge; this is accepted and well-defined, the disc is simply
// clipped to the canvas.
func Render(size int) (*image.NRGBA, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}

	m := metricsFor(size)
	c := NewCanvas(size)

	// Background disc, inscribed in the margin box. The box bounds are
	// inclusive pixel coordinates, so the continuous extent is one pixel
	// wider than the coordinate difference.
	lo, hi := float64(m.margin), float64(size-m.margin)
	cc := (lo + hi + 1) / 2
	radius := (hi - lo + 1) / 2
	c.FillPath(discPath(cc, cc, radius), discColor)

	// Upward trend line, round caps and joins.
	c.StrokePolyline(trendPoints(m, size), float64(m.stroke),
		graphics.LineCapRound, graphics.LineJoinRound, trendColor)

	// Horizontal alert line above centre.
	alert := []vec.Vec2{
		pixelCenter(m.margin+size/8, m.yLine),
		pixelCenter(size-m.margin-size/8, m.yLine),
	}
	c.StrokePolyline(alert, float64(max(1, m.stroke/2)),
		graphics.LineCapButt, graphics.LineJoinMiter, alertColor)

	return c.Img, nil
}

// trendPoints returns the vertices of the trend polyline: low start on the
// left, rise above centre, dip back to the centre line, climb to the upper
// right.
func trendPoints(m metrics, size int) []vec.Vec2 {
	return []vec.Vec2{
		pixelCenter(m.margin+size/6, m.center+size/6),
		pixelCenter(m.center-size/10, m.center-size/10),
		pixelCenter(m.center+size/10, m.center),
		pixelCenter(size-m.margin-size/6, m.center-size/4),
	}
}

// pixelCenter converts integer pixel coordinates to the continuous
// coordinates of the pixel's centre.
func pixelCenter(x, y int) vec.Vec2 {
	return vec.Vec2{X: float64(x) + 0.5, Y: float64(y) + 0.5}
}

// discPath builds a counter-clockwise circle from four cubic Bézier
// segments.
func discPath(cx, cy, r float64) path.Path {
	// Magic number for circular arc approximation with cubic Bézier
	const k = 0.5522847498
	kr := k * r

	return func(yield func(path.Command, []vec.Vec2) bool) {
		var buf [3]vec.Vec2 // stack-allocated, reused for each yield

		buf[0] = vec.Vec2{X: cx, Y: cy - r}
		if !yield(path.CmdMoveTo, buf[:1]) {
			return
		}
		buf[0], buf[1], buf[2] = vec.Vec2{X: cx + kr, Y: cy - r}, vec.Vec2{X: cx + r, Y: cy - kr}, vec.Vec2{X: cx + r, Y: cy}
		if !yield(path.CmdCubeTo, buf[:3]) {
			return
		}
		buf[0], buf[1], buf[2] = vec.Vec2{X: cx + r, Y: cy + kr}, vec.Vec2{X: cx + kr, Y: cy + r}, vec.Vec2{X: cx, Y: cy + r}
		if !yield(path.CmdCubeTo, buf[:3]) {
			return
		}
		buf[0], buf[1], buf[2] = vec.Vec2{X: cx - kr, Y: cy + r}, vec.Vec2{X: cx - r, Y: cy + kr}, vec.Vec2{X: cx - r, Y: cy}
		if !yield(path.CmdCubeTo, buf[:3]) {
			return
		}
		buf[0], buf[1], buf[2] = vec.Vec2{X: cx - r, Y: cy - kr}, vec.Vec2{X: cx - kr, Y: cy - r}, vec.Vec2{X: cx, Y: cy - r}
		if !yield(path.CmdCubeTo, buf[:3]) {
			return
		}
		yield(path.CmdClose, nil)
	}
}

// Encode renders the icon at the given size and writes it to w as PNG.
func Encode(w io.Writer, size int) error {
	img, err := Render(size)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encoding PNG: %w", err)
	}
	return nil
}

// WriteFile renders the icon at the given size and writes it to the named
// file as PNG, overwriting any existing file. The parent directory must
// already exist.
func WriteFile(name string, size int) (err error) {
	img, err := Render(size)
	if err != nil {
		return err
	}

	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	return nil
}
