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
	"image"
	"image/color"
	"image/draw"

	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"
)

// Canvas is a square transparent pixel grid that shapes are painted onto
// before encoding. It owns one Rasterizer and one coverage mask, both
// reused across painting operations.
//
// A Canvas is not safe for concurrent use.
type Canvas struct {
	// Img is the backing image. Fully transparent after NewCanvas.
	Img *image.NRGBA

	ras  *Rasterizer
	mask *image.Alpha // coverage of the current shape, rebuilt per operation
}

// NewCanvas returns a size×size canvas with every pixel transparent black.
// size must be positive.
func NewCanvas(size int) *Canvas {
	clip := rect.Rect{LLx: 0, LLy: 0, URx: float64(size), URy: float64(size)}
	return &Canvas{
		Img:  image.NewNRGBA(image.Rect(0, 0, size, size)),
		ras:  NewRasterizer(clip),
		mask: image.NewAlpha(image.Rect(0, 0, size, size)),
	}
}

// FillPath fills the path with the given color using the nonzero winding
// rule, compositing over the current canvas content.
func (c *Canvas) FillPath(p path.Path, col color.NRGBA) {
	clear(c.mask.Pix)
	c.ras.Fill(p, c.emitMask)
	c.composite(col)
}

// StrokePolyline strokes the open polyline through pts with the given
// width, cap and join styles, compositing over the current canvas content.
func (c *Canvas) StrokePolyline(pts []vec.Vec2, width float64, capStyle graphics.LineCapStyle, joinStyle graphics.LineJoinStyle, col color.NRGBA) {
	clear(c.mask.Pix)
	c.ras.Width = width
	c.ras.Cap = capStyle
	c.ras.Join = joinStyle
	c.ras.StrokePolyline(pts, c.emitMask)
	c.composite(col)
}

// emitMask stores one row of coverage into the mask image.
func (c *Canvas) emitMask(y, xMin int, coverage []float32) {
	row := c.mask.Pix[y*c.mask.Stride+xMin:]
	for i, cov := range coverage {
		row[i] = byte(max(0, min(255, int(cov*256))))
	}
}

// composite paints the uniform color through the coverage mask with
// source-over compositing.
func (c *Canvas) composite(col color.NRGBA) {
	draw.DrawMask(c.Img, c.Img.Bounds(), image.NewUniform(col), image.Point{},
		c.mask, image.Point{}, draw.Over)
}
