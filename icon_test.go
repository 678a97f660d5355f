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
	"bytes"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestMetrics(t *testing.T) {
	cases := []struct {
		size int
		want metrics
	}{
		{16, metrics{margin: 2, stroke: 2, center: 8, yLine: 6}},
		{48, metrics{margin: 6, stroke: 3, center: 24, yLine: 18}},
		{128, metrics{margin: 16, stroke: 8, center: 64, yLine: 48}},
		{1, metrics{margin: 0, stroke: 2, center: 0, yLine: 0}},
	}
	for _, c := range cases {
		if got := metricsFor(c.size); got != c.want {
			t.Errorf("metricsFor(%d) = %+v, want %+v", c.size, got, c.want)
		}
	}
}

func TestRenderProperties(t *testing.T) {
	for _, target := range DefaultSet {
		size := target.Size
		img, err := Render(size)
		if err != nil {
			t.Fatalf("Render(%d): %v", size, err)
		}

		b := img.Bounds()
		if b.Dx() != size || b.Dy() != size {
			t.Fatalf("Render(%d): bounds %v", size, b)
		}

		// Corners stay transparent, outside the disc.
		for _, p := range [][2]int{{0, 0}, {size - 1, 0}, {0, size - 1}, {size - 1, size - 1}} {
			if a := img.NRGBAAt(p[0], p[1]).A; a != 0 {
				t.Errorf("size %d: corner (%d,%d) not transparent, alpha %d",
					size, p[0], p[1], a)
			}
		}

		// A pixel just inside the left edge of the disc, at disc height,
		// shows the pure background color: neither trend nor alert line
		// reaches that far left.
		m := metricsFor(size)
		probe := img.NRGBAAt(m.margin+1, m.center)
		if probe != discColor {
			t.Errorf("size %d: probe pixel (%d,%d) = %v, want %v",
				size, m.margin+1, m.center, probe, discColor)
		}

		// The canvas centre is inside the disc and fully opaque.
		if a := img.NRGBAAt(m.center, m.center).A; a != 255 {
			t.Errorf("size %d: centre pixel alpha %d, want 255", size, a)
		}
	}
}

// TestDiscSpan pins down the horizontal extent of the disc at its widest
// row. With margin m the disc occupies pixel columns m .. size-m-1.
func TestDiscSpan(t *testing.T) {
	cases := []struct {
		size            int
		inLeft, inRight int // columns inside the disc
	}{
		{16, 2, 14},
		{128, 16, 112},
	}
	for _, c := range cases {
		img, err := Render(c.size)
		if err != nil {
			t.Fatalf("Render(%d): %v", c.size, err)
		}
		y := c.size / 2
		if a := img.NRGBAAt(c.inLeft, y).A; a == 0 {
			t.Errorf("size %d: pixel (%d,%d) should be inside the disc", c.size, c.inLeft, y)
		}
		if a := img.NRGBAAt(c.inLeft-1, y).A; a != 0 {
			t.Errorf("size %d: pixel (%d,%d) should be outside the disc, alpha %d",
				c.size, c.inLeft-1, y, a)
		}
		if a := img.NRGBAAt(c.inRight, y).A; a == 0 {
			t.Errorf("size %d: pixel (%d,%d) should be inside the disc", c.size, c.inRight, y)
		}
		if a := img.NRGBAAt(c.inRight+1, y).A; a != 0 {
			t.Errorf("size %d: pixel (%d,%d) should be outside the disc, alpha %d",
				c.size, c.inRight+1, y, a)
		}
	}
}

// TestAlertLine checks the translucent white line over the orange disc.
// Source-over gives full red, partially lightened green, and blue equal to
// the line's alpha.
func TestAlertLine(t *testing.T) {
	img, err := Render(128)
	if err != nil {
		t.Fatal(err)
	}
	m := metricsFor(128)
	px := img.NRGBAAt(m.center, m.yLine)
	if px.A != 255 {
		t.Errorf("alert pixel alpha %d, want 255", px.A)
	}
	if px.R != 255 {
		t.Errorf("alert pixel red %d, want 255", px.R)
	}
	if px.G < 225 || px.G > 240 {
		t.Errorf("alert pixel green %d, want about 233", px.G)
	}
	if px.B < 195 || px.B > 205 {
		t.Errorf("alert pixel blue %d, want about 200", px.B)
	}
}

func TestRenderInvalidSize(t *testing.T) {
	for _, size := range []int{0, -1, -128} {
		if _, err := Render(size); !errors.Is(err, ErrInvalidSize) {
			t.Errorf("Render(%d): expected ErrInvalidSize, got %v", size, err)
		}
		if err := Encode(&bytes.Buffer{}, size); !errors.Is(err, ErrInvalidSize) {
			t.Errorf("Encode(%d): expected ErrInvalidSize, got %v", size, err)
		}
	}
}

// TestRenderTiny checks that sizes below the margin threshold still render.
func TestRenderTiny(t *testing.T) {
	img, err := Render(1)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 1 || b.Dy() != 1 {
		t.Fatalf("bounds %v", b)
	}
	if img.NRGBAAt(0, 0).A == 0 {
		t.Error("1x1 icon is fully transparent")
	}
}

func TestEncodeDeterministic(t *testing.T) {
	var first, second bytes.Buffer
	if err := Encode(&first, 48); err != nil {
		t.Fatal(err)
	}
	if err := Encode(&second, 48); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Error("repeated Encode produced different bytes")
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, 48); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 48 || b.Dy() != 48 {
		t.Errorf("decoded bounds %v", b)
	}
}

func TestWriteFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "icon48.png")
	if err := WriteFile(name, 48); err != nil {
		t.Fatal(err)
	}
	first, err := os.ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}

	// Overwriting must give the identical file.
	if err := WriteFile(name, 48); err != nil {
		t.Fatal(err)
	}
	second, err := os.ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Error("overwriting produced different bytes")
	}
}

func TestWriteFileMissingDir(t *testing.T) {
	name := filepath.Join(t.TempDir(), "missing", "icon16.png")
	if err := WriteFile(name, 16); err == nil {
		t.Error("expected error for missing parent directory")
	}
}

func TestDefaultSet(t *testing.T) {
	sizes := map[int]string{16: "icon16.png", 48: "icon48.png", 128: "icon128.png"}
	if len(DefaultSet) != len(sizes) {
		t.Fatalf("DefaultSet has %d entries", len(DefaultSet))
	}
	for _, target := range DefaultSet {
		if name := sizes[target.Size]; name != target.Name {
			t.Errorf("size %d: file name %q, want %q", target.Size, target.Name, name)
		}
	}
}
