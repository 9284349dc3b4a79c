// Package render draws annotations over their image for previews and the
// server's overlay endpoint.
package render

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"github.com/MeKo-Tech/seglabel/internal/annotation"
	"github.com/MeKo-Tech/seglabel/internal/utils"
	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Options control overlay drawing.
type Options struct {
	Thickness  int  // outline thickness in pixels
	VertexSize int  // half side of the vertex squares; 0 hides them
	Labels     bool // draw class names next to the first vertex
	MaxSide    int  // downscale so neither side exceeds this; 0 keeps the size
	Selected   annotation.ID
}

// DefaultOptions returns the options used by the CLI and the server.
func DefaultOptions() Options {
	return Options{Thickness: 2, VertexSize: 2, Labels: true, Selected: annotation.NoID}
}

// ClassColor returns the colour of class id: hue (id*30) mod 360 at
// saturation and value 0.8.
func ClassColor(id int) color.RGBA {
	hue := math.Mod(float64(id)*30, 360)
	if hue < 0 {
		hue += 360
	}
	return hsv(hue, 0.8, 0.8)
}

func hsv(h, s, v float64) color.RGBA {
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c
	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	to8 := func(f float64) uint8 { return uint8(math.Round((f + m) * 255)) }
	return color.RGBA{R: to8(r), G: to8(g), B: to8(b), A: 255}
}

// Overlay returns an RGBA copy of img with every annotation outlined in its
// class colour. classes supplies label text by class id; missing names fall
// back to no label.
func Overlay(img image.Image, anns []annotation.Annotation, classes []string, opts Options) *image.RGBA {
	if img == nil {
		return nil
	}
	if opts.MaxSide > 0 {
		b := img.Bounds()
		if b.Dx() > opts.MaxSide || b.Dy() > opts.MaxSide {
			img = imaging.Fit(img, opts.MaxSide, opts.MaxSide, imaging.Lanczos)
		}
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)

	w, h := float64(b.Dx()), float64(b.Dy())
	for _, a := range anns {
		col := ClassColor(a.ClassID)
		pts := make([]utils.Point, len(a.Vertices))
		for i, v := range a.Vertices {
			pts[i] = utils.Point{X: v.X * w, Y: v.Y * h}
		}
		thickness := opts.Thickness
		if a.ID == opts.Selected && opts.Selected != annotation.NoID {
			thickness += 2
		}
		utils.DrawPolygon(dst, pts, col, thickness)
		if opts.VertexSize > 0 {
			for _, p := range pts {
				utils.FillSquare(dst, p, opts.VertexSize, col)
			}
		}
		if opts.Labels && len(pts) > 0 && a.ClassID >= 0 && a.ClassID < len(classes) {
			drawLabel(dst, pts[0], classes[a.ClassID], col)
		}
	}
	return dst
}

// drawLabel writes text just above p, kept inside the image.
func drawLabel(dst *image.RGBA, p utils.Point, text string, col color.Color) {
	face := basicfont.Face7x13
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(col), Face: face}
	width := d.MeasureString(text).Ceil()
	b := dst.Bounds()
	x := min(int(p.X)+4, b.Max.X-width)
	y := int(p.Y) - 4
	if y-face.Ascent < b.Min.Y {
		y = b.Min.Y + face.Ascent
	}
	d.Dot = fixed.P(max(x, b.Min.X), y)
	d.DrawString(text)
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}
