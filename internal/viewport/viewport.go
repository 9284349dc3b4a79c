// Package viewport maps between normalized annotation space, image pixels and
// the display surface an image is letterboxed into.
package viewport

import (
	"github.com/MeKo-Tech/seglabel/internal/utils"
)

// Mapper is the fit of one image into one surface. The zero value is not
// ready; build one with Fit.
type Mapper struct {
	Scale    float64 `json:"scale"`
	OffsetX  float64 `json:"offset_x"`
	OffsetY  float64 `json:"offset_y"`
	ImageW   int     `json:"image_width"`
	ImageH   int     `json:"image_height"`
	SurfaceW int     `json:"surface_width"`
	SurfaceH int     `json:"surface_height"`
}

// Fit scales the image uniformly so it fits entirely inside the surface and
// centres it. When the surface is relatively wider than the image the height
// is matched, otherwise the width. Displayed sizes are whole pixels.
func Fit(surfaceW, surfaceH, imageW, imageH int) Mapper {
	m := Mapper{ImageW: imageW, ImageH: imageH, SurfaceW: surfaceW, SurfaceH: surfaceH}
	if surfaceW <= 0 || surfaceH <= 0 || imageW <= 0 || imageH <= 0 {
		return m
	}

	imgRatio := float64(imageW) / float64(imageH)
	surfaceRatio := float64(surfaceW) / float64(surfaceH)

	var newW, newH int
	if surfaceRatio > imgRatio {
		newH = surfaceH
		newW = int(float64(newH) * imgRatio)
	} else {
		newW = surfaceW
		newH = int(float64(newW) / imgRatio)
	}
	newW = max(newW, 1)
	newH = max(newH, 1)

	m.Scale = float64(newW) / float64(imageW)
	m.OffsetX = float64((surfaceW - newW) / 2)
	m.OffsetY = float64((surfaceH - newH) / 2)
	return m
}

// Ready reports whether the mapping can convert coordinates.
func (m Mapper) Ready() bool {
	return m.Scale > 0 && m.ImageW > 0 && m.ImageH > 0
}

// DisplayRect returns the image's rectangle on the surface as min and max
// corners.
func (m Mapper) DisplayRect() (utils.Point, utils.Point) {
	return utils.Point{X: m.OffsetX, Y: m.OffsetY},
		utils.Point{
			X: m.OffsetX + float64(m.ImageW)*m.Scale,
			Y: m.OffsetY + float64(m.ImageH)*m.Scale,
		}
}

// ToDisplay converts a normalized point to surface pixels.
func (m Mapper) ToDisplay(norm utils.Point) utils.Point {
	return utils.Point{
		X: norm.X*float64(m.ImageW)*m.Scale + m.OffsetX,
		Y: norm.Y*float64(m.ImageH)*m.Scale + m.OffsetY,
	}
}

// ToDisplayAll converts a slice of normalized points.
func (m Mapper) ToDisplayAll(norm []utils.Point) []utils.Point {
	out := make([]utils.Point, len(norm))
	for i, p := range norm {
		out[i] = m.ToDisplay(p)
	}
	return out
}

// ToImage converts a surface position to image pixels without clamping.
func (m Mapper) ToImage(display utils.Point) utils.Point {
	if !m.Ready() {
		return utils.Point{}
	}
	return utils.Point{
		X: (display.X - m.OffsetX) / m.Scale,
		Y: (display.Y - m.OffsetY) / m.Scale,
	}
}

// Inside reports whether a surface position falls on the image, edges
// included.
func (m Mapper) Inside(display utils.Point) bool {
	if !m.Ready() {
		return false
	}
	p := m.ToImage(display)
	return p.X >= 0 && p.X <= float64(m.ImageW) && p.Y >= 0 && p.Y <= float64(m.ImageH)
}

// ToNormalized converts a surface position to normalized image coordinates,
// clamped to the image, and reports whether the unclamped position was
// inside the image.
func (m Mapper) ToNormalized(display utils.Point) (utils.Point, bool) {
	if !m.Ready() {
		return utils.Point{}, false
	}
	p := m.ToImage(display)
	inside := p.X >= 0 && p.X <= float64(m.ImageW) && p.Y >= 0 && p.Y <= float64(m.ImageH)
	return utils.Point{
		X: utils.Clamp(p.X, 0, float64(m.ImageW)) / float64(m.ImageW),
		Y: utils.Clamp(p.Y, 0, float64(m.ImageH)) / float64(m.ImageH),
	}, inside
}

// NormalizePixel converts an image pixel position to normalized
// coordinates after clamping it to [0, w-1] x [0, h-1].
func NormalizePixel(p utils.Point, imageW, imageH int) utils.Point {
	if imageW <= 0 || imageH <= 0 {
		return utils.Point{}
	}
	return utils.Point{
		X: utils.Clamp(p.X, 0, float64(imageW-1)) / float64(imageW),
		Y: utils.Clamp(p.Y, 0, float64(imageH-1)) / float64(imageH),
	}
}
