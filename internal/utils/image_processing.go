package utils

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/MeKo-Tech/seglabel/internal/mempool"
	"github.com/disintegration/imaging"
)

// LetterboxFill is the neutral gray YOLO exports are trained with.
var LetterboxFill = color.NRGBA{R: 114, G: 114, B: 114, A: 255}

// Letterbox describes how an image was fitted into a square model input.
type Letterbox struct {
	Scale float64 // input pixels per source pixel
	PadX  int
	PadY  int
	Size  int
}

// ToSource maps a point in model-input pixels back to source image pixels.
func (l Letterbox) ToSource(p Point) Point {
	return Point{X: (p.X - float64(l.PadX)) / l.Scale, Y: (p.Y - float64(l.PadY)) / l.Scale}
}

// LetterboxImage resizes img to fit a size×size square without distortion and
// pads the remainder with LetterboxFill, centring the image.
func LetterboxImage(img image.Image, size int) (image.Image, Letterbox, error) {
	if img == nil {
		return nil, Letterbox{}, &ImageProcessingError{Operation: "letterbox", Err: errors.New("input image is nil")}
	}
	if size <= 0 {
		return nil, Letterbox{}, &ImageProcessingError{Operation: "letterbox", Err: fmt.Errorf("invalid target size: %d", size)}
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, Letterbox{}, &ImageProcessingError{Operation: "letterbox", Err: errors.New("invalid image dimensions")}
	}

	scale := math.Min(float64(size)/float64(w), float64(size)/float64(h))
	newW := clampInt(int(math.Round(float64(w)*scale)), 1, size)
	newH := clampInt(int(math.Round(float64(h)*scale)), 1, size)
	resized := imaging.Resize(img, newW, newH, imaging.Linear)

	padX := (size - newW) / 2
	padY := (size - newH) / 2
	canvas := imaging.New(size, size, LetterboxFill)
	out := imaging.Paste(canvas, resized, image.Pt(padX, padY))

	return out, Letterbox{Scale: scale, PadX: padX, PadY: padY, Size: size}, nil
}

// NormalizeImagePooled converts img into an NCHW RGB tensor scaled to [0,1].
// The buffer comes from mempool.Float32 and the caller returns it with
// mempool.Float32.Put when done.
func NormalizeImagePooled(img image.Image) ([]float32, int, int, error) {
	if img == nil {
		return nil, 0, 0, &ImageProcessingError{Operation: "normalize", Err: errors.New("input image is nil")}
	}

	nrgba := imaging.Clone(img)
	bounds := nrgba.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, 0, 0, &ImageProcessingError{Operation: "normalize", Err: errors.New("invalid image dimensions")}
	}

	plane := width * height
	tensor := mempool.Float32.Get(3 * plane)
	for y := range height {
		row := nrgba.Pix[y*nrgba.Stride:]
		for x := range width {
			idx := y*width + x
			tensor[idx] = float32(row[4*x]) / 255.0
			tensor[plane+idx] = float32(row[4*x+1]) / 255.0
			tensor[2*plane+idx] = float32(row[4*x+2]) / 255.0
		}
	}
	return tensor, width, height, nil
}
