package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/MeKo-Tech/seglabel/internal/annotation"
	"github.com/MeKo-Tech/seglabel/internal/testutil"
	"github.com/MeKo-Tech/seglabel/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(id annotation.ID, class int) annotation.Annotation {
	return annotation.Annotation{
		ID:      id,
		ClassID: class,
		Vertices: []utils.Point{
			{X: 0.25, Y: 0.25}, {X: 0.75, Y: 0.25}, {X: 0.75, Y: 0.75}, {X: 0.25, Y: 0.75},
		},
	}
}

func TestClassColor(t *testing.T) {
	assert.Equal(t, color.RGBA{R: 204, G: 41, B: 41, A: 255}, ClassColor(0))
	assert.Equal(t, color.RGBA{R: 41, G: 204, B: 41, A: 255}, ClassColor(4))
	assert.Equal(t, ClassColor(0), ClassColor(12), "hue wraps every twelve classes")
	assert.NotEqual(t, ClassColor(1), ClassColor(2))
}

func TestOverlay(t *testing.T) {
	bg := color.RGBA{R: 10, G: 10, B: 10, A: 255}
	img := testutil.CreateTestImage(100, 100, bg)

	out := Overlay(img, []annotation.Annotation{square(0, 0)}, []string{"cat"}, DefaultOptions())
	require.NotNil(t, out)
	assert.Equal(t, image.Rect(0, 0, 100, 100), out.Bounds())

	assert.Equal(t, ClassColor(0), out.RGBAAt(50, 25), "top edge")
	assert.Equal(t, ClassColor(0), out.RGBAAt(75, 50), "right edge")
	assert.Equal(t, bg, out.RGBAAt(50, 50), "interior untouched")
	assert.Equal(t, bg, img.RGBAAt(50, 25), "source untouched")
}

func TestOverlay_Options(t *testing.T) {
	img := testutil.CreateTestImage(400, 200, color.White)

	out := Overlay(img, []annotation.Annotation{square(0, 3)}, nil, Options{Thickness: 1, MaxSide: 100, Selected: annotation.NoID})
	assert.Equal(t, image.Rect(0, 0, 100, 50), out.Bounds())

	assert.Nil(t, Overlay(nil, nil, nil, DefaultOptions()))
}

func TestOverlay_LabelInsideImage(t *testing.T) {
	img := testutil.CreateTestImage(60, 60, color.Black)
	a := annotation.Annotation{ID: 0, ClassID: 0, Vertices: []utils.Point{{X: 0.9, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 0.1}}}
	out := Overlay(img, []annotation.Annotation{a}, []string{"label"}, Options{Labels: true, Selected: annotation.NoID})

	painted := 0
	for y := range 20 {
		for x := range 60 {
			if out.RGBAAt(x, y) != (color.RGBA{A: 255}) {
				painted++
			}
		}
	}
	assert.Positive(t, painted)
}

func TestEncodePNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodePNG(&buf, testutil.CreateTestImage(4, 3, color.White)))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())
}
