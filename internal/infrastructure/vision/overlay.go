package vision

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"math"

	"dermacheck/internal/domain/entity"
)

var errNothingToHighlight = errors.New("measurement has no accepted segmentation")

var contourColor = color.RGBA{G: 255, A: 255}

// HighlightLesion рисует контур очага на исходном снимке и возвращает JPEG.
func (e *Engine) HighlightLesion(imageData []byte, m *entity.Measurement) ([]byte, error) {
	if m.Rejected() || m.Segmentation == nil {
		return nil, errNothingToHighlight
	}
	src, err := decodeImage(imageData)
	if err != nil {
		return nil, err
	}
	img := toRGBA(src)

	b := img.Bounds()
	thickness := maxInt(2, maxInt(b.Dx(), b.Dy())/400)
	scale := m.Segmentation.Scale
	if scale <= 0 {
		scale = 1
	}
	toOrig := func(p image.Point) (float64, float64) {
		return (float64(p.X) + 0.5) * scale, (float64(p.Y) + 0.5) * scale
	}

	c := m.Segmentation.Contour
	for i := range c {
		x0, y0 := toOrig(c[i])
		x1, y1 := toOrig(c[(i+1)%len(c)])
		drawLine(img, x0, y0, x1, y1, thickness)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawLine(img *image.RGBA, x0, y0, x1, y1 float64, thickness int) {
	steps := int(math.Ceil(math.Max(math.Abs(x1-x0), math.Abs(y1-y0))))
	if steps == 0 {
		steps = 1
	}
	half := thickness / 2
	for s := 0; s <= steps; s++ {
		t := float64(s) / float64(steps)
		cx := int(x0 + (x1-x0)*t)
		cy := int(y0 + (y1-y0)*t)
		for dy := -half; dy <= half; dy++ {
			for dx := -half; dx <= half; dx++ {
				p := image.Pt(cx+dx, cy+dy)
				if p.In(img.Rect) {
					img.SetRGBA(p.X, p.Y, contourColor)
				}
			}
		}
	}
}
