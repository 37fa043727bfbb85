package vision

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"dermacheck/internal/domain/entity"
)

var (
	skinTone  = color.RGBA{R: 205, G: 160, B: 140, A: 255}
	darkBrown = color.RGBA{R: 100, G: 60, B: 40, A: 255}
	nearBlack = color.RGBA{R: 25, G: 20, B: 20, A: 255}
	blueGray  = color.RGBA{R: 90, G: 100, B: 130, A: 255}
	lesionRed = color.RGBA{R: 180, G: 50, B: 60, A: 255}
)

// canvas заливает кадр цветом с равномерным шумом ±noise по каналам.
func canvas(w, h int, base color.RGBA, noise int, seed int64) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	rng := rand.New(rand.NewSource(seed))
	jitter := func(v uint8) uint8 {
		if noise == 0 {
			return v
		}
		n := int(v) + rng.Intn(2*noise+1) - noise
		if n < 0 {
			n = 0
		}
		if n > 255 {
			n = 255
		}
		return uint8(n)
	}
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = jitter(base.R)
		img.Pix[i+1] = jitter(base.G)
		img.Pix[i+2] = jitter(base.B)
		img.Pix[i+3] = 255
	}
	return img
}

// paint закрашивает пиксели, для которых inside возвращает цвет.
func paint(img *image.RGBA, inside func(x, y int) (color.RGBA, bool)) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if c, ok := inside(x, y); ok {
				img.SetRGBA(x, y, c)
			}
		}
	}
}

func disk(cx, cy, r float64) func(x, y int) bool {
	return func(x, y int) bool {
		dx, dy := float64(x)-cx, float64(y)-cy
		return dx*dx+dy*dy <= r*r
	}
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// maskCentroid центр масс маски.
func maskCentroid(m *entity.Mask) (float64, float64) {
	var sx, sy float64
	n := 0
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if m.At(x, y) {
				sx += float64(x)
				sy += float64(y)
				n++
			}
		}
	}
	if n == 0 {
		return math.NaN(), math.NaN()
	}
	return sx / float64(n), sy / float64(n)
}

// fixedSegmenter возвращает заранее заданную маску или ошибку.
type fixedSegmenter struct {
	mask func(w, h int) *entity.Mask
	err  error
}

func (f fixedSegmenter) Name() string { return "fixed" }

func (f fixedSegmenter) Segment(img *image.RGBA, _ image.Rectangle) (*entity.Mask, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.mask(img.Rect.Dx(), img.Rect.Dy()), nil
}

func maskFrom(w, h int, inside func(x, y int) bool) *entity.Mask {
	m := entity.NewMask(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.Set(x, y, inside(x, y))
		}
	}
	return m
}
