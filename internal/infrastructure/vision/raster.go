package vision

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"

	"golang.org/x/image/draw"
)

// ErrDecode возвращается, если байты не удалось прочитать как изображение.
var ErrDecode = errors.New("failed to decode image")

// workImage кадр в рабочем разрешении вместе с размерами оригинала.
type workImage struct {
	rgb   *image.RGBA
	gray  []float32
	origW int
	origH int
	scale float64 // пикселей оригинала на пиксель рабочего кадра
}

func (w *workImage) width() int  { return w.rgb.Rect.Dx() }
func (w *workImage) height() int { return w.rgb.Rect.Dy() }

// decodeImage читает JPEG/PNG из байтов.
func decodeImage(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrDecode)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return img, nil
}

// toRGBA копирует изображение в RGBA с началом координат в нуле.
func toRGBA(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// newWorkImage уменьшает кадр так, чтобы длинная сторона не превышала maxSide.
// Возвращает nil для изображений нулевого размера.
func newWorkImage(src image.Image, maxSide int) *workImage {
	b := src.Bounds()
	ow, oh := b.Dx(), b.Dy()
	if ow <= 0 || oh <= 0 {
		return nil
	}

	long := ow
	if oh > long {
		long = oh
	}

	var rgb *image.RGBA
	scale := 1.0
	if long > maxSide {
		scale = float64(long) / float64(maxSide)
		ww := maxInt(1, int(math.Round(float64(ow)/scale)))
		wh := maxInt(1, int(math.Round(float64(oh)/scale)))
		rgb = image.NewRGBA(image.Rect(0, 0, ww, wh))
		draw.BiLinear.Scale(rgb, rgb.Bounds(), src, b, draw.Src, nil)
		scale = float64(ow) / float64(ww)
	} else {
		rgb = toRGBA(src)
	}

	return &workImage{
		rgb:   rgb,
		gray:  grayscale(rgb),
		origW: ow,
		origH: oh,
		scale: scale,
	}
}

// grayscale переводит RGBA в яркость (BT.601).
func grayscale(img *image.RGBA) []float32 {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	out := make([]float32, w*h)
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 0; x < w; x++ {
			r, g, b := row[x*4], row[x*4+1], row[x*4+2]
			out[y*w+x] = 0.299*float32(r) + 0.587*float32(g) + 0.114*float32(b)
		}
	}
	return out
}

// rgbAt возвращает цвет пикселя как тройку float64.
func rgbAt(img *image.RGBA, x, y int) [3]float64 {
	i := y*img.Stride + x*4
	return [3]float64{float64(img.Pix[i]), float64(img.Pix[i+1]), float64(img.Pix[i+2])}
}

// integral строит интегральное изображение размера (w+1)*(h+1).
func integral(src []float32, w, h int) []float64 {
	sum := make([]float64, (w+1)*(h+1))
	for y := 0; y < h; y++ {
		var row float64
		for x := 0; x < w; x++ {
			row += float64(src[y*w+x])
			sum[(y+1)*(w+1)+x+1] = sum[y*(w+1)+x+1] + row
		}
	}
	return sum
}

// boxMean среднее по окну радиуса r с обрезкой по краям кадра.
func boxMean(sum []float64, w, h, x, y, r int) float64 {
	x0, y0 := maxInt(0, x-r), maxInt(0, y-r)
	x1, y1 := minInt(w, x+r+1), minInt(h, y+r+1)
	area := float64((x1 - x0) * (y1 - y0))
	s := sum[y1*(w+1)+x1] - sum[y0*(w+1)+x1] - sum[y1*(w+1)+x0] + sum[y0*(w+1)+x0]
	return s / area
}

// contrastRange разброс яркости после сглаживания окном 5x5.
// Однородный кадр с шумом сенсора даёт значения в единицы уровней.
func contrastRange(w *workImage) float64 {
	return smoothedRange(w.gray, w.width(), w.height())
}

// chromaRange разброс цветности (max-min по каналам) после того же сглаживания.
func chromaRange(w *workImage) float64 {
	width, height := w.width(), w.height()
	chroma := make([]float32, width*height)
	for y := 0; y < height; y++ {
		row := w.rgb.Pix[y*w.rgb.Stride : y*w.rgb.Stride+width*4]
		for x := 0; x < width; x++ {
			r, g, b := row[x*4], row[x*4+1], row[x*4+2]
			hi := maxInt(int(r), maxInt(int(g), int(b)))
			lo := minInt(int(r), minInt(int(g), int(b)))
			chroma[y*width+x] = float32(hi - lo)
		}
	}
	return smoothedRange(chroma, width, height)
}

func smoothedRange(values []float32, width, height int) float64 {
	sum := integral(values, width, height)
	lo, hi := math.MaxFloat64, -math.MaxFloat64
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := boxMean(sum, width, height, x, y, 2)
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	if hi < lo {
		return 0
	}
	return hi - lo
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
