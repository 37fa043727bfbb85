package vision

import (
	"errors"
	"fmt"
	"image"
	"math"
	"math/rand"
	"sort"

	"dermacheck/internal/domain/entity"
	"dermacheck/internal/domain/port"
)

// icmSweeps число проходов ICM на итерацию.
const icmSweeps = 2

// NativeGrabCut итеративная сегментация по двум цветовым смесям с контрастным сглаживанием.
// Пиксели вне подсказки всегда фон; внутри начальным передним планом считаются точки,
// плохо объяснимые моделью фона.
type NativeGrabCut struct {
	Iterations   int
	Components   int
	Gamma        float64
	SeedQuantile float64
	Seed         int64
}

var _ port.ForegroundSegmenter = (*NativeGrabCut)(nil)

// NewNativeGrabCut создаёт сегментатор с параметрами из политики.
func NewNativeGrabCut(p Policy) *NativeGrabCut {
	return &NativeGrabCut{
		Iterations:   p.GrabCutIterations,
		Components:   p.GrabCutComponents,
		Gamma:        p.GrabCutGamma,
		SeedQuantile: p.SeedQuantile,
		Seed:         p.Seed,
	}
}

// Name возвращает имя реализации.
func (g *NativeGrabCut) Name() string { return "native" }

// Segment возвращает маску переднего плана.
func (g *NativeGrabCut) Segment(img *image.RGBA, hint image.Rectangle) (*entity.Mask, error) {
	if img == nil {
		return nil, errors.New("nil image")
	}
	w, h := img.Rect.Dx(), img.Rect.Dy()
	hint = hint.Intersect(image.Rect(0, 0, w, h))
	if hint.Empty() {
		return nil, errors.New("empty hint rectangle")
	}

	pixels := make([][3]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pixels[y*w+x] = rgbAt(img, x, y)
		}
	}

	var outside [][3]float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !image.Pt(x, y).In(hint) {
				outside = append(outside, pixels[y*w+x])
			}
		}
	}
	if len(outside) < g.Components {
		return nil, fmt.Errorf("not enough background pixels: %d", len(outside))
	}

	rng := rand.New(rand.NewSource(g.Seed))
	bg, err := fitColorModel(outside, g.Components, rng)
	if err != nil {
		return nil, fmt.Errorf("fit background model: %w", err)
	}

	labels := entity.NewMask(w, h)
	threshold := quantile(modelScores(bg, thinSamples(outside, maxModelSamples)), g.SeedQuantile)
	seeds := 0
	for y := hint.Min.Y; y < hint.Max.Y; y++ {
		for x := hint.Min.X; x < hint.Max.X; x++ {
			if bg.logLikelihood(pixels[y*w+x]) < threshold {
				labels.Set(x, y, true)
				seeds++
			}
		}
	}
	if seeds == 0 {
		return labels, nil
	}

	right, down := g.edgeWeights(pixels, w, h)
	dataFg := make([]float64, w*h)
	dataBg := make([]float64, w*h)

	for iter := 0; iter < g.Iterations; iter++ {
		var fgSamples, bgSamples [][3]float64
		bgSamples = append(bgSamples, outside...)
		for y := hint.Min.Y; y < hint.Max.Y; y++ {
			for x := hint.Min.X; x < hint.Max.X; x++ {
				if labels.At(x, y) {
					fgSamples = append(fgSamples, pixels[y*w+x])
				} else {
					bgSamples = append(bgSamples, pixels[y*w+x])
				}
			}
		}
		if len(fgSamples) == 0 {
			break
		}
		fg, err := fitColorModel(fgSamples, g.Components, rng)
		if err != nil {
			return nil, fmt.Errorf("fit foreground model: %w", err)
		}
		if bg, err = fitColorModel(bgSamples, g.Components, rng); err != nil {
			return nil, fmt.Errorf("fit background model: %w", err)
		}

		for y := hint.Min.Y; y < hint.Max.Y; y++ {
			for x := hint.Min.X; x < hint.Max.X; x++ {
				i := y*w + x
				dataFg[i] = -fg.logLikelihood(pixels[i])
				dataBg[i] = -bg.logLikelihood(pixels[i])
			}
		}

		changed := false
		for sweep := 0; sweep < icmSweeps; sweep++ {
			if g.sweep(labels, hint, dataFg, dataBg, right, down) {
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return labels, nil
}

// sweep один проход ICM в порядке строк. Возвращает true, если хотя бы одна метка сменилась.
func (g *NativeGrabCut) sweep(labels *entity.Mask, hint image.Rectangle, dataFg, dataBg, right, down []float64) bool {
	w := labels.Width
	changed := false
	for y := hint.Min.Y; y < hint.Max.Y; y++ {
		for x := hint.Min.X; x < hint.Max.X; x++ {
			i := y*w + x
			costFg, costBg := dataFg[i], dataBg[i]

			add := func(nx, ny int, weight float64) {
				if labels.At(nx, ny) {
					costBg += weight
				} else {
					costFg += weight
				}
			}
			if x > 0 {
				add(x-1, y, right[i-1])
			}
			if x+1 < w {
				add(x+1, y, right[i])
			}
			if y > 0 {
				add(x, y-1, down[i-w])
			}
			if y+1 < labels.Height {
				add(x, y+1, down[i])
			}

			cur := labels.At(x, y)
			next := cur
			if costFg < costBg {
				next = true
			} else if costBg < costFg {
				next = false
			}
			if next != cur {
				labels.Set(x, y, next)
				changed = true
			}
		}
	}
	return changed
}

// edgeWeights веса связей вправо и вниз: gamma*exp(-beta*|dI|^2).
func (g *NativeGrabCut) edgeWeights(pixels [][3]float64, w, h int) ([]float64, []float64) {
	var sum float64
	var n int
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			if x+1 < w {
				sum += sqDist(pixels[i], pixels[i+1])
				n++
			}
			if y+1 < h {
				sum += sqDist(pixels[i], pixels[i+w])
				n++
			}
		}
	}
	beta := 0.0
	if n > 0 && sum > 0 {
		beta = 1 / (2 * sum / float64(n))
	}

	right := make([]float64, w*h)
	down := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			if x+1 < w {
				right[i] = g.Gamma * math.Exp(-beta*sqDist(pixels[i], pixels[i+1]))
			}
			if y+1 < h {
				down[i] = g.Gamma * math.Exp(-beta*sqDist(pixels[i], pixels[i+w]))
			}
		}
	}
	return right, down
}

func modelScores(m *colorModel, samples [][3]float64) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = m.logLikelihood(s)
	}
	return out
}

// quantile значение q-квантили (нижняя оценка).
func quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return math.Inf(-1)
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	idx := int(q * float64(len(sorted)-1))
	return sorted[idx]
}
