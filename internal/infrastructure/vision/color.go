package vision

import (
	"math"

	"dermacheck/internal/domain/entity"
)

// colorOrder фиксированный порядок классов в результате.
var colorOrder = []entity.ColorClass{
	entity.ColorBlack,
	entity.ColorDarkBrown,
	entity.ColorLightBrown,
	entity.ColorRed,
	entity.ColorBlueGray,
	entity.ColorWhite,
}

// rgbToHSV переводит RGB (0-255) в HSV в соглашении OpenCV: H 0-180, S и V 0-255.
func rgbToHSV(r, g, b float64) (h, s, v float64) {
	r, g, b = r/255, g/255, b/255
	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	diff := maxC - minC

	v = maxC * 255
	if maxC > 0 {
		s = diff / maxC * 255
	}

	switch {
	case diff == 0:
		h = 0
	case maxC == r:
		h = 60 * math.Mod((g-b)/diff, 6)
	case maxC == g:
		h = 60 * ((b-r)/diff + 2)
	default:
		h = 60 * ((r-g)/diff + 4)
	}
	if h < 0 {
		h += 360
	}
	return h / 2, s, v
}

// classifyColor относит пиксель к дерматоскопическому классу. Правила проверяются по порядку.
func classifyColor(rgb [3]float64) entity.ColorClass {
	h, s, v := rgbToHSV(rgb[0], rgb[1], rgb[2])
	switch {
	case v < 60:
		return entity.ColorBlack
	case s < 40 && v > 200:
		return entity.ColorWhite
	case (h >= 85 && h <= 135) || s < 40:
		return entity.ColorBlueGray
	case (h < 5 || h > 165) && s > 100:
		return entity.ColorRed
	case v < 140:
		return entity.ColorDarkBrown
	default:
		return entity.ColorLightBrown
	}
}

// colorStats считает классы, занимающие не меньше minFraction пикселей маски, и средний цвет.
func colorStats(img *workImage, m *entity.Mask, minFraction float64) ([]entity.ColorClass, [3]float64) {
	counts := make(map[entity.ColorClass]int, len(colorOrder))
	var sum [3]float64
	total := 0
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if !m.At(x, y) {
				continue
			}
			c := rgbAt(img.rgb, x, y)
			counts[classifyColor(c)]++
			for i := range sum {
				sum[i] += c[i]
			}
			total++
		}
	}
	if total == 0 {
		return nil, [3]float64{}
	}

	var classes []entity.ColorClass
	for _, cls := range colorOrder {
		if float64(counts[cls])/float64(total) >= minFraction {
			classes = append(classes, cls)
		}
	}
	mean := [3]float64{sum[0] / float64(total), sum[1] / float64(total), sum[2] / float64(total)}
	return classes, mean
}

// colorScore: один класс и меньше — 0, два — 1, три и больше — 2.
func colorScore(n int) int {
	switch {
	case n <= 1:
		return 0
	case n == 2:
		return 1
	default:
		return entity.MaxColor
	}
}
