package vision

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"dermacheck/internal/domain/entity"
)

// extractFeatures вычисляет признаки A, B, C и диаметр в пикселях исходного кадра.
func extractFeatures(img *workImage, seg *entity.SegmentationResult, p Policy) (entity.LesionFeatures, [3]float64) {
	ratio := asymmetryRatio(seg.Mask)
	irregularity := borderIrregularity(seg.Mask, seg.Contour)
	colors, mean := colorStats(img, seg.Mask, p.ColorMinFraction)

	return entity.LesionFeatures{
		Asymmetry:      tier2(ratio, p.AsymmetryCuts),
		AsymmetryRatio: ratio,
		Border:         tier2(irregularity, p.BorderCuts),
		Irregularity:   irregularity,
		Color:          colorScore(len(colors)),
		Colors:         colors,
		DiameterPx:     maxCaliper(seg.Contour) * seg.Scale,
	}, mean
}

// asymmetryRatio доля пикселей, не совпадающих с отражением относительно главной
// и второстепенной осей инерции; среднее по двум осям.
func asymmetryRatio(m *entity.Mask) float64 {
	var xs, ys []float64
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if m.At(x, y) {
				xs = append(xs, float64(x))
				ys = append(ys, float64(y))
			}
		}
	}
	n := float64(len(xs))
	if len(xs) < 2 {
		return 0
	}

	var cx, cy float64
	for i := range xs {
		cx += xs[i]
		cy += ys[i]
	}
	cx /= n
	cy /= n

	var mu20, mu02, mu11 float64
	for i := range xs {
		dx, dy := xs[i]-cx, ys[i]-cy
		mu20 += dx * dx
		mu02 += dy * dy
		mu11 += dx * dy
	}
	cov := mat.NewSymDense(2, []float64{mu20 / n, mu11 / n, mu11 / n, mu02 / n})

	var eig mat.EigenSym
	if ok := eig.Factorize(cov, true); !ok {
		return 0
	}
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	// собственные значения по возрастанию: столбец 1 — главная ось, столбец 0 — второстепенная
	var total float64
	for col := 0; col < 2; col++ {
		ux, uy := vecs.At(0, col), vecs.At(1, col)
		mismatched := 0
		for i := range xs {
			dx, dy := xs[i]-cx, ys[i]-cy
			proj := dx*ux + dy*uy
			rx := cx + 2*proj*ux - dx
			ry := cy + 2*proj*uy - dy
			if !m.At(int(math.Round(rx)), int(math.Round(ry))) {
				mismatched++
			}
		}
		total += float64(mismatched) / n
	}
	return total / 2
}

// borderIrregularity: 0.5*(P²/(4πA) - 1), не меньше нуля, плюс дефицит выпуклости.
// У круга оба слагаемых близки к нулю.
func borderIrregularity(m *entity.Mask, c entity.Contour) float64 {
	area := float64(m.Area())
	if area == 0 {
		return 0
	}
	p := perimeter(c)
	compactness := 0.5 * (p*p/(4*math.Pi*area) - 1)
	if compactness < 0 {
		compactness = 0
	}
	return compactness + convexityDeficit(c)
}

// tier2 переводит значение в балл 0..2 по двум возрастающим порогам.
func tier2(v float64, cuts [2]float64) int {
	switch {
	case v < cuts[0]:
		return 0
	case v < cuts[1]:
		return 1
	default:
		return 2
	}
}

// tier3 переводит значение в балл 0..3 по трём возрастающим порогам.
func tier3(v float64, cuts [3]float64) int {
	for i, c := range cuts {
		if v < c {
			return i
		}
	}
	return 3
}
