package vision

import (
	"math"
	"sort"

	"dermacheck/internal/domain/entity"
)

// adaptiveMask помечает пиксели темнее локального среднего на offset уровней.
func adaptiveMask(w *workImage, blockFraction, offset float64) *entity.Mask {
	width, height := w.width(), w.height()
	block := int(math.Round(blockFraction * float64(minInt(width, height))))
	if block%2 == 0 {
		block++
	}
	block = maxInt(3, block)
	r := block / 2

	sum := integral(w.gray, width, height)
	out := entity.NewMask(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if float64(w.gray[y*width+x]) < boxMean(sum, width, height, x, y, r)-offset {
				out.Pix[y*width+x] = 1
			}
		}
	}
	return out
}

// rankCandidates отбрасывает компоненты меньше minArea и сортирует остальные:
// ближе к центру кадра раньше, при равенстве — большая площадь, затем порядок обхода.
func rankCandidates(regions []region, width, height, minArea int) []region {
	cx, cy := float64(width-1)/2, float64(height-1)/2
	dist := func(r region) float64 {
		x, y := r.centroid()
		return math.Hypot(x-cx, y-cy)
	}

	kept := make([]region, 0, len(regions))
	for _, r := range regions {
		if r.area >= minArea {
			kept = append(kept, r)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		di, dj := dist(kept[i]), dist(kept[j])
		if di != dj {
			return di < dj
		}
		if kept[i].area != kept[j].area {
			return kept[i].area > kept[j].area
		}
		return kept[i].label < kept[j].label
	})
	return kept
}

// centerDisk круг радиуса fraction от короткой стороны с центром в середине кадра.
func centerDisk(width, height int, fraction float64) *entity.Mask {
	m := entity.NewMask(width, height)
	r := fraction * float64(minInt(width, height))
	cx, cy := float64(width-1)/2, float64(height-1)/2
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dx, dy := float64(x)-cx, float64(y)-cy
			if dx*dx+dy*dy <= r*r {
				m.Pix[y*width+x] = 1
			}
		}
	}
	return m
}
