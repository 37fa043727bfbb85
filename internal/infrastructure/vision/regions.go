package vision

import (
	"dermacheck/internal/domain/entity"
)

// region связная компонента маски.
type region struct {
	label int32
	area  int
	sumX  float64
	sumY  float64
}

func (r region) centroid() (float64, float64) {
	if r.area == 0 {
		return 0, 0
	}
	return r.sumX / float64(r.area), r.sumY / float64(r.area)
}

var neighbors8 = [8][2]int{{-1, -1}, {0, -1}, {1, -1}, {-1, 0}, {1, 0}, {-1, 1}, {0, 1}, {1, 1}}
var neighbors4 = [4][2]int{{0, -1}, {-1, 0}, {1, 0}, {0, 1}}

// labelRegions размечает 8-связные компоненты в порядке обхода строк.
// Метки начинаются с 1, фон — 0.
func labelRegions(m *entity.Mask) ([]int32, []region) {
	labels := make([]int32, len(m.Pix))
	var regions []region
	queue := make([]int, 0, 64)

	for start, v := range m.Pix {
		if v == 0 || labels[start] != 0 {
			continue
		}
		label := int32(len(regions) + 1)
		reg := region{label: label}
		labels[start] = label
		queue = append(queue[:0], start)
		for len(queue) > 0 {
			idx := queue[len(queue)-1]
			queue = queue[:len(queue)-1]
			x, y := idx%m.Width, idx/m.Width
			reg.area++
			reg.sumX += float64(x)
			reg.sumY += float64(y)
			for _, d := range neighbors8 {
				nx, ny := x+d[0], y+d[1]
				if !m.In(nx, ny) {
					continue
				}
				n := ny*m.Width + nx
				if m.Pix[n] != 0 && labels[n] == 0 {
					labels[n] = label
					queue = append(queue, n)
				}
			}
		}
		regions = append(regions, reg)
	}
	return labels, regions
}

// regionMask возвращает маску одной компоненты.
func regionMask(labels []int32, label int32, width, height int) *entity.Mask {
	out := entity.NewMask(width, height)
	for i, l := range labels {
		if l == label {
			out.Pix[i] = 1
		}
	}
	return out
}

// largestRegion оставляет самую большую компоненту, при равенстве — первую по обходу.
func largestRegion(m *entity.Mask) *entity.Mask {
	labels, regions := labelRegions(m)
	if len(regions) == 0 {
		return entity.NewMask(m.Width, m.Height)
	}
	best := regions[0]
	for _, r := range regions[1:] {
		if r.area > best.area {
			best = r
		}
	}
	return regionMask(labels, best.label, m.Width, m.Height)
}

// fillHoles заливает фон, недостижимый от края кадра по 4-связности.
func fillHoles(m *entity.Mask) *entity.Mask {
	w, h := m.Width, m.Height
	if w == 0 || h == 0 {
		return m.Clone()
	}
	outside := make([]bool, len(m.Pix))
	queue := make([]int, 0, 2*(w+h))

	push := func(x, y int) {
		i := y*w + x
		if m.Pix[i] == 0 && !outside[i] {
			outside[i] = true
			queue = append(queue, i)
		}
	}
	for x := 0; x < w; x++ {
		push(x, 0)
		push(x, h-1)
	}
	for y := 0; y < h; y++ {
		push(0, y)
		push(w-1, y)
	}
	for len(queue) > 0 {
		i := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		x, y := i%w, i/w
		for _, d := range neighbors4 {
			nx, ny := x+d[0], y+d[1]
			if m.In(nx, ny) {
				push(nx, ny)
			}
		}
	}

	out := entity.NewMask(w, h)
	for i := range out.Pix {
		if m.Pix[i] != 0 || !outside[i] {
			out.Pix[i] = 1
		}
	}
	return out
}

// morph применяет эрозию (erode=true) или дилатацию квадратом 3x3.
// Пиксели за краем кадра не учитываются.
func morph(m *entity.Mask, erode bool) *entity.Mask {
	out := entity.NewMask(m.Width, m.Height)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			hit := erode
			for dy := -1; dy <= 1 && hit == erode; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if !m.In(x+dx, y+dy) {
						continue
					}
					if m.At(x+dx, y+dy) != erode {
						hit = !erode
						break
					}
				}
			}
			out.Set(x, y, hit)
		}
	}
	return out
}

// closeOpen морфологическое закрытие, затем открытие.
func closeOpen(m *entity.Mask) *entity.Mask {
	closed := morph(morph(m, false), true)
	return morph(morph(closed, true), false)
}
