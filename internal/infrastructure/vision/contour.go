package vision

import (
	"image"
	"math"
	"sort"

	"dermacheck/internal/domain/entity"
)

// Обход соседей по часовой стрелке (ось y направлена вниз), начиная с запада.
var clockwise = [8]image.Point{
	{-1, 0}, {-1, -1}, {0, -1}, {1, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 1},
}

func directionIndex(d image.Point) int {
	for i, c := range clockwise {
		if c == d {
			return i
		}
	}
	return 0
}

// traceContour обходит внешнюю границу первой встреченной компоненты (Moore-neighbor tracing).
// Для пустой маски возвращает nil.
func traceContour(m *entity.Mask) entity.Contour {
	start, ok := firstPixel(m)
	if !ok {
		return nil
	}

	contour := entity.Contour{start}
	cur := start
	back := 0 // западный сосед старта гарантированно фон
	var second image.Point
	haveSecond := false
	limit := 4*m.Area() + 16

	for step := 0; step < limit; step++ {
		next, nextBack, found := nextBoundary(m, cur, back)
		if !found {
			return contour
		}
		if cur == start && haveSecond && next == second {
			// вернулись в начало тем же путём — последняя точка дублирует старт
			return contour[:len(contour)-1]
		}
		if !haveSecond {
			second = next
			haveSecond = true
		}
		contour = append(contour, next)
		cur, back = next, nextBack
	}
	return contour
}

func nextBoundary(m *entity.Mask, cur image.Point, back int) (image.Point, int, bool) {
	for i := 1; i <= 8; i++ {
		k := (back + i) % 8
		n := cur.Add(clockwise[k])
		if !m.At(n.X, n.Y) {
			continue
		}
		prev := cur.Add(clockwise[(back+i-1)%8])
		return n, directionIndex(prev.Sub(n)), true
	}
	return image.Point{}, 0, false
}

func firstPixel(m *entity.Mask) (image.Point, bool) {
	for i, v := range m.Pix {
		if v != 0 {
			return image.Pt(i%m.Width, i/m.Width), true
		}
	}
	return image.Point{}, false
}

// polygonArea площадь замкнутого контура по формуле шнурования.
func polygonArea(pts []image.Point) float64 {
	if len(pts) < 3 {
		return 0
	}
	var s float64
	for i := range pts {
		j := (i + 1) % len(pts)
		s += float64(pts[i].X*pts[j].Y - pts[j].X*pts[i].Y)
	}
	return math.Abs(s) / 2
}

// perimeter длина замкнутого контура.
func perimeter(pts []image.Point) float64 {
	if len(pts) < 2 {
		return 0
	}
	var p float64
	for i := range pts {
		j := (i + 1) % len(pts)
		dx := float64(pts[j].X - pts[i].X)
		dy := float64(pts[j].Y - pts[i].Y)
		p += math.Hypot(dx, dy)
	}
	return p
}

// convexHull выпуклая оболочка (monotone chain).
func convexHull(pts []image.Point) []image.Point {
	if len(pts) < 3 {
		return append([]image.Point(nil), pts...)
	}
	sorted := append([]image.Point(nil), pts...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Y < sorted[j].Y
	})

	cross := func(o, a, b image.Point) int {
		return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	}

	hull := make([]image.Point, 0, 2*len(sorted))
	for _, p := range sorted {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(sorted) - 2; i >= 0; i-- {
		p := sorted[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}

// convexityDeficit доля площади оболочки, не покрытая контуром.
// Вырожденный контур без площади считается полностью невыпуклым.
func convexityDeficit(c entity.Contour) float64 {
	area := polygonArea(c)
	hullArea := polygonArea(convexHull(c))
	if area <= 0 || hullArea <= 0 {
		return 1
	}
	d := 1 - area/hullArea
	if d < 0 {
		return 0
	}
	return d
}

// maxCaliper наибольшее расстояние между точками оболочки плюс один пиксель ширины.
func maxCaliper(c entity.Contour) float64 {
	hull := convexHull(c)
	if len(hull) == 0 {
		return 0
	}
	var best float64
	for i := range hull {
		for j := i + 1; j < len(hull); j++ {
			d := math.Hypot(float64(hull[i].X-hull[j].X), float64(hull[i].Y-hull[j].Y))
			if d > best {
				best = d
			}
		}
	}
	return best + 1
}
