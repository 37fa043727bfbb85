package entity

import "image"

// Mask бинарная маска: одно значение на пиксель, 1 — очаг, 0 — фон.
type Mask struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewMask создаёт пустую маску заданного размера.
func NewMask(width, height int) *Mask {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Mask{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height),
	}
}

// In сообщает, лежит ли точка внутри маски.
func (m *Mask) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < m.Width && y < m.Height
}

// At возвращает true, если пиксель принадлежит очагу. Точки вне маски — фон.
func (m *Mask) At(x, y int) bool {
	if !m.In(x, y) {
		return false
	}
	return m.Pix[y*m.Width+x] != 0
}

// Set помечает пиксель как очаг или фон.
func (m *Mask) Set(x, y int, on bool) {
	if !m.In(x, y) {
		return
	}
	var v uint8
	if on {
		v = 1
	}
	m.Pix[y*m.Width+x] = v
}

// Area возвращает количество пикселей очага.
func (m *Mask) Area() int {
	n := 0
	for _, v := range m.Pix {
		if v != 0 {
			n++
		}
	}
	return n
}

// Fraction возвращает долю площади маски от площади кадра.
func (m *Mask) Fraction() float64 {
	total := m.Width * m.Height
	if total == 0 {
		return 0
	}
	return float64(m.Area()) / float64(total)
}

// Bounds возвращает ограничивающий прямоугольник очага (пустой, если очага нет).
func (m *Mask) Bounds() image.Rectangle {
	minX, minY := m.Width, m.Height
	maxX, maxY := -1, -1
	for y := 0; y < m.Height; y++ {
		row := m.Pix[y*m.Width : (y+1)*m.Width]
		for x, v := range row {
			if v == 0 {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}
	if maxX < 0 {
		return image.Rectangle{}
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}

// Clone возвращает независимую копию маски.
func (m *Mask) Clone() *Mask {
	c := &Mask{Width: m.Width, Height: m.Height, Pix: make([]uint8, len(m.Pix))}
	copy(c.Pix, m.Pix)
	return c
}

// Contour замкнутая граница области в пикселях, обход по часовой стрелке в координатах изображения.
type Contour []image.Point
