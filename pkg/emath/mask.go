package emath

import "image"

// A Mask is a binary inclusion grid: true means the pixel belongs to
// the tile.
type Mask struct {
	stride int
	rows   int
	values []bool
}

func NewMask(w, h int) Mask {
	return Mask{stride: w, rows: h, values: make([]bool, w*h)}
}

// NewFullMask returns a w x h mask with every pixel included.
func NewFullMask(w, h int) Mask {
	m := NewMask(w, h)
	for i := range m.values {
		m.values[i] = true
	}
	return m
}

func (m *Mask)Set(x, y int, v bool)  { m.values[m.stride*y + x] = v }
func (m *Mask)Get(x, y int) bool     { return m.values[m.stride*y + x] }
func (m *Mask)Dx() int               { return m.stride }
func (m *Mask)Dy() int               { return m.rows }

func (m *Mask)Copy() Mask {
	m2 := NewMask(m.Dx(), m.Dy())
	copy(m2.values, m.values)
	return m2
}

func (m *Mask)Count() int {
	n := 0
	for _, v := range m.values {
		if v { n++ }
	}
	return n
}

func (m *Mask)Embed(w, h int, at image.Point) Mask {
	m2 := NewMask(w, h)
	for y:=0; y<m.Dy(); y++ {
		copy(m2.values[m2.stride*(y+at.Y) + at.X:], m.values[m.stride*y : m.stride*(y+1)])
	}
	return m2
}

// ToFloatGrid maps the mask to an alpha layer of 0.0 and 1.0.
func (m *Mask)ToFloatGrid() FloatGrid {
	fg := NewFloatGrid(m.Dx(), m.Dy())
	for i, v := range m.values {
		if v {
			fg.values[i] = 1.0
		}
	}
	return fg
}
