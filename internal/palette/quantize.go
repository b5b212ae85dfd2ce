package palette

import (
	"sort"

	"github.com/AnyUserName/gridframe-cli/internal/colour"
)

// Modified median cut over a 5-bit-per-channel histogram.

const (
	sigBits    = 5
	rShift     = 8 - sigBits
	histSize   = 1 << (3 * sigBits)
	firstPass  = 0.75
	maxIterate = 1000
)

func histIndex(r, g, b int) int {
	return r<<(2*sigBits) | g<<sigBits | b
}

type vbox struct {
	lo, hi [3]int // inclusive bounds per channel, quantized
	count  int
}

type swatch struct {
	rgb   colour.RGB
	count int
}

func (v *vbox) volume() int {
	return (v.hi[0] - v.lo[0] + 1) * (v.hi[1] - v.lo[1] + 1) * (v.hi[2] - v.lo[2] + 1)
}

// fit shrinks v to the tightest bounds around its populated cells and
// recomputes its count.
func (v *vbox) fit(hist []int) {
	lo := [3]int{1 << sigBits, 1 << sigBits, 1 << sigBits}
	hi := [3]int{-1, -1, -1}
	n := 0
	for r := v.lo[0]; r <= v.hi[0]; r++ {
		for g := v.lo[1]; g <= v.hi[1]; g++ {
			for b := v.lo[2]; b <= v.hi[2]; b++ {
				c := hist[histIndex(r, g, b)]
				if c == 0 {
					continue
				}
				n += c
				p := [3]int{r, g, b}
				for k := range 3 {
					lo[k] = min(lo[k], p[k])
					hi[k] = max(hi[k], p[k])
				}
			}
		}
	}
	v.count = n
	if n > 0 {
		v.lo, v.hi = lo, hi
	}
}

func (v *vbox) average(hist []int) colour.RGB {
	const mult = 1 << rShift
	var rs, gs, bs, total int
	for r := v.lo[0]; r <= v.hi[0]; r++ {
		for g := v.lo[1]; g <= v.hi[1]; g++ {
			for b := v.lo[2]; b <= v.hi[2]; b++ {
				c := hist[histIndex(r, g, b)]
				if c == 0 {
					continue
				}
				total += c
				rs += c * (r*mult + mult/2)
				gs += c * (g*mult + mult/2)
				bs += c * (b*mult + mult/2)
			}
		}
	}
	if total == 0 {
		return colour.RGB{
			R: uint8(mult * (v.lo[0] + v.hi[0] + 1) / 2),
			G: uint8(mult * (v.lo[1] + v.hi[1] + 1) / 2),
			B: uint8(mult * (v.lo[2] + v.hi[2] + 1) / 2),
		}
	}
	return colour.RGB{R: clamp8(rs / total), G: clamp8(gs / total), B: clamp8(bs / total)}
}

// split cuts v along its longest axis at the population median. It returns
// false when v covers a single histogram cell.
func (v *vbox) split(hist []int) (*vbox, *vbox, bool) {
	if v.count < 2 || v.volume() == 1 {
		return nil, nil, false
	}
	axis := 0
	for k := 1; k < 3; k++ {
		if v.hi[k]-v.lo[k] > v.hi[axis]-v.lo[axis] {
			axis = k
		}
	}
	if v.hi[axis] == v.lo[axis] {
		return nil, nil, false
	}

	// Population per slice along the axis.
	slices := make([]int, v.hi[axis]-v.lo[axis]+1)
	for r := v.lo[0]; r <= v.hi[0]; r++ {
		for g := v.lo[1]; g <= v.hi[1]; g++ {
			for b := v.lo[2]; b <= v.hi[2]; b++ {
				p := [3]int{r, g, b}
				slices[p[axis]-v.lo[axis]] += hist[histIndex(r, g, b)]
			}
		}
	}

	at := v.hi[axis] - 1
	acc := 0
	for i, n := range slices {
		acc += n
		if acc*2 > v.count {
			at = v.lo[axis] + i
			break
		}
	}
	if at >= v.hi[axis] {
		at = v.hi[axis] - 1
	}

	a := &vbox{lo: v.lo, hi: v.hi}
	b := &vbox{lo: v.lo, hi: v.hi}
	a.hi[axis] = at
	b.lo[axis] = at + 1
	a.fit(hist)
	b.fit(hist)
	if a.count == 0 || b.count == 0 {
		return nil, nil, false
	}
	return a, b, true
}

// quantize reduces samples to at most count swatches ordered by population,
// largest first.
func quantize(samples [][3]uint8, count int) []swatch {
	hist := make([]int, histSize)
	for _, s := range samples {
		hist[histIndex(int(s[0]>>rShift), int(s[1]>>rShift), int(s[2]>>rShift))]++
	}

	root := &vbox{hi: [3]int{1<<sigBits - 1, 1<<sigBits - 1, 1<<sigBits - 1}}
	root.fit(hist)
	if root.count == 0 {
		return nil
	}

	boxes := []*vbox{root}
	byCount := func(v *vbox) int { return v.count }
	byCountVolume := func(v *vbox) int { return v.count * v.volume() }

	boxes = cut(boxes, hist, int(firstPass*float64(count)), byCount)
	boxes = cut(boxes, hist, count, byCountVolume)

	out := make([]swatch, len(boxes))
	for i, v := range boxes {
		out[i] = swatch{rgb: v.average(hist), count: v.count}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].rgb.Hex() < out[j].rgb.Hex()
	})
	return out
}

// cut keeps splitting the highest-priority splittable box until target boxes
// exist or nothing can be split.
func cut(boxes []*vbox, hist []int, target int, priority func(*vbox) int) []*vbox {
	for iter := 0; len(boxes) < target && iter < maxIterate; iter++ {
		order := make([]int, len(boxes))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(i, j int) bool {
			return priority(boxes[order[i]]) > priority(boxes[order[j]])
		})

		didSplit := false
		for _, idx := range order {
			a, b, ok := boxes[idx].split(hist)
			if !ok {
				continue
			}
			boxes[idx] = a
			boxes = append(boxes, b)
			didSplit = true
			break
		}
		if !didSplit {
			break
		}
	}
	return boxes
}

func clamp8(v int) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return uint8(v)
}
