/*
NAME
  array.go

DESCRIPTION
  array.go implements the dense-histogram Cuboid variant of the median-cut
  quantizer (spec §4.2 "Array variant"), used by the frame encoder to
  build the 256-entry frame palette from a whole padded frame. Samples are
  right-shifted into a 2^depth-per-axis histogram (depth in [6,8]) to
  bound memory use; palette output is left-shifted back to fill 0..255.

AUTHOR
  AusOcean

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package quant

// arrayHist is a dense 2^depth x 2^depth x 2^depth occurrence table.
type arrayHist struct {
	size   int // 2^depth.
	shift  uint
	counts []int64
}

func newArrayHist(depth int) *arrayHist {
	depth = clampDepth(depth)
	size := 1 << uint(depth)
	return &arrayHist{
		size:   size,
		shift:  uint(8 - depth),
		counts: make([]int64, size*size*size),
	}
}

// clampDepth clamps a requested histogram depth to the supported [6,8]
// range (spec §4.4 "clamp medianCutDepth to [6..8]").
func clampDepth(depth int) int {
	switch {
	case depth < 6:
		return 6
	case depth > 8:
		return 8
	default:
		return depth
	}
}

func (h *arrayHist) index(r, g, b int) int {
	return (r*h.size+g)*h.size + b
}

func (h *arrayHist) add(r, g, b byte) {
	h.counts[h.index(int(r)>>h.shift, int(g)>>h.shift, int(b)>>h.shift)]++
}

// arrayCuboid is the array-variant Cuboid implementation: a box over a
// shared dense histogram, identified by inclusive bounds in shifted
// (0..size-1) coordinates.
type arrayCuboid struct {
	hist                               *arrayHist
	minR, maxR, minG, maxG, minB, maxB int
	empty                              bool
}

// NewArrayQuantizer returns a Cuboid seeded with the full range of a
// dense histogram built from the RGB pixel triples in pix (length must be
// a multiple of 3). depth is clamped to [6,8].
func NewArrayQuantizer(pix []byte, depth int) Cuboid {
	h := newArrayHist(depth)
	for i := 0; i+2 < len(pix); i += 3 {
		h.add(pix[i], pix[i+1], pix[i+2])
	}
	return &arrayCuboid{
		hist: h,
		maxR: h.size - 1,
		maxG: h.size - 1,
		maxB: h.size - 1,
	}
}

// ArrayPalette builds a maxColors-entry palette from pix using the
// dense-histogram quantizer variant. This is the entry point the frame
// encoder uses to build the per-frame palette (spec §4.4 step 3).
func ArrayPalette(pix []byte, maxColors, depth int) []RGB {
	return MedianCut(NewArrayQuantizer(pix, depth), maxColors)
}

// forEach calls fn for every populated cell within the cuboid's current
// bounds.
func (c *arrayCuboid) forEach(fn func(r, g, b, cnt int64)) {
	h := c.hist
	for r := c.minR; r <= c.maxR; r++ {
		for g := c.minG; g <= c.maxG; g++ {
			base := (r*h.size + g) * h.size
			for b := c.minB; b <= c.maxB; b++ {
				if cnt := h.counts[base+b]; cnt != 0 {
					fn(int64(r), int64(g), int64(b), cnt)
				}
			}
		}
	}
}

func (c *arrayCuboid) Minimize() {
	size := c.hist.size
	minR, maxR := size, -1
	minG, maxG := size, -1
	minB, maxB := size, -1
	c.forEach(func(r, g, b, _ int64) {
		ri, gi, bi := int(r), int(g), int(b)
		if ri < minR {
			minR = ri
		}
		if ri > maxR {
			maxR = ri
		}
		if gi < minG {
			minG = gi
		}
		if gi > maxG {
			maxG = gi
		}
		if bi < minB {
			minB = bi
		}
		if bi > maxB {
			maxB = bi
		}
	})
	if maxR < 0 {
		c.empty = true
		return
	}
	c.empty = false
	c.minR, c.maxR = minR, maxR
	c.minG, c.maxG = minG, maxG
	c.minB, c.maxB = minB, maxB
}

func (c *arrayCuboid) Empty() bool { return c.empty }

func (c *arrayCuboid) Volume() int64 {
	if c.empty {
		return 0
	}
	return int64(c.maxR-c.minR+1) * int64(c.maxG-c.minG+1) * int64(c.maxB-c.minB+1)
}

func (c *arrayCuboid) LongestSide() Axis {
	er := c.maxR - c.minR
	eg := c.maxG - c.minG
	eb := c.maxB - c.minB
	axis := AxisR
	best := er
	if eg > best {
		axis, best = AxisG, eg
	}
	if eb > best {
		axis = AxisB
	}
	return axis
}

func (c *arrayCuboid) axisBounds(axis Axis) (lo, hi int) {
	switch axis {
	case AxisR:
		return c.minR, c.maxR
	case AxisG:
		return c.minG, c.maxG
	default:
		return c.minB, c.maxB
	}
}

func (c *arrayCuboid) Median(axis Axis) int {
	lo, hi := c.axisBounds(axis)
	n := hi - lo + 1
	if n <= 0 {
		return 128
	}
	populated := make([]bool, n)
	total := 0
	c.forEach(func(r, g, b, _ int64) {
		var coord int64
		switch axis {
		case AxisR:
			coord = r
		case AxisG:
			coord = g
		default:
			coord = b
		}
		idx := int(coord) - lo
		if !populated[idx] {
			populated[idx] = true
			total++
		}
	})
	if total == 0 {
		return 128
	}
	half := total / 2
	running := 0
	for i, p := range populated {
		if p {
			running++
		}
		if running == half {
			return lo + i
		}
	}
	return 128
}

func (c *arrayCuboid) Split(axis Axis, point int) Cuboid {
	other := *c
	switch axis {
	case AxisR:
		other.minR = point + 1
		c.maxR = point
	case AxisG:
		other.minG = point + 1
		c.maxG = point
	default:
		other.minB = point + 1
		c.maxB = point
	}
	return &other
}

func (c *arrayCuboid) AverageColor() RGB {
	var sumR, sumG, sumB, total int64
	c.forEach(func(r, g, b, cnt int64) {
		sumR += r * cnt
		sumG += g * cnt
		sumB += b * cnt
		total += cnt
	})
	if total == 0 {
		return RGB{}
	}
	shift := c.hist.shift
	return RGB{
		R: uint8((sumR / total) << shift),
		G: uint8((sumG / total) << shift),
		B: uint8((sumB / total) << shift),
	}
}
