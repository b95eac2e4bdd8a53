/*
NAME
  list.go

DESCRIPTION
  list.go implements the sparse-list Cuboid variant of the median-cut
  quantizer (spec §4.2 "List variant"), used by the frame encoder to
  build a macroblock's 16-entry sub-palette when more than 16 distinct
  frame-palette indices are used within it (spec §4.4 step 5c). Unlike
  the array variant, occurrences are a flat list of (colour, count)
  records and Split partitions that list in place, the way
  soniakeys/quant's cluster.split partitions a pixel-point list.

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

// colorCount is one (colour, occurrence count) record in a sparse list.
type colorCount struct {
	r, g, b uint8
	count   int64
}

// ListAccumulator collects colour occurrences from one or more sources
// (e.g. several 8x8 blocks within a macroblock) into the sparse list the
// list-variant quantizer consumes, merging repeated additions of the same
// colour into a single record (spec §4.2 "optionally accumulates
// occurrences across several inputs").
type ListAccumulator struct {
	counts map[RGB]int64
}

// NewListAccumulator returns an empty ListAccumulator.
func NewListAccumulator() *ListAccumulator {
	return &ListAccumulator{counts: make(map[RGB]int64)}
}

// Add records one occurrence of colour c.
func (a *ListAccumulator) Add(c RGB) { a.counts[c]++ }

// AddN records n occurrences of colour c.
func (a *ListAccumulator) AddN(c RGB, n int64) { a.counts[c] += n }

// Len returns the number of distinct colours accumulated so far.
func (a *ListAccumulator) Len() int { return len(a.counts) }

// Seed returns a Cuboid over the accumulated colours, ready to be passed
// to MedianCut.
func (a *ListAccumulator) Seed() Cuboid {
	entries := make([]colorCount, 0, len(a.counts))
	for c, n := range a.counts {
		entries = append(entries, colorCount{c.R, c.G, c.B, n})
	}
	return &listCuboid{entries: entries}
}

// ListPalette builds a maxColors-entry palette from the colours
// accumulated in acc, using the sparse-list quantizer variant.
func ListPalette(acc *ListAccumulator, maxColors int) []RGB {
	return MedianCut(acc.Seed(), maxColors)
}

// listCuboid is the list-variant Cuboid implementation.
type listCuboid struct {
	entries                            []colorCount
	minR, maxR, minG, maxG, minB, maxB uint8
	empty                              bool
}

func (c *listCuboid) Minimize() {
	if len(c.entries) == 0 {
		c.empty = true
		return
	}
	minR, maxR := uint8(255), uint8(0)
	minG, maxG := uint8(255), uint8(0)
	minB, maxB := uint8(255), uint8(0)
	for _, e := range c.entries {
		if e.r < minR {
			minR = e.r
		}
		if e.r > maxR {
			maxR = e.r
		}
		if e.g < minG {
			minG = e.g
		}
		if e.g > maxG {
			maxG = e.g
		}
		if e.b < minB {
			minB = e.b
		}
		if e.b > maxB {
			maxB = e.b
		}
	}
	c.empty = false
	c.minR, c.maxR = minR, maxR
	c.minG, c.maxG = minG, maxG
	c.minB, c.maxB = minB, maxB
}

func (c *listCuboid) Empty() bool { return c.empty }

func (c *listCuboid) Volume() int64 {
	if c.empty {
		return 0
	}
	return (int64(c.maxR)-int64(c.minR)+1) *
		(int64(c.maxG)-int64(c.minG)+1) *
		(int64(c.maxB)-int64(c.minB)+1)
}

func (c *listCuboid) LongestSide() Axis {
	er := int(c.maxR) - int(c.minR)
	eg := int(c.maxG) - int(c.minG)
	eb := int(c.maxB) - int(c.minB)
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

func (c *listCuboid) axisBounds(axis Axis) (lo, hi uint8) {
	switch axis {
	case AxisR:
		return c.minR, c.maxR
	case AxisG:
		return c.minG, c.maxG
	default:
		return c.minB, c.maxB
	}
}

func axisValue(e colorCount, axis Axis) uint8 {
	switch axis {
	case AxisR:
		return e.r
	case AxisG:
		return e.g
	default:
		return e.b
	}
}

func (c *listCuboid) Median(axis Axis) int {
	lo, hi := c.axisBounds(axis)
	n := int(hi) - int(lo) + 1
	if n <= 0 {
		return 128
	}
	populated := make([]bool, n)
	total := 0
	for _, e := range c.entries {
		idx := int(axisValue(e, axis)) - int(lo)
		if !populated[idx] {
			populated[idx] = true
			total++
		}
	}
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
			return int(lo) + i
		}
	}
	return 128
}

func (c *listCuboid) Split(axis Axis, point int) Cuboid {
	entries := c.entries
	i, last := 0, len(entries)-1
	for i <= last {
		if int(axisValue(entries[i], axis)) <= point {
			i++
		} else {
			entries[i], entries[last] = entries[last], entries[i]
			last--
		}
	}
	c.entries = entries[:i]
	return &listCuboid{entries: entries[i:]}
}

func (c *listCuboid) AverageColor() RGB {
	var sumR, sumG, sumB, total int64
	for _, e := range c.entries {
		sumR += int64(e.r) * e.count
		sumG += int64(e.g) * e.count
		sumB += int64(e.b) * e.count
		total += e.count
	}
	if total == 0 {
		return RGB{}
	}
	return RGB{uint8(sumR / total), uint8(sumG / total), uint8(sumB / total)}
}
