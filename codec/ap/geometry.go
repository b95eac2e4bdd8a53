/*
NAME
  geometry.go

DESCRIPTION
  geometry.go provides the block/macroblock geometry helpers shared by the
  frame encoder and decoder (spec §3 "Frame geometry").

AUTHOR
  AusOcean

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package ap

// Geometry constants (spec §3).
const (
	blockSize      = 8  // Pixels per side of a change-detection block.
	macroblockSize = 16 // Pixels per side of a macroblock (2x2 blocks).
	blocksPerMB    = macroblockSize / blockSize
	framePaletteSize = 256
	subPaletteSize   = 16
)

// padDim rounds n up to the next multiple of m.
func padDim(n, m int) int {
	if n%m == 0 {
		return n
	}
	return (n/m + 1) * m
}

// geometry holds the derived block/macroblock counts for a padded frame
// of size (paddedW, paddedH).
type geometry struct {
	width, height         int // Original, unpadded dimensions.
	paddedWidth, paddedHeight int
	blocksW, blocksH      int
	mbW, mbH              int
}

// newGeometry computes a geometry for an image of size (w,h).
func newGeometry(w, h int) geometry {
	pw := padDim(w, macroblockSize)
	ph := padDim(h, macroblockSize)
	return geometry{
		width:  w,
		height: h,
		paddedWidth:  pw,
		paddedHeight: ph,
		blocksW: pw / blockSize,
		blocksH: ph / blockSize,
		mbW:     pw / macroblockSize,
		mbH:     ph / macroblockSize,
	}
}

// numBlocks returns the total number of 8x8 blocks in the padded frame.
func (g geometry) numBlocks() int { return g.blocksW * g.blocksH }

// numMacroblocks returns the total number of 16x16 macroblocks.
func (g geometry) numMacroblocks() int { return g.mbW * g.mbH }

// changeMapBytes returns the number of bytes needed to pack one bit per
// block, per spec §6 "Changed-block bitmap packing".
func (g geometry) changeMapBytes() int {
	n := g.numBlocks()
	return (n + 7) / 8
}

// blockIndex returns the row-major block index for a block at block-grid
// coordinates (bx,by).
func (g geometry) blockIndex(bx, by int) int { return by*g.blocksW + bx }

// macroblockBlocks returns the four block indices (top-left, top-right,
// bottom-left, bottom-right) covered by macroblock (mx,my).
func (g geometry) macroblockBlocks(mx, my int) [4]int {
	bx, by := mx*blocksPerMB, my*blocksPerMB
	return [4]int{
		g.blockIndex(bx, by),
		g.blockIndex(bx+1, by),
		g.blockIndex(bx, by+1),
		g.blockIndex(bx+1, by+1),
	}
}
