/*
NAME
  change.go

DESCRIPTION
  change.go implements the block-level change detector (spec §4.1):
  comparison of two same-sized padded RGB frames, block by block, against
  a squared-Euclidean-distance threshold.

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

// DefaultChangeThreshold is the default RGB-distance threshold T used by
// the change detector (spec §4.1).
const DefaultChangeThreshold = 8

// detectChanges compares two padded RGB frames (cur, ref), both
// g.paddedWidth x g.paddedHeight x 3 bytes, and returns a byte-per-block
// changed map (1 = changed) plus the number of changed blocks. threshold
// is compared as threshold*threshold against the squared pixel distance,
// matching spec §4.1's "d^2 >= T^2".
func detectChanges(cur, ref []byte, g geometry, threshold int) ([]byte, int) {
	changeMap := make([]byte, g.numBlocks())
	t2 := int32(threshold) * int32(threshold)
	stride := g.paddedWidth * 3
	changed := 0

	for by := 0; by < g.blocksH; by++ {
		for bx := 0; bx < g.blocksW; bx++ {
			idx := g.blockIndex(bx, by)
			if blockChanged(cur, ref, stride, bx*blockSize, by*blockSize, t2) {
				changeMap[idx] = 1
				changed++
			}
		}
	}
	return changeMap, changed
}

// blockChanged scans the blockSize x blockSize block at pixel origin
// (x0,y0) and reports whether any pixel's squared RGB distance meets or
// exceeds t2.
func blockChanged(cur, ref []byte, stride, x0, y0 int, t2 int32) bool {
	for y := 0; y < blockSize; y++ {
		row := (y0+y)*stride + x0*3
		for x := 0; x < blockSize; x++ {
			i := row + x*3
			dr := int32(cur[i]) - int32(ref[i])
			dg := int32(cur[i+1]) - int32(ref[i+1])
			db := int32(cur[i+2]) - int32(ref[i+2])
			d2 := dr*dr + dg*dg + db*db
			if d2 >= t2 {
				return true
			}
		}
	}
	return false
}
