/*
NAME
  change_test.go

DESCRIPTION
  change_test.go provides testing for functionality provided in change.go.

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

import "testing"

func solidFrame(g geometry, r, gr, b byte) []byte {
	pix := make([]byte, g.paddedWidth*g.paddedHeight*3)
	for i := 0; i < len(pix); i += 3 {
		pix[i], pix[i+1], pix[i+2] = r, gr, b
	}
	return pix
}

func TestDetectChangesIdenticalFrames(t *testing.T) {
	g := newGeometry(32, 16)
	cur := solidFrame(g, 10, 20, 30)
	ref := solidFrame(g, 10, 20, 30)

	changeMap, changed := detectChanges(cur, ref, g, DefaultChangeThreshold)
	if changed != 0 {
		t.Errorf("changed = %d, want 0", changed)
	}
	for i, v := range changeMap {
		if v != 0 {
			t.Errorf("changeMap[%d] = %d, want 0", i, v)
		}
	}
}

// TestDetectChangesThresholdBoundary sets a single pixel's squared distance
// to (threshold-1)^2 (must not register as changed) and then exactly
// threshold^2 (must register as changed), perturbing only the red
// channel so d^2 is exact and unambiguous.
func TestDetectChangesThresholdBoundary(t *testing.T) {
	const threshold = 8
	g := newGeometry(16, 16) // 2x2 blocks; only block 0 is perturbed.

	cur := solidFrame(g, 100, 100, 100)
	ref := solidFrame(g, 100, 100, 100)

	// dR^2 = (threshold-1)^2 < threshold^2: unchanged.
	cur[0] = byte(100 + (threshold - 1))
	if _, changed := detectChanges(cur, ref, g, threshold); changed != 0 {
		t.Errorf("below-threshold distance: changed = %d, want 0", changed)
	}

	// dR^2 = threshold^2: changed.
	cur[0] = byte(100 + threshold)
	changeMap, changed := detectChanges(cur, ref, g, threshold)
	if changed != 1 {
		t.Fatalf("at-threshold distance: changed = %d, want 1", changed)
	}
	if changeMap[0] != 1 {
		t.Errorf("changeMap[0] = %d, want 1", changeMap[0])
	}
}

func TestDetectChangesSingleBlock(t *testing.T) {
	g := newGeometry(32, 16) // 4x2 blocks.
	cur := solidFrame(g, 0, 0, 0)
	ref := solidFrame(g, 0, 0, 0)

	// Perturb one pixel inside block (bx=2,by=1) only.
	stride := g.paddedWidth * 3
	x0, y0 := 2*blockSize, 1*blockSize
	i := (y0+3)*stride + (x0+3)*3
	cur[i] = 255

	changeMap, changed := detectChanges(cur, ref, g, DefaultChangeThreshold)
	if changed != 1 {
		t.Fatalf("changed = %d, want 1", changed)
	}
	want := g.blockIndex(2, 1)
	for idx, v := range changeMap {
		if idx == want && v != 1 {
			t.Errorf("changeMap[%d] = 0, want 1", idx)
		}
		if idx != want && v != 0 {
			t.Errorf("changeMap[%d] = %d, want 0", idx, v)
		}
	}
}
