/*
NAME
  bitmap_test.go

DESCRIPTION
  bitmap_test.go provides testing for functionality provided in bitmap.go.

AUTHOR
  AusOcean

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package bitmap

import "testing"

func TestNewRejectsBadDims(t *testing.T) {
	tests := []struct {
		w, h, d int
		wantErr bool
	}{
		{1, 1, 3, false},
		{32767, 32767, 3, false},
		{0, 1, 3, true},
		{1, 0, 3, true},
		{32768, 1, 3, true},
		{1, 1, 0, true},
	}
	for _, test := range tests {
		_, err := New(test.w, test.h, test.d)
		if (err != nil) != test.wantErr {
			t.Errorf("New(%d,%d,%d): got err=%v, wantErr=%v", test.w, test.h, test.d, err, test.wantErr)
		}
	}
}

func TestPadTo(t *testing.T) {
	b, err := New(3, 2, 3)
	if err != nil {
		t.Fatal(err)
	}
	for i := range b.Pix {
		b.Pix[i] = 0xff
	}
	padded, err := b.PadTo(16, 16)
	if err != nil {
		t.Fatal(err)
	}
	if padded.Width != 16 || padded.Height != 16 {
		t.Fatalf("got %dx%d, want 16x16", padded.Width, padded.Height)
	}
	// Original region preserved.
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			for _, v := range padded.At(x, y) {
				if v != 0xff {
					t.Fatalf("pixel (%d,%d) not preserved", x, y)
				}
			}
		}
	}
	// Margin is zero.
	for _, v := range padded.At(15, 15) {
		if v != 0 {
			t.Fatalf("margin pixel not zero-filled")
		}
	}
}

func TestPadToSameSizeReturnsSame(t *testing.T) {
	b, err := New(16, 16, 3)
	if err != nil {
		t.Fatal(err)
	}
	p, err := b.PadTo(16, 16)
	if err != nil {
		t.Fatal(err)
	}
	if p != b {
		t.Fatalf("PadTo at same size should return the receiver unchanged")
	}
}

func TestPadInto(t *testing.T) {
	src, _ := New(3, 2, 3)
	for i := range src.Pix {
		src.Pix[i] = 0xaa
	}
	dst, _ := New(16, 16, 3)
	for i := range dst.Pix {
		dst.Pix[i] = 0xff // Stale data PadInto must overwrite, including margins.
	}
	if err := src.PadInto(dst); err != nil {
		t.Fatal(err)
	}
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			for _, v := range dst.At(x, y) {
				if v != 0xaa {
					t.Fatalf("pixel (%d,%d) not copied", x, y)
				}
			}
		}
	}
	for _, v := range dst.At(15, 15) {
		if v != 0 {
			t.Fatalf("margin pixel not zero-filled")
		}
	}
}

func TestPadIntoTooSmall(t *testing.T) {
	src, _ := New(16, 16, 3)
	dst, _ := New(4, 4, 3)
	if err := src.PadInto(dst); err == nil {
		t.Fatalf("expected error for undersized dst")
	}
}

func TestCopyIntoMismatch(t *testing.T) {
	a, _ := New(4, 4, 3)
	b, _ := New(4, 5, 3)
	if err := a.CopyInto(b); err == nil {
		t.Fatalf("expected error for mismatched dimensions")
	}
}
