/*
NAME
  encoder_test.go

DESCRIPTION
  encoder_test.go provides testing for functionality provided in
  encoder.go.

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

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/apcodec/bitmap"
	"github.com/ausocean/apcodec/container/apfile"
)

func solidBitmap(t *testing.T, w, h int, r, g, b byte) *bitmap.Bitmap {
	t.Helper()
	img, err := bitmap.New(w, h, 3)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < len(img.Pix); i += 3 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2] = r, g, b
	}
	return img
}

func newTestEncoder(t *testing.T, path string, fps float32) *Encoder {
	t.Helper()
	e := NewEncoder((*logging.TestLogger)(t))
	if err := e.SetFile(path); err != nil {
		t.Fatalf("SetFile: %v", err)
	}
	if err := e.SetOptions(fps, 7); err != nil {
		t.Fatalf("SetOptions: %v", err)
	}
	return e
}

// TestEncodeSingleKeyframeFileSize checks scenario 1 of the testable
// properties: a single 16x16 all-black frame at 25 fps produces a file of
// exactly the expected size. mbPixels (256) exceeds rleMaxRun (128), so
// the solid macroblock's RLE payload is two chained 128-long repeat runs
// (3 packed bytes), not the single run a literal reading of the run-header
// width would suggest.
func TestEncodeSingleKeyframeFileSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.ap")
	e := newTestEncoder(t, path, 25)
	img := solidBitmap(t, 16, 16, 0, 0, 0)
	if err := e.PutImage(img); err != nil {
		t.Fatalf("PutImage: %v", err)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	const want = apfile.HeaderSize + 1 + 4 + 12 + 768 + 16 + 1 + 3
	if info.Size() != want {
		t.Errorf("file size = %d, want %d", info.Size(), int64(want))
	}

	// Magic/version correctness is exercised by OpenReader succeeding
	// at all; the negative case is container/apfile's TestOpenReaderBadMagic.
	if _, err := apfile.OpenReader(path); err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
}

// TestEncodeKeyframeCadence checks scenario 2: 251 identical 16x16 frames
// at 25 fps yields exactly two keyframes (frame 0 and frame 250), every
// other frame a delta with an all-zero changed-block map byte.
func TestEncodeKeyframeCadence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.ap")
	e := newTestEncoder(t, path, 25)
	img := solidBitmap(t, 16, 16, 50, 60, 70)
	for i := 0; i < 251; i++ {
		if err := e.PutImage(img); err != nil {
			t.Fatalf("PutImage(%d): %v", i, err)
		}
	}
	if err := e.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r, err := apfile.OpenReader(path)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer r.Close()
	if r.Header.FrameCount != 251 {
		t.Errorf("FrameCount = %d, want 251", r.Header.FrameCount)
	}
	if r.Header.KeyframeCount != 2 {
		t.Errorf("KeyframeCount = %d, want 2", r.Header.KeyframeCount)
	}

	for i := 0; i < 251; i++ {
		rec, err := r.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame(%d): %v", i, err)
		}
		wantKeyframe := i == 0 || i == 250
		if rec.Keyframe != wantKeyframe {
			t.Errorf("frame %d keyframe = %v, want %v", i, rec.Keyframe, wantKeyframe)
		}
		if !rec.Keyframe {
			// Payload: 768-byte palette then a single all-zero
			// changed-block-map byte (no macroblocks were changed).
			if len(rec.Payload) != 768+1 {
				t.Fatalf("frame %d delta payload length = %d, want %d", i, len(rec.Payload), 768+1)
			}
			if rec.Payload[768] != 0x00 {
				t.Errorf("frame %d changed-block byte = %#x, want 0x00", i, rec.Payload[768])
			}
		}
	}
}

// TestEncodeChangeThresholdScenario checks scenario 3: a single pixel
// perturbation below T^2 leaves the delta frame's changed-block map all
// zero; at or above T^2 it sets exactly the one affected block's bit.
func TestEncodeChangeThresholdScenario(t *testing.T) {
	for _, test := range []struct {
		name    string
		delta   byte
		wantBit bool
	}{
		{"below threshold", 4, false}, // k = 3*16 = 48 < 64 = T^2
		{"at threshold", 6, true},     // k = 3*36 = 108 >= 64 = T^2
	} {
		t.Run(test.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out.ap")
			e := newTestEncoder(t, path, 25)
			first := solidBitmap(t, 16, 16, 100, 100, 100)
			if err := e.PutImage(first); err != nil {
				t.Fatalf("PutImage(0): %v", err)
			}
			second, err := bitmap.New(16, 16, 3)
			if err != nil {
				t.Fatal(err)
			}
			if err := first.CopyInto(second); err != nil {
				t.Fatal(err)
			}
			second.At(0, 0)[0] += test.delta
			second.At(0, 0)[1] += test.delta
			second.At(0, 0)[2] += test.delta
			if err := e.PutImage(second); err != nil {
				t.Fatalf("PutImage(1): %v", err)
			}
			if err := e.Close(); err != nil {
				t.Fatalf("Close: %v", err)
			}

			r, err := apfile.OpenReader(path)
			if err != nil {
				t.Fatalf("OpenReader: %v", err)
			}
			defer r.Close()
			if _, err := r.ReadFrame(); err != nil { // Keyframe.
				t.Fatalf("ReadFrame(0): %v", err)
			}
			rec, err := r.ReadFrame()
			if err != nil {
				t.Fatalf("ReadFrame(1): %v", err)
			}
			bitmapByte := rec.Payload[768]
			gotBit := bitmapByte&0x80 != 0
			if gotBit != test.wantBit {
				t.Errorf("changed-block byte = %#x, want bit7=%v", bitmapByte, test.wantBit)
			}
		})
	}
}

// TestEncodeNaturalKeyframe checks scenario 5's trigger condition: at a
// low enough frame rate, a frame whose change ratio exceeds 80% becomes a
// keyframe once at least MIN_KEYFRAME_INTERVAL has elapsed since the last
// one.
func TestEncodeNaturalKeyframe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.ap")
	e := newTestEncoder(t, path, 1) // 1 fps: frame i is i seconds in.
	black := solidBitmap(t, 32, 32, 0, 0, 0)
	white := solidBitmap(t, 32, 32, 255, 255, 255)

	if err := e.PutImage(black); err != nil { // Frame 0: forced keyframe.
		t.Fatalf("PutImage(0): %v", err)
	}
	if err := e.PutImage(black); err != nil { // Frame 1: no change, delta.
		t.Fatalf("PutImage(1): %v", err)
	}
	if err := e.PutImage(white); err != nil { // Frame 2: Δt=2s, ratio=1.0 >= 0.80: natural keyframe.
		t.Fatalf("PutImage(2): %v", err)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r, err := apfile.OpenReader(path)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer r.Close()
	if r.Header.KeyframeCount != 2 {
		t.Errorf("KeyframeCount = %d, want 2", r.Header.KeyframeCount)
	}
	for i, want := range []bool{true, false, true} {
		rec, err := r.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame(%d): %v", i, err)
		}
		if rec.Keyframe != want {
			t.Errorf("frame %d keyframe = %v, want %v", i, rec.Keyframe, want)
		}
	}
}

func TestEncoderRejectsInvalidOptions(t *testing.T) {
	e := NewEncoder(nil)
	if err := e.SetOptions(0, 7); err == nil {
		t.Error("SetOptions(fps=0) should fail")
	}
	if err := e.SetOptions(-1, 7); err == nil {
		t.Error("SetOptions(fps<0) should fail")
	}
}

func TestEncoderClampsMedianCutDepth(t *testing.T) {
	e := NewEncoder((*logging.TestLogger)(t))
	if err := e.SetOptions(25, 20); err != nil {
		t.Fatalf("SetOptions: %v", err)
	}
	if e.depth != 8 {
		t.Errorf("depth = %d, want clamped to 8", e.depth)
	}
	if err := e.SetOptions(25, 1); err != nil {
		t.Fatalf("SetOptions: %v", err)
	}
	if e.depth != 6 {
		t.Errorf("depth = %d, want clamped to 6", e.depth)
	}
}

func TestEncoderRejectsSecondSetFile(t *testing.T) {
	e := NewEncoder(nil)
	if err := e.SetFile("a.ap"); err != nil {
		t.Fatal(err)
	}
	if err := e.SetFile("b.ap"); err == nil {
		t.Error("second SetFile should fail")
	}
}

func TestEncoderRejectsMismatchedDimensions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.ap")
	e := newTestEncoder(t, path, 25)
	if err := e.PutImage(solidBitmap(t, 16, 16, 1, 2, 3)); err != nil {
		t.Fatalf("PutImage(0): %v", err)
	}
	if err := e.PutImage(solidBitmap(t, 32, 16, 1, 2, 3)); err == nil {
		t.Error("PutImage with mismatched dimensions should fail")
	}
}
