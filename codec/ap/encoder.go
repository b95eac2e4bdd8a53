/*
NAME
  encoder.go

DESCRIPTION
  encoder.go implements Encoder, the AP frame encoder (spec §4.4): keyframe
  scheduling, frame palette construction, per-macroblock sub-palette and
  RLE coding, and container serialization via container/apfile.

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
	"bytes"
	"fmt"
	"sort"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/apcodec/bitmap"
	"github.com/ausocean/apcodec/codec/ap/quant"
	"github.com/ausocean/apcodec/container/apfile"
)

// Keyframe scheduling constants (spec §4.4 step 2).
const (
	maxKeyframeIntervalSecs = 10.0
	minKeyframeIntervalSecs = 2.0
	minChangeForKeyframe    = 0.80

	defaultMedianCutDepth = 7
)

// Encoder encodes a sequence of equally-sized 24-bit RGB bitmaps into an
// AP container. The zero value is not usable; construct with NewEncoder.
// A session is SetFile, then SetOptions, then one or more PutImage calls,
// then Close.
type Encoder struct {
	log logging.Logger

	path string
	w    *apfile.Writer

	fps       float32
	depth     int
	threshold int

	initialized   bool
	width, height int
	geom          geometry

	frameCount        int
	haveKeyframe      bool
	lastKeyframeIndex int

	ref     *bitmap.Bitmap // Rolling reconstructed reference, padded size.
	padded  *bitmap.Bitmap // Reused scratch holding the padded current image.
	payload bytes.Buffer   // Reused per-frame payload buffer.
}

// NewEncoder returns an Encoder that logs to log when SetOptions clamps
// the median-cut depth; malformed input is reported through the returned
// errors. log may be nil.
func NewEncoder(log logging.Logger) *Encoder {
	return &Encoder{log: log, depth: defaultMedianCutDepth, threshold: DefaultChangeThreshold}
}

func (e *Encoder) logf(format string, args ...interface{}) {
	if e.log == nil {
		return
	}
	e.log.Info(fmt.Sprintf(format, args...))
}

// SetFile binds the output path. It fails if a path has already been set
// for this session.
func (e *Encoder) SetFile(path string) error {
	if e.path != "" {
		return fmt.Errorf("%w: output path already set to %q", ErrInvalidInput, e.path)
	}
	e.path = path
	return nil
}

// SetOptions sets the container frame rate and the dense-histogram
// quantizer depth used to build each frame's palette. medianCutDepth is
// clamped to [6,8], logging when clamping occurs; fps <= 0 is rejected.
func (e *Encoder) SetOptions(fps float32, medianCutDepth int) error {
	if fps <= 0 {
		return fmt.Errorf("%w: fps must be > 0, got %v", ErrInvalidInput, fps)
	}
	clamped := medianCutDepth
	switch {
	case clamped < 6:
		clamped = 6
	case clamped > 8:
		clamped = 8
	}
	if clamped != medianCutDepth {
		e.logf("medianCutDepth %d out of range, clamped to %d", medianCutDepth, clamped)
	}
	e.fps = fps
	e.depth = clamped
	return nil
}

// PutImage accepts the next source frame. The first call fixes the
// session's width, height and output file; later calls must match it.
func (e *Encoder) PutImage(img *bitmap.Bitmap) error {
	if img.Depth != 3 {
		return fmt.Errorf("%w: bitmap depth %d, want 3", ErrInvalidInput, img.Depth)
	}
	if !e.initialized {
		if err := e.initialize(img); err != nil {
			return err
		}
	} else if img.Width != e.width || img.Height != e.height {
		return fmt.Errorf("%w: image %dx%d does not match bound size %dx%d", ErrInvalidInput, img.Width, img.Height, e.width, e.height)
	}

	if err := img.PadInto(e.padded); err != nil {
		return fmt.Errorf("ap: could not pad image: %w", err)
	}

	changeMap, keyframe := e.decideFrame()
	if keyframe {
		for i := range changeMap {
			changeMap[i] = 1
		}
	}

	e.payload.Reset()
	palette := quant.ArrayPalette(e.padded.Pix, framePaletteSize, e.depth)
	for _, c := range palette {
		e.payload.WriteByte(c.R)
		e.payload.WriteByte(c.G)
		e.payload.WriteByte(c.B)
	}
	if !keyframe {
		e.payload.Write(packChangeMap(changeMap))
	}

	for my := 0; my < e.geom.mbH; my++ {
		for mx := 0; mx < e.geom.mbW; mx++ {
			blocks := e.geom.macroblockBlocks(mx, my)
			changed := false
			for _, bi := range blocks {
				if changeMap[bi] != 0 {
					changed = true
					break
				}
			}
			if !changed {
				continue
			}
			e.encodeMacroblock(mx, my, blocks, changeMap, palette)
		}
	}

	if err := e.w.WriteFrame(keyframe, e.payload.Bytes()); err != nil {
		return err
	}

	e.paintChanges(changeMap)
	if keyframe {
		e.haveKeyframe = true
		e.lastKeyframeIndex = e.frameCount
	}
	e.frameCount++
	return nil
}

// initialize fixes width/height/geometry from the first image, allocates
// the session's reused buffers, and creates the output file.
func (e *Encoder) initialize(img *bitmap.Bitmap) error {
	if e.path == "" {
		return fmt.Errorf("%w: output path not set, call SetFile first", ErrInvalidInput)
	}
	if e.fps <= 0 {
		return fmt.Errorf("%w: fps not set, call SetOptions first", ErrInvalidInput)
	}

	e.width, e.height = img.Width, img.Height
	e.geom = newGeometry(img.Width, img.Height)

	ref, err := bitmap.New(e.geom.paddedWidth, e.geom.paddedHeight, 3)
	if err != nil {
		return fmt.Errorf("ap: could not allocate reference frame: %w", err)
	}
	padded, err := bitmap.New(e.geom.paddedWidth, e.geom.paddedHeight, 3)
	if err != nil {
		return fmt.Errorf("ap: could not allocate padding scratch: %w", err)
	}
	e.ref, e.padded = ref, padded

	w, err := apfile.CreateWriter(e.path, e.fps, e.width, e.height)
	if err != nil {
		return err
	}
	e.w = w
	e.initialized = true
	return nil
}

// decideFrame runs the change detector against the reference frame (when
// one exists) and applies the keyframe policy of spec §4.4 step 2,
// returning the block-changed map to use (caller sets it all-ones if
// keyframe is true) and whether this frame is a keyframe.
func (e *Encoder) decideFrame() (changeMap []byte, keyframe bool) {
	numBlocks := e.geom.numBlocks()
	var changed int
	if e.haveKeyframe {
		changeMap, changed = detectChanges(e.padded.Pix, e.ref.Pix, e.geom, e.threshold)
	} else {
		changeMap = make([]byte, numBlocks)
	}

	deltaT := float64(e.frameCount-e.lastKeyframeIndex) / float64(e.fps)
	ratio := float64(changed) / float64(numBlocks)

	keyframe = !e.haveKeyframe ||
		deltaT >= maxKeyframeIntervalSecs ||
		(deltaT >= minKeyframeIntervalSecs && ratio >= minChangeForKeyframe)
	return changeMap, keyframe
}

// packChangeMap packs a byte-per-block changed map into the MSB-first bit
// packing of spec §6 "Changed-block bitmap packing".
func packChangeMap(changeMap []byte) []byte {
	out := make([]byte, (len(changeMap)+7)/8)
	for i, v := range changeMap {
		if v != 0 {
			out[i/8] |= 1 << uint(7-i%8)
		}
	}
	return out
}

// encodeMacroblock builds and appends the sub-palette and RLE payload for
// the macroblock at grid position (mx,my) to e.payload (spec §4.4 step 5).
func (e *Encoder) encodeMacroblock(mx, my int, blocks [4]int, changeMap []byte, palette []quant.RGB) {
	stride := e.geom.paddedWidth * 3
	x0, y0 := mx*macroblockSize, my*macroblockSize

	// (a,b) Frame-palette index per pixel, nearest-neighbour.
	var mbIdx [mbPixels]byte
	pos := 0
	for y := 0; y < macroblockSize; y++ {
		row := (y0+y)*stride + x0*3
		for x := 0; x < macroblockSize; x++ {
			i := row + x*3
			mbIdx[pos] = nearestIndex(palette, e.padded.Pix[i], e.padded.Pix[i+1], e.padded.Pix[i+2])
			pos++
		}
	}

	// (c) Sub-palette from the changed blocks' pixels only.
	counts := make(map[byte]int, subPaletteSize)
	order := make([]byte, 0, subPaletteSize)
	for bi, blockIdx := range blocks {
		if changeMap[blockIdx] == 0 {
			continue
		}
		bx, by := bi%2, bi/2
		for yy := 0; yy < blockSize; yy++ {
			for xx := 0; xx < blockSize; xx++ {
				idx := mbIdx[(by*blockSize+yy)*macroblockSize+bx*blockSize+xx]
				if _, ok := counts[idx]; !ok {
					order = append(order, idx)
				}
				counts[idx]++
			}
		}
	}

	var subPalette [subPaletteSize]byte
	if len(order) <= subPaletteSize {
		sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
		copy(subPalette[:], order)
	} else {
		acc := quant.NewListAccumulator()
		for idx, cnt := range counts {
			c := palette[idx]
			acc.AddN(c, int64(cnt))
		}
		for i, c := range quant.ListPalette(acc, subPaletteSize) {
			subPalette[i] = nearestIndex(palette, c.R, c.G, c.B)
		}
	}

	var subRGB [subPaletteSize]quant.RGB
	for i, idx := range subPalette {
		subRGB[i] = palette[idx]
	}

	// (d) Rewrite to sub-palette indices, nearest-neighbour.
	var outIdx [mbPixels]byte
	for i, fpIdx := range mbIdx {
		c := palette[fpIdx]
		outIdx[i] = nearestIndex(subRGB[:], c.R, c.G, c.B)
	}

	// (e) Zero unchanged blocks' indices.
	for bi, blockIdx := range blocks {
		if changeMap[blockIdx] != 0 {
			continue
		}
		bx, by := bi%2, bi/2
		for yy := 0; yy < blockSize; yy++ {
			for xx := 0; xx < blockSize; xx++ {
				outIdx[(by*blockSize+yy)*macroblockSize+bx*blockSize+xx] = 0
			}
		}
	}

	// (f) Emit.
	e.payload.Write(subPalette[:])
	e.payload.Write(encodeBlock(outIdx))
}

// nearestIndex returns the index into cands whose RGB is nearest (squared
// Euclidean distance) to (r,g,b), the first minimum winning ties.
func nearestIndex(cands []quant.RGB, r, g, b byte) byte {
	best := 0
	bestD := int32(-1)
	for i, c := range cands {
		dr := int32(r) - int32(c.R)
		dg := int32(g) - int32(c.G)
		db := int32(b) - int32(c.B)
		d := dr*dr + dg*dg + db*db
		if bestD < 0 || d < bestD {
			bestD, best = d, i
		}
	}
	return byte(best)
}

// paintChanges copies the changed blocks of e.padded into e.ref, keeping
// the encoder's reference frame in lock-step with what a decoder would
// reconstruct (spec §3 invariant).
func (e *Encoder) paintChanges(changeMap []byte) {
	stride := e.geom.paddedWidth * 3
	for by := 0; by < e.geom.blocksH; by++ {
		for bx := 0; bx < e.geom.blocksW; bx++ {
			if changeMap[e.geom.blockIndex(bx, by)] == 0 {
				continue
			}
			x0, y0 := bx*blockSize, by*blockSize
			for y := 0; y < blockSize; y++ {
				row := (y0+y)*stride + x0*3
				copy(e.ref.Pix[row:row+blockSize*3], e.padded.Pix[row:row+blockSize*3])
			}
		}
	}
}

// Close finalises the output file, back-patching the keyframe index.
func (e *Encoder) Close() error {
	if e.w == nil {
		return nil
	}
	err := e.w.Close()
	e.w = nil
	return err
}
