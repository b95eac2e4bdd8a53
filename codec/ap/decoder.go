/*
NAME
  decoder.go

DESCRIPTION
  decoder.go implements Decoder, the AP frame decoder (spec §4.5): parses
  frame records written by Encoder, expands each changed macroblock's
  sub-palette and RLE payload, and reconstructs the rolling reference
  frame by painting only the blocks a frame marks changed.

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
	"fmt"
	"io"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/apcodec/bitmap"
	"github.com/ausocean/apcodec/codec/ap/quant"
	"github.com/ausocean/apcodec/container/apfile"
)

// Decoder decodes an AP container written by Encoder. The zero value is
// not usable; construct with NewDecoder, then Open before use.
type Decoder struct {
	log logging.Logger

	r             *apfile.Reader
	geom          geometry
	width, height int

	ref        *bitmap.Bitmap // Rolling reconstructed buffer, padded size.
	frameIndex int
}

// NewDecoder returns a Decoder holding log. log may be nil. Malformed
// input is reported through the returned errors; the Decoder does not
// write to log.
func NewDecoder(log logging.Logger) *Decoder {
	return &Decoder{log: log}
}

// Open opens the container at path and allocates the reference buffer
// sized from its header.
func (d *Decoder) Open(path string) error {
	r, err := apfile.OpenReader(path)
	if err != nil {
		return err
	}
	d.r = r
	d.width, d.height = int(r.Header.Width), int(r.Header.Height)
	d.geom = newGeometry(d.width, d.height)

	ref, err := bitmap.New(d.geom.paddedWidth, d.geom.paddedHeight, 3)
	if err != nil {
		return fmt.Errorf("ap: could not allocate reference frame: %w", err)
	}
	d.ref = ref
	d.frameIndex = 0
	return nil
}

// BufferWidth and BufferHeight return the padded W',H' a caller must use
// to size buffers passed to GetFrame/GetFrameRGB. The logical frame size
// remains Width/Height.
func (d *Decoder) BufferWidth() int  { return d.geom.paddedWidth }
func (d *Decoder) BufferHeight() int { return d.geom.paddedHeight }

// Width and Height return the original, unpadded frame dimensions from
// the container header.
func (d *Decoder) Width() int  { return d.width }
func (d *Decoder) Height() int { return d.height }

// FrameCount and FPS return the corresponding container header fields.
func (d *Decoder) FrameCount() int { return int(d.r.Header.FrameCount) }
func (d *Decoder) FPS() float32    { return d.r.Header.FPS }

// GetFrame decodes the next frame and copies the reconstructed padded
// buffer into out, which must be BufferWidth() x BufferHeight() x 3.
func (d *Decoder) GetFrame(out *bitmap.Bitmap) error {
	if err := d.decodeNext(); err != nil {
		return err
	}
	return d.ref.CopyInto(out)
}

// GetFrameRGB decodes the next frame into out as packed 32-bit
// (R<<16)|(G<<8)|B integers, one per pixel of the padded buffer. out must
// have BufferWidth()*BufferHeight() entries.
func (d *Decoder) GetFrameRGB(out []uint32) error {
	if err := d.decodeNext(); err != nil {
		return err
	}
	n := d.geom.paddedWidth * d.geom.paddedHeight
	if len(out) != n {
		return fmt.Errorf("%w: output buffer has %d entries, want %d", ErrInvalidInput, len(out), n)
	}
	pix := d.ref.Pix
	for i := 0; i < n; i++ {
		r, g, b := pix[i*3], pix[i*3+1], pix[i*3+2]
		out[i] = uint32(r)<<16 | uint32(g)<<8 | uint32(b)
	}
	return nil
}

// Seek repositions to frame_index, which must be 0 (the only value this
// decoder supports); it rewinds the container and clears the reference
// frame to its initial (all-black) state.
func (d *Decoder) Seek(frameIndex int) error {
	if frameIndex != 0 {
		return fmt.Errorf("%w: seek to frame %d, only 0 is supported", ErrUnsupportedOperation, frameIndex)
	}
	if err := d.r.SeekStart(); err != nil {
		return err
	}
	for i := range d.ref.Pix {
		d.ref.Pix[i] = 0
	}
	d.frameIndex = 0
	return nil
}

// Close closes the underlying container file.
func (d *Decoder) Close() error {
	if d.r == nil {
		return nil
	}
	err := d.r.Close()
	d.r = nil
	return err
}

// decodeNext reads and applies the next frame record to d.ref.
func (d *Decoder) decodeNext() error {
	rec, err := d.r.ReadFrame()
	if err == io.EOF && d.frameIndex < d.FrameCount() {
		return fmt.Errorf("%w: stream ended after %d of %d frames", ErrInvalidContainer, d.frameIndex, d.FrameCount())
	}
	if err != nil {
		return err // io.EOF, or a wrapped ErrInvalidContainer.
	}

	payload := rec.Payload
	if len(payload) < framePaletteSize*3 {
		return fmt.Errorf("%w: frame payload too short for palette", ErrInvalidContainer)
	}
	palette := make([]quant.RGB, framePaletteSize)
	for i := range palette {
		palette[i] = quant.RGB{R: payload[i*3], G: payload[i*3+1], B: payload[i*3+2]}
	}
	payload = payload[framePaletteSize*3:]

	numBlocks := d.geom.numBlocks()
	changeMap := make([]byte, numBlocks)
	if rec.Keyframe {
		for i := range changeMap {
			changeMap[i] = 1
		}
	} else {
		packedLen := (numBlocks + 7) / 8
		if len(payload) < packedLen {
			return fmt.Errorf("%w: truncated changed-block bitmap", ErrInvalidContainer)
		}
		unpackChangeMap(payload[:packedLen], changeMap)
		payload = payload[packedLen:]
	}

	for my := 0; my < d.geom.mbH; my++ {
		for mx := 0; mx < d.geom.mbW; mx++ {
			blocks := d.geom.macroblockBlocks(mx, my)
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
			payload, err = d.decodeMacroblock(payload, mx, my, blocks, changeMap, palette)
			if err != nil {
				return err
			}
		}
	}
	if len(payload) != 0 {
		return fmt.Errorf("%w: %d payload bytes left after the last macroblock", ErrInternalInvariant, len(payload))
	}

	d.frameIndex++
	return nil
}

// unpackChangeMap unpacks the MSB-first bit packing of spec §6 into one
// byte per block in out.
func unpackChangeMap(packed []byte, out []byte) {
	for i := range out {
		byteIdx, bit := i/8, uint(7-i%8)
		if packed[byteIdx]&(1<<bit) != 0 {
			out[i] = 1
		}
	}
}

// decodeMacroblock reads the sub-palette and RLE block for the macroblock
// at (mx,my) from the front of payload, paints its changed blocks into
// d.ref, and returns the remaining, unconsumed payload.
func (d *Decoder) decodeMacroblock(payload []byte, mx, my int, blocks [4]int, changeMap []byte, palette []quant.RGB) ([]byte, error) {
	if len(payload) < subPaletteSize {
		return nil, fmt.Errorf("%w: truncated sub-palette", ErrInvalidContainer)
	}
	subPalette := payload[:subPaletteSize]
	payload = payload[subPaletteSize:]

	indices, consumed, err := decodeBlock(payload)
	if err != nil {
		return nil, err
	}
	payload = payload[consumed:]

	stride := d.geom.paddedWidth * 3
	x0, y0 := mx*macroblockSize, my*macroblockSize
	for bi, blockIdx := range blocks {
		if changeMap[blockIdx] == 0 {
			continue
		}
		bx, by := bi%2, bi/2
		for yy := 0; yy < blockSize; yy++ {
			row := (y0+by*blockSize+yy)*stride + (x0+bx*blockSize)*3
			for xx := 0; xx < blockSize; xx++ {
				subIdx := indices[(by*blockSize+yy)*macroblockSize+bx*blockSize+xx]
				c := palette[subPalette[subIdx]]
				i := row + xx*3
				d.ref.Pix[i], d.ref.Pix[i+1], d.ref.Pix[i+2] = c.R, c.G, c.B
			}
		}
	}
	return payload, nil
}
