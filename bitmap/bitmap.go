/*
NAME
  bitmap.go

DESCRIPTION
  bitmap.go provides the Bitmap type: a width x height x depth array of
  unsigned 8-bit samples in scanline-major, channel-interleaved order. It
  is the shared pixel container used by the AP codec's encoder and
  decoder.

AUTHOR
  AusOcean

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package bitmap provides a minimal in-memory RGB pixel buffer used by the
// AP codec and its collaborators.
package bitmap

import "fmt"

// MaxDim is the largest width or height a Bitmap may have.
const MaxDim = 32767

// Bitmap is a width x height x depth array of unsigned 8-bit samples,
// scanline-major, channels interleaved (R,G,B for Depth 3). Row 0 is the
// top row of the image.
type Bitmap struct {
	Width, Height int
	Depth         int
	Pix           []byte
}

// New allocates a zeroed Bitmap of the given dimensions and depth.
func New(width, height, depth int) (*Bitmap, error) {
	if err := validate(width, height); err != nil {
		return nil, err
	}
	if depth <= 0 {
		return nil, fmt.Errorf("bitmap: invalid depth %d", depth)
	}
	return &Bitmap{
		Width:  width,
		Height: height,
		Depth:  depth,
		Pix:    make([]byte, width*height*depth),
	}, nil
}

func validate(width, height int) error {
	if width < 1 || width > MaxDim || height < 1 || height > MaxDim {
		return fmt.Errorf("bitmap: dimensions %dx%d out of range [1,%d]", width, height, MaxDim)
	}
	return nil
}

// Stride returns the number of bytes in one scanline.
func (b *Bitmap) Stride() int { return b.Width * b.Depth }

// At returns the Depth-length slice of samples for pixel (x,y).
func (b *Bitmap) At(x, y int) []byte {
	i := y*b.Stride() + x*b.Depth
	return b.Pix[i : i+b.Depth]
}

// PadTo returns a new Bitmap of size (width,height) with the receiver's
// pixels copied into the top-left corner and any right/bottom margin
// zero-filled. If the receiver is already that size, it is returned
// unchanged. PadTo does not shrink: width and height must be >= the
// receiver's own dimensions.
func (b *Bitmap) PadTo(width, height int) (*Bitmap, error) {
	if width < b.Width || height < b.Height {
		return nil, fmt.Errorf("bitmap: cannot pad %dx%d down to %dx%d", b.Width, b.Height, width, height)
	}
	if width == b.Width && height == b.Height {
		return b, nil
	}
	out, err := New(width, height, b.Depth)
	if err != nil {
		return nil, err
	}
	stride := b.Stride()
	for y := 0; y < b.Height; y++ {
		copy(out.Pix[y*out.Stride():y*out.Stride()+stride], b.Pix[y*stride:(y+1)*stride])
	}
	return out, nil
}

// PadInto copies the receiver's pixels into the top-left corner of dst,
// zero-filling any right/bottom margin, without allocating. dst must be
// at least as large as the receiver in both dimensions and share its
// Depth. Unlike PadTo, PadInto never allocates, so callers that pad the
// same source size every call (e.g. a frame encoder's per-frame scratch
// buffer) can reuse dst across calls.
func (b *Bitmap) PadInto(dst *Bitmap) error {
	if dst.Width < b.Width || dst.Height < b.Height || dst.Depth != b.Depth {
		return fmt.Errorf("bitmap: dst %dx%d cannot hold %dx%d", dst.Width, dst.Height, b.Width, b.Height)
	}
	srcStride := b.Stride()
	dstStride := dst.Stride()
	for y := 0; y < dst.Height; y++ {
		dstRow := dst.Pix[y*dstStride : (y+1)*dstStride]
		if y < b.Height {
			copy(dstRow[:srcStride], b.Pix[y*srcStride:(y+1)*srcStride])
			for i := srcStride; i < dstStride; i++ {
				dstRow[i] = 0
			}
		} else {
			for i := range dstRow {
				dstRow[i] = 0
			}
		}
	}
	return nil
}

// CopyInto copies the receiver's pixels into dst, which must have
// identical Width, Height and Depth. The decoder uses it to copy its
// reference frame into a caller's output bitmap.
func (b *Bitmap) CopyInto(dst *Bitmap) error {
	if dst.Width != b.Width || dst.Height != b.Height || dst.Depth != b.Depth {
		return fmt.Errorf("bitmap: mismatched dimensions for CopyInto")
	}
	copy(dst.Pix, b.Pix)
	return nil
}
