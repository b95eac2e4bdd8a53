/*
NAME
  bmp.go

DESCRIPTION
  bmp.go implements a minimal 24-bit uncompressed BMP reader/writer, the
  BMP I/O collaborator of spec §6. It exists only so that cmd/ap is a
  runnable end-to-end tool; a general-purpose BMP codec is out of scope.

AUTHOR
  AusOcean

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package main

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/ausocean/apcodec/bitmap"
)

const (
	bmpFileHeaderSize = 14
	bmpInfoHeaderSize = 40
	bmpPixelsPerMeter  = 2835 // 2835 px/m ≈ 72 DPI rounding used across the format's history; BMP stores resolution, not DPI directly.
)

// readBMP reads a 24-bit uncompressed BM file from path into a freshly
// allocated bitmap.Bitmap with Depth 3, pixel order converted from the
// file's BGR to the in-memory RGB convention.
func readBMP(path string) (*bitmap.Bitmap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open bmp: %w", err)
	}
	defer f.Close()

	var fileHeader [bmpFileHeaderSize]byte
	if _, err := io.ReadFull(f, fileHeader[:]); err != nil {
		return nil, fmt.Errorf("could not read bmp file header: %w", err)
	}
	if fileHeader[0] != 'B' || fileHeader[1] != 'M' {
		return nil, fmt.Errorf("bmp: bad magic")
	}
	pixelOffset := binary.LittleEndian.Uint32(fileHeader[10:14])

	var infoHeader [bmpInfoHeaderSize]byte
	if _, err := io.ReadFull(f, infoHeader[:]); err != nil {
		return nil, fmt.Errorf("could not read bmp info header: %w", err)
	}
	width := int(int32(binary.LittleEndian.Uint32(infoHeader[4:8])))
	height := int(int32(binary.LittleEndian.Uint32(infoHeader[8:12])))
	bitsPerPixel := binary.LittleEndian.Uint16(infoHeader[14:16])
	compression := binary.LittleEndian.Uint32(infoHeader[16:20])
	if bitsPerPixel != 24 || compression != 0 {
		return nil, fmt.Errorf("bmp: only uncompressed 24-bit bitmaps are supported")
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("bmp: invalid dimensions %dx%d", width, height)
	}

	if _, err := f.Seek(int64(pixelOffset), io.SeekStart); err != nil {
		return nil, fmt.Errorf("could not seek to bmp pixel data: %w", err)
	}

	img, err := bitmap.New(width, height, 3)
	if err != nil {
		return nil, fmt.Errorf("could not allocate bitmap: %w", err)
	}
	rowStride := (width*3 + 3) &^ 3
	row := make([]byte, rowStride)
	for y := 0; y < height; y++ {
		if _, err := io.ReadFull(f, row); err != nil {
			return nil, fmt.Errorf("could not read bmp scanline: %w", err)
		}
		// BMP scanlines are bottom-up; row 0 of the file is the bitmap's
		// last row.
		dstY := height - 1 - y
		dst := img.Pix[dstY*width*3 : (dstY+1)*width*3]
		for x := 0; x < width; x++ {
			b, g, r := row[x*3], row[x*3+1], row[x*3+2]
			dst[x*3], dst[x*3+1], dst[x*3+2] = r, g, b
		}
	}
	return img, nil
}

// writeBMP writes img as a 24-bit uncompressed BM file at path.
func writeBMP(path string, img *bitmap.Bitmap) error {
	if img.Depth != 3 {
		return fmt.Errorf("bmp: only 3-channel images are supported")
	}
	width, height := img.Width, img.Height
	rowStride := (width*3 + 3) &^ 3
	pixelDataSize := rowStride * height
	fileSize := bmpFileHeaderSize + bmpInfoHeaderSize + pixelDataSize

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create bmp: %w", err)
	}
	defer f.Close()

	var fileHeader [bmpFileHeaderSize]byte
	fileHeader[0], fileHeader[1] = 'B', 'M'
	binary.LittleEndian.PutUint32(fileHeader[2:6], uint32(fileSize))
	binary.LittleEndian.PutUint32(fileHeader[10:14], bmpFileHeaderSize+bmpInfoHeaderSize)
	if _, err := f.Write(fileHeader[:]); err != nil {
		return fmt.Errorf("could not write bmp file header: %w", err)
	}

	var infoHeader [bmpInfoHeaderSize]byte
	binary.LittleEndian.PutUint32(infoHeader[0:4], bmpInfoHeaderSize)
	binary.LittleEndian.PutUint32(infoHeader[4:8], uint32(width))
	binary.LittleEndian.PutUint32(infoHeader[8:12], uint32(height))
	binary.LittleEndian.PutUint16(infoHeader[12:14], 1)  // Colour planes.
	binary.LittleEndian.PutUint16(infoHeader[14:16], 24) // Bits per pixel.
	binary.LittleEndian.PutUint32(infoHeader[16:20], 0)  // BI_RGB, no compression.
	binary.LittleEndian.PutUint32(infoHeader[20:24], uint32(pixelDataSize))
	binary.LittleEndian.PutUint32(infoHeader[24:28], bmpPixelsPerMeter)
	binary.LittleEndian.PutUint32(infoHeader[28:32], bmpPixelsPerMeter)
	if _, err := f.Write(infoHeader[:]); err != nil {
		return fmt.Errorf("could not write bmp info header: %w", err)
	}

	row := make([]byte, rowStride)
	for y := height - 1; y >= 0; y-- {
		src := img.Pix[y*width*3 : (y+1)*width*3]
		for x := 0; x < width; x++ {
			r, g, b := src[x*3], src[x*3+1], src[x*3+2]
			row[x*3], row[x*3+1], row[x*3+2] = b, g, r
		}
		for i := width * 3; i < rowStride; i++ {
			row[i] = 0
		}
		if _, err := f.Write(row); err != nil {
			return fmt.Errorf("could not write bmp scanline: %w", err)
		}
	}
	return nil
}
