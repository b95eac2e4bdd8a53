/*
NAME
  writer.go

DESCRIPTION
  writer.go implements Writer, which writes an AP container: the fixed
  header, one record per frame, and, on Close, the back-patched frame
  count, keyframe count, and keyframe offset chain (spec §4.4, §6).

AUTHOR
  AusOcean

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package apfile

import (
	"fmt"
	"os"
)

// Writer writes frames to a new AP container file. The file is created
// (truncating any existing file at path) by CreateWriter and finalised by
// Close, which back-patches the frame count, keyframe count, and the
// keyframe offset chain.
type Writer struct {
	f   *os.File
	pos int64

	frameCount      uint32
	keyframeOffsets []int64 // Absolute file offset of each keyframe record, in order.
}

// CreateWriter creates (or truncates) the file at path and writes a
// placeholder header for fps, width and height. frameCount and
// keyframeCount are written as zero and patched in on Close.
func CreateWriter(path string, fps float32, width, height int) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("apfile: could not create %s: %w", path, err)
	}
	w := &Writer{f: f}
	if err := w.writeHeader(fps, width, height); err != nil {
		f.Close()
		return nil, err
	}
	return w, nil
}

func (w *Writer) writeHeader(fps float32, width, height int) error {
	var hdr [HeaderSize]byte
	copy(hdr[offsetMagic:], Magic[:])
	hdr[offsetVersion] = Version
	putFloat32(hdr[offsetFPS:], fps)
	putUint16(hdr[offsetWidth:], uint16(width))
	putUint16(hdr[offsetHeight:], uint16(height))

	n, err := w.f.Write(hdr[:])
	w.pos += int64(n)
	if err != nil {
		return fmt.Errorf("apfile: could not write header: %w", err)
	}
	return nil
}

// WriteFrame appends one frame record holding payload, recording it as a
// keyframe when keyframe is true.
func (w *Writer) WriteFrame(keyframe bool, payload []byte) error {
	recordOffset := w.pos

	hdrLen := commonHeaderSize
	if keyframe {
		hdrLen += keyframeExtraSize
	}
	hdr := make([]byte, hdrLen)

	frameType := frameTypeDelta
	if keyframe {
		frameType = frameTypeKeyframe
	}
	hdr[0] = frameType
	putUint32(hdr[frameTypeSize:], uint32(len(payload)))

	if keyframe {
		ordinal := uint32(len(w.keyframeOffsets))
		putUint32(hdr[commonHeaderSize:], ordinal)
		// prev/next offsets are placeholders, back-patched in Close.
		putInt32(hdr[keyframeOffsetFieldOffset:], 0)
		putInt32(hdr[keyframeOffsetFieldOffset+4:], 0)
		w.keyframeOffsets = append(w.keyframeOffsets, recordOffset)
	}

	n, err := w.f.Write(hdr)
	w.pos += int64(n)
	if err != nil {
		return fmt.Errorf("apfile: could not write frame record header: %w", err)
	}

	n, err = w.f.Write(payload)
	w.pos += int64(n)
	if err != nil {
		return fmt.Errorf("apfile: could not write frame payload: %w", err)
	}

	w.frameCount++
	return nil
}

// Close back-patches the header's frame count and keyframe count, and
// each keyframe record's previous/next byte-delta offsets, then closes
// the underlying file.
func (w *Writer) Close() error {
	var fc [4]byte
	putUint32(fc[:], w.frameCount)
	if _, err := w.f.WriteAt(fc[:], offsetFrameCount); err != nil {
		return fmt.Errorf("apfile: could not patch frame count: %w", err)
	}

	var kc [4]byte
	putUint32(kc[:], uint32(len(w.keyframeOffsets)))
	if _, err := w.f.WriteAt(kc[:], offsetKeyframeCount); err != nil {
		return fmt.Errorf("apfile: could not patch keyframe count: %w", err)
	}

	for i, off := range w.keyframeOffsets {
		var prevDelta, nextDelta int32
		if i > 0 {
			prevDelta = int32(w.keyframeOffsets[i-1] - off)
		}
		if i+1 < len(w.keyframeOffsets) {
			nextDelta = int32(w.keyframeOffsets[i+1] - off)
		}
		var buf [8]byte
		putInt32(buf[0:4], prevDelta)
		putInt32(buf[4:8], nextDelta)
		if _, err := w.f.WriteAt(buf[:], off+keyframeOffsetFieldOffset); err != nil {
			return fmt.Errorf("apfile: could not patch keyframe offsets: %w", err)
		}
	}

	return w.f.Close()
}
