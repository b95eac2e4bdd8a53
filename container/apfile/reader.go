/*
NAME
  reader.go

DESCRIPTION
  reader.go implements Reader, which parses an AP container's fixed
  header and reads frame records from it sequentially (spec §6).

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
	"io"
	"os"
)

// Header holds the parsed fields of an AP container's fixed header.
type Header struct {
	FrameCount    uint32
	FPS           float32
	KeyframeCount uint32
	Width, Height uint16
}

// FrameRecord is one decoded frame record.
type FrameRecord struct {
	Keyframe bool
	Ordinal  uint32 // Valid only when Keyframe is true.
	Payload  []byte
}

// Reader reads frame records from an AP container file opened at path.
type Reader struct {
	f      *os.File
	Header Header
}

// OpenReader opens path and parses its header, returning ErrInvalidContainer
// if the magic or version do not match.
func OpenReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("apfile: could not open %s: %w", path, err)
	}
	r := &Reader{f: f}
	if err := r.readHeader(); err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

func (r *Reader) readHeader() error {
	var hdr [HeaderSize]byte
	if _, err := io.ReadFull(r.f, hdr[:]); err != nil {
		return fmt.Errorf("%w: could not read header: %v", ErrInvalidContainer, err)
	}
	if string(hdr[offsetMagic:offsetMagic+4]) != string(Magic[:]) {
		return fmt.Errorf("%w: bad magic", ErrInvalidContainer)
	}
	if hdr[offsetVersion] != Version {
		return fmt.Errorf("%w: unsupported version %d", ErrInvalidContainer, hdr[offsetVersion])
	}
	r.Header = Header{
		FrameCount:    uint32At(hdr[offsetFrameCount:]),
		FPS:           float32At(hdr[offsetFPS:]),
		KeyframeCount: uint32At(hdr[offsetKeyframeCount:]),
		Width:         uint16At(hdr[offsetWidth:]),
		Height:        uint16At(hdr[offsetHeight:]),
	}
	return nil
}

// SeekStart rewinds to the first frame record, the only rewind position
// Seek needs to support.
func (r *Reader) SeekStart() error {
	if _, err := r.f.Seek(HeaderSize, io.SeekStart); err != nil {
		return fmt.Errorf("apfile: could not seek to first frame: %w", err)
	}
	return nil
}

// ReadFrame reads and returns the next frame record, or io.EOF once the
// file is exhausted.
func (r *Reader) ReadFrame() (*FrameRecord, error) {
	var common [commonHeaderSize]byte
	if _, err := io.ReadFull(r.f, common[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: truncated frame record header: %v", ErrInvalidContainer, err)
	}
	keyframe := common[0] == frameTypeKeyframe
	payloadLen := uint32At(common[frameTypeSize:])

	rec := &FrameRecord{Keyframe: keyframe}
	if keyframe {
		var extra [keyframeExtraSize]byte
		if _, err := io.ReadFull(r.f, extra[:]); err != nil {
			return nil, fmt.Errorf("%w: truncated keyframe record header: %v", ErrInvalidContainer, err)
		}
		rec.Ordinal = uint32At(extra[:])
	}

	rec.Payload = make([]byte, payloadLen)
	if _, err := io.ReadFull(r.f, rec.Payload); err != nil {
		return nil, fmt.Errorf("%w: truncated frame payload: %v", ErrInvalidContainer, err)
	}
	return rec, nil
}

// Close closes the underlying file.
func (r *Reader) Close() error { return r.f.Close() }
