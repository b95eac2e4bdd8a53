/*
NAME
  format.go

DESCRIPTION
  format.go defines the on-disk layout of the AP container (spec §6):
  the fixed file header, frame record layout, and the sentinel errors
  raised when a file does not conform to it.

AUTHOR
  AusOcean

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package apfile implements the AP container file format: the fixed
// header, per-frame records, and the keyframe index that is back-patched
// on Writer.Close.
package apfile

import "github.com/pkg/errors"

// Magic is the 4-byte file signature ("ANIP").
var Magic = [4]byte{0x41, 0x4E, 0x49, 0x50}

// Version is the only container version this package writes or accepts.
const Version = 1

// Header byte offsets and sizes (spec §6 "File header").
const (
	HeaderSize = 21

	offsetMagic         = 0
	offsetVersion        = 4
	offsetFrameCount    = 5
	offsetFPS           = 9
	offsetKeyframeCount = 13
	offsetWidth         = 17
	offsetHeight        = 19
)

// Frame record layout (spec §6 "Frame record").
const (
	frameTypeSize     = 1
	payloadLengthSize = 4
	commonHeaderSize  = frameTypeSize + payloadLengthSize // 5

	ordinalSize    = 4
	prevOffsetSize = 4
	nextOffsetSize = 4
	keyframeExtraSize = ordinalSize + prevOffsetSize + nextOffsetSize // 12

	// keyframeOffsetFieldOffset is the offset, from the start of a
	// keyframe record, of the prev-offset field (the next-offset field
	// immediately follows it). See spec §6's frame record table: it
	// comes after the common header and the keyframe ordinal.
	keyframeOffsetFieldOffset = commonHeaderSize + ordinalSize
)

const (
	frameTypeDelta    byte = 0
	frameTypeKeyframe byte = 1
)

// Sentinel errors for container-level failures (spec §7
// "InvalidContainer").
var (
	// ErrInvalidContainer covers a bad magic, unsupported version, or a
	// truncated header, frame record, or payload.
	ErrInvalidContainer = errors.New("apfile: invalid container")
)
