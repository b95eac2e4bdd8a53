/*
NAME
  errors.go

DESCRIPTION
  errors.go defines the sentinel error values for the four error kinds of
  spec §7 that are specific to this codec (InvalidContainer,
  UnsupportedOperation, InvalidInput, InternalInvariant). Underlying I/O
  failures are not given a local sentinel; following the teacher's
  convention (device/file.AVFile, codec/jpeg.Context), they are wrapped
  with %w and surfaced so callers can use errors.Is against the
  underlying error.

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
	"github.com/pkg/errors"

	"github.com/ausocean/apcodec/container/apfile"
)

// Sentinel errors. Use errors.Is to test for one of these from a wrapped
// error returned by this package or container/apfile.
var (
	// ErrInvalidContainer covers a bad magic, unsupported version,
	// truncated header or payload, or an unexpected frame count. It is
	// the same value container/apfile raises, so callers can use
	// errors.Is regardless of which package produced it.
	ErrInvalidContainer = apfile.ErrInvalidContainer

	// ErrUnsupportedOperation covers a decoder Seek call with a non-zero
	// argument.
	ErrUnsupportedOperation = errors.New("ap: unsupported operation")

	// ErrInvalidInput covers a non-24-bit input bitmap, a dimension
	// mismatch against a previously bound frame size, fps <= 0, or image
	// dimensions outside [1,32767].
	ErrInvalidInput = errors.New("ap: invalid input")

	// ErrInternalInvariant covers an RLE stream that overruns 256
	// pixels, or a payload length that disagrees with bytes actually
	// consumed; both are treated as container corruption rather than a
	// programming error in the caller.
	ErrInternalInvariant = errors.New("ap: internal invariant violated")
)
