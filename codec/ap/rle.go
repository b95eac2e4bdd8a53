/*
NAME
  rle.go

DESCRIPTION
  rle.go implements the nibble-packed run-length pixel coder (spec §4.3):
  a 256-pixel, 4-bit-indexed macroblock buffer is encoded as a stream of
  literal and repeat runs, packed two nibbles per byte and prefixed with a
  one-byte packed length.

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

import "fmt"

// Run-length coder tuning constants (spec §4.3).
const (
	rleMinRepeat = 4   // Shortest run treated as a repeat rather than literal.
	rleMaxRun    = 128 // Longest run a single header can describe.
	mbPixels     = macroblockSize * macroblockSize
)

// encodeBlock encodes mbPixels 4-bit pixel indices into the length-prefixed
// nibble RLE wire format, returning the encoded bytes including the
// leading packed-length byte.
func encodeBlock(indices [mbPixels]byte) []byte {
	var nibbles []byte

	emitHeader := func(mode byte, length int) {
		header := mode<<7 | byte(length-1)
		nibbles = append(nibbles, header>>4, header&0xF)
	}
	flushLiteral := func(start, end int) {
		for s := start; s < end; {
			n := end - s
			if n > rleMaxRun {
				n = rleMaxRun
			}
			emitHeader(0, n)
			for k := 0; k < n; k++ {
				nibbles = append(nibbles, indices[s+k]&0xF)
			}
			s += n
		}
	}
	emitRepeat := func(c byte, length int) {
		for length > 0 {
			n := length
			if n > rleMaxRun {
				n = rleMaxRun
			}
			emitHeader(1, n)
			nibbles = append(nibbles, c&0xF)
			length -= n
		}
	}

	literalStart := 0
	i := 0
	for i < mbPixels {
		j := i
		for j < mbPixels && indices[j] == indices[i] {
			j++
		}
		run := j - i
		if run >= rleMinRepeat {
			flushLiteral(literalStart, i)
			emitRepeat(indices[i], run)
			i = j
			literalStart = i
		} else {
			i = j
		}
	}
	flushLiteral(literalStart, mbPixels)

	packed := packNibbles(nibbles)
	out := make([]byte, 1+len(packed))
	out[0] = byte(len(packed))
	copy(out[1:], packed)
	return out
}

// packNibbles packs a sequence of 4-bit values two-per-byte, high nibble
// first, padding with a single zero nibble if the count is odd.
func packNibbles(nibbles []byte) []byte {
	n := len(nibbles)
	if n%2 != 0 {
		nibbles = append(nibbles, 0)
		n++
	}
	out := make([]byte, n/2)
	for i := 0; i < n; i += 2 {
		out[i/2] = nibbles[i]<<4 | nibbles[i+1]
	}
	return out
}

// decodeBlock decodes a length-prefixed RLE block from the start of data,
// returning the mbPixels decoded pixel indices and the number of bytes of
// data consumed (1 + packed length). An overrun past mbPixels pixels is
// ErrInternalInvariant; a truncated length byte, payload, or nibble
// stream is ErrInvalidContainer.
func decodeBlock(data []byte) (out [mbPixels]byte, consumed int, err error) {
	if len(data) < 1 {
		return out, 0, fmt.Errorf("%w: truncated rle length byte", ErrInvalidContainer)
	}
	n := int(data[0])
	if len(data) < 1+n {
		return out, 0, fmt.Errorf("%w: truncated rle payload (want %d bytes, have %d)", ErrInvalidContainer, n, len(data)-1)
	}
	packed := data[1 : 1+n]
	totalNibbles := n * 2
	pos := 0
	readNibble := func() (byte, error) {
		if pos >= totalNibbles {
			return 0, fmt.Errorf("%w: rle stream exhausted before %d pixels", ErrInvalidContainer, mbPixels)
		}
		b := packed[pos/2]
		var v byte
		if pos%2 == 0 {
			v = b >> 4
		} else {
			v = b & 0xF
		}
		pos++
		return v, nil
	}

	produced := 0
	for produced < mbPixels {
		hi, err := readNibble()
		if err != nil {
			return out, 0, err
		}
		lo, err := readNibble()
		if err != nil {
			return out, 0, err
		}
		header := hi<<4 | lo
		mode := header >> 7
		length := int(header&0x7F) + 1

		if produced+length > mbPixels {
			return out, 0, fmt.Errorf("%w: rle run of length %d overruns %d pixels at offset %d", ErrInternalInvariant, length, mbPixels, produced)
		}

		if mode == 0 {
			for k := 0; k < length; k++ {
				v, err := readNibble()
				if err != nil {
					return out, 0, err
				}
				out[produced+k] = v
			}
		} else {
			c, err := readNibble()
			if err != nil {
				return out, 0, err
			}
			for k := 0; k < length; k++ {
				out[produced+k] = c
			}
		}
		produced += length
	}
	return out, 1 + n, nil
}
