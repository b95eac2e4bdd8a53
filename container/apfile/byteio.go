/*
NAME
  byteio.go

DESCRIPTION
  byteio.go provides the little-endian field accessors used to read and
  write the AP container header and frame records.

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
	"encoding/binary"
	"math"
)

func putUint16(b []byte, v uint16) { binary.LittleEndian.PutUint16(b, v) }
func putUint32(b []byte, v uint32) { binary.LittleEndian.PutUint32(b, v) }

func putInt32(b []byte, v int32) {
	binary.LittleEndian.PutUint32(b, uint32(v))
}

func putFloat32(b []byte, v float32) {
	binary.LittleEndian.PutUint32(b, math.Float32bits(v))
}

func uint16At(b []byte) uint16 { return binary.LittleEndian.Uint16(b) }
func uint32At(b []byte) uint32 { return binary.LittleEndian.Uint32(b) }

func int32At(b []byte) int32 { return int32(binary.LittleEndian.Uint32(b)) }

func float32At(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}
