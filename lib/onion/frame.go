package onion

import (
	"encoding/binary"
	"errors"
)

// Each onion layer frames its encrypted blob as
//
//	[4-byte little-endian size][blob]{json control}
//
// where the json control data tells the receiving hop what to do with the
// blob.

// EncodeFrame frames blob followed by control.
func EncodeFrame(blob, control []byte) []byte {
	out := make([]byte, 4+len(blob)+len(control))
	binary.LittleEndian.PutUint32(out, uint32(len(blob)))
	copy(out[4:], blob)
	copy(out[4+len(blob):], control)
	return out
}

// DecodeFrame splits a frame into its blob and control parts.
func DecodeFrame(data []byte) (blob, control []byte, err error) {
	if len(data) < 4 {
		return nil, nil, errors.New("frame too short")
	}
	n := binary.LittleEndian.Uint32(data)
	if uint64(n) > uint64(len(data)-4) {
		return nil, nil, errors.New("frame size exceeds data")
	}
	return data[4 : 4+n], data[4+n:], nil
}
