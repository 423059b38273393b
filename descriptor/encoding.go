package descriptor

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Encode encodes a descriptor into a BLOB representation suitable for
// storage in SQLite: a little-endian sequence of IEEE 754 float32 values
// without a length prefix.
func Encode(d Descriptor) []byte {
	if len(d) == 0 {
		return nil
	}
	b := make([]byte, len(d)*4)
	for i, v := range d {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}
	return b
}

// Decode decodes a BLOB produced by Encode.
func Decode(b []byte) (Descriptor, error) {
	if len(b) == 0 {
		return nil, nil
	}
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("descriptor: invalid blob length %d (not multiple of 4)", len(b))
	}
	n := len(b) / 4
	d := make(Descriptor, n)
	for i := 0; i < n; i++ {
		d[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return d, nil
}
