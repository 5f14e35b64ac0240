package cryptoutil

import (
	"encoding/hex"
	"time"
)

// UUIDv7 returns a time-ordered UUID string: its first 48 bits encode
// the Unix millisecond timestamp, so a UUID generated in a later
// millisecond lexically sorts after one generated in an earlier
// millisecond (spec.md §8 Property 10). UUIDs generated within the same
// millisecond are ordered by their random bits, not by generation order.
//
// The 16 bytes are assembled by hand rather than delegated to a uuid
// library: the version nibble, variant bits, and all of the
// randomness come from this package's own Rand64.
func UUIDv7() (string, error) {
	var b [16]byte

	ms := uint64(time.Now().UnixMilli())
	b[0] = byte(ms >> 40)
	b[1] = byte(ms >> 32)
	b[2] = byte(ms >> 24)
	b[3] = byte(ms >> 16)
	b[4] = byte(ms >> 8)
	b[5] = byte(ms)

	r1 := Rand64()
	b[6] = 0x70 | byte((r1>>8)&0x0f)
	b[7] = byte(r1)

	r2 := Rand64()
	b[8] = 0x80 | byte((r2>>56)&0x3f)
	b[9] = byte(r2 >> 48)
	b[10] = byte(r2 >> 40)
	b[11] = byte(r2 >> 32)
	b[12] = byte(r2 >> 24)
	b[13] = byte(r2 >> 16)
	b[14] = byte(r2 >> 8)
	b[15] = byte(r2)

	buf := make([]byte, 36)
	hex.Encode(buf[0:8], b[0:4])
	buf[8] = '-'
	hex.Encode(buf[9:13], b[4:6])
	buf[13] = '-'
	hex.Encode(buf[14:18], b[6:8])
	buf[18] = '-'
	hex.Encode(buf[19:23], b[8:10])
	buf[23] = '-'
	hex.Encode(buf[24:36], b[10:16])
	return string(buf), nil
}
