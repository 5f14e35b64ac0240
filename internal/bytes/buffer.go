package bytes

import (
	"bytes"
	"fmt"
)

// Encoding selects the textual representation str() produces for a
// Buffer's contents.
type Encoding int

const (
	EncodingUTF8 Encoding = iota
	EncodingHex
	EncodingBase64
)

// Buffer is a (offset, length) view over a shared ArrayBuffer. Multiple
// Buffers may alias the same ArrayBuffer; writing through one view is
// visible to every other view over the same bytes, matching spec.md's
// "offset + length <= arraybuffer.size" invariant.
type Buffer struct {
	arraybuffer *ArrayBuffer
	offset      int
	length      int
}

// Empty returns a zero-length Buffer.
func Empty() Buffer {
	return Buffer{arraybuffer: NewArrayBuffer(0)}
}

// FromBytes copies src into a freshly allocated ArrayBuffer.
func FromBytes(src []byte) Buffer {
	ab := NewArrayBuffer(len(src))
	copy(ab.Data(), src)
	return Buffer{arraybuffer: ab, length: len(src)}
}

// FromString copies the bytes of s into a new Buffer.
func FromString(s string) Buffer {
	return FromBytes([]byte(s))
}

// FromArrayBuffer creates a view over the whole of ab without copying.
func FromArrayBuffer(ab *ArrayBuffer) Buffer {
	return Buffer{arraybuffer: ab, length: ab.Size()}
}

// Concat copies every buffer's bytes into one contiguous allocation. An
// empty input yields an empty Buffer, never an error.
func Concat(buffers []Buffer) Buffer {
	total := 0
	for _, b := range buffers {
		total += b.length
	}
	out := make([]byte, 0, total)
	for _, b := range buffers {
		out = append(out, b.Bytes()...)
	}
	return FromBytes(out)
}

// Compare performs a lexicographic byte comparison, matching
// bytes.Compare's contract (-1, 0, 1).
func Compare(a, b Buffer) int {
	return bytes.Compare(a.Bytes(), b.Bytes())
}

// Equal reports whether two buffers hold identical byte contents.
func Equal(a, b Buffer) bool {
	return Compare(a, b) == 0
}

// Size returns the view's length in bytes.
func (b Buffer) Size() int { return b.length }

// Bytes returns the live window of bytes this view covers. The result
// aliases the underlying ArrayBuffer and must not be retained past a
// Resize of that ArrayBuffer.
func (b Buffer) Bytes() []byte {
	if b.arraybuffer == nil {
		return nil
	}
	data := b.arraybuffer.Data()
	end := b.offset + b.length
	if end > len(data) {
		end = len(data)
	}
	if b.offset > end {
		return nil
	}
	return data[b.offset:end]
}

// At returns the byte at index i within the view, erroring if i is out
// of range (BufferOutOfRange per spec.md §7).
func (b Buffer) At(i int) (byte, error) {
	if i < 0 || i >= b.length {
		return 0, fmt.Errorf("bytes: index %d out of range for length %d", i, b.length)
	}
	return b.Bytes()[i], nil
}

// Slice returns a new view over [start, end) of this buffer's window,
// without copying bytes. end of -1 means "to the end of this view".
func (b Buffer) Slice(start, end int) (Buffer, error) {
	if end < 0 {
		end = b.length
	}
	if start < 0 || end > b.length || start > end {
		return Buffer{}, fmt.Errorf("bytes: slice [%d:%d] out of range for length %d", start, end, b.length)
	}
	return Buffer{
		arraybuffer: b.arraybuffer,
		offset:      b.offset + start,
		length:      end - start,
	}, nil
}

// Shift returns a view shifted forward by n bytes, shrinking length by
// the same amount. It implements the Buffer `+` operator from spec.md.
func (b Buffer) Shift(n int) Buffer {
	if n < 0 {
		n = 0
	}
	if n > b.length {
		n = b.length
	}
	return Buffer{arraybuffer: b.arraybuffer, offset: b.offset + n, length: b.length - n}
}

// Unshift returns a view shrunk from the end by n bytes, implementing
// the Buffer `-` operator from spec.md.
func (b Buffer) Unshift(n int) Buffer {
	if n < 0 {
		n = 0
	}
	if n > b.length {
		n = b.length
	}
	return Buffer{arraybuffer: b.arraybuffer, offset: b.offset, length: b.length - n}
}

// Str renders the view's bytes using the requested encoding.
func (b Buffer) Str(enc Encoding) string {
	data := b.Bytes()
	switch enc {
	case EncodingHex:
		return EncodeHex(data)
	case EncodingBase64:
		return EncodeBase64(data)
	default:
		return string(data)
	}
}

// Contains reports whether needle appears anywhere in the view at or
// after from.
func (b Buffer) Contains(needle byte, from int) bool {
	return b.Find(needle, from) >= 0
}

// Find returns the index of the first occurrence of needle at or after
// from, or -1 if absent.
func (b Buffer) Find(needle byte, from int) int {
	data := b.Bytes()
	if from < 0 {
		from = 0
	}
	for i := from; i < len(data); i++ {
		if data[i] == needle {
			return i
		}
	}
	return -1
}
