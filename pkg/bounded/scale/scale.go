// Package scale implements the compact wire encoding used by the bounded
// type family: little-endian fixed-width primitives and a compact
// length prefix, so every bounded container has a statically computable
// maximum encoded length.
package scale

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrMemoryLimit is returned by a Decoder whose allocation budget is
// exhausted. Decoding untrusted payloads without tripping this means the
// payload fits the declared bounds.
var ErrMemoryLimit = errors.New("scale: memory limit exceeded")

// Encodable is implemented by types that can write themselves to an Encoder.
type Encodable interface {
	EncodeScale(*Encoder) error
}

// Decodable is implemented by types that can read themselves from a Decoder.
type Decodable interface {
	DecodeScale(*Decoder) error
}

// MaxEncodedLener is implemented by types whose encoded form has a static
// upper size bound.
type MaxEncodedLener interface {
	MaxEncodedLen() int
}

// Encoder writes the compact wire form to an io.Writer.
type Encoder struct {
	w   io.Writer
	buf [9]byte
}

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

func (e *Encoder) write(p []byte) error {
	_, err := e.w.Write(p)
	return err
}

// WriteCompactUint writes v with the four-mode compact integer scheme: the
// two low bits of the first byte select a one, two, four, or variable-width
// big-integer representation.
func (e *Encoder) WriteCompactUint(v uint64) error {
	switch {
	case v < 1<<6:
		e.buf[0] = byte(v) << 2
		return e.write(e.buf[:1])
	case v < 1<<14:
		binary.LittleEndian.PutUint16(e.buf[:2], uint16(v)<<2|0b01)
		return e.write(e.buf[:2])
	case v < 1<<30:
		binary.LittleEndian.PutUint32(e.buf[:4], uint32(v)<<2|0b10)
		return e.write(e.buf[:4])
	default:
		n := 0
		for tmp := v; tmp > 0; tmp >>= 8 {
			n++
		}
		e.buf[0] = byte(n-4)<<2 | 0b11
		binary.LittleEndian.PutUint64(e.buf[1:9], v)
		return e.write(e.buf[:1+n])
	}
}

// WriteBool writes a single 0x00/0x01 byte.
func (e *Encoder) WriteBool(v bool) error {
	e.buf[0] = 0
	if v {
		e.buf[0] = 1
	}
	return e.write(e.buf[:1])
}

// WriteUint8 writes one byte.
func (e *Encoder) WriteUint8(v uint8) error {
	e.buf[0] = v
	return e.write(e.buf[:1])
}

// WriteUint16 writes v little-endian.
func (e *Encoder) WriteUint16(v uint16) error {
	binary.LittleEndian.PutUint16(e.buf[:2], v)
	return e.write(e.buf[:2])
}

// WriteUint32 writes v little-endian.
func (e *Encoder) WriteUint32(v uint32) error {
	binary.LittleEndian.PutUint32(e.buf[:4], v)
	return e.write(e.buf[:4])
}

// WriteUint64 writes v little-endian.
func (e *Encoder) WriteUint64(v uint64) error {
	binary.LittleEndian.PutUint64(e.buf[:8], v)
	return e.write(e.buf[:8])
}

// WriteBytes writes raw without any length prefix; containers prefix the
// compact length themselves.
func (e *Encoder) WriteBytes(raw []byte) error {
	if len(raw) == 0 {
		return nil
	}
	return e.write(raw)
}

// WriteOption writes the presence byte of an optional value.
func (e *Encoder) WriteOption(present bool) error {
	return e.WriteBool(present)
}

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithMemoryLimit caps the total bytes a Decoder may allocate while
// materialising payloads. Zero means no limit.
func WithMemoryLimit(n int) DecoderOption {
	return func(d *Decoder) {
		d.budget = n
		d.limited = n > 0
	}
}

// Decoder reads the compact wire form, tracking how much memory the decoded
// values claim so hostile length prefixes cannot force oversized
// allocations.
type Decoder struct {
	r       io.Reader
	buf     [8]byte
	budget  int
	limited bool
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader, options ...DecoderOption) *Decoder {
	d := &Decoder{r: r}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(d)
	}
	return d
}

// Track charges n bytes against the memory budget.
func (d *Decoder) Track(n int) error {
	if !d.limited {
		return nil
	}
	if n > d.budget {
		return ErrMemoryLimit
	}
	d.budget -= n
	return nil
}

func (d *Decoder) read(n int) ([]byte, error) {
	if _, err := io.ReadFull(d.r, d.buf[:n]); err != nil {
		return nil, err
	}
	return d.buf[:n], nil
}

// ReadCompactUint reads a compact integer.
func (d *Decoder) ReadCompactUint() (uint64, error) {
	first, err := d.read(1)
	if err != nil {
		return 0, err
	}
	b := first[0]
	switch b & 0b11 {
	case 0b00:
		return uint64(b >> 2), nil
	case 0b01:
		rest, err := d.read(1)
		if err != nil {
			return 0, err
		}
		return (uint64(b) | uint64(rest[0])<<8) >> 2, nil
	case 0b10:
		rest, err := d.read(3)
		if err != nil {
			return 0, err
		}
		v := uint64(b) | uint64(rest[0])<<8 | uint64(rest[1])<<16 | uint64(rest[2])<<24
		return v >> 2, nil
	default:
		n := int(b>>2) + 4
		if n > 8 {
			return 0, fmt.Errorf("scale: compact integer wider than 64 bits")
		}
		raw, err := d.read(n)
		if err != nil {
			return 0, err
		}
		var v uint64
		for i := n - 1; i >= 0; i-- {
			v = v<<8 | uint64(raw[i])
		}
		return v, nil
	}
}

// ReadBool reads a presence/boolean byte, rejecting anything but 0 and 1.
func (d *Decoder) ReadBool() (bool, error) {
	raw, err := d.read(1)
	if err != nil {
		return false, err
	}
	switch raw[0] {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("scale: invalid boolean byte %#x", raw[0])
	}
}

// ReadUint8 reads one byte.
func (d *Decoder) ReadUint8() (uint8, error) {
	raw, err := d.read(1)
	if err != nil {
		return 0, err
	}
	return raw[0], nil
}

// ReadUint16 reads a little-endian uint16.
func (d *Decoder) ReadUint16() (uint16, error) {
	raw, err := d.read(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(raw), nil
}

// ReadUint32 reads a little-endian uint32.
func (d *Decoder) ReadUint32() (uint32, error) {
	raw, err := d.read(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(raw), nil
}

// ReadUint64 reads a little-endian uint64.
func (d *Decoder) ReadUint64() (uint64, error) {
	raw, err := d.read(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(raw), nil
}

// ReadBytes allocates and fills a buffer of n bytes, charging the memory
// budget first.
func (d *Decoder) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("scale: negative length %d", n)
	}
	if err := d.Track(n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	if _, err := io.ReadFull(d.r, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ReadOption reads the presence byte of an optional value.
func (d *Decoder) ReadOption() (bool, error) {
	return d.ReadBool()
}

// CompactLen returns the encoded width of v under the compact scheme.
func CompactLen(v uint64) int {
	switch {
	case v < 1<<6:
		return 1
	case v < 1<<14:
		return 2
	case v < 1<<30:
		return 4
	default:
		n := 0
		for tmp := v; tmp > 0; tmp >>= 8 {
			n++
		}
		return 1 + n
	}
}
