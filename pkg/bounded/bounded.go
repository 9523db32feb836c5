// Package bounded provides the capacity-checked containers the generated
// bounded representations are built from. A capacity is a zero-size marker
// type carrying its limit as a method, so two containers with different
// limits are different Go types.
package bounded

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/mohae/deepcopy"

	"github.com/allfeat/middsgen/pkg/bounded/scale"
)

// Capacity is implemented by the generated zero-size marker types.
type Capacity interface {
	Bound() uint32
}

// ErrCapacityExceeded reports a value larger than its capacity marker
// allows.
var ErrCapacityExceeded = errors.New("bounded: capacity exceeded")

// ErrInvalidUTF8 reports byte content that is not valid UTF-8 text.
var ErrInvalidUTF8 = errors.New("bounded: invalid utf-8")

// CapOf returns the limit carried by the capacity marker C.
func CapOf[C Capacity]() uint32 {
	var c C
	return c.Bound()
}

// Bytes is UTF-8 text limited to at most C bytes. The zero value is the
// empty string.
type Bytes[C Capacity] struct {
	data []byte
}

// NewBytes validates s against the capacity and UTF-8 rules.
func NewBytes[C Capacity](s string) (Bytes[C], error) {
	if uint32(len(s)) > CapOf[C]() {
		return Bytes[C]{}, fmt.Errorf("%w: %d bytes over limit %d", ErrCapacityExceeded, len(s), CapOf[C]())
	}
	if !utf8.ValidString(s) {
		return Bytes[C]{}, ErrInvalidUTF8
	}
	return Bytes[C]{data: []byte(s)}, nil
}

// MustBytes is NewBytes for literals known to fit.
func MustBytes[C Capacity](s string) Bytes[C] {
	b, err := NewBytes[C](s)
	if err != nil {
		panic(err)
	}
	return b
}

// String returns the text content.
func (b Bytes[C]) String() string { return string(b.data) }

// Len returns the byte length of the content.
func (b Bytes[C]) Len() int { return len(b.data) }

// IsEmpty reports whether the content is the empty string.
func (b Bytes[C]) IsEmpty() bool { return len(b.data) == 0 }

// Cap returns the capacity limit.
func (b Bytes[C]) Cap() uint32 { return CapOf[C]() }

// Equal reports content equality.
func (b Bytes[C]) Equal(o Bytes[C]) bool { return string(b.data) == string(o.data) }

// Clone returns an independent copy.
func (b Bytes[C]) Clone() Bytes[C] {
	if b.data == nil {
		return Bytes[C]{}
	}
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return Bytes[C]{data: out}
}

// EncodeScale writes the compact length followed by the raw bytes.
func (b Bytes[C]) EncodeScale(e *scale.Encoder) error {
	if err := e.WriteCompactUint(uint64(len(b.data))); err != nil {
		return err
	}
	return e.WriteBytes(b.data)
}

// DecodeScale reads and validates the content, rejecting lengths over the
// capacity before allocating.
func (b *Bytes[C]) DecodeScale(d *scale.Decoder) error {
	n, err := d.ReadCompactUint()
	if err != nil {
		return err
	}
	if n > uint64(CapOf[C]()) {
		return fmt.Errorf("%w: encoded length %d over limit %d", ErrCapacityExceeded, n, CapOf[C]())
	}
	raw, err := d.ReadBytes(int(n))
	if err != nil {
		return err
	}
	if !utf8.Valid(raw) {
		return ErrInvalidUTF8
	}
	b.data = raw
	return nil
}

// MaxEncodedLen returns the static upper bound on the encoded size.
func (b Bytes[C]) MaxEncodedLen() int {
	limit := CapOf[C]()
	return scale.CompactLen(uint64(limit)) + int(limit)
}

// Vec is a sequence of at most C elements. The zero value is empty.
type Vec[T any, C Capacity] struct {
	items []T
}

// NewVec validates the element count against the capacity.
func NewVec[T any, C Capacity](items ...T) (Vec[T, C], error) {
	if uint32(len(items)) > CapOf[C]() {
		return Vec[T, C]{}, fmt.Errorf("%w: %d elements over limit %d", ErrCapacityExceeded, len(items), CapOf[C]())
	}
	out := make([]T, len(items))
	copy(out, items)
	return Vec[T, C]{items: out}, nil
}

// MustVec is NewVec for element sets known to fit.
func MustVec[T any, C Capacity](items ...T) Vec[T, C] {
	v, err := NewVec[T, C](items...)
	if err != nil {
		panic(err)
	}
	return v
}

// Items returns a copy of the elements.
func (v Vec[T, C]) Items() []T {
	if v.items == nil {
		return nil
	}
	out := make([]T, len(v.items))
	copy(out, v.items)
	return out
}

// Len returns the element count.
func (v Vec[T, C]) Len() int { return len(v.items) }

// Cap returns the capacity limit.
func (v Vec[T, C]) Cap() uint32 { return CapOf[C]() }

// Get returns the element at i when in range.
func (v Vec[T, C]) Get(i int) (T, bool) {
	if i < 0 || i >= len(v.items) {
		var zero T
		return zero, false
	}
	return v.items[i], true
}

// Append returns a new Vec with items added, failing when the result would
// exceed the capacity.
func (v Vec[T, C]) Append(items ...T) (Vec[T, C], error) {
	total := len(v.items) + len(items)
	if uint32(total) > CapOf[C]() {
		return Vec[T, C]{}, fmt.Errorf("%w: %d elements over limit %d", ErrCapacityExceeded, total, CapOf[C]())
	}
	out := make([]T, 0, total)
	out = append(out, v.items...)
	out = append(out, items...)
	return Vec[T, C]{items: out}, nil
}

// Equal reports element-wise equality.
func (v Vec[T, C]) Equal(o Vec[T, C]) bool {
	if len(v.items) != len(o.items) {
		return false
	}
	for i := range v.items {
		if !Equal(v.items[i], o.items[i]) {
			return false
		}
	}
	return true
}

// Clone returns an independent deep copy.
func (v Vec[T, C]) Clone() Vec[T, C] {
	if v.items == nil {
		return Vec[T, C]{}
	}
	out := make([]T, len(v.items))
	for i := range v.items {
		out[i] = Clone(v.items[i])
	}
	return Vec[T, C]{items: out}
}

// EncodeScale writes the compact element count followed by each element.
func (v Vec[T, C]) EncodeScale(e *scale.Encoder) error {
	if err := e.WriteCompactUint(uint64(len(v.items))); err != nil {
		return err
	}
	for i := range v.items {
		if err := scale.EncodeValue(e, v.items[i]); err != nil {
			return err
		}
	}
	return nil
}

// DecodeScale reads and validates the elements, rejecting counts over the
// capacity before allocating.
func (v *Vec[T, C]) DecodeScale(d *scale.Decoder) error {
	n, err := d.ReadCompactUint()
	if err != nil {
		return err
	}
	if n > uint64(CapOf[C]()) {
		return fmt.Errorf("%w: encoded count %d over limit %d", ErrCapacityExceeded, n, CapOf[C]())
	}
	var zero T
	if err := d.Track(int(n) * sizeOf(zero)); err != nil {
		return err
	}
	items := make([]T, n)
	for i := range items {
		if err := scale.DecodeValue(d, &items[i]); err != nil {
			return err
		}
	}
	v.items = items
	return nil
}

// MaxEncodedLen returns the static upper bound on the encoded size.
func (v Vec[T, C]) MaxEncodedLen() int {
	limit := CapOf[C]()
	return scale.CompactLen(uint64(limit)) + int(limit)*scale.MaxEncodedLenOf[T]()
}

// Equal compares two values of any generated type: Equaler implementations
// first, comparable shapes second, deep reflection last.
func Equal[T any](a, b T) bool {
	type equaler interface{ Equal(T) bool }
	if eq, ok := any(a).(equaler); ok {
		return eq.Equal(b)
	}
	return deepEqual(a, b)
}

// Clone deep-copies v. Cloner implementations take precedence over the
// reflective copy.
func Clone[T any](v T) T {
	type cloner interface{ Clone() T }
	if c, ok := any(v).(cloner); ok {
		return c.Clone()
	}
	return deepcopy.Copy(v).(T)
}
