package scale

import (
	"fmt"
	"reflect"
)

// EncodeValue writes v using its Encodable implementation when present and a
// reflection walk otherwise. The walk covers the shapes the generated code
// produces: fixed-width integers, booleans, pointers as optionals, and
// structs of the same.
func EncodeValue(e *Encoder, v any) error {
	if enc, ok := v.(Encodable); ok {
		return enc.EncodeScale(e)
	}
	return encodeReflect(e, reflect.ValueOf(v))
}

func encodeReflect(e *Encoder, rv reflect.Value) error {
	if rv.CanInterface() {
		if enc, ok := rv.Interface().(Encodable); ok {
			return enc.EncodeScale(e)
		}
	}
	switch rv.Kind() {
	case reflect.Bool:
		return e.WriteBool(rv.Bool())
	case reflect.Uint8:
		return e.WriteUint8(uint8(rv.Uint()))
	case reflect.Uint16:
		return e.WriteUint16(uint16(rv.Uint()))
	case reflect.Uint32:
		return e.WriteUint32(uint32(rv.Uint()))
	case reflect.Uint64, reflect.Uint:
		return e.WriteUint64(rv.Uint())
	case reflect.Int8:
		return e.WriteUint8(uint8(rv.Int()))
	case reflect.Int16:
		return e.WriteUint16(uint16(rv.Int()))
	case reflect.Int32:
		return e.WriteUint32(uint32(rv.Int()))
	case reflect.Int64, reflect.Int:
		return e.WriteUint64(uint64(rv.Int()))
	case reflect.Pointer:
		if rv.IsNil() {
			return e.WriteOption(false)
		}
		if err := e.WriteOption(true); err != nil {
			return err
		}
		return encodeReflect(e, rv.Elem())
	case reflect.Struct:
		for i := 0; i < rv.NumField(); i++ {
			if err := encodeReflect(e, rv.Field(i)); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("scale: cannot encode %s", rv.Type())
	}
}

// DecodeValue reads into v, which must be a non-nil pointer. Decodable
// implementations take precedence over the reflection walk.
func DecodeValue(d *Decoder, v any) error {
	if dec, ok := v.(Decodable); ok {
		return dec.DecodeScale(d)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("scale: decode target must be a non-nil pointer, got %T", v)
	}
	return decodeReflect(d, rv.Elem())
}

func decodeReflect(d *Decoder, rv reflect.Value) error {
	if rv.CanAddr() {
		if dec, ok := rv.Addr().Interface().(Decodable); ok {
			return dec.DecodeScale(d)
		}
	}
	switch rv.Kind() {
	case reflect.Bool:
		b, err := d.ReadBool()
		if err != nil {
			return err
		}
		rv.SetBool(b)
		return nil
	case reflect.Uint8:
		n, err := d.ReadUint8()
		if err != nil {
			return err
		}
		rv.SetUint(uint64(n))
		return nil
	case reflect.Uint16:
		n, err := d.ReadUint16()
		if err != nil {
			return err
		}
		rv.SetUint(uint64(n))
		return nil
	case reflect.Uint32:
		n, err := d.ReadUint32()
		if err != nil {
			return err
		}
		rv.SetUint(uint64(n))
		return nil
	case reflect.Uint64, reflect.Uint:
		n, err := d.ReadUint64()
		if err != nil {
			return err
		}
		rv.SetUint(n)
		return nil
	case reflect.Int8:
		n, err := d.ReadUint8()
		if err != nil {
			return err
		}
		rv.SetInt(int64(int8(n)))
		return nil
	case reflect.Int16:
		n, err := d.ReadUint16()
		if err != nil {
			return err
		}
		rv.SetInt(int64(int16(n)))
		return nil
	case reflect.Int32:
		n, err := d.ReadUint32()
		if err != nil {
			return err
		}
		rv.SetInt(int64(int32(n)))
		return nil
	case reflect.Int64, reflect.Int:
		n, err := d.ReadUint64()
		if err != nil {
			return err
		}
		rv.SetInt(int64(n))
		return nil
	case reflect.Pointer:
		present, err := d.ReadOption()
		if err != nil {
			return err
		}
		if !present {
			rv.SetZero()
			return nil
		}
		elem := reflect.New(rv.Type().Elem())
		if err := d.Track(int(rv.Type().Elem().Size())); err != nil {
			return err
		}
		if err := decodeReflect(d, elem.Elem()); err != nil {
			return err
		}
		rv.Set(elem)
		return nil
	case reflect.Struct:
		for i := 0; i < rv.NumField(); i++ {
			if err := decodeReflect(d, rv.Field(i)); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("scale: cannot decode %s", rv.Type())
	}
}

// MaxEncodedLenOf returns the static upper bound on T's encoded size. Types
// without one cause a panic; generated code only calls this for bounded
// shapes.
func MaxEncodedLenOf[T any]() int {
	var zero T
	if m, ok := any(zero).(MaxEncodedLener); ok {
		return m.MaxEncodedLen()
	}
	if m, ok := any(&zero).(MaxEncodedLener); ok {
		return m.MaxEncodedLen()
	}
	return maxLenReflect(reflect.TypeOf(&zero).Elem())
}

func maxLenReflect(t reflect.Type) int {
	if t.Implements(lenerType) {
		return reflect.Zero(t).Interface().(MaxEncodedLener).MaxEncodedLen()
	}
	if reflect.PointerTo(t).Implements(lenerType) {
		return reflect.New(t).Interface().(MaxEncodedLener).MaxEncodedLen()
	}
	switch t.Kind() {
	case reflect.Bool, reflect.Uint8, reflect.Int8:
		return 1
	case reflect.Uint16, reflect.Int16:
		return 2
	case reflect.Uint32, reflect.Int32:
		return 4
	case reflect.Uint64, reflect.Int64, reflect.Uint, reflect.Int:
		return 8
	case reflect.Pointer:
		return 1 + maxLenReflect(t.Elem())
	case reflect.Struct:
		total := 0
		for i := 0; i < t.NumField(); i++ {
			total += maxLenReflect(t.Field(i).Type)
		}
		return total
	default:
		panic(fmt.Sprintf("scale: %s has no static encoded length bound", t))
	}
}

var lenerType = reflect.TypeOf((*MaxEncodedLener)(nil)).Elem()
