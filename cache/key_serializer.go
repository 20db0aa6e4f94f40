package cache

import (
	"encoding"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// KeySeparator joins the segments of a serialized key.
const KeySeparator = "::"

// KeySerializer renders keys for string-keyed backends.
type KeySerializer interface {
	// SerializeKey renders each part as one segment and joins the segments
	// with KeySeparator. Equal inputs always produce equal keys.
	SerializeKey(parts ...any) string
}

type defaultKeySerializer struct{}

// NewDefaultKeySerializer returns the serializer used when none is configured.
//
// Top level strings and scalars are written as is, without reflection, so a
// string or int cache key maps onto itself. Composite values are walked:
// strings inside them are quoted, map entries are sorted by their rendered
// key, structs list their exported fields and values implementing
// encoding.TextMarshaler (time.Time for one) use their text form. Functions
// and channels render by address, which is stable for the life of the process.
func NewDefaultKeySerializer() KeySerializer {
	return defaultKeySerializer{}
}

func (defaultKeySerializer) SerializeKey(parts ...any) string {
	switch len(parts) {
	case 0:
		return ""
	case 1:
		if s, ok := scalarSegment(parts[0]); ok {
			return s
		}
	}

	var b strings.Builder
	for i, part := range parts {
		if i > 0 {
			b.WriteString(KeySeparator)
		}
		if s, ok := scalarSegment(part); ok {
			b.WriteString(s)
			continue
		}
		writeValue(&b, reflect.ValueOf(part), false)
	}
	return b.String()
}

// scalarSegment covers the common key types without reflection.
func scalarSegment(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case int32:
		return strconv.FormatInt(int64(x), 10), true
	case uint:
		return strconv.FormatUint(uint64(x), 10), true
	case uint64:
		return strconv.FormatUint(x, 10), true
	case uint32:
		return strconv.FormatUint(uint64(x), 10), true
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), true
	case bool:
		return strconv.FormatBool(x), true
	case nil:
		return "<nil>", true
	}
	return "", false
}

func writeValue(b *strings.Builder, rv reflect.Value, nested bool) {
	if !rv.IsValid() {
		b.WriteString("<nil>")
		return
	}

	if rv.Kind() == reflect.Struct && rv.CanInterface() {
		if m, ok := rv.Interface().(encoding.TextMarshaler); ok {
			if text, err := m.MarshalText(); err == nil {
				writeString(b, string(text), nested)
				return
			}
		}
	}

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			b.WriteString("<nil>")
			return
		}
		writeValue(b, rv.Elem(), nested)
	case reflect.String:
		writeString(b, rv.String(), nested)
	case reflect.Bool:
		b.WriteString(strconv.FormatBool(rv.Bool()))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		b.WriteString(strconv.FormatInt(rv.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		b.WriteString(strconv.FormatUint(rv.Uint(), 10))
	case reflect.Float32:
		b.WriteString(strconv.FormatFloat(rv.Float(), 'g', -1, 32))
	case reflect.Float64:
		b.WriteString(strconv.FormatFloat(rv.Float(), 'g', -1, 64))
	case reflect.Complex64, reflect.Complex128:
		b.WriteString(strconv.FormatComplex(rv.Complex(), 'g', -1, 128))
	case reflect.Slice, reflect.Array:
		b.WriteByte('[')
		for i := 0; i < rv.Len(); i++ {
			if i > 0 {
				b.WriteByte(',')
			}
			writeValue(b, rv.Index(i), true)
		}
		b.WriteByte(']')
	case reflect.Map:
		writeMap(b, rv)
	case reflect.Struct:
		writeStruct(b, rv)
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		b.WriteString(rv.Kind().String())
		b.WriteString("@0x")
		b.WriteString(strconv.FormatUint(uint64(rv.Pointer()), 16))
	default:
		b.WriteString(rv.Type().String())
	}
}

func writeString(b *strings.Builder, s string, nested bool) {
	if nested {
		b.WriteString(strconv.Quote(s))
		return
	}
	b.WriteString(s)
}

// writeMap renders every key once and orders the entries by that rendering.
func writeMap(b *strings.Builder, rv reflect.Value) {
	type entry struct {
		key   string
		value reflect.Value
	}

	entries := make([]entry, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		var kb strings.Builder
		writeValue(&kb, iter.Key(), true)
		entries = append(entries, entry{key: kb.String(), value: iter.Value()})
	}
	slices.SortFunc(entries, func(a, b entry) int {
		return strings.Compare(a.key, b.key)
	})

	b.WriteByte('{')
	for i, e := range entries {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(e.key)
		b.WriteByte(':')
		writeValue(b, e.value, true)
	}
	b.WriteByte('}')
}

func writeStruct(b *strings.Builder, rv reflect.Value) {
	rt := rv.Type()
	name := rt.Name()
	if name == "" {
		name = "struct"
	}

	b.WriteString(name)
	b.WriteByte('{')
	first := true
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		if !first {
			b.WriteByte(',')
		}
		first = false
		b.WriteString(field.Name)
		b.WriteByte('=')
		writeValue(b, rv.Field(i), true)
	}
	b.WriteByte('}')
}
