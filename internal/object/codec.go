package object

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/goccy/go-json"
)

// ErrCodec indicates an encoded value could not be decoded.
var ErrCodec = errors.New("object: invalid encoding")

const (
	tagNull   = "null"
	tagInt    = "int"
	tagReal   = "real"
	tagBool   = "bool"
	tagString = "str"
	tagName   = "name"
	tagArray  = "array"
	tagDict   = "dict"
	tagStream = "stream"
	tagRef    = "ref"
)

// wireValue is the tagged JSON form of a Value. Dictionaries are encoded as
// entry lists so key order survives the round trip.
type wireValue struct {
	T       string      `json:"t"`
	Int     *int64      `json:"i,omitempty"`
	Real    *float64    `json:"r,omitempty"`
	Bool    *bool       `json:"b,omitempty"`
	Bytes   []byte      `json:"s,omitempty"`
	Name    string      `json:"n,omitempty"`
	Items   []wireValue `json:"a,omitempty"`
	Entries []wireEntry `json:"d,omitempty"`
	ID      uint64      `json:"id,omitempty"`
	Gen     uint16      `json:"gen,omitempty"`
}

type wireEntry struct {
	Key   string    `json:"k"`
	Value wireValue `json:"v"`
}

// Marshal encodes v as tagged JSON.
func Marshal(v Value) ([]byte, error) {
	payload, err := json.Marshal(toWire(v))
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	return payload, nil
}

// Unmarshal decodes a value produced by Marshal.
func Unmarshal(data []byte) (Value, error) {
	var w wireValue
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCodec, err)
	}
	return fromWire(w)
}

func toWire(v Value) wireValue {
	switch v := v.(type) {
	case Integer:
		i := int64(v)
		return wireValue{T: tagInt, Int: &i}
	case Real:
		r := float64(v)
		if math.IsInf(r, 0) || math.IsNaN(r) {
			// JSON has no literal for these.
			return wireValue{T: tagReal, Name: strconv.FormatFloat(r, 'g', -1, 64)}
		}
		return wireValue{T: tagReal, Real: &r}
	case Boolean:
		b := bool(v)
		return wireValue{T: tagBool, Bool: &b}
	case String:
		return wireValue{T: tagString, Bytes: []byte(v)}
	case Name:
		return wireValue{T: tagName, Name: string(v)}
	case Array:
		items := make([]wireValue, len(v))
		for i, item := range v {
			items[i] = toWire(item)
		}
		return wireValue{T: tagArray, Items: items}
	case *Dictionary:
		return wireValue{T: tagDict, Entries: toWireEntries(v)}
	case *Stream:
		if v == nil {
			return wireValue{T: tagStream, Entries: toWireEntries(nil)}
		}
		return wireValue{T: tagStream, Entries: toWireEntries(v.Info), Bytes: v.Data}
	case Reference:
		return wireValue{T: tagRef, ID: v.ID, Gen: v.Gen}
	default:
		return wireValue{T: tagNull}
	}
}

func toWireEntries(d *Dictionary) []wireEntry {
	entries := make([]wireEntry, 0, d.Len())
	for key, value := range d.All() {
		entries = append(entries, wireEntry{Key: key, Value: toWire(value)})
	}
	return entries
}

func fromWire(w wireValue) (Value, error) {
	switch w.T {
	case tagNull:
		return Null{}, nil
	case tagInt:
		if w.Int == nil {
			return nil, fmt.Errorf("%w: integer without value", ErrCodec)
		}
		return Integer(*w.Int), nil
	case tagReal:
		if w.Real != nil {
			return Real(*w.Real), nil
		}
		r, err := strconv.ParseFloat(w.Name, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: real without value", ErrCodec)
		}
		return Real(r), nil
	case tagBool:
		if w.Bool == nil {
			return nil, fmt.Errorf("%w: boolean without value", ErrCodec)
		}
		return Boolean(*w.Bool), nil
	case tagString:
		return String(w.Bytes), nil
	case tagName:
		return Name(w.Name), nil
	case tagArray:
		arr := make(Array, 0, len(w.Items))
		for i, item := range w.Items {
			v, err := fromWire(item)
			if err != nil {
				return nil, fmt.Errorf("array element %d: %w", i, err)
			}
			arr = append(arr, v)
		}
		return arr, nil
	case tagDict:
		return fromWireEntries(w.Entries)
	case tagStream:
		info, err := fromWireEntries(w.Entries)
		if err != nil {
			return nil, fmt.Errorf("stream info: %w", err)
		}
		return NewStream(info, w.Bytes), nil
	case tagRef:
		return Reference{ID: w.ID, Gen: w.Gen}, nil
	default:
		return nil, fmt.Errorf("%w: unknown tag %q", ErrCodec, w.T)
	}
}

func fromWireEntries(entries []wireEntry) (*Dictionary, error) {
	d := NewDictionary()
	for _, entry := range entries {
		v, err := fromWire(entry.Value)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", entry.Key, err)
		}
		d.Set(entry.Key, v)
	}
	return d, nil
}
