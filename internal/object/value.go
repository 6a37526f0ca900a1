// Package object models the typed values of a document object graph.
//
// A Value is one of Null, Integer, Real, Boolean, String, Name, Array,
// *Dictionary, *Stream or Reference. The set is closed: only this package
// can add kinds.
package object

import (
	"fmt"
	"strconv"
	"unicode/utf8"
)

// Kind identifies the concrete type behind a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindInteger
	KindReal
	KindBoolean
	KindString
	KindName
	KindArray
	KindDictionary
	KindStream
	KindReference
)

var kindNames = [...]string{
	KindNull:       "Null",
	KindInteger:    "Integer",
	KindReal:       "Number",
	KindBoolean:    "Boolean",
	KindString:     "String",
	KindName:       "Name",
	KindArray:      "Array",
	KindDictionary: "Dictionary",
	KindStream:     "Stream",
	KindReference:  "Reference",
}

// String returns the display name of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is a node of the object graph.
type Value interface {
	Kind() Kind
	value()
}

type (
	Null    struct{}
	Integer int64
	Real    float64
	Boolean bool
	Array   []Value

	// String holds raw string bytes; text is not guaranteed to be UTF-8.
	String []byte

	// Name is a bare identifier, rendered with a leading slash.
	Name string
)

// Stream is a metadata dictionary plus an opaque payload.
type Stream struct {
	Info *Dictionary
	Data []byte
}

// Reference points at an indirect object. Two references address the same
// object iff both ID and Gen are equal.
type Reference struct {
	ID  uint64
	Gen uint16
}

func (Null) Kind() Kind { return KindNull }
func (Integer) Kind() Kind { return KindInteger }
func (Real) Kind() Kind { return KindReal }
func (Boolean) Kind() Kind { return KindBoolean }
func (String) Kind() Kind { return KindString }
func (Name) Kind() Kind { return KindName }
func (Array) Kind() Kind { return KindArray }
func (*Stream) Kind() Kind { return KindStream }
func (Reference) Kind() Kind { return KindReference }
func (*Dictionary) Kind() Kind { return KindDictionary }

func (Null) value() {}
func (Integer) value() {}
func (Real) value() {}
func (Boolean) value() {}
func (String) value() {}
func (Name) value() {}
func (Array) value() {}
func (*Stream) value() {}
func (Reference) value() {}
func (*Dictionary) value() {}

// Text returns the string as UTF-8 text, reporting false when the bytes are
// not valid UTF-8.
func (s String) Text() (string, bool) {
	if !utf8.Valid(s) {
		return "", false
	}
	return string(s), true
}

func (n Name) String() string {
	return "/" + string(n)
}

func (r Reference) String() string {
	return fmt.Sprintf("%d %d R", r.ID, r.Gen)
}

// NewStream builds a stream, substituting an empty dictionary for a nil info.
func NewStream(info *Dictionary, data []byte) *Stream {
	if info == nil {
		info = NewDictionary()
	}
	return &Stream{Info: info, Data: data}
}

// Dictionary returns the info dictionary, nil for a nil stream.
func (s *Stream) Dictionary() *Dictionary {
	if s == nil {
		return nil
	}
	return s.Info
}

// Size returns the payload length in bytes.
func (s *Stream) Size() int {
	if s == nil {
		return 0
	}
	return len(s.Data)
}

// IsScalar reports whether v never has children.
func IsScalar(v Value) bool {
	switch v.(type) {
	case Null, Integer, Real, Boolean, String, Name:
		return true
	default:
		return false
	}
}

// Format renders a scalar the way the inspector displays it.
func Format(v Value) string {
	switch v := v.(type) {
	case nil, Null:
		return "null"
	case Integer:
		return strconv.FormatInt(int64(v), 10)
	case Real:
		return strconv.FormatFloat(float64(v), 'f', -1, 64)
	case Boolean:
		return strconv.FormatBool(bool(v))
	case String:
		text, ok := v.Text()
		if !ok {
			return "<indiscernible string>"
		}
		return strconv.Quote(text)
	case Name:
		return v.String()
	case Reference:
		return v.String()
	case Array:
		return fmt.Sprintf("[%d elements]", len(v))
	case *Dictionary:
		return fmt.Sprintf("<<%d entries>>", v.Len())
	case *Stream:
		return fmt.Sprintf("stream(%d bytes)", v.Size())
	default:
		return fmt.Sprintf("%v", v)
	}
}
