package search

import (
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// StepKind distinguishes dictionary descents from array descents.
type StepKind uint8

const (
	StepDict StepKind = iota
	StepArray
)

// Step is a single descent: into the dictionary entry Key, or into the array
// element at Index.
type Step struct {
	Kind  StepKind
	Key   string
	Index int
}

// DictStep descends into the dictionary entry named key.
func DictStep(key string) Step {
	return Step{Kind: StepDict, Key: key}
}

// ArrayStep descends into the array element at index.
func ArrayStep(index int) Step {
	return Step{Kind: StepArray, Index: index}
}

func (s Step) String() string {
	if s.Kind == StepArray {
		return "[" + strconv.Itoa(s.Index) + "]"
	}
	return "->" + s.Key
}

type stepJSON struct {
	Key   *string `json:"key,omitempty"`
	Index *int    `json:"index,omitempty"`
}

func (s Step) MarshalJSON() ([]byte, error) {
	if s.Kind == StepArray {
		index := s.Index
		return json.Marshal(stepJSON{Index: &index})
	}
	key := s.Key
	return json.Marshal(stepJSON{Key: &key})
}

func (s *Step) UnmarshalJSON(data []byte) error {
	var raw stepJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch {
	case raw.Key != nil && raw.Index == nil:
		*s = DictStep(*raw.Key)
	case raw.Index != nil && raw.Key == nil:
		*s = ArrayStep(*raw.Index)
	default:
		return errInvalidStep
	}
	return nil
}

// Path is the ordered list of descents from the root to a matched entry.
type Path []Step

// String renders dictionary steps as ->key and array steps as [index].
func (p Path) String() string {
	var b strings.Builder
	for _, step := range p {
		b.WriteString(step.String())
	}
	return b.String()
}

// JSONPath renders the path as an RFC 9535 normalized path.
func (p Path) JSONPath() string {
	var b strings.Builder
	b.WriteByte('$')
	for _, step := range p {
		if step.Kind == StepArray {
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(step.Index))
			b.WriteByte(']')
			continue
		}
		b.WriteString("['")
		writeNormalizedName(&b, step.Key)
		b.WriteString("']")
	}
	return b.String()
}

// Key returns the key named by the final step, or "" when the path does not
// end in a dictionary step.
func (p Path) Key() string {
	if len(p) == 0 || p[len(p)-1].Kind != StepDict {
		return ""
	}
	return p[len(p)-1].Key
}

// Equal reports whether both paths describe the same descents.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

func writeNormalizedName(b *strings.Builder, name string) {
	for _, r := range name {
		switch {
		case r == '\'':
			b.WriteString(`\'`)
		case r == '\\':
			b.WriteString(`\\`)
		case r == '\b':
			b.WriteString(`\b`)
		case r == '\f':
			b.WriteString(`\f`)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r < 0x20:
			b.WriteString(`\u00`)
			b.WriteByte("0123456789abcdef"[r>>4])
			b.WriteByte("0123456789abcdef"[r&0xf])
		default:
			b.WriteRune(r)
		}
	}
}
