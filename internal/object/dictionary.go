package object

import "iter"

// Entry is one key/value pair of a dictionary.
type Entry struct {
	Key   string
	Value Value
}

// Dictionary preserves insertion order; keys are unique.
// The zero value is empty and ready to use. A nil *Dictionary reads as empty.
type Dictionary struct {
	entries []Entry
	index   map[string]int
}

// NewDictionary builds a dictionary from entries. A repeated key keeps the
// position of its first occurrence and the value of its last.
func NewDictionary(entries ...Entry) *Dictionary {
	d := &Dictionary{}
	for _, entry := range entries {
		d.Set(entry.Key, entry.Value)
	}
	return d
}

// Set adds or replaces the value for key. Replacing keeps the key's position.
func (d *Dictionary) Set(key string, value Value) {
	if d.index == nil {
		d.index = make(map[string]int)
	}
	if i, ok := d.index[key]; ok {
		d.entries[i].Value = value
		return
	}
	d.index[key] = len(d.entries)
	d.entries = append(d.entries, Entry{Key: key, Value: value})
}

// Get returns the value for an exact key match.
func (d *Dictionary) Get(key string) (Value, bool) {
	if d == nil {
		return nil, false
	}
	i, ok := d.index[key]
	if !ok {
		return nil, false
	}
	return d.entries[i].Value, true
}

// Has reports whether key is present.
func (d *Dictionary) Has(key string) bool {
	_, ok := d.Get(key)
	return ok
}

func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}

// Keys returns the keys in insertion order.
func (d *Dictionary) Keys() []string {
	if d == nil {
		return nil
	}
	keys := make([]string, len(d.entries))
	for i, entry := range d.entries {
		keys[i] = entry.Key
	}
	return keys
}

// All iterates entries in insertion order.
func (d *Dictionary) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if d == nil {
			return
		}
		for _, entry := range d.entries {
			if !yield(entry.Key, entry.Value) {
				return
			}
		}
	}
}

// Entries returns a copy of the entries in insertion order.
func (d *Dictionary) Entries() []Entry {
	if d == nil {
		return nil
	}
	out := make([]Entry, len(d.entries))
	copy(out, d.entries)
	return out
}
