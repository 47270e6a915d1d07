package shaping

import (
	"bytes"
	"encoding/json"
)

// LinksKey is the record key injected links are stored under.
const LinksKey = "links"

// Entry is one key/value pair of a Record.
type Entry struct {
	Key   string
	Value any
}

// Record is an ordered set of shaped fields. It marshals to a JSON object
// keeping insertion order.
type Record struct {
	entries []Entry
}

// Set overwrites the value for key, or appends it.
func (r *Record) Set(key string, value any) {
	for i := range r.entries {
		if r.entries[i].Key == key {
			r.entries[i].Value = value
			return
		}
	}
	r.entries = append(r.entries, Entry{Key: key, Value: value})
}

func (r Record) Get(key string) (any, bool) {
	for _, e := range r.entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

func (r Record) Keys() []string {
	keys := make([]string, len(r.entries))
	for i, e := range r.entries {
		keys[i] = e.Key
	}
	return keys
}

func (r Record) Len() int { return len(r.entries) }

func (r Record) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range r.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
