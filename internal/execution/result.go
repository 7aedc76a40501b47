package execution

import (
	"bytes"
	"encoding/json"
)

// Location points at a position in the request source.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Error is a located execution error: message, response path, and source
// locations.
type Error struct {
	Message    string         `json:"message"`
	Locations  []Location     `json:"locations,omitempty"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (e *Error) Error() string { return e.Message }

// Response is the result of executing a request: the data tree (or null) and
// the ordered error list, omitted when empty.
type Response struct {
	Data   any      `json:"data"`
	Errors []*Error `json:"errors,omitempty"`
}

// OrderedMap is a string-keyed map that preserves insertion order, used for
// response objects so the assembled result mirrors declaration order
// regardless of completion order.
type OrderedMap struct {
	keys   []string
	values map[string]any
}

func NewOrderedMap() *OrderedMap {
	return &OrderedMap{values: make(map[string]any)}
}

// Set stores value under key. Re-setting an existing key keeps its original
// position.
func (m *OrderedMap) Set(key string, value any) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

func (m *OrderedMap) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *OrderedMap) Len() int { return len(m.keys) }

// Keys returns the keys in insertion order. The slice is owned by the map.
func (m *OrderedMap) Keys() []string { return m.keys }

func (m *OrderedMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
