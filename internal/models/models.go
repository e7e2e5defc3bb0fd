package models

import (
	"bytes"
	"encoding/json"
)

// JSONValue is a generic type to represent any JSON value.
// This can be a string, json.Number, boolean, nil, *JSONObject, or JSONArray.
type JSONValue interface{}

// JSONArray represents a JSON array, which is a slice of JSONValues.
type JSONArray []JSONValue

// JSONObject represents a JSON object as an ordered mapping of keys to
// values. Key order is document order, which keeps schema discovery and
// export output stable across runs.
type JSONObject struct {
	keys   []string
	values map[string]JSONValue
}

// NewJSONObject creates an empty ordered object.
func NewJSONObject() *JSONObject {
	return &JSONObject{
		keys:   make([]string, 0),
		values: make(map[string]JSONValue),
	}
}

// Set stores a value under key. The first Set of a key fixes its position.
func (o *JSONObject) Set(key string, value JSONValue) {
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// Get returns the value stored under key and whether the key is present.
func (o *JSONObject) Get(key string) (JSONValue, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Keys returns the object's keys in insertion order.
func (o *JSONObject) Keys() []string {
	return o.keys
}

// Len returns the number of keys in the object.
func (o *JSONObject) Len() int {
	return len(o.keys)
}

// MarshalJSON emits the object with its keys in insertion order.
func (o *JSONObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Clone returns a deep copy of the object.
func (o *JSONObject) Clone() *JSONObject {
	out := NewJSONObject()
	for _, k := range o.keys {
		out.Set(k, Clone(o.values[k]))
	}
	return out
}

// Clone returns a deep copy of any JSONValue. Scalars are immutable and
// returned as-is.
func Clone(v JSONValue) JSONValue {
	switch val := v.(type) {
	case *JSONObject:
		return val.Clone()
	case JSONArray:
		out := make(JSONArray, len(val))
		for i, e := range val {
			out[i] = Clone(e)
		}
		return out
	default:
		return val
	}
}

// IsScalar reports whether v is a scalar JSON value (string, number,
// boolean, or null).
func IsScalar(v JSONValue) bool {
	switch v.(type) {
	case *JSONObject, JSONArray:
		return false
	default:
		return true
	}
}

// Document holds one parsed JSON document. It is immutable once built by
// the parser and owns no state beyond the parsed value.
type Document struct {
	Root        JSONValue
	RootIsArray bool // true if the root of the JSON is an array vs an object or scalar
}
