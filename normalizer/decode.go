package normalizer

import (
	"bytes"

	"github.com/goccy/go-json"
)

// Keys under which list endpoints have been seen to wrap their records.
var envelopeKeys = []string{"data", "items", "content", "results"}

// Decode parses body as JSON. ok is false for an empty body or one that is not JSON; that is
// "no data", never an error by itself.
func Decode(body []byte) (interface{}, bool) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, false
	}
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, false
	}
	return v, true
}

// Objects extracts the record objects from a decoded list response. It accepts a bare array or
// an envelope object holding the array under one of keys or the common envelope keys, nested at
// most a few levels deep. Anything else yields an empty, non-nil slice.
func Objects(v interface{}, keys ...string) []map[string]interface{} {
	return objects(v, withEnvelope(keys), 0)
}

func objects(v interface{}, keys []string, depth int) []map[string]interface{} {
	out := []map[string]interface{}{}
	if depth > 3 {
		return out
	}

	switch t := v.(type) {
	case []interface{}:
		for _, item := range t {
			if m, ok := item.(map[string]interface{}); ok {
				out = append(out, m)
			}
		}
	case map[string]interface{}:
		for _, key := range keys {
			inner, ok := t[key]
			if !ok || inner == nil {
				continue
			}
			if found := objects(inner, keys, depth+1); len(found) > 0 {
				return found
			}
		}
	}
	return out
}

// Object extracts a single record object, unwrapping a {"data": {...}} style envelope.
func Object(v interface{}, keys ...string) (map[string]interface{}, bool) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, false
	}
	for _, key := range withEnvelope(keys) {
		if inner, ok := m[key].(map[string]interface{}); ok {
			return inner, true
		}
	}
	return m, true
}

func withEnvelope(keys []string) []string {
	out := make([]string, 0, len(keys)+len(envelopeKeys))
	out = append(out, keys...)
	return append(out, envelopeKeys...)
}
