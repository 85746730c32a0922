package normalizer

import (
	"strings"

	"github.com/goccy/go-json"
)

// ExtractMessage turns an activity-log details value into display text. details may be absent,
// a plain string, a string holding a JSON object with a "message" key, or an object.
func ExtractMessage(details interface{}) string {
	switch t := details.(type) {
	case nil:
		return ""
	case string:
		raw := strings.TrimSpace(t)
		if !strings.HasPrefix(raw, "{") {
			return t
		}
		var obj map[string]interface{}
		if err := json.Unmarshal([]byte(raw), &obj); err != nil {
			return t
		}
		if msg, ok := obj["message"]; ok && msg != nil {
			return StringOf(msg)
		}
		return t
	case map[string]interface{}:
		if msg, ok := t["message"]; ok && msg != nil {
			return StringOf(msg)
		}
		return StringOf(t)
	}
	return StringOf(details)
}

// ErrorMessage pulls a "message" or "error" string out of an error body. ok is false when the
// body is not JSON or carries neither field.
func ErrorMessage(body []byte) (string, bool) {
	v, ok := Decode(body)
	if !ok {
		return "", false
	}
	obj, ok := v.(map[string]interface{})
	if !ok {
		return "", false
	}
	for _, key := range []string{"message", "error"} {
		switch t := obj[key].(type) {
		case string:
			if strings.TrimSpace(t) != "" {
				return t, true
			}
		case map[string]interface{}:
			if s, ok := t["message"].(string); ok && strings.TrimSpace(s) != "" {
				return s, true
			}
		}
	}
	return "", false
}
