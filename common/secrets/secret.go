package secrets

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"strconv"
)

// Secret is a decoded JSON secret.
type Secret map[string]any

// String returns the value at key as a string. Numbers are formatted without
// loss, so an RDS secret whose port is a JSON number still reads as "5432".
// Missing keys and null values yield "".
func (s Secret) String(key string) string {
	switch v := s[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

// Clone returns a shallow copy so callers cannot mutate cached entries.
func (s Secret) Clone() Secret {
	return maps.Clone(s)
}

func decodeSecret(secretID string, v Value) (Secret, error) {
	if v.Binary {
		return nil, fmt.Errorf("%w: %s has only a binary payload", ErrInvalidSecret, secretID)
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(v.SecretString)))
	dec.UseNumber()

	var secret Secret
	if err := dec.Decode(&secret); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSecret, secretID)
	}

	if secret == nil {
		secret = Secret{}
	}

	return secret, nil
}
