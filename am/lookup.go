package am

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Lookup returns the value of a dot-notation key (e.g. "resolve.strategy")
// from c. Sections come back as maps.
func (c *Config) Lookup(key string) (interface{}, bool) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, false
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var current interface{}
	if err := dec.Decode(&current); err != nil {
		return nil, false
	}
	for _, part := range strings.Split(strings.ToLower(key), ".") {
		section, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		if current, ok = section[part]; !ok {
			return nil, false
		}
	}
	return current, true
}
