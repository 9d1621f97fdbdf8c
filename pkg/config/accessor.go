package config

import "strings"

// Get resolves a dotted key such as "luxury_score.price_thresholds.luxury"
// against the loaded settings and returns def when any segment is missing.
// Keys are matched case-insensitively, the way viper stores them.
func (c *Config) Get(key string, def interface{}) interface{} {
	if c == nil || c.raw == nil || key == "" {
		return def
	}

	var node interface{} = c.raw
	for _, part := range strings.Split(strings.ToLower(key), ".") {
		m, ok := node.(map[string]interface{})
		if !ok {
			return def
		}
		next, ok := m[part]
		if !ok {
			return def
		}
		node = next
	}

	if node == nil {
		return def
	}
	return node
}
