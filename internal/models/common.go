package models

import (
	"strconv"
	"strings"
)

// BasicConfig is a loosely typed bag of values decoded from JSON. It holds
// the tenant feature flags returned by the features endpoint.
type BasicConfig map[string]any

func (pc *BasicConfig) lookup(key string) (any, bool) {
	if pc == nil || *pc == nil {
		return nil, false
	}
	value, ok := (*pc)[key]
	return value, ok
}

func (pc *BasicConfig) GetString(key string) (string, bool) {
	if value, ok := pc.lookup(key); ok {
		if strValue, ok := value.(string); ok {
			return strValue, true
		}
	}
	return "", false
}

func (pc *BasicConfig) GetStringWithDefault(key string, defaultValue string) string {
	if value, ok := pc.GetString(key); ok {
		return value
	}
	return defaultValue
}

// GetInt accepts both Go ints and the float64 values produced by
// encoding/json.
func (pc *BasicConfig) GetInt(key string) (int, bool) {
	value, ok := pc.lookup(key)
	if !ok {
		return 0, false
	}
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v == float64(int(v)) {
			return int(v), true
		}
	case string:
		if i, err := strconv.Atoi(v); err == nil {
			return i, true
		}
	}
	return 0, false
}

func (pc *BasicConfig) GetIntWithDefault(key string, defaultValue int) int {
	if value, ok := pc.GetInt(key); ok {
		return value
	}
	return defaultValue
}

func (pc *BasicConfig) GetBool(key string) (bool, bool) {
	value, ok := pc.lookup(key)
	if !ok {
		return false, false
	}
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b, true
		}
	}
	return false, false
}

// Enabled is true only when the key is present and truthy.
func (pc *BasicConfig) Enabled(key string) bool {
	enabled, _ := pc.GetBool(key)
	return enabled
}

func (pc *BasicConfig) GetMap(key string) (BasicConfig, bool) {
	if value, ok := pc.lookup(key); ok {
		if mapValue, ok := value.(map[string]any); ok {
			return BasicConfig(mapValue), true
		}
	}
	return nil, false
}

func (pc *BasicConfig) AsMap() map[string]any {
	if pc == nil || *pc == nil {
		return map[string]any{}
	}
	return map[string]any(*pc)
}
