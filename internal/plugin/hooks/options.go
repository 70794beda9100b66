package hooks

import (
	"fmt"
	"slices"
)

// checkKeys rejects options outside allowed.
func checkKeys(hook string, options map[string]any, allowed ...string) error {
	for k := range options {
		if !slices.Contains(allowed, k) {
			return fmt.Errorf("%s: unknown option %q", hook, k)
		}
	}
	return nil
}

func intOption(options map[string]any, key string, def int) (int, error) {
	v, ok := options[key]
	if !ok {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("option %q must be an integer", key)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("option %q must be an integer, got %T", key, v)
	}
}

func stringOption(options map[string]any, key, def string) (string, error) {
	v, ok := options[key]
	if !ok {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("option %q must be a string, got %T", key, v)
	}
	return s, nil
}
