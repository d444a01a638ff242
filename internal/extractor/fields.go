package extractor

import "fmt"

// nestedMap walks a decoded message down the given keys, expecting a complex
// (sub-message) field at each step.
func nestedMap(data map[string]any, keys ...string) (map[string]any, error) {
	current := data
	for _, key := range keys {
		v, ok := current[key]
		if !ok {
			return nil, fmt.Errorf("message has no field %q", key)
		}
		sub, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("field %q is %T, expected a sub-message", key, v)
		}
		current = sub
	}
	return current, nil
}

// floatField reads a float64 field, accepting float32 as decoded by narrower
// message definitions.
func floatField(data map[string]any, key string) (float64, error) {
	v, ok := data[key]
	if !ok {
		return 0, fmt.Errorf("message has no field %q", key)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("field %q is %T, expected a float", key, v)
	}
}

// intField reads an integral field regardless of the wire width ROS used.
func intField(data map[string]any, key string) (int, error) {
	v, ok := data[key]
	if !ok {
		return 0, fmt.Errorf("message has no field %q", key)
	}
	switch n := v.(type) {
	case uint8:
		return int(n), nil
	case int8:
		return int(n), nil
	case uint16:
		return int(n), nil
	case int16:
		return int(n), nil
	case uint32:
		return int(n), nil
	case int32:
		return int(n), nil
	case uint64:
		return int(n), nil
	case int64:
		return int(n), nil
	case int:
		return n, nil
	default:
		return 0, fmt.Errorf("field %q is %T, expected an integer", key, v)
	}
}

// stringField reads a string field.
func stringField(data map[string]any, key string) (string, error) {
	v, ok := data[key]
	if !ok {
		return "", fmt.Errorf("message has no field %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q is %T, expected a string", key, v)
	}
	return s, nil
}

// bytesField reads a byte-array field.
func bytesField(data map[string]any, key string) ([]byte, error) {
	v, ok := data[key]
	if !ok {
		return nil, fmt.Errorf("message has no field %q", key)
	}
	b, ok := v.([]uint8)
	if !ok {
		return nil, fmt.Errorf("field %q is %T, expected a byte array", key, v)
	}
	return b, nil
}
