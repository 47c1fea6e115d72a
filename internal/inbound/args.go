// internal/inbound/args.go
package inbound

import "fmt"

// StringArg returns argument i as a string.
func (m Message) StringArg(i int) (string, error) {
	if i >= len(m.Args) {
		return "", fmt.Errorf("%s: missing argument %d", m.Address, i)
	}
	s, ok := m.Args[i].(string)
	if !ok {
		return "", fmt.Errorf("%s: argument %d is %T, want string", m.Address, i, m.Args[i])
	}
	return s, nil
}

// TextArg returns argument i formatted as text, whatever its OSC type.
// Used for informational arguments such as timecodes.
func (m Message) TextArg(i int) string {
	if i >= len(m.Args) {
		return ""
	}
	if s, ok := m.Args[i].(string); ok {
		return s
	}
	return fmt.Sprint(m.Args[i])
}

// FloatArg returns argument i as float64. Integer OSC types are accepted.
func (m Message) FloatArg(i int) (float64, error) {
	if i >= len(m.Args) {
		return 0, fmt.Errorf("%s: missing argument %d", m.Address, i)
	}
	switch v := m.Args[i].(type) {
	case float32:
		return float64(v), nil
	case float64:
		return v, nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("%s: argument %d is %T, want number", m.Address, i, m.Args[i])
	}
}
