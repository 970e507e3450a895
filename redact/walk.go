package redact

// maxWalkDepth bounds recursion into tool inputs. Values nested deeper are
// returned as-is.
const maxWalkDepth = 16

// walkAny returns a copy of a decoded tool input with fn applied to every
// string leaf. Numbers, booleans and unknown types pass through unchanged.
func walkAny(v any, fn func(string) string) any {
	w := walker{fn: fn}
	return w.walk(v, 0)
}

type walker struct {
	fn func(string) string
}

func (w walker) walk(v any, depth int) any {
	if depth > maxWalkDepth {
		return v
	}
	switch val := v.(type) {
	case string:
		return w.fn(val)
	case []string:
		out := make([]string, len(val))
		for i, s := range val {
			out[i] = w.fn(s)
		}
		return out
	case map[string]string:
		out := make(map[string]string, len(val))
		for k, s := range val {
			out[k] = w.fn(s)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			out[k] = w.walk(child, depth+1)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, child := range val {
			out[i] = w.walk(child, depth+1)
		}
		return out
	}
	return v
}
