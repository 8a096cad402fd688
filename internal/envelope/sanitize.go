package envelope

// Sanitize rewrites a JSON tree so that empty objects become null and empty
// arrays stay as non-nil empty arrays. It recurses into nested values and is
// idempotent.
func Sanitize(v any) any {
	switch x := v.(type) {
	case map[string]any:
		if len(x) == 0 {
			return nil
		}
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = Sanitize(item)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = Sanitize(item)
		}
		return out
	default:
		return v
	}
}
