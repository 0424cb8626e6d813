package agent

import "encoding/json"

// Display truncation defaults. These bound what observers see; the raw
// values stored in history are never truncated.
const (
	DefaultArgPreviewLimit    = 200
	DefaultResultPreviewLimit = 300
)

// truncateText cuts s to limit runes with an ellipsis.
func truncateText(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

// truncateValue walks an argument payload and truncates every string to
// limit runes, recursing through nested objects and arrays.
func truncateValue(v any, limit int) any {
	switch val := v.(type) {
	case string:
		return truncateText(val, limit)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = truncateValue(item, limit)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = truncateValue(item, limit)
		}
		return out
	default:
		return v
	}
}

// renderArgs produces the display form of tool-call arguments.
func renderArgs(args map[string]any, limit int) string {
	truncated := truncateValue(args, limit)
	b, err := json.MarshalIndent(truncated, "", "  ")
	if err != nil {
		return ""
	}
	return string(b)
}
