package agent

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncateText(t *testing.T) {
	long := strings.Repeat("a", 300)
	got := truncateText(long, 200)
	if got != strings.Repeat("a", 200)+"..." {
		t.Errorf("Expected 200 runes plus ellipsis, got %d chars", len(got))
	}

	short := "hello"
	if truncateText(short, 200) != short {
		t.Error("Short strings must pass through unchanged")
	}

	// Rune-safe: multi-byte characters must not be split.
	cjk := strings.Repeat("语", 250)
	cut := truncateText(cjk, 200)
	if !utf8.ValidString(cut) {
		t.Error("Truncation produced invalid UTF-8")
	}
	if utf8.RuneCountInString(cut) != 203 {
		t.Errorf("Expected 200 runes plus '...', got %d runes", utf8.RuneCountInString(cut))
	}
}

func TestTruncateValueRecurses(t *testing.T) {
	long := strings.Repeat("x", 500)
	args := map[string]any{
		"path":  "short.txt",
		"text":  long,
		"items": []any{long, 42, map[string]any{"inner": long}},
	}

	got := truncateValue(args, 200).(map[string]any)

	if got["path"] != "short.txt" {
		t.Error("Short string should be unchanged")
	}
	if text := got["text"].(string); utf8.RuneCountInString(text) != 203 {
		t.Errorf("Top-level string not truncated: %d runes", utf8.RuneCountInString(text))
	}
	items := got["items"].([]any)
	if s := items[0].(string); utf8.RuneCountInString(s) != 203 {
		t.Error("String in array not truncated")
	}
	if items[1] != 42 {
		t.Error("Non-string values must pass through")
	}
	inner := items[2].(map[string]any)
	if s := inner["inner"].(string); utf8.RuneCountInString(s) != 203 {
		t.Error("Nested string not truncated")
	}

	// The original payload must not be mutated.
	if utf8.RuneCountInString(args["text"].(string)) != 500 {
		t.Error("truncateValue mutated its input")
	}
}

func TestRenderArgsIsValidJSON(t *testing.T) {
	out := renderArgs(map[string]any{"text": strings.Repeat("y", 400)}, 200)
	if !strings.Contains(out, "...") {
		t.Error("Expected ellipsis in rendered preview")
	}
	if !strings.HasPrefix(out, "{") {
		t.Errorf("Expected JSON object output, got %q", out)
	}
}
