package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

type noteEntry struct {
	Timestamp string `json:"timestamp"`
	Category  string `json:"category"`
	Content   string `json:"content"`
}

// NoteStore persists session notes as a JSON array in one file. The file
// may be shared by concurrent sessions, so access is serialized here
// rather than assumed exclusive.
type NoteStore struct {
	path string
	mu   sync.Mutex
}

func NewNoteStore(path string) *NoteStore {
	return &NoteStore{path: path}
}

func (s *NoteStore) load() []noteEntry {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}
	var notes []noteEntry
	if err := json.Unmarshal(data, &notes); err != nil {
		return nil
	}
	return notes
}

func (s *NoteStore) save(notes []noteEntry) error {
	if parent := filepath.Dir(s.path); parent != "" {
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(notes, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}

func (s *NoteStore) Record(content, category string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	notes := s.load()
	notes = append(notes, noteEntry{
		Timestamp: time.Now().Format(time.RFC3339),
		Category:  category,
		Content:   content,
	})
	return s.save(notes)
}

func (s *NoteStore) Recall(category string) []noteEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	notes := s.load()
	if category == "" {
		return notes
	}
	var filtered []noteEntry
	for _, n := range notes {
		if n.Category == category {
			filtered = append(filtered, n)
		}
	}
	return filtered
}

// RecordNoteTool appends a timestamped note to the shared store.
type RecordNoteTool struct {
	store *NoteStore
}

func NewRecordNoteTool(store *NoteStore) *RecordNoteTool {
	return &RecordNoteTool{store: store}
}

func (t *RecordNoteTool) Name() string {
	return "record_note"
}

func (t *RecordNoteTool) Description() string {
	return "Record important information as session notes for future reference (timestamped)."
}

func (t *RecordNoteTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"content": map[string]any{
				"type":        "string",
				"description": "Note content",
			},
			"category": map[string]any{
				"type":        "string",
				"description": "Optional category",
			},
		},
		"required": []any{"content"},
	}
}

func (t *RecordNoteTool) Execute(ctx context.Context, args map[string]any) *ToolResult {
	content, ok := stringArg(args, "content")
	if !ok {
		return ErrorResult("missing 'content'")
	}
	category, ok := stringArg(args, "category")
	if !ok || category == "" {
		category = "general"
	}
	if err := t.store.Record(content, category); err != nil {
		return ErrorResult(fmt.Sprintf("Failed to record note: %v", err))
	}
	return TextResult(fmt.Sprintf("Recorded note: %s (category: %s)", content, category))
}

// RecallNotesTool lists recorded notes, optionally filtered by category.
type RecallNotesTool struct {
	store *NoteStore
}

func NewRecallNotesTool(store *NoteStore) *RecallNotesTool {
	return &RecallNotesTool{store: store}
}

func (t *RecallNotesTool) Name() string {
	return "recall_notes"
}

func (t *RecallNotesTool) Description() string {
	return "Recall all previously recorded session notes (optionally filter by category)."
}

func (t *RecallNotesTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"category": map[string]any{
				"type":        "string",
				"description": "Optional category filter",
			},
		},
	}
}

func (t *RecallNotesTool) Execute(ctx context.Context, args map[string]any) *ToolResult {
	category, _ := stringArg(args, "category")
	notes := t.store.Recall(category)
	if len(notes) == 0 {
		if category != "" {
			return TextResult(fmt.Sprintf("No notes found in category: %s", category))
		}
		return TextResult("No notes recorded yet.")
	}

	var sb strings.Builder
	sb.WriteString("Recorded Notes:\n")
	for i, n := range notes {
		fmt.Fprintf(&sb, "%d. [%s] %s\n   (recorded at %s)\n", i+1, n.Category, n.Content, n.Timestamp)
	}
	return TextResult(sb.String())
}
