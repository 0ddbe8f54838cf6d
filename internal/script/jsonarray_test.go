package script

import "testing"

func TestExtractArray(t *testing.T) {
	t.Run("bare array", func(t *testing.T) {
		items, err := ExtractArray(`[{"type":"dialogue","text":"hi"}]`)
		if err != nil {
			t.Fatalf("ExtractArray() error = %v", err)
		}
		if len(items) != 1 {
			t.Errorf("len = %d, want 1", len(items))
		}
	})

	t.Run("code fenced", func(t *testing.T) {
		raw := "```json\n[{\"type\":\"dialogue\",\"text\":\"hi\"}]\n```"
		items, err := ExtractArray(raw)
		if err != nil {
			t.Fatalf("ExtractArray() error = %v", err)
		}
		if len(items) != 1 {
			t.Errorf("len = %d, want 1", len(items))
		}
	})

	t.Run("embedded in prose", func(t *testing.T) {
		raw := `Sure! Here is the script:
[{"type":"dialogue","text":"hi"}, {"type":"sub_head","title":"T"}]
Hope that helps.`
		items, err := ExtractArray(raw)
		if err != nil {
			t.Fatalf("ExtractArray() error = %v", err)
		}
		if len(items) != 2 {
			t.Errorf("len = %d, want 2", len(items))
		}
	})

	t.Run("object is not a list", func(t *testing.T) {
		if _, err := ExtractArray(`{"type":"dialogue"}`); err == nil {
			t.Error("expected error for JSON object")
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if _, err := ExtractArray("   "); err == nil {
			t.Error("expected error for empty input")
		}
	})

	t.Run("unparseable", func(t *testing.T) {
		if _, err := ExtractArray("the model rambled with no JSON at all"); err == nil {
			t.Error("expected error")
		}
	})
}
