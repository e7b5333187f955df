package clipboard

import (
	"testing"

	"screen-translate-overlay/src/sentence"
)

func TestWrite(t *testing.T) {
	// Needs a display; only check it doesn't panic.
	err := Write("test text")
	if err != nil {
		t.Logf("Failed to write to clipboard: %v", err)
	}
}

func TestFormat(t *testing.T) {
	set := sentence.Set{
		{Text: "Hello"},
		{Text: "  "},
		{Text: ""},
		{Text: "World "},
	}
	if got := Format(set); got != "Hello\nWorld" {
		t.Errorf("Format() = %q", got)
	}
	if got := Format(nil); got != "" {
		t.Errorf("Format(nil) = %q", got)
	}
}

func TestWriteSentencesEmpty(t *testing.T) {
	text, err := WriteSentences(sentence.Set{{Text: ""}})
	if text != "" || err != nil {
		t.Errorf("Expected no write for empty set, got %q, %v", text, err)
	}
}
