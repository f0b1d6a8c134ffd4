package analyses

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func deckSection(prompt string) string {
	const marker = "Pitch deck text:\n"
	idx := strings.LastIndex(prompt, marker)
	if idx < 0 {
		return ""
	}
	return strings.TrimSuffix(prompt[idx+len(marker):], "\n")
}

func TestBuildPromptEmbedsExampleAndInstructions(t *testing.T) {
	schema, _ := SchemaFor("v2")
	prompt := BuildPrompt("Acme builds rockets.", schema, 0)

	for _, want := range []string{
		schema.Example(),
		`"Not provided"`,
		`"Overall Score" must be an integer from 1 to 10`,
		"Return ONLY a valid JSON object",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
	if deckSection(prompt) != "Acme builds rockets." {
		t.Fatalf("unexpected deck section %q", deckSection(prompt))
	}
}

func TestBuildPromptTruncatesHead(t *testing.T) {
	schema, _ := SchemaFor("v1")
	text := strings.Repeat("a", 9000) + "TAIL"
	section := deckSection(BuildPrompt(text, schema, 0))
	if len(section) != DefaultPromptMaxChars {
		t.Fatalf("expected %d chars, got %d", DefaultPromptMaxChars, len(section))
	}
	if strings.Contains(section, "TAIL") {
		t.Fatal("expected trailing content to be dropped")
	}

	section = deckSection(BuildPrompt(text, schema, 4000))
	if len(section) != 4000 {
		t.Fatalf("expected 4000 chars, got %d", len(section))
	}
}

func TestTruncateCharsIsRuneSafe(t *testing.T) {
	got := TruncateChars("ééé日本語", 4)
	if got != "ééé日" {
		t.Fatalf("unexpected truncation %q", got)
	}
	if !utf8.ValidString(got) {
		t.Fatal("truncation split a UTF-8 sequence")
	}
	if TruncateChars("short", 10) != "short" {
		t.Fatal("expected short text unchanged")
	}
	if TruncateChars("abc", 0) != "" {
		t.Fatal("expected empty result for zero budget")
	}
}
