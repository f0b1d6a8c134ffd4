package analyses

import "fmt"

// DefaultPromptMaxChars bounds the deck text embedded in a prompt.
const DefaultPromptMaxChars = 8000

const promptTemplate = `You are an expert startup analyst for VC investors. Analyze this pitch deck and extract key information.
Return ONLY a valid JSON object with exactly the fields below. Do not add any explanation, prose or markdown code fences before or after the JSON.
Every key must be present. Use %q for any value the deck does not provide; never omit a key.
%q must be an integer from 1 to 10 (1 = weakest, 10 = strongest), not a percentage or a 0-100 score.

%s

Pitch deck text:
%s
`

// BuildPrompt embeds the schema's example shape and the head of text,
// truncated to maxChars characters. A non-positive maxChars uses the default.
func BuildPrompt(text string, schema Schema, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultPromptMaxChars
	}
	return fmt.Sprintf(promptTemplate, NotProvided, schema.ScoreField, schema.Example(), TruncateChars(text, maxChars))
}

// TruncateChars returns the first n characters of s without splitting a
// UTF-8 sequence.
func TruncateChars(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
