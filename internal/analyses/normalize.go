package analyses

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
)

// Result is a parsed analysis object. Numbers decode as float64.
type Result map[string]any

// fenceRe matches markdown fence lines only, so backticks inside string
// values survive.
var fenceRe = regexp.MustCompile("(?m)^[ \t]*```[A-Za-z0-9_+-]*[ \t\r]*$")

// Normalize turns raw model output into a Result: it strips code fences,
// takes the outermost {...} span, parses it and rescales the score. Missing
// fields are left missing.
func Normalize(raw string, schema Schema) (Result, error) {
	text := strings.TrimSpace(fenceRe.ReplaceAllString(raw, ""))

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return nil, &OutputError{Err: ErrNoJSONFound, Raw: raw}
	}
	candidate := text[start : end+1]

	var parsed any
	if err := json.Unmarshal([]byte(candidate), &parsed); err != nil {
		return nil, &OutputError{Err: ErrMalformedJSON, Detail: parserMessage(err), Raw: raw}
	}
	obj, ok := parsed.(map[string]any)
	if !ok {
		return nil, &OutputError{Err: ErrMalformedJSON, Detail: "top-level value is not an object", Raw: raw}
	}

	result := Result(obj)
	rescaleScore(result, schema)
	return result, nil
}

func parserMessage(err error) string {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return fmt.Sprintf("%s (offset %d)", syntaxErr.Error(), syntaxErr.Offset)
	}
	return err.Error()
}

func rescaleScore(result Result, schema Schema) {
	if schema.ScoreField == "" || schema.ScoreMax <= 0 {
		return
	}
	v, ok := result[schema.ScoreField].(float64)
	if !ok {
		return
	}
	rescale := schema.Rescale
	if rescale == nil {
		rescale = RescaleOverMax
	}
	result[schema.ScoreField] = rescale(v, schema.ScoreMax)
}

// RescaleOverMax treats a score above max as a 0-100 answer and divides it
// by ten, rounded to one decimal. This is a heuristic: it cannot tell a
// noncompliant model from a genuine out-of-range value.
func RescaleOverMax(value, max float64) float64 {
	if value <= max {
		return value
	}
	return math.Round(value) / 10
}
