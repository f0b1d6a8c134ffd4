package analyses

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func v1Schema(t *testing.T) Schema {
	t.Helper()
	s, ok := SchemaFor("v1")
	if !ok {
		t.Fatal("v1 schema not registered")
	}
	return s
}

func TestNormalizeCleanJSONEqualsParse(t *testing.T) {
	raw := `{"Company Name": "Acme", "Overall Score": 7, "Traction": "Not provided"}`
	got, err := Normalize(raw, v1Schema(t))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	var want map[string]any
	if err := json.Unmarshal([]byte(raw), &want); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !reflect.DeepEqual(map[string]any(got), want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestNormalizeRecoversFencedJSONWithProse(t *testing.T) {
	got, err := Normalize("Sure! ```json\n{\"Overall Score\": 7}\n```", v1Schema(t))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if !reflect.DeepEqual(got, Result{"Overall Score": float64(7)}) {
		t.Fatalf("unexpected result: %v", got)
	}
}

func TestNormalizeFenceWithoutLanguageTag(t *testing.T) {
	got, err := Normalize("```\n{\"Company Name\": \"Acme\"}\n```\nHope this helps.", v1Schema(t))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if got["Company Name"] != "Acme" {
		t.Fatalf("unexpected result: %v", got)
	}
}

func TestNormalizeKeepsBackticksInsideValues(t *testing.T) {
	raw := "```json\n{\"Traction\": \"ships a ```bash installer\", \"Overall Score\": 7}\n```"
	got, err := Normalize(raw, v1Schema(t))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if got["Traction"] != "ships a ```bash installer" {
		t.Fatalf("unexpected Traction %q", got["Traction"])
	}
	if got["Overall Score"] != float64(7) {
		t.Fatalf("unexpected score %v", got["Overall Score"])
	}
}

func TestNormalizeScoreRescaling(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{in: `{"Overall Score": 85}`, want: 8.5},
		{in: `{"Overall Score": 7}`, want: 7},
		{in: `{"Overall Score": 10}`, want: 10},
		{in: `{"Overall Score": 72.6}`, want: 7.3},
	}
	for _, tt := range tests {
		got, err := Normalize(tt.in, v1Schema(t))
		if err != nil {
			t.Fatalf("normalize %s: %v", tt.in, err)
		}
		if got["Overall Score"] != tt.want {
			t.Fatalf("normalize %s: score %v, want %v", tt.in, got["Overall Score"], tt.want)
		}
	}
}

func TestNormalizeLeavesNonNumericScore(t *testing.T) {
	got, err := Normalize(`{"Overall Score": "85"}`, v1Schema(t))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if got["Overall Score"] != "85" {
		t.Fatalf("expected string score to pass through, got %v", got["Overall Score"])
	}
}

func TestNormalizeCustomRescaler(t *testing.T) {
	schema := v1Schema(t).WithRescaler(func(v, max float64) float64 { return max })
	got, err := Normalize(`{"Overall Score": 3}`, schema)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if got["Overall Score"] != float64(10) {
		t.Fatalf("expected custom rescaler to apply, got %v", got["Overall Score"])
	}
}

func TestNormalizeDoesNotSynthesizeFields(t *testing.T) {
	got, err := Normalize(`{"Company Name": "Acme"}`, v1Schema(t))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected only parsed keys, got %v", got)
	}
}

func TestNormalizeNoJSONFound(t *testing.T) {
	for _, raw := range []string{"I cannot help with that.", "", "} backwards {"} {
		_, err := Normalize(raw, v1Schema(t))
		if !errors.Is(err, ErrNoJSONFound) {
			t.Fatalf("Normalize(%q) err=%v, want ErrNoJSONFound", raw, err)
		}
	}
}

func TestNormalizeMalformedJSONCarriesDiagnostics(t *testing.T) {
	raw := "Here you go: {\"Company Name\": \"Acme\",}"
	_, err := Normalize(raw, v1Schema(t))
	if !errors.Is(err, ErrMalformedJSON) {
		t.Fatalf("expected ErrMalformedJSON, got %v", err)
	}
	var outErr *OutputError
	if !errors.As(err, &outErr) {
		t.Fatalf("expected *OutputError, got %T", err)
	}
	if outErr.Raw != raw || outErr.Detail == "" {
		t.Fatalf("expected raw text and parser detail, got %+v", outErr)
	}
}

func TestRescaleOverMax(t *testing.T) {
	if got := RescaleOverMax(100, 10); got != 10 {
		t.Fatalf("RescaleOverMax(100) = %v", got)
	}
	if got := RescaleOverMax(0, 10); got != 0 {
		t.Fatalf("RescaleOverMax(0) = %v", got)
	}
}
