package analyses

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// NotProvided is the sentinel the model uses for values missing from the deck.
const NotProvided = "Not provided"

// DefaultSchemaVersion is used when no version is configured.
const DefaultSchemaVersion = "v2"

// FieldKind describes the JSON shape of a top-level result field.
type FieldKind int

const (
	KindString FieldKind = iota
	KindScore
	KindFounders
	KindTeam
)

// SubField is one key of a founder or team sub-record.
type SubField struct {
	Name    string
	Types   []string
	Example any
}

// Field is one top-level key of the result object.
type Field struct {
	Name string
	Kind FieldKind
}

// ScoreRescaler maps a parsed score onto the schema's scale.
type ScoreRescaler func(value, max float64) float64

// Schema is the contract shared by the prompt builder and the normalizer.
type Schema struct {
	Version       string
	Fields        []Field
	ScoreField    string
	ScoreMax      float64
	ScoreExample  int
	FounderFields []SubField
	TeamFields    []SubField
	Rescale       ScoreRescaler
	compiled      *compiledSchema
}

// FieldNames returns the top-level keys in prompt order.
func (s Schema) FieldNames() []string {
	names := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		names = append(names, f.Name)
	}
	return names
}

// StringFieldNames returns the keys whose values are plain strings.
func (s Schema) StringFieldNames() []string {
	var names []string
	for _, f := range s.Fields {
		if f.Kind == KindString {
			names = append(names, f.Name)
		}
	}
	return names
}

// WithRescaler returns a copy of s that rescales scores with fn.
func (s Schema) WithRescaler(fn ScoreRescaler) Schema {
	s.Rescale = fn
	return s
}

// Example renders the literal output shape embedded in the prompt, keys in
// field order.
func (s Schema) Example() string {
	var b bytes.Buffer
	b.WriteString("{\n")
	for i, f := range s.Fields {
		b.WriteString("  ")
		writeJSON(&b, f.Name)
		b.WriteString(": ")
		switch f.Kind {
		case KindScore:
			fmt.Fprintf(&b, "%d", s.ScoreExample)
		case KindFounders:
			b.WriteString("[\n    ")
			writeSubRecord(&b, s.FounderFields, "    ")
			b.WriteString("\n  ]")
		case KindTeam:
			writeSubRecord(&b, s.TeamFields, "  ")
		default:
			writeJSON(&b, NotProvided)
		}
		if i < len(s.Fields)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("}")
	return b.String()
}

func writeSubRecord(b *bytes.Buffer, fields []SubField, indent string) {
	b.WriteString("{\n")
	for i, f := range fields {
		b.WriteString(indent + "  ")
		writeJSON(b, f.Name)
		b.WriteString(": ")
		writeJSON(b, f.Example)
		if i < len(fields)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString(indent + "}")
}

func writeJSON(b *bytes.Buffer, v any) {
	enc, _ := json.Marshal(v)
	b.Write(enc)
}

// Document returns the JSON-Schema used to check parsed results.
func (s Schema) Document() map[string]any {
	props := make(map[string]any, len(s.Fields))
	for _, f := range s.Fields {
		switch f.Kind {
		case KindScore:
			props[f.Name] = map[string]any{"type": "number"}
		case KindFounders:
			props[f.Name] = map[string]any{
				"type":  "array",
				"items": subRecordSchema(s.FounderFields),
			}
		case KindTeam:
			props[f.Name] = subRecordSchema(s.TeamFields)
		default:
			props[f.Name] = map[string]any{"type": "string"}
		}
	}
	return map[string]any{
		"type":       "object",
		"required":   s.FieldNames(),
		"properties": props,
	}
}

func subRecordSchema(fields []SubField) map[string]any {
	props := make(map[string]any, len(fields))
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		props[f.Name] = map[string]any{"type": f.Types}
		names = append(names, f.Name)
	}
	return map[string]any{
		"type":       "object",
		"required":   names,
		"properties": props,
	}
}

var registry = map[string]Schema{}

func register(s Schema) {
	if s.Rescale == nil {
		s.Rescale = RescaleOverMax
	}
	compiled, err := compileSchema(s)
	if err != nil {
		panic(fmt.Sprintf("analyses: compile schema %s: %v", s.Version, err))
	}
	s.compiled = compiled
	registry[s.Version] = s
}

// SchemaFor returns the registered schema for version.
func SchemaFor(version string) (Schema, bool) {
	v := strings.ToLower(strings.TrimSpace(version))
	if v == "" {
		v = DefaultSchemaVersion
	}
	s, ok := registry[v]
	return s, ok
}

// Versions lists registered schema versions in order.
func Versions() []string {
	out := make([]string, 0, len(registry))
	for v := range registry {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
