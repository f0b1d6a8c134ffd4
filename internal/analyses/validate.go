package analyses

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

type compiledSchema struct {
	schema *jsonschema.Schema
}

func compileSchema(s Schema) (*compiledSchema, error) {
	b, err := json.Marshal(s.Document())
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	name := "analysis_" + s.Version + ".json"
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &compiledSchema{schema: compiled}, nil
}

// Validate reports missing keys and wrong value types as a *SchemaMismatchError.
func (s Schema) Validate(result Result) error {
	compiled := s.compiled
	if compiled == nil {
		var err error
		if compiled, err = compileSchema(s); err != nil {
			return err
		}
	}
	err := compiled.schema.Validate(map[string]any(result))
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return fmt.Errorf("validate result: %w", err)
	}
	deviations := leafMessages(ve, nil)
	sort.Strings(deviations)
	return &SchemaMismatchError{Version: s.Version, Deviations: deviations}
}

func leafMessages(ve *jsonschema.ValidationError, out []string) []string {
	if len(ve.Causes) == 0 {
		loc := ve.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		return append(out, loc+": "+ve.Message)
	}
	for _, cause := range ve.Causes {
		out = leafMessages(cause, out)
	}
	return out
}
