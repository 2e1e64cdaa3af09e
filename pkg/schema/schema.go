// Package schema provides the optional validation gate for resolved
// configurations. When a schema file is supplied, resolved configs are
// checked against it before being written; a failing config aborts that one
// resolution without affecting the rest of a batch.
package schema

import (
	"bytes"

	"github.com/goccy/go-json"
	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/pbxforge/pbxforge/pkg/forgeerrors"
)

// Validator validates resolved configurations against a JSON schema.
// A Validator is immutable after compilation and safe for concurrent use.
type Validator struct {
	schema *jsonschema.Schema
}

// Compile loads and compiles a JSON schema file.
func Compile(path string) (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	sch, err := compiler.Compile(path)
	if err != nil {
		return nil, forgeerrors.Wrap(err, forgeerrors.ErrorTypeConfig, "failed to compile schema").
			WithDetail("path", path)
	}
	return &Validator{schema: sch}, nil
}

// Validate checks any JSON-encodable value (typically a *config.Config)
// against the schema. Failures are reported as validation errors with the
// schema violation as cause.
func (v *Validator) Validate(value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return forgeerrors.Wrap(err, forgeerrors.ErrorTypeInternal, "failed to encode configuration")
	}

	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return forgeerrors.Wrap(err, forgeerrors.ErrorTypeInternal, "failed to decode configuration")
	}

	if err := v.schema.Validate(instance); err != nil {
		return forgeerrors.Wrap(err, forgeerrors.ErrorTypeValidation, "configuration failed schema validation")
	}
	return nil
}
