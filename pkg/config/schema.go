package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrSchema wraps every fixture validation failure.
var ErrSchema = errors.New("fixture does not match schema")

//go:embed fixture.schema.json
var schemaJSON string

const schemaURL = "fixture.schema.json"

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}
	return compiler.Compile(schemaURL)
})

// Schema returns the JSON Schema fixtures are validated against.
func Schema() string {
	return schemaJSON
}

// Validate checks a fixture against the fixture schema and the rules the
// schema cannot express.
func Validate(fx *Fixture) error {
	if fx == nil {
		return fmt.Errorf("%w: fixture is nil", ErrSchema)
	}
	data, err := json.Marshal(fx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSchema, err)
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrSchema, err)
	}
	if err := validateDocument(raw); err != nil {
		return err
	}
	return fx.check()
}

// validateDocument validates a decoded document. YAML values are converted to
// JSON and back first so the validator sees JSON types.
func validateDocument(raw any) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compiling fixture schema: %w", err)
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSchema, err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrSchema, err)
	}

	if err := schema.Validate(doc); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("%w: %s", ErrSchema, strings.Join(schemaMessages(verr), "; "))
		}
		return fmt.Errorf("%w: %v", ErrSchema, err)
	}
	return nil
}

// schemaMessages flattens a validation error tree into "location: message"
// lines, one per leaf.
func schemaMessages(err *jsonschema.ValidationError) []string {
	if len(err.Causes) == 0 {
		location := err.InstanceLocation
		if location == "" {
			location = "/"
		}
		return []string{location + ": " + err.Message}
	}
	var messages []string
	for _, cause := range err.Causes {
		messages = append(messages, schemaMessages(cause)...)
	}
	return messages
}

// check enforces the rules the schema leaves open.
func (f *Fixture) check() error {
	var errs []error
	checkPaths(f.Paths, "paths", &errs)
	for i, h := range f.Hosts {
		checkPaths(h.Paths, fmt.Sprintf("hosts[%d].paths", i), &errs)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrSchema, errors.Join(errs...))
	}
	return nil
}

func checkPaths(paths []PathConfig, loc string, errs *[]error) {
	for i, p := range paths {
		at := fmt.Sprintf("%s[%d]", loc, i)
		for j, r := range p.Responses {
			if err := r.check(); err != nil {
				*errs = append(*errs, fmt.Errorf("%s.responses[%d]: %w", at, j, err))
			}
		}
		checkPaths(p.Paths, at+".paths", errs)
	}
}

func (r ResponseConfig) check() error {
	if r.Delay != "" {
		if _, err := time.ParseDuration(r.Delay); err != nil {
			return fmt.Errorf("invalid delay %q", r.Delay)
		}
	}
	if r.Times != 0 && (r.Lifetime == LifetimeSingle || r.Lifetime == LifetimeEternal) {
		return fmt.Errorf("times is only valid with lifetime %q", LifetimeMultiple)
	}
	return nil
}
