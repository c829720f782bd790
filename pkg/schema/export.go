package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/ormasoftchile/adbind/pkg/property"
)

// GenerateJSONSchema produces a JSON Schema Draft 2020-12 document from
// the Go Manifest struct using invopop/jsonschema.
func GenerateJSONSchema() ([]byte, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = false

	s := r.Reflect(&Manifest{})
	s.ID = "https://github.com/ormasoftchile/adbind/schemas/manifest-v1.json"
	s.Title = "AD Binding Manifest v1"
	s.Description = "Schema for adbind desired-state YAML documents (Draft 2020-12)"

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	return data, nil
}

// JSONSchema describes every configurable property so editors and the
// semantic validation phase reject unknown keys.
func (Properties) JSONSchema() *jsonschema.Schema {
	s := &jsonschema.Schema{
		Type:                 "object",
		Description:          "Desired AD plugin settings keyed by canonical property name",
		Properties:           jsonschema.NewProperties(),
		AdditionalProperties: jsonschema.FalseSchema,
	}
	for _, d := range property.All() {
		if !d.Configurable {
			continue
		}
		s.Properties.Set(string(d.Key), propertySchema(d))
	}
	return s
}

func propertySchema(d property.Descriptor) *jsonschema.Schema {
	var ps *jsonschema.Schema
	switch d.Kind {
	case property.KindToggle:
		ps = &jsonschema.Schema{OneOf: []*jsonschema.Schema{
			{Type: "boolean"},
			{Type: "string", Enum: []any{property.Enable, property.Disable}},
		}}
	case property.KindList:
		ps = &jsonschema.Schema{OneOf: []*jsonschema.Schema{
			{Type: "array", Items: &jsonschema.Schema{Type: "string"}},
			{Type: "string"},
			{Type: "null"},
		}}
	case property.KindEnum:
		enum := make([]any, len(d.Enum))
		for i, e := range d.Enum {
			enum[i] = e
		}
		ps = &jsonschema.Schema{Type: "string", Enum: enum}
	case property.KindInteger:
		ps = &jsonschema.Schema{OneOf: []*jsonschema.Schema{
			{Type: "integer"},
			{Type: "string", Pattern: "^[0-9]+$"},
		}}
	default:
		if d.NoFlag {
			ps = &jsonschema.Schema{OneOf: []*jsonschema.Schema{{Type: "string"}, {Type: "null"}}}
		} else {
			ps = &jsonschema.Schema{Type: "string"}
		}
	}
	ps.Title = d.Label
	ps.Description = "dsconfigad -" + d.Flag
	return ps
}
