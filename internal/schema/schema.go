// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package schema generates JSON Schemas for event payloads and validates raw
// payloads against them before they are decoded.
package schema

import (
	"bytes"
	"encoding/json"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/samber/oops"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/holomush/blockguard/pkg/event"
)

// Error codes for schema failures.
const (
	CodeUnknownTag      = "UNKNOWN_TAG"
	CodeInvalidJSON     = "INVALID_JSON"
	CodeSchemaViolation = "SCHEMA_VIOLATION"
	CodeSchemaBuild     = "SCHEMA_BUILD"
)

// payloadTypes maps each tag to the payload struct its schema reflects.
var payloadTypes = map[event.Tag]any{
	event.TagBlockBreak: &event.BlockBreak{},
	event.TagBlockPlace: &event.BlockPlace{},
	event.TagPlayerJoin: &event.PlayerJoin{},
}

var (
	compileOnce sync.Once
	compiled    map[event.Tag]*jschema.Schema
	compileErr  error
)

// ID returns the schema $id for a tag.
func ID(tag event.Tag) string {
	return "https://holomush.dev/schemas/events/" + string(tag) + ".schema.json"
}

// Generate returns the JSON Schema for the payload of tag.
// Fields without omitempty are required; unknown fields are allowed.
func Generate(tag event.Tag) ([]byte, error) {
	v, ok := payloadTypes[tag]
	if !ok {
		return nil, oops.Code(CodeUnknownTag).With("tag", string(tag)).Errorf("no schema for tag %q", tag)
	}

	r := jsonschema.Reflector{
		DoNotReference:            true,
		AllowAdditionalProperties: true,
	}
	s := r.Reflect(v)
	s.ID = jsonschema.ID(ID(tag))
	s.Title = "Block guard " + string(tag) + " payload"

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, oops.Code(CodeSchemaBuild).With("tag", string(tag)).Wrapf(err, "marshal schema")
	}
	return data, nil
}

// Validate checks payload against the schema for tag.
func Validate(tag event.Tag, payload []byte) error {
	schemas, err := compiledSchemas()
	if err != nil {
		return err
	}
	sch, ok := schemas[tag]
	if !ok {
		return oops.Code(CodeUnknownTag).With("tag", string(tag)).Errorf("no schema for tag %q", tag)
	}

	inst, err := jschema.UnmarshalJSON(bytes.NewReader(payload))
	if err != nil {
		return oops.Code(CodeInvalidJSON).
			With("tag", string(tag)).
			With("length", len(payload)).
			Wrapf(err, "payload is not JSON")
	}

	if err := sch.Validate(inst); err != nil {
		return oops.Code(CodeSchemaViolation).
			With("tag", string(tag)).
			Wrapf(err, "payload does not match schema")
	}
	return nil
}

// compiledSchemas builds every tag's schema once.
func compiledSchemas() (map[event.Tag]*jschema.Schema, error) {
	compileOnce.Do(func() {
		c := jschema.NewCompiler()
		out := make(map[event.Tag]*jschema.Schema, len(payloadTypes))
		for _, tag := range event.Tags() {
			data, err := Generate(tag)
			if err != nil {
				compileErr = err
				return
			}
			doc, err := jschema.UnmarshalJSON(bytes.NewReader(data))
			if err != nil {
				compileErr = oops.Code(CodeSchemaBuild).With("tag", string(tag)).Wrap(err)
				return
			}
			if err := c.AddResource(ID(tag), doc); err != nil {
				compileErr = oops.Code(CodeSchemaBuild).With("tag", string(tag)).Wrap(err)
				return
			}
			sch, err := c.Compile(ID(tag))
			if err != nil {
				compileErr = oops.Code(CodeSchemaBuild).With("tag", string(tag)).Wrap(err)
				return
			}
			out[tag] = sch
		}
		compiled = out
	})
	return compiled, compileErr
}
