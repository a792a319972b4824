// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Escalint Contributors

package policy

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"strings"
	"sync"

	"github.com/samber/oops"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// ErrCodeParse marks malformed policy documents.
const ErrCodeParse = "PARSE_ERROR"

//go:embed schema.json
var schemaJSON []byte

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

// compiledSchema compiles the embedded JSON schema once.
func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
		if err != nil {
			schemaErr = oops.Wrapf(err, "read embedded policy schema")
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("policy.schema.json", doc); err != nil {
			schemaErr = oops.Wrapf(err, "register embedded policy schema")
			return
		}
		schema, schemaErr = c.Compile("policy.schema.json")
	})
	return schema, schemaErr
}

// SchemaJSON returns the JSON schema the JSON policy format is
// validated against.
func SchemaJSON() []byte {
	return schemaJSON
}

// ParseJSON decodes a policy from its JSON mapping form,
// {"pattern": ["cap", ...], ...}, validating the document against the
// embedded schema before decoding.
func ParseJSON(data []byte) (Policy, error) {
	sch, err := compiledSchema()
	if err != nil {
		return nil, err
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, oops.
			Code(ErrCodeParse).
			Wrapf(err, "policy document is not valid JSON")
	}
	if err := sch.Validate(inst); err != nil {
		return nil, oops.
			Code(ErrCodeParse).
			Wrapf(err, "policy document does not match the policy schema")
	}

	var raw map[string][]Capability
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, oops.
			Code(ErrCodeParse).
			Wrapf(err, "decode policy document")
	}

	p := make(Policy, len(raw))
	for pattern, caps := range raw {
		Merge(p, pattern, caps)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// ParseYAML decodes a policy from the equivalent YAML mapping.
func ParseYAML(data []byte) (Policy, error) {
	var raw map[string][]Capability
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, oops.
			Code(ErrCodeParse).
			Wrapf(err, "decode YAML policy document")
	}

	p := make(Policy, len(raw))
	for pattern, caps := range raw {
		Merge(p, pattern, caps)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// MarshalJSON renders the policy with capability lists deduplicated and
// sorted, and deny (when present) listed last, so output is deterministic.
func (p Policy) MarshalJSON() ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, pattern := range p.Patterns() {
		if i > 0 {
			b.WriteByte(',')
		}
		key, err := json.Marshal(pattern)
		if err != nil {
			return nil, err
		}
		b.Write(key)
		b.WriteByte(':')
		grants, denied := Grants(p[pattern])
		if denied {
			grants = append(grants, CapabilityDeny)
		}
		val, err := json.Marshal(grants)
		if err != nil {
			return nil, err
		}
		b.Write(val)
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}
