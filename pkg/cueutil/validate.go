// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// Schema is a compiled schema definition that decoded Go values can be
// checked against repeatedly. It is safe for concurrent use.
type Schema struct {
	mu   sync.Mutex
	ctx  *cue.Context
	root cue.Value
}

// CompileSchema compiles schema and looks up the definition schemaPath.
func CompileSchema(schema []byte, schemaPath string) (*Schema, error) {
	ctx := cuecontext.New()
	root, err := lookupSchema(ctx, schema, schemaPath)
	if err != nil {
		return nil, err
	}
	return &Schema{ctx: ctx, root: root}, nil
}

// Validate checks a decoded Go value (maps, slices, scalars) against the schema.
func (s *Schema) Validate(value any, opts ...Option) error {
	o := applyOptions(opts)

	s.mu.Lock()
	defer s.mu.Unlock()

	encoded := s.ctx.Encode(value)
	if encoded.Err() != nil {
		return FormatError(encoded.Err(), o.filename)
	}
	return validate(s.root.Unify(encoded), o)
}

// ValidateValue compiles schema and validates value against schemaPath once.
func ValidateValue(schema []byte, schemaPath string, value any, opts ...Option) error {
	s, err := CompileSchema(schema, schemaPath)
	if err != nil {
		return err
	}
	return s.Validate(value, opts...)
}
