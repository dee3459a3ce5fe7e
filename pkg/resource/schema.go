// SPDX-License-Identifier: MPL-2.0

package resource

import (
	_ "embed"
	"strings"
	"sync"

	"github.com/resdir/run/pkg/cueutil"
	"github.com/resdir/run/pkg/definition"
)

//go:embed definition_schema.cue
var definitionSchemaBytes []byte

var definitionSchema = sync.OnceValues(func() (*cueutil.Schema, error) {
	return cueutil.CompileSchema(definitionSchemaBytes, "#Definition")
})

// reservedKeys are the attribute keys of a definition. Any other key
// starting with "@" must be a built-in command.
var reservedKeys = map[string]bool{
	"@id":             true,
	"@version":        true,
	"@type":           true,
	"@import":         true,
	"@load":           true,
	"@directory":      true,
	"@aliases":        true,
	"@help":           true,
	"@parameters":     true,
	"@position":       true,
	"@runtime":        true,
	"@implementation": true,
	"@hidden":         true,
	"@autoBoxing":     true,
	"@autoUnboxing":   true,
	"@listen":         true,
	"@run":            true,
	"@value":          true,
	"@private":        true,
	"@export":         true,
}

// IsReservedKey reports whether key is an attribute key.
func IsReservedKey(key string) bool { return reservedKeys[key] }

// validateShape checks the types of the reserved keys of def.
func validateShape(def *definition.Definition, path, file string) error {
	shape := make(map[string]any)
	for k, v := range def.All {
		if reservedKeys[k] && k != "@value" && k != "@export" {
			shape[k] = shallow(v)
		}
	}
	if len(shape) == 0 {
		return nil
	}

	schema, err := definitionSchema()
	if err != nil {
		return err
	}
	name := file
	if name == "" {
		name = "<definition>"
	}
	if err := schema.Validate(shape, cueutil.WithFilename(name)); err != nil {
		return &DefinitionError{Path: path, Message: "reserved key has the wrong type", Err: err}
	}
	return nil
}

// shallow replaces nested mappings by empty maps: their content is validated
// when the nested definition is constructed.
func shallow(v any) any {
	switch t := v.(type) {
	case *definition.Definition:
		return map[string]any{}
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = shallow(item)
		}
		return out
	default:
		return t
	}
}

func isCommandLike(key string) bool { return strings.HasPrefix(key, "@") }
