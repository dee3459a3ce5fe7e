// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides shared CUE validation utilities.
//
// Two flows are supported:
//
//   - [ParseAndDecode] compiles CUE source, unifies it with a definition from an
//     embedded schema, validates it and decodes the result (configuration files).
//   - [ValidateValue] encodes an already decoded Go value (a resource definition
//     read from JSON or YAML) and checks it against a schema definition.
//
// Errors carry the JSON-path of the offending field:
//
//	@resource.json: @position: conflicting values -1 and >=0
package cueutil
