// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	stderrors "errors"
	"fmt"
	"strings"

	"cuelang.org/go/cue/errors"
)

// ErrSchema is wrapped by every error produced by FormatError.
var ErrSchema = stderrors.New("schema validation failed")

// SchemaError lists the schema violations found in one file.
type SchemaError struct {
	// FilePath is the file being validated.
	FilePath string
	// Violations are "<json-path>: <message>" lines.
	Violations []string
	// Cause is set when the error did not come from CUE.
	Cause error
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.FilePath, e.Cause)
	}
	if len(e.Violations) == 1 {
		return fmt.Sprintf("%s: %s", e.FilePath, e.Violations[0])
	}
	return fmt.Sprintf("%s: validation failed:\n  %s", e.FilePath, strings.Join(e.Violations, "\n  "))
}

// Unwrap returns ErrSchema and the non-CUE cause, if any.
func (e *SchemaError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrSchema, e.Cause}
	}
	return []error{ErrSchema}
}

// FormatError converts a CUE error into a *SchemaError whose lines are
// prefixed with JSON paths, e.g.
//
//	config.cue: ui.color_scheme: 3 errors in empty disjunction
func FormatError(err error, filePath string) error {
	if err == nil {
		return nil
	}

	cueErrors := errors.Errors(err)
	if len(cueErrors) == 0 {
		return &SchemaError{FilePath: filePath, Cause: err}
	}

	var lines []string
	for _, e := range cueErrors {
		pathStr := formatPath(errors.Path(e))
		msg := e.Error()

		// CUE sometimes includes the path in the message itself
		if pathStr != "" && strings.HasPrefix(msg, pathStr) {
			msg = strings.TrimPrefix(msg, pathStr)
			msg = strings.TrimPrefix(msg, ":")
			msg = strings.TrimSpace(msg)
		}

		if pathStr != "" {
			lines = append(lines, fmt.Sprintf("%s: %s", pathStr, msg))
		} else {
			lines = append(lines, msg)
		}
	}

	return &SchemaError{FilePath: filePath, Violations: lines}
}

// formatPath renders ["@parameters", "0", "@type"] as "@parameters[0].@type".
// CUE quotes labels that are not identifiers; the quotes are dropped.
func formatPath(path []string) string {
	var result strings.Builder
	for i, part := range path {
		part = strings.Trim(part, `"`)
		isIndex := part != ""
		for _, c := range part {
			if c < '0' || c > '9' {
				isIndex = false
				break
			}
		}

		if isIndex && i > 0 {
			result.WriteString("[")
			result.WriteString(part)
			result.WriteString("]")
		} else {
			if i > 0 {
				result.WriteString(".")
			}
			result.WriteString(part)
		}
	}

	return result.String()
}

// CheckFileSize verifies that data does not exceed maxSize bytes.
func CheckFileSize(data []byte, maxSize int64, filename string) error {
	if int64(len(data)) > maxSize {
		return fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes",
			filename, len(data), maxSize)
	}
	return nil
}
