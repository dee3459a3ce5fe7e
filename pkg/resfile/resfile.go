// SPDX-License-Identifier: MPL-2.0

// Package resfile finds, reads and writes resource files.
//
// A resource file is named "@resource" followed by one of the supported
// extensions. When a directory holds several of them, the first extension in
// [Extensions] wins. JSON5 files are read as JSON extended with comments and
// trailing commas; they are written as plain indented JSON, which is valid
// JSON5.
package resfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"syscall"

	"github.com/tidwall/jsonc"

	"github.com/resdir/run/pkg/definition"
)

const (
	// BaseName is the file name of a resource file without extension.
	BaseName = "@resource"

	// DefaultExtension is used when a new resource file is created.
	DefaultExtension = ".json5"
)

var (
	// Extensions lists the supported extensions in search priority order.
	Extensions = []string{".json5", ".json", ".yaml", ".yml"}

	// ErrNotFound is returned when no resource file exists at a location.
	ErrNotFound = errors.New("resource file not found")

	// ErrUnsupportedFormat is returned for files that are not resource files.
	ErrUnsupportedFormat = errors.New("unsupported resource file format")
)

type (
	// SearchOptions configures Search.
	SearchOptions struct {
		// SearchParents walks up the directory tree until a resource file
		// is found or the file system root is reached.
		SearchParents bool
	}

	// FileError reports a failure reading or writing a specific file.
	FileError struct {
		Path string
		Op   string
		Err  error
	}
)

// Error implements the error interface.
func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *FileError) Unwrap() error { return e.Err }

// IsResourceFile reports whether path names a resource file.
func IsResourceFile(path string) bool {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) == BaseName && slices.Contains(Extensions, ext)
}

// FileName returns the resource file name for an extension.
func FileName(ext string) string { return BaseName + ext }

// Search returns the resource file designated by location, which may be a
// resource file or a directory. It returns ErrNotFound when there is none
// and reports any other stat failure.
func Search(location string, opts SearchOptions) (string, error) {
	location = filepath.Clean(location)

	if IsResourceFile(location) {
		ok, err := isFile(location)
		if err != nil {
			return "", &FileError{Path: location, Op: "search", Err: err}
		}
		if ok {
			return location, nil
		}
		return "", &FileError{Path: location, Op: "search", Err: ErrNotFound}
	}

	dir := location
	for {
		found, ok, err := searchDirectory(dir)
		if err != nil {
			return "", &FileError{Path: found, Op: "search", Err: err}
		}
		if ok {
			return found, nil
		}
		if !opts.SearchParents {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", &FileError{Path: location, Op: "search", Err: ErrNotFound}
}

func searchDirectory(dir string) (string, bool, error) {
	for _, ext := range Extensions {
		candidate := filepath.Join(dir, FileName(ext))
		ok, err := isFile(candidate)
		if err != nil || ok {
			return candidate, ok, err
		}
	}
	return "", false, nil
}

// isFile reports whether path is a regular file. A missing path is not an
// error; any other stat failure is.
func isFile(path string) (bool, error) {
	info, err := os.Stat(path)
	switch {
	case err == nil:
		return !info.IsDir(), nil
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, syscall.ENOTDIR):
		return false, nil
	default:
		return false, err
	}
}

// Exists reports whether dir contains a resource file.
func Exists(dir string) bool {
	_, ok, _ := searchDirectory(dir)
	return ok
}

// Load reads and decodes a resource file. The result is a *definition.Definition,
// or nil for an empty file, or a primitive value.
func Load(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FileError{Path: path, Op: "read", Err: err}
	}

	v, err := Decode(filepath.Ext(path), data)
	if err != nil {
		return nil, &FileError{Path: path, Op: "parse", Err: err}
	}
	return v, nil
}

// Decode decodes data according to a file extension.
func Decode(ext string, data []byte) (any, error) {
	switch ext {
	case ".json5", ".json":
		// Comments and trailing commas are tolerated in both.
		stripped := jsonc.ToJSON(data)
		if len(strings.TrimSpace(string(stripped))) == 0 {
			return nil, nil
		}
		return definition.DecodeJSON(stripped)
	case ".yaml", ".yml":
		return definition.DecodeYAML(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Encode encodes v according to a file extension.
func Encode(ext string, v any) ([]byte, error) {
	switch ext {
	case ".json5", ".json":
		return definition.EncodeJSON(v)
	case ".yaml", ".yml":
		return definition.EncodeYAML(v)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Save encodes v and writes it to path, creating parent directories.
func Save(path string, v any) error {
	data, err := Encode(filepath.Ext(path), v)
	if err != nil {
		return &FileError{Path: path, Op: "encode", Err: err}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &FileError{Path: path, Op: "write", Err: err}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &FileError{Path: path, Op: "write", Err: err}
	}
	return nil
}
