// SPDX-License-Identifier: MPL-2.0

// Package registry fetches published resources by identifier and version
// range. The engine only depends on the [Client] interface; this package
// provides a client for a local directory mirror and one backed by Git tags.
package registry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/resdir/run/pkg/resfile"
	"github.com/resdir/run/pkg/resid"
	"github.com/resdir/run/pkg/semver"
)

// ErrResourceNotFound is returned when no published version matches.
var ErrResourceNotFound = errors.New("resource not found in registry")

type (
	// Client fetches a resource from a registry.
	Client interface {
		// Fetch returns the resource matching the identifier and range of spec.
		// It returns an error wrapping ErrResourceNotFound when nothing matches.
		Fetch(ctx context.Context, spec resid.Specifier) (*Result, error)
	}

	// Result is a fetched resource.
	Result struct {
		// Definition is the decoded resource file content.
		Definition any
		// File is the path of the resource file inside Directory.
		File string
		// Directory holds the fetched resource. Installation markers live here.
		Directory string
		// Version is the version that was selected.
		Version string
	}

	// NotFoundError wraps ErrResourceNotFound with the requested specifier.
	NotFoundError struct {
		Specifier resid.Specifier
		Available []string
	}

	// ClientFunc adapts a function to the Client interface.
	ClientFunc func(ctx context.Context, spec resid.Specifier) (*Result, error)
)

// Fetch calls f.
func (f ClientFunc) Fetch(ctx context.Context, spec resid.Specifier) (*Result, error) {
	return f(ctx, spec)
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if len(e.Available) > 0 {
		return fmt.Sprintf("no version of %s matches %q (available: %v)", e.Specifier.Identifier, e.Specifier.Range, e.Available)
	}
	return fmt.Sprintf("%s not found in registry", e.Specifier)
}

// Unwrap returns ErrResourceNotFound.
func (e *NotFoundError) Unwrap() error { return ErrResourceNotFound }

// loadResult reads the resource file found in dir.
func loadResult(dir, version string) (*Result, error) {
	file, err := resfile.Search(dir, resfile.SearchOptions{})
	if err != nil {
		return nil, err
	}
	def, err := resfile.Load(file)
	if err != nil {
		return nil, err
	}
	return &Result{Definition: def, File: file, Directory: dir, Version: version}, nil
}

// listVersionDirs returns the names of the subdirectories of dir that are versions.
func listVersionDirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var versions []string
	for _, entry := range entries {
		if entry.IsDir() && semver.IsValidVersion(entry.Name()) {
			versions = append(versions, entry.Name())
		}
	}
	return versions, nil
}

// resourceDir returns <root>/<namespace>/<name>.
func resourceDir(root string, id resid.Identifier) string {
	return filepath.Join(root, string(id.Namespace), string(id.Name))
}
