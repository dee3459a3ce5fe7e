// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/resdir/run/pkg/resid"
)

// DirectoryClient serves resources from a directory laid out as
// <root>/<namespace>/<name>/<version>/@resource.*.
type DirectoryClient struct {
	Root string
}

// NewDirectoryClient returns a client reading from root.
func NewDirectoryClient(root string) *DirectoryClient {
	return &DirectoryClient{Root: root}
}

// Fetch implements Client. The highest version satisfying the range wins.
func (c *DirectoryClient) Fetch(ctx context.Context, spec resid.Specifier) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir := resourceDir(c.Root, spec.Identifier)
	versions, err := listVersionDirs(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &NotFoundError{Specifier: spec}
		}
		return nil, err
	}

	version, ok := spec.Range.MaxSatisfying(versions)
	if !ok {
		return nil, &NotFoundError{Specifier: spec, Available: versions}
	}
	return loadResult(filepath.Join(dir, version), version)
}
