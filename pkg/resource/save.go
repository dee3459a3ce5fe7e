// SPDX-License-Identifier: MPL-2.0

package resource

import (
	"context"
	"os"
	"path/filepath"

	"github.com/resdir/run/pkg/definition"
	"github.com/resdir/run/pkg/resfile"
)

// SaveOptions configures Node.Save.
type SaveOptions struct {
	// File overrides the destination. Its extension selects the format.
	File string
	// Directory receives a new @resource.json5 when the node has no file.
	Directory string
	// EnsureDirectory creates the destination directory if needed.
	EnsureDirectory bool
}

// Save writes a root node to its resource file, emitting before:@save and
// after:@save around the write.
func (n *Node) Save(ctx context.Context, opts SaveOptions) error {
	if !n.IsRoot() {
		return &StateError{Path: n.Path(), Op: "save", Message: "only root resources can be saved"}
	}

	file := opts.File
	if file == "" && opts.Directory == "" {
		file = n.resourceFile
	}
	if file == "" {
		dir := opts.Directory
		if dir == "" {
			dir = n.currentDirectory
		}
		if dir == "" {
			return &StateError{Op: "save", Message: "the resource has no file and no directory"}
		}
		file = filepath.Join(dir, resfile.FileName(resfile.DefaultExtension))
	}

	if !opts.EnsureDirectory {
		if _, err := os.Stat(filepath.Dir(file)); err != nil {
			return &IOError{Op: "save", Path: file, Err: err}
		}
	}

	if err := n.Emit(ctx, "before:@save", Arguments{}); err != nil {
		return err
	}

	out := n.Serialize(SerializeOptions{})
	if out == nil {
		out = definition.New()
	}
	if err := resfile.Save(file, out); err != nil {
		return &IOError{Op: "save", Path: file, Err: err}
	}
	n.resourceFile = file
	if n.currentDirectory == "" {
		n.currentDirectory = filepath.Dir(file)
	}
	n.engine.log.Debug("resource saved", "file", file)

	return n.Emit(ctx, "after:@save", Arguments{})
}
