// SPDX-License-Identifier: MPL-2.0

package resource

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// Install markers written in the directory of a fetched resource.
const (
	InstalledMarker  = ".installed"
	InstallingMarker = ".installing"
)

// installOnce runs @install on a freshly fetched resource. A directory with
// an .installed marker is skipped. .installing is present while the install
// runs and is always removed afterwards, so an interrupted install is
// retried on the next load. Installs are not locked across processes.
func (e *Engine) installOnce(ctx context.Context, n *Node, dir, name string) (err error) {
	installed := filepath.Join(dir, InstalledMarker)
	if _, statErr := os.Stat(installed); statErr == nil {
		e.log.Debug("resource already installed", "resource", name, "dir", dir)
		return nil
	}

	installing := filepath.Join(dir, InstallingMarker)
	if _, statErr := os.Stat(installing); statErr == nil {
		e.log.Debug("retrying interrupted install", "resource", name, "dir", dir)
	}
	if err := os.WriteFile(installing, nil, 0o644); err != nil {
		return &IOError{Op: "write", Path: installing, Err: err}
	}
	defer func() {
		if rmErr := os.Remove(installing); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) && err == nil {
			err = &IOError{Op: "remove", Path: installing, Err: rmErr}
		}
	}()

	e.opts.Reporter.Intro("Installing " + name + "...")
	e.log.Debug("installing resource", "resource", name, "dir", dir)
	_, err = n.Invoke(ctx, Args("@install"), InvokeOptions{})
	if err == nil {
		if writeErr := os.WriteFile(installed, nil, 0o644); writeErr != nil {
			err = &IOError{Op: "write", Path: installed, Err: writeErr}
		}
	}
	e.opts.Reporter.Outro(name+" installed", err)
	return err
}
