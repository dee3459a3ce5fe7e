// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/resdir/run/pkg/resource"
)

// RecordingExecutor records every method execution and returns Err.
type RecordingExecutor struct {
	mu       sync.Mutex
	requests []resource.ExecRequest
	Err      error
}

var _ resource.Executor = (*RecordingExecutor)(nil)

// Execute implements resource.Executor.
func (r *RecordingExecutor) Execute(_ context.Context, req resource.ExecRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
	return r.Err
}

// Requests returns a copy of the recorded executions.
func (r *RecordingExecutor) Requests() []resource.ExecRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]resource.ExecRequest, len(r.requests))
	copy(out, r.requests)
	return out
}

// LookupEnv returns an os.LookupEnv replacement reading from env.
func LookupEnv(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

// MustMkdirAll creates a directory along with any necessary parents.
// The test fails immediately if the operation fails.
func MustMkdirAll(t testing.TB, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("failed to create directory %s: %v", path, err)
	}
}

// MustWriteFile writes content to path, creating parent directories.
func MustWriteFile(t testing.TB, path, content string) {
	t.Helper()
	MustMkdirAll(t, filepath.Dir(path))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// WriteResource writes content as dir/@resource.json5 and returns the file path.
func WriteResource(t testing.TB, dir, content string) string {
	t.Helper()
	file := filepath.Join(dir, "@resource.json5")
	MustWriteFile(t, file, content)
	return file
}

// PublishResource lays content out the way registry.DirectoryClient expects:
// root/<namespace>/<name>/<version>/@resource.json5.
func PublishResource(t testing.TB, root, namespace, name, version, content string) string {
	t.Helper()
	return WriteResource(t, filepath.Join(root, namespace, name, version), content)
}
