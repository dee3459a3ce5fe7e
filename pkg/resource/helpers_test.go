// SPDX-License-Identifier: MPL-2.0

package resource

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/resdir/run/pkg/definition"
)

// recordingExecutor records the scripts it is asked to run.
type recordingExecutor struct {
	mu       sync.Mutex
	requests []ExecRequest
	err      error
}

func (r *recordingExecutor) Execute(_ context.Context, req ExecRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
	return r.err
}

func (r *recordingExecutor) scripts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.requests))
	for i, req := range r.requests {
		out[i] = req.Script
	}
	return out
}

func newTestEngine(t *testing.T, opts Options) (*Engine, *bytes.Buffer) {
	t.Helper()
	var stdout bytes.Buffer
	if opts.Stdout == nil {
		opts.Stdout = &stdout
	}
	return New(opts), &stdout
}

func mustCreate(t *testing.T, e *Engine, def any) *Node {
	t.Helper()
	n, err := e.Create(context.Background(), def, "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return n
}

func writeResource(t *testing.T, dir, content string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll(%q) error = %v", dir, err)
	}
	file := filepath.Join(dir, "@resource.json5")
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%q) error = %v", file, err)
	}
	return file
}

func encode(t *testing.T, v any) string {
	t.Helper()
	data, err := definition.EncodeJSON(v)
	if err != nil {
		t.Fatalf("EncodeJSON() error = %v", err)
	}
	return string(data)
}

var of = definition.Of
