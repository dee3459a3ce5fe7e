// SPDX-License-Identifier: MPL-2.0

package resource

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/resdir/run/pkg/definition"
	"github.com/resdir/run/pkg/registry"
	"github.com/resdir/run/pkg/resid"
)

func TestLoadLocation(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := writeResource(t, dir, `{
  // comments and trailing commas are fine
  "name": "demo",
}`)
	e, _ := newTestEngine(t, Options{})

	n, err := e.Load(context.Background(), dir, LoadOptions{})
	if err != nil {
		t.Fatalf("Load(%q) error = %v", dir, err)
	}
	if n.ResourceFile() != file {
		t.Errorf("ResourceFile() = %q, want %q", n.ResourceFile(), file)
	}
	if n.CurrentDirectory() != dir {
		t.Errorf("CurrentDirectory() = %q, want %q", n.CurrentDirectory(), dir)
	}
	if v, _ := n.Get("name"); v.Raw() != "demo" {
		t.Errorf("Get(name) = %v, want demo", v.Raw())
	}

	rel, err := e.Load(context.Background(), "./"+filepath.Base(dir), LoadOptions{Directory: filepath.Dir(dir)})
	if err != nil {
		t.Fatalf("Load(relative) error = %v", err)
	}
	if rel.ResourceFile() != file {
		t.Errorf("relative ResourceFile() = %q, want %q", rel.ResourceFile(), file)
	}
	if rel == n {
		t.Error("Load() returned a cached root")
	}
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeResource(t, filepath.Join(dir, "plain"), `{"name": "x"}`)
	writeResource(t, filepath.Join(dir, "broken"), `{"name": `)
	e, _ := newTestEngine(t, Options{})
	ctx := context.Background()

	tests := []struct {
		name    string
		spec    string
		opts    LoadOptions
		wantErr error
	}{
		{"relative without directory", "./plain", LoadOptions{}, ErrState},
		{"missing location", filepath.Join(dir, "nothing"), LoadOptions{}, ErrNotFound},
		{"import without export", "./plain", LoadOptions{Directory: dir, Importing: true}, ErrDefinition},
		{"unparsable file", "./broken", LoadOptions{Directory: dir}, ErrDefinition},
		{"identifier without registry", "acme/tool", LoadOptions{}, ErrNotFound},
		{"invalid specifier", "not a specifier", LoadOptions{}, ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := e.Load(ctx, tt.spec, tt.opts)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Load(%q) error = %v, want %v", tt.spec, err, tt.wantErr)
			}
			var resErr *ResolutionError
			if !errors.As(err, &resErr) || resErr.Specifier != tt.spec {
				t.Errorf("Load(%q) error = %v, want a *ResolutionError for the specifier", tt.spec, err)
			}
		})
	}
}

func TestLoadAllowMissing(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(t, Options{})
	n, err := e.Load(context.Background(), t.TempDir(), LoadOptions{AllowMissing: true})
	if err != nil || n != nil {
		t.Errorf("Load() = (%v, %v), want (nil, nil)", n, err)
	}
}

func TestLoadSearchParents(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := writeResource(t, dir, `{}`)
	nested := filepath.Join(dir, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	e, _ := newTestEngine(t, Options{})

	n, err := e.Load(context.Background(), nested, LoadOptions{SearchParents: true})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if n.ResourceFile() != file {
		t.Errorf("ResourceFile() = %q, want %q", n.ResourceFile(), file)
	}
}

func TestImportedBasesAreShared(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeResource(t, filepath.Join(dir, "base"), `{"@export": {"greeting": "hello"}}`)
	e, _ := newTestEngine(t, Options{})
	ctx := context.Background()

	first, err := e.Create(ctx, of("@import", "./base"), dir)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	second, err := e.Create(ctx, of("@type", "./base/@resource.json5", "greeting", "hi"), dir)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if first.Bases()[0] != second.Bases()[0] {
		t.Error("two imports of the same file built two bases")
	}
	if v, _ := first.Get("greeting"); v.Raw() != "hello" {
		t.Errorf("first.Get(greeting) = %v, want hello", v.Raw())
	}
	if v, _ := second.Get("greeting"); v.Raw() != "hi" {
		t.Errorf("second.Get(greeting) = %v, want hi", v.Raw())
	}

	loaded, err := e.Create(ctx, of("@load", "./base"), dir)
	if err != nil {
		t.Fatalf("Create(@load) error = %v", err)
	}
	if loaded.Bases()[0] == first.Bases()[0] {
		t.Error("@load and @import share a base")
	}
	if loaded.Bases()[0].Export() == nil {
		t.Error("@load base has no export")
	}
}

func TestImportCycleIsDetected(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeResource(t, filepath.Join(dir, "a"), `{"@load": "../b"}`)
	writeResource(t, filepath.Join(dir, "b"), `{"@load": "../a"}`)
	e, _ := newTestEngine(t, Options{})

	_, err := e.Load(context.Background(), "./a", LoadOptions{Directory: dir})
	if !errors.Is(err, ErrDefinition) {
		t.Fatalf("Load() error = %v, want ErrDefinition", err)
	}
	if !errors.Is(err, ErrImportCycle) || !strings.Contains(err.Error(), "import cycle") {
		t.Errorf("Load() error = %v, want an import cycle", err)
	}
}

func TestConcurrentBaseLoadsAreCollapsed(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeResource(t, filepath.Join(dir, "base"), `{"@export": {"x": 1}}`)
	e, _ := newTestEngine(t, Options{})

	var wg sync.WaitGroup
	bases := make([]*Node, 8)
	errs := make([]error, 8)
	for i := range bases {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := e.Create(context.Background(), of("@import", "./base"), dir)
			errs[i] = err
			if err == nil {
				bases[i] = n.Bases()[0]
			}
		}()
	}
	wg.Wait()

	for i := range bases {
		if errs[i] != nil {
			t.Fatalf("Create() error = %v", errs[i])
		}
		if bases[i] != bases[0] {
			t.Errorf("base %d differs from base 0", i)
		}
	}
	if got := e.arena.Len(); got != 1 {
		t.Errorf("arena.Len() = %d, want 1", got)
	}
}

func fakeRegistry(t *testing.T, dir string, def any, calls *int) registry.Client {
	t.Helper()
	return registry.ClientFunc(func(_ context.Context, spec resid.Specifier) (*registry.Result, error) {
		*calls++
		if spec.Identifier.String() != "acme/tool" {
			return nil, &registry.NotFoundError{Specifier: spec}
		}
		return &registry.Result{Definition: def, File: filepath.Join(dir, "@resource.json5"), Directory: dir, Version: "1.0.0"}, nil
	})
}

func TestRegistryFetchInstallsOnce(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	def := of("@version", "1.0.0", "setup", of("@type", "method", "@listen", "before:@install", "@run", "make install"))
	calls := 0
	exec := &recordingExecutor{}
	e, _ := newTestEngine(t, Options{Registry: fakeRegistry(t, dir, def, &calls), Executor: exec})
	ctx := context.Background()

	for range 2 {
		if _, err := e.Load(ctx, "acme/tool@^1.0.0", LoadOptions{}); err != nil {
			t.Fatalf("Load() error = %v", err)
		}
	}

	if calls != 2 {
		t.Errorf("registry calls = %d, want 2 (roots are not cached)", calls)
	}
	if got := exec.scripts(); len(got) != 1 || got[0] != "make install" {
		t.Errorf("install scripts = %v, want [make install]", got)
	}
	if _, err := os.Stat(filepath.Join(dir, InstalledMarker)); err != nil {
		t.Errorf("%s missing: %v", InstalledMarker, err)
	}
	if _, err := os.Stat(filepath.Join(dir, InstallingMarker)); !os.IsNotExist(err) {
		t.Errorf("%s left behind: %v", InstallingMarker, err)
	}

	if _, err := e.Load(ctx, "acme/other", LoadOptions{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load(acme/other) error = %v, want ErrNotFound", err)
	}
}

func TestFailedInstallIsRetried(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	def := of("setup", of("@type", "method", "@listen", "after:@install", "@run", "fail"))
	calls := 0
	exec := &recordingExecutor{err: errors.New("exit status 1")}
	e, _ := newTestEngine(t, Options{Registry: fakeRegistry(t, dir, def, &calls), Executor: exec})
	ctx := context.Background()

	if _, err := e.Load(ctx, "acme/tool", LoadOptions{}); err == nil {
		t.Fatal("Load() error = nil, want the install failure")
	}
	for _, marker := range []string{InstalledMarker, InstallingMarker} {
		if _, err := os.Stat(filepath.Join(dir, marker)); !os.IsNotExist(err) {
			t.Errorf("%s exists after a failed install: %v", marker, err)
		}
	}

	exec.err = nil
	if _, err := e.Load(ctx, "acme/tool", LoadOptions{}); err != nil {
		t.Fatalf("retry Load() error = %v", err)
	}
	if got := len(exec.scripts()); got != 2 {
		t.Errorf("install attempts = %d, want 2", got)
	}
}

func TestInterruptedInstallIsResumed(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, InstallingMarker), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	def := of("setup", of("@type", "method", "@listen", "before:@install", "@run", "make install"))
	calls := 0
	exec := &recordingExecutor{}
	e, _ := newTestEngine(t, Options{Registry: fakeRegistry(t, dir, def, &calls), Executor: exec})

	if _, err := e.Load(context.Background(), "acme/tool", LoadOptions{}); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := exec.scripts(); len(got) != 1 || got[0] != "make install" {
		t.Errorf("install scripts = %v, want [make install]", got)
	}
	if _, err := os.Stat(filepath.Join(dir, InstalledMarker)); err != nil {
		t.Errorf("%s missing: %v", InstalledMarker, err)
	}
	if _, err := os.Stat(filepath.Join(dir, InstallingMarker)); !os.IsNotExist(err) {
		t.Errorf("%s left behind: %v", InstallingMarker, err)
	}
}

func TestLocalOverride(t *testing.T) {
	t.Parallel()

	local := t.TempDir()
	writeResource(t, filepath.Join(local, "acme", "tool"), `{"@version": "1.2.0", "origin": "local"}`)
	regDir := t.TempDir()
	calls := 0
	reg := fakeRegistry(t, regDir, of("@version", "2.0.0", "origin", "registry"), &calls)
	e, _ := newTestEngine(t, Options{Registry: reg, LocalResourcesDir: local})
	ctx := context.Background()

	tests := []struct {
		spec string
		want string
	}{
		{"acme/tool", "local"},
		{"acme/tool@^1.0.0", "local"},
		{"acme/tool@^2.0.0", "registry"},
	}
	for _, tt := range tests {
		n, err := e.Load(ctx, tt.spec, LoadOptions{})
		if err != nil {
			t.Fatalf("Load(%q) error = %v", tt.spec, err)
		}
		if v, _ := n.Get("origin"); v.Raw() != tt.want {
			t.Errorf("Load(%q).Get(origin) = %v, want %q", tt.spec, v.Raw(), tt.want)
		}
	}
	if calls != 1 {
		t.Errorf("registry calls = %d, want 1", calls)
	}

	disabled, _ := newTestEngine(t, Options{Registry: reg, LocalResourcesDir: "0"})
	n, err := disabled.Load(ctx, "acme/tool", LoadOptions{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if v, _ := n.Get("origin"); v.Raw() != "registry" {
		t.Errorf("Get(origin) with overrides disabled = %v, want registry", v.Raw())
	}
}

func TestLocalOverrideStatFailure(t *testing.T) {
	t.Parallel()

	local := t.TempDir()
	dir := filepath.Join(local, "acme", "tool")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	loop := filepath.Join(dir, "@resource.json5")
	if err := os.Symlink(loop, loop); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	calls := 0
	reg := fakeRegistry(t, t.TempDir(), of("origin", "registry"), &calls)
	e, _ := newTestEngine(t, Options{Registry: reg, LocalResourcesDir: local})

	_, err := e.Load(context.Background(), "acme/tool", LoadOptions{})
	if !errors.Is(err, ErrIO) {
		t.Errorf("Load() error = %v, want ErrIO", err)
	}
	if calls != 0 {
		t.Errorf("registry calls = %d, want 0", calls)
	}
}

func TestLoadInMemoryDefinition(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(t, Options{})
	n, err := e.Load(context.Background(), definition.Of("@export", of("x", 1)), LoadOptions{Importing: true})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if v, _ := n.Get("x"); v.Raw() != float64(1) {
		t.Errorf("Get(x) = %v, want 1", v.Raw())
	}
}
