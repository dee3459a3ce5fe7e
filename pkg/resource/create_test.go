// SPDX-License-Identifier: MPL-2.0

package resource

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/resdir/run/pkg/semver"
)

func TestCreateInfersKindFromValue(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(t, Options{})
	n := mustCreate(t, e, of("name", "hello", "count", 3, "enabled", true, "tags", []any{"a"}, "nested", of("x", 1)))

	tests := []struct {
		key  string
		kind string
	}{
		{"name", "string"},
		{"count", "number"},
		{"enabled", "boolean"},
		{"tags", "array"},
		{"nested", TypeResource},
	}
	for _, tt := range tests {
		child := n.GetChild(tt.key)
		if child == nil {
			t.Fatalf("GetChild(%q) = nil", tt.key)
		}
		if got := child.Behavior().Native().Name(); got != tt.kind {
			t.Errorf("GetChild(%q).Behavior().Native().Name() = %q, want %q", tt.key, got, tt.kind)
		}
	}
}

func TestCreateKeepsDefinitionOrder(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(t, Options{})
	n := mustCreate(t, e, of("zeta", 1, "alpha", 2, "mid", 3))

	var keys []string
	n.ForEachChild(func(child *Node, _ int) bool {
		keys = append(keys, child.Key())
		return true
	})
	if got := strings.Join(keys, ","); got != "zeta,alpha,mid" {
		t.Errorf("child order = %q, want %q", got, "zeta,alpha,mid")
	}
	if got := n.GetChild("mid").Path(); got != "mid" {
		t.Errorf("Path() = %q, want %q", got, "mid")
	}
}

func TestCreateErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		def     any
		wantErr error
	}{
		{"conflicting value kinds", of("@type", []any{"string", "number"}), ErrConflict},
		{"method and value", of("@type", []any{"method", "boolean"}), ErrConflict},
		{"value on a plain resource", of("@type", "resource", "@value", 1), ErrDefinition},
		{"wrong attribute type", of("@hidden", "yes"), ErrDefinition},
		{"negative position", of("@position", -1), ErrDefinition},
		{"fractional position", of("@position", 1.5), ErrValidation},
		{"invalid identifier", of("@id", "not an id"), ErrValidation},
		{"invalid version", of("@version", "1.0"), ErrValidation},
		{"invalid runtime", of("@runtime", "node@>=x"), ErrValidation},
		{"load with implementation", of("@load", "./x", "@implementation", "thing"), ErrDefinition},
		{"unknown implementation", of("@implementation", "nowhere"), ErrNotFound},
		{"command key in private", of("@private", of("@build", 1)), ErrDefinition},
		{"value kind mismatch", of("@type", "number", "@value", "ten"), ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e, _ := newTestEngine(t, Options{})
			_, err := e.Create(context.Background(), tt.def, "")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Create() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateVersionErrorWrapsSemver(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(t, Options{})
	_, err := e.Create(context.Background(), of("@version", "one"), "")
	if !errors.Is(err, semver.ErrInvalidVersion) {
		t.Errorf("Create() error = %v, want semver.ErrInvalidVersion", err)
	}
}

func TestCreateConflictReportsPath(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(t, Options{})
	_, err := e.Create(context.Background(), of("child", of("@type", []any{"string", "array"})), "")
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("Create() error = %v, want *ConflictError", err)
	}
	if conflict.Path != "child" {
		t.Errorf("ConflictError.Path = %q, want %q", conflict.Path, "child")
	}
}

func TestCreateIgnoresUnknownAttributes(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(t, Options{})
	n := mustCreate(t, e, of("@bogus", 1, "name", "x"))

	if n.GetChild("@bogus") != nil {
		t.Error("unknown attribute became a child")
	}
	if got := len(n.Children()); got != 1 {
		t.Errorf("len(Children()) = %d, want 1", got)
	}
	if got := encode(t, n.Serialize(SerializeOptions{})); got != "{\n  \"name\": \"x\"\n}\n" {
		t.Errorf("Serialize() = %q, want only the name child", got)
	}
}

func TestInlineBaseChildrenAreInherited(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(t, Options{})
	n := mustCreate(t, e, of(
		"@type", of("@export", of("greeting", "hi", "target", "world")),
		"target", "you",
	))

	if len(n.Bases()) != 1 {
		t.Fatalf("len(Bases()) = %d, want 1", len(n.Bases()))
	}

	greeting, err := n.Get("greeting")
	if err != nil {
		t.Fatalf("Get(greeting) error = %v", err)
	}
	if greeting.Raw() != "hi" {
		t.Errorf("Get(greeting) = %v, want %q", greeting.Raw(), "hi")
	}

	target, err := n.Get("target")
	if err != nil {
		t.Fatalf("Get(target) error = %v", err)
	}
	if target.Raw() != "you" {
		t.Errorf("Get(target) = %v, want %q", target.Raw(), "you")
	}

	// Explicit keys replace inherited children in place.
	children := n.Children()
	if children[0].Key() != "greeting" || children[1].Key() != "target" {
		t.Errorf("children = [%s %s], want [greeting target]", children[0].Key(), children[1].Key())
	}
	if !n.GetChild("target").IsA(n.Bases()[0].GetChild("target")) {
		t.Error("redefined child does not extend the base child")
	}
}

func TestInlineImportRequiresExport(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(t, Options{})
	for _, key := range []string{"@import", "@type"} {
		_, err := e.Create(context.Background(), of(key, of("x", 1)), "")
		if !errors.Is(err, ErrDefinition) {
			t.Errorf("Create(%s without @export) error = %v, want ErrDefinition", key, err)
		}
	}

	n, err := e.Create(context.Background(), of("@import", []any{of("@export", of("x", 1))}), "")
	if err != nil {
		t.Fatalf("Create(@import with @export) error = %v", err)
	}
	if v, _ := n.Get("x"); v.Raw() != float64(1) {
		t.Errorf("Get(x) = %v, want 1", v.Raw())
	}
}

func TestExtendInheritsAttributes(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(t, Options{})
	base := mustCreate(t, e, of("@id", "acme/base", "@help", "base help", "@hidden", true, "@aliases", "b"))

	derived, err := base.Extend(context.Background(), of("@help", "derived help"))
	if err != nil {
		t.Fatalf("Extend() error = %v", err)
	}

	if got := derived.Help(); got != "derived help" {
		t.Errorf("Help() = %q, want %q", got, "derived help")
	}
	if !derived.Hidden() {
		t.Error("Hidden() = false, want inherited true")
	}
	if !derived.Aliases().Has("b") {
		t.Error("Aliases() does not inherit b")
	}
	if _, ok := derived.ID(); ok {
		t.Error("ID() is inherited, want local only")
	}
	if !derived.IsA(base) {
		t.Error("IsA(base) = false")
	}
	if base.IsA(derived) {
		t.Error("base.IsA(derived) = true")
	}
}

func TestAttributesResolveThroughAncestors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	e, _ := newTestEngine(t, Options{})

	root := mustCreate(t, e, of("@help", "root help"))
	middle, err := root.Extend(ctx, of("x", 1))
	if err != nil {
		t.Fatalf("Extend(middle) error = %v", err)
	}
	leaf, err := middle.Extend(ctx, of())
	if err != nil {
		t.Fatalf("Extend(leaf) error = %v", err)
	}
	if got := leaf.Help(); got != "root help" {
		t.Errorf("leaf.Help() = %q, want %q", got, "root help")
	}

	// The first base's ancestors are searched before the second base.
	diamond := mustCreate(t, e, of("@type", []any{
		of("@export", of("@type", of("@export", of("@help", "deep help")))),
		of("@export", of("@help", "second help")),
	}))
	if got := diamond.Help(); got != "deep help" {
		t.Errorf("diamond.Help() = %q, want %q", got, "deep help")
	}
}

func TestBuildersAreUnionedAcrossBases(t *testing.T) {
	t.Parallel()

	var calls []string
	logger := &Builder{
		Name: "logger",
		Operations: map[string]OperationFunc{
			"@build": func(ctx context.Context, call *Call, next Operation) (any, error) {
				calls = append(calls, "logger")
				return next(ctx, call)
			},
		},
	}
	e, _ := newTestEngine(t, Options{Builders: NewBuilderRegistry(logger)})

	base := mustCreate(t, e, of("@implementation", "logger"))
	derived, err := e.Create(context.Background(), of("@type", []any{
		of("@export", of("@implementation", "logger")),
		of("@export", of("@implementation", "logger")),
	}), "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if got := len(base.Builders()); got != 1 {
		t.Errorf("len(base.Builders()) = %d, want 1", got)
	}
	if got := len(derived.Builders()); got != 1 {
		t.Errorf("len(derived.Builders()) = %d, want 1 (deduplicated)", got)
	}

	if _, err := derived.Invoke(context.Background(), Args("@build"), InvokeOptions{}); err != nil {
		t.Fatalf("Invoke(@build) error = %v", err)
	}
	if len(calls) != 1 {
		t.Errorf("builder called %d times, want 1", len(calls))
	}
}
