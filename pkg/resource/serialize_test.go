// SPDX-License-Identifier: MPL-2.0

package resource

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestSerialize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		def  any
		opts SerializeOptions
		want string
	}{
		{
			name: "attribute order",
			def: of(
				"name", "x",
				"@help", "h",
				"@aliases", []any{"a"},
				"@version", "1.0.0",
				"@id", "acme/x",
			),
			want: `{
  "@id": "acme/x",
  "@version": "1.0.0",
  "@aliases": "a",
  "@help": "h",
  "name": "x"
}
`,
		},
		{
			name: "private section",
			def:  of("@private", of("secret", 1), "public", true),
			want: `{
  "public": true,
  "@private": {
    "secret": 1
  }
}
`,
		},
		{
			name: "private omitted",
			def:  of("@private", of("secret", 1), "public", true),
			opts: SerializeOptions{OmitPrivate: true},
			want: `{
  "public": true
}
`,
		},
		{
			name: "declared kind",
			def:  of("count", of("@type", "number", "@value", 2)),
			want: `{
  "count": {
    "@type": "number",
    "@value": 2
  }
}
`,
		},
		{
			name: "several types become an import",
			def:  of("@type", []any{"resource", of("x", 1)}),
			want: `{
  "@import": [
    "resource",
    {
      "x": 1
    }
  ]
}
`,
		},
		{
			name: "empty children stay",
			def:  of("empty", of()),
			want: `{
  "empty": {}
}
`,
		},
		{
			name: "method",
			def: of("deploy", of(
				"@type", "method",
				"@parameters", of("target", of("@type", "string", "@position", 0)),
				"@listen", "after:@build",
				"@run", "deploy.sh",
			)),
			want: `{
  "deploy": {
    "@type": "method",
    "@parameters": {
      "target": {
        "@type": "string",
        "@position": 0
      }
    },
    "@listen": "after:@build",
    "@run": "deploy.sh"
  }
}
`,
		},
		{
			name: "export",
			def:  of("@export", of("x", "y")),
			want: `{
  "@export": {
    "x": "y"
  }
}
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e, _ := newTestEngine(t, Options{})
			n := mustCreate(t, e, tt.def)
			if got := encode(t, n.Serialize(tt.opts)); got != tt.want {
				t.Errorf("Serialize() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestSerializeSkipsInheritedChildren(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(t, Options{})
	n := mustCreate(t, e, of("@type", of("@export", of("a", 1, "b", 2)), "b", 3))

	out := n.Serialize(SerializeOptions{})
	want := "{\n  \"@import\": {\n    \"@export\": {\n      \"a\": 1,\n      \"b\": 2\n    }\n  },\n  \"b\": 3\n}\n"
	if got := encode(t, out); got != want {
		t.Errorf("Serialize() = %q, want %q", got, want)
	}
}

func TestSerializeEmptyAndBareValues(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(t, Options{})
	if got := mustCreate(t, e, of()).Serialize(SerializeOptions{}); got != nil {
		t.Errorf("Serialize() of an empty resource = %v, want nil", got)
	}
	if got := mustCreate(t, e, "text").Serialize(SerializeOptions{}); got != "text" {
		t.Errorf("Serialize() of a bare value = %v, want text", got)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	e, _ := newTestEngine(t, Options{})
	ctx := context.Background()
	n, err := e.Create(ctx, of("@id", "acme/app", "@version", "0.1.0", "name", "app"), dir)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	var events []string
	for _, ev := range []string{"before:@save", "after:@save"} {
		n.Listen(ev, func(_ context.Context, e Event) error {
			events = append(events, e.Name)
			return nil
		})
	}
	if err := n.Save(ctx, SaveOptions{}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if !slices.Equal(events, []string{"before:@save", "after:@save"}) {
		t.Errorf("events = %v, want before and after", events)
	}

	loaded, err := e.Load(ctx, dir, LoadOptions{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got, want := encode(t, loaded.Serialize(SerializeOptions{})), encode(t, n.Serialize(SerializeOptions{})); got != want {
		t.Errorf("round trip = %s, want %s", got, want)
	}

	if err := n.GetChild("name").Save(ctx, SaveOptions{}); !errors.Is(err, ErrState) {
		t.Errorf("Save() on a child error = %v, want ErrState", err)
	}
}

func TestSaveYAMLAndMissingDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	e, _ := newTestEngine(t, Options{})
	ctx := context.Background()
	n := mustCreate(t, e, of("name", "app"))

	missing := filepath.Join(dir, "nested", "@resource.yaml")
	if err := n.Save(ctx, SaveOptions{File: missing}); !errors.Is(err, ErrIO) {
		t.Errorf("Save() into a missing directory error = %v, want ErrIO", err)
	}
	if err := n.Save(ctx, SaveOptions{File: missing, EnsureDirectory: true}); err != nil {
		t.Fatalf("Save(EnsureDirectory) error = %v", err)
	}
	data, err := os.ReadFile(missing)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if got := string(data); got != "name: app\n" {
		t.Errorf("YAML file = %q, want %q", got, "name: app\n")
	}
	if n.ResourceFile() != missing {
		t.Errorf("ResourceFile() = %q, want %q", n.ResourceFile(), missing)
	}

	if err := mustCreate(t, e, of()).Save(ctx, SaveOptions{}); !errors.Is(err, ErrState) {
		t.Errorf("Save() without a directory error = %v, want ErrState", err)
	}
}
