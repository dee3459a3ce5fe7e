// SPDX-License-Identifier: MPL-2.0

package resource

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/resdir/run/pkg/definition"
	"github.com/resdir/run/pkg/resfile"
)

// builtinCommands is the closed set of commands every resource answers.
var builtinCommands = []string{
	"@create",
	"@initialize",
	"@install",
	"@build",
	"@lint",
	"@test",
	"@print",
	"@console",
	"@normalize",
	"@registry",
	"@emit",
	"@broadcast",
}

// IsBuiltinCommand reports whether key is a built-in command.
func IsBuiltinCommand(key string) bool { return slices.Contains(builtinCommands, key) }

// BuiltinCommands returns the built-in command names.
func BuiltinCommands() []string { return slices.Clone(builtinCommands) }

func builtinOperations() map[string]Operation {
	return map[string]Operation{
		"@create":     createCommand,
		"@initialize": initializeCommand,
		"@install":    lifecycleCommand("@install"),
		"@build":      lifecycleCommand("@build"),
		"@lint":       lifecycleCommand("@lint"),
		"@test":       lifecycleCommand("@test"),
		"@print":      printCommand,
		"@console":    consoleCommand,
		"@normalize":  normalizeCommand,
		"@registry":   registryCommand,
		"@emit":       emitCommand(false),
		"@broadcast":  emitCommand(true),
	}
}

// lifecycleCommand broadcasts before:<cmd> then after:<cmd>.
func lifecycleCommand(cmd string) Operation {
	return func(ctx context.Context, call *Call) (any, error) {
		if err := call.Node.Broadcast(ctx, "before:"+cmd, call.Args); err != nil {
			return nil, err
		}
		if err := call.Node.Broadcast(ctx, "after:"+cmd, call.Args); err != nil {
			return nil, err
		}
		return nil, nil
	}
}

func createCommand(ctx context.Context, call *Call) (any, error) {
	n := call.Node
	e := n.engine
	args := call.Args.Clone()

	var importRef string
	if arg, ok := args.Take("@import", "@i", "import", "i"); ok {
		importRef = arg.Value
	} else if first, ok := args.Shift(); ok {
		importRef = first
	}
	typeArg, hasType := args.Take("@type", "@t", "type", "t")

	switch {
	case importRef != "" && hasType:
		return nil, &DefinitionError{Path: n.Path(), Key: "@create", Message: "@import and @type cannot both be specified"}
	case importRef == "" && (!hasType || typeArg.Value == ""):
		return nil, &DefinitionError{Path: n.Path(), Key: "@create", Message: "either @import or @type must be specified"}
	}

	dir, err := e.workingDir(n)
	if err != nil {
		return nil, err
	}
	if resfile.Exists(dir) {
		return nil, &StateError{Path: n.Path(), Op: "create", Message: fmt.Sprintf("a resource already exists in %s", dir)}
	}

	def := definition.New()
	if importRef != "" {
		def.Set("@import", importRef)
	} else {
		def.Set("@type", typeArg.Value)
	}

	e.opts.Reporter.Intro("Creating resource...")
	created, err := e.createRoot(ctx, def, dir)
	if err == nil {
		err = created.Save(ctx, SaveOptions{})
	}
	if err == nil {
		if init := created.GetChild("@initialize"); init != nil {
			_, err = init.Invoke(ctx, args, InvokeOptions{Parent: created})
		}
	}
	e.opts.Reporter.Outro("Resource created", err)
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (e *Engine) workingDir(n *Node) (string, error) {
	if e.opts.WorkingDir != "" {
		return e.opts.WorkingDir, nil
	}
	if n.currentDirectory != "" {
		return n.currentDirectory, nil
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", &IOError{Op: "getwd", Err: err}
	}
	return dir, nil
}

func (e *Engine) createRoot(ctx context.Context, def any, dir string) (*Node, error) {
	return e.create(ctx, def, createOptions{directory: dir})
}

func initializeCommand(ctx context.Context, call *Call) (any, error) {
	if init := call.Node.GetChild("@initialize"); init != nil {
		return init.Invoke(ctx, call.Args, InvokeOptions{Parent: call.Node})
	}
	return nil, nil
}

func printCommand(_ context.Context, call *Call) (any, error) {
	n := call.Node
	var out any
	if n.AutoUnboxing() && n.behavior.IsValue() {
		out = n.Value()
	} else {
		out = n.Serialize(SerializeOptions{})
	}
	if out == nil {
		return nil, nil
	}
	data, err := definition.EncodeJSON(out)
	if err != nil {
		return nil, &IOError{Op: "encode", Path: n.Path(), Err: err}
	}
	if _, err := n.engine.opts.Stdout.Write(data); err != nil {
		return nil, &IOError{Op: "write", Err: err}
	}
	return nil, nil
}

func consoleCommand(_ context.Context, call *Call) (any, error) {
	args := call.Args.Clone()
	sub, _ := args.Shift()
	if sub != "print" {
		return nil, &NotFoundError{Kind: "command", Name: strings.TrimSpace("@console " + sub), Path: call.Node.Path()}
	}
	message, _ := args.Shift()
	if _, err := fmt.Fprintln(call.Node.engine.opts.Stdout, message); err != nil {
		return nil, &IOError{Op: "write", Err: err}
	}
	return nil, nil
}

func normalizeCommand(ctx context.Context, call *Call) (any, error) {
	root := call.Node.Root()
	file := root.resourceFile
	if file == "" {
		return nil, &StateError{Path: call.Node.Path(), Op: "normalize", Message: "the resource was not loaded from a file"}
	}

	args := call.Args.Clone()
	_, toJSON5 := args.Take("json5", "@json5")

	target := file
	ext := filepath.Ext(file)
	convert := toJSON5 && ext != resfile.DefaultExtension
	if convert {
		target = strings.TrimSuffix(file, ext) + resfile.DefaultExtension
	}
	if err := root.Save(ctx, SaveOptions{File: target}); err != nil {
		return nil, err
	}
	if convert {
		if err := os.Remove(file); err != nil {
			return nil, &IOError{Op: "remove", Path: file, Err: err}
		}
	}
	root.engine.log.Info("resource file normalized", "file", target)
	return nil, nil
}

func registryCommand(ctx context.Context, call *Call) (any, error) {
	e := call.Node.engine
	reg, err := e.Import(ctx, e.opts.RegistryResource, call.Node.currentDirectory)
	if err != nil {
		return nil, err
	}
	return reg.Invoke(ctx, call.Args, InvokeOptions{})
}

func emitCommand(broadcast bool) Operation {
	return func(ctx context.Context, call *Call) (any, error) {
		args := call.Args.Clone()
		var event string
		if arg, ok := args.Take("event"); ok {
			event = arg.Value
		} else if first, ok := args.Shift(); ok {
			event = first
		}
		if event == "" {
			return nil, &DefinitionError{Path: call.Node.Path(), Key: call.Command, Message: "an event name is required"}
		}

		var eventArgs Arguments
		if arg, ok := args.Take("arguments"); ok && arg.Value != "" {
			parsed, err := parseEventArguments(arg.Value)
			if err != nil {
				return nil, &DefinitionError{Path: call.Node.Path(), Key: "arguments", Message: "must be a JSON object or array", Err: err}
			}
			eventArgs = parsed
		}

		if broadcast {
			return nil, call.Node.Broadcast(ctx, event, eventArgs)
		}
		return nil, call.Node.Emit(ctx, event, eventArgs)
	}
}

// parseEventArguments turns a JSON object into named arguments and a JSON
// array into positionals.
func parseEventArguments(s string) (Arguments, error) {
	v, err := definition.DecodeJSON([]byte(s))
	if err != nil {
		return Arguments{}, err
	}
	var args Arguments
	switch t := v.(type) {
	case *definition.Definition:
		for key, value := range t.All {
			args = args.With(key, argumentString(value))
		}
	case []any:
		for _, item := range t {
			args.positionals = append(args.positionals, argumentString(item))
		}
	default:
		return Arguments{}, fmt.Errorf("got %T", v)
	}
	return args, nil
}

// argumentString renders a value the way it would be typed on a command line.
func argumentString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		data, err := json.Marshal(definition.Plain(t))
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(data)
	}
}
