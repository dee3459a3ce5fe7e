// SPDX-License-Identifier: MPL-2.0

package resource

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/resdir/run/pkg/definition"
)

// BoundArguments are the parameter values of a method call, in parameter
// order, plus the positionals no parameter took.
type BoundArguments struct {
	Keys   []string
	Values map[string]any
	Rest   []string
}

// callMethod is the @call operation of native methods: it runs @run
// through the engine executor.
func callMethod(ctx context.Context, call *Call) (any, error) {
	n := call.Node
	script, ok := n.Run()
	if !ok {
		return nil, &StateError{Path: n.Path(), Op: "call", Message: "the method has no implementation (@run)"}
	}

	bound, err := bindArguments(n, call.Args)
	if err != nil {
		return nil, err
	}

	e := n.engine
	if e.opts.Executor == nil {
		return nil, &StateError{Path: n.Path(), Op: "call", Message: "no executor is configured to run methods"}
	}

	env := make(map[string]string, len(bound.Keys))
	for _, key := range bound.Keys {
		env[envName(key)] = envValue(bound.Values[key])
	}

	dir := n.currentDirectory
	if dir == "" && call.Receiver != nil {
		dir = call.Receiver.currentDirectory
	}

	e.log.Debug("running method", "method", n.Path(), "dir", dir)
	err = e.opts.Executor.Execute(ctx, ExecRequest{
		Name:   n.Path(),
		Script: script,
		Dir:    dir,
		Args:   bound.Rest,
		Env:    env,
		Stdout: e.opts.Stdout,
		Stderr: e.opts.Stderr,
	})
	if err != nil {
		return nil, &IOError{Op: "run method", Path: n.Path(), Err: err}
	}
	return nil, nil
}

// Bind binds args to the method's parameters without calling it.
func (n *Node) Bind(args Arguments) (BoundArguments, error) { return bindArguments(n, args) }

// bindArguments matches named arguments by parameter key or alias, then
// positionals by @position, parses them with the parameter's kind and falls
// back to the parameter's own value.
func bindArguments(n *Node, args Arguments) (BoundArguments, error) {
	args = args.Clone()
	bound := BoundArguments{Values: make(map[string]any)}
	params := n.Parameters()
	positionals := args.Positionals()
	usedPositions := make(map[int]bool)

	for _, param := range params {
		kind := kindOf(param)
		aliases := param.Aliases().Values()

		var (
			raw   string
			found bool
		)
		if arg, ok := args.Take(param.key, aliases...); ok {
			raw, found = arg.Value, true
			if !arg.HasValue {
				raw = ""
			}
		} else if pos, ok := param.Position(); ok && pos < len(positionals) {
			raw, found = positionals[pos], true
			usedPositions[pos] = true
		}

		bound.Keys = append(bound.Keys, param.key)
		if !found {
			bound.Values[param.key] = definition.Normalize(param.Value())
			continue
		}
		v, err := kind.Parse(raw)
		if err != nil {
			return BoundArguments{}, &ValidationError{Path: param.Path(), Attribute: param.key, Value: raw, Err: err}
		}
		bound.Values[param.key] = v
	}

	if leftover := args.Named(); len(leftover) > 0 {
		return BoundArguments{}, &NotFoundError{Kind: "parameter", Name: leftover[0].Key, Path: n.Path()}
	}
	for i, p := range positionals {
		if !usedPositions[i] {
			bound.Rest = append(bound.Rest, p)
		}
	}
	return bound, nil
}

// envName maps a parameter key to an environment variable name.
func envName(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func envValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "1"
		}
		return ""
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(data)
	}
}
