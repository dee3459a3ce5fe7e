// SPDX-License-Identifier: MPL-2.0

package resource

import (
	"slices"
	"strings"
)

type (
	// Arguments is an invocation argument list: ordered positionals and
	// ordered named arguments.
	Arguments struct {
		positionals []string
		named       []NamedArgument
	}

	// NamedArgument is "--key=value" or a "--flag" (HasValue false).
	NamedArgument struct {
		Key      string
		Value    string
		HasValue bool
	}
)

// ParseArguments splits argv into positionals and named arguments.
// "--key=value", "--key", "-k=value" and "-k" are named; everything after
// "--" is positional. "-1" and "-" are positional.
func ParseArguments(argv []string) Arguments {
	var args Arguments
	for i, arg := range argv {
		if arg == "--" {
			args.positionals = append(args.positionals, argv[i+1:]...)
			break
		}
		if key, value, hasValue, ok := parseNamed(arg); ok {
			args.named = append(args.named, NamedArgument{Key: key, Value: value, HasValue: hasValue})
			continue
		}
		args.positionals = append(args.positionals, arg)
	}
	return args
}

func parseNamed(arg string) (key, value string, hasValue, ok bool) {
	var body string
	switch {
	case strings.HasPrefix(arg, "--") && len(arg) > 2:
		body = arg[2:]
	case strings.HasPrefix(arg, "-") && len(arg) > 1 && !isDigit(arg[1]) && arg[1] != '.':
		body = arg[1:]
	default:
		return "", "", false, false
	}
	key, value, hasValue = strings.Cut(body, "=")
	return key, value, hasValue, key != ""
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// Args builds arguments from positionals.
func Args(positionals ...string) Arguments {
	return Arguments{positionals: slices.Clone(positionals)}
}

// With returns a copy with a named argument appended.
func (a Arguments) With(key, value string) Arguments {
	c := a.Clone()
	c.named = append(c.named, NamedArgument{Key: key, Value: value, HasValue: true})
	return c
}

// Clone returns an independent copy.
func (a Arguments) Clone() Arguments {
	return Arguments{positionals: slices.Clone(a.positionals), named: slices.Clone(a.named)}
}

// Positionals returns the positional arguments.
func (a Arguments) Positionals() []string { return slices.Clone(a.positionals) }

// Named returns the named arguments.
func (a Arguments) Named() []NamedArgument { return slices.Clone(a.named) }

// Len returns the number of positionals.
func (a Arguments) Len() int { return len(a.positionals) }

// IsEmpty reports whether there are no arguments at all.
func (a Arguments) IsEmpty() bool { return len(a.positionals) == 0 && len(a.named) == 0 }

// Shift removes and returns the first positional.
func (a *Arguments) Shift() (string, bool) {
	if len(a.positionals) == 0 {
		return "", false
	}
	first := a.positionals[0]
	a.positionals = slices.Clone(a.positionals[1:])
	return first, true
}

// Take removes the first named argument matching key or an alias.
func (a *Arguments) Take(key string, aliases ...string) (NamedArgument, bool) {
	names := append([]string{key}, aliases...)
	for i, arg := range a.named {
		if slices.Contains(names, arg.Key) {
			a.named = slices.Delete(slices.Clone(a.named), i, i+1)
			return arg, true
		}
	}
	return NamedArgument{}, false
}

// Strings renders the arguments back into an argv.
func (a Arguments) Strings() []string {
	out := slices.Clone(a.positionals)
	for _, arg := range a.named {
		if arg.HasValue {
			out = append(out, "--"+arg.Key+"="+arg.Value)
		} else {
			out = append(out, "--"+arg.Key)
		}
	}
	return out
}
