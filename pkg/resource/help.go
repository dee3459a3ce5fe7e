// SPDX-License-Identifier: MPL-2.0

package resource

import (
	"fmt"
	"strings"
)

type (
	// Description summarizes a node for help output.
	Description struct {
		Path       string
		Type       string
		Help       string
		Aliases    []string
		ID         string
		Version    string
		Children   []Entry
		Parameters []Entry
		Commands   []string
	}

	// Entry is one listed child or parameter.
	Entry struct {
		Key      string
		Aliases  []string
		Type     string
		Help     string
		Position int
		// HasPosition is false for named-only parameters.
		HasPosition bool
	}
)

func entryOf(n *Node) Entry {
	e := Entry{
		Key:     n.key,
		Aliases: n.Aliases().Values(),
		Type:    n.behavior.Native().Name(),
		Help:    n.Help(),
	}
	e.Position, e.HasPosition = n.Position()
	return e
}

// Describe lists the visible children, the parameters and the commands of
// n. Hidden and private children are left out.
func (n *Node) Describe() Description {
	d := Description{
		Path:     n.Path(),
		Type:     n.behavior.Native().Name(),
		Help:     n.Help(),
		Aliases:  n.Aliases().Values(),
		Commands: n.behavior.Operations(),
	}
	if id, ok := n.ID(); ok {
		d.ID = id.String()
	}
	if v, ok := n.Version(); ok {
		d.Version = v.String()
	}
	for _, c := range n.children {
		if c.Hidden() || c.IsPrivate() || isCommandLike(c.key) {
			continue
		}
		d.Children = append(d.Children, entryOf(c))
	}
	for _, p := range n.Parameters() {
		d.Parameters = append(d.Parameters, entryOf(p))
	}
	return d
}

// Markdown renders the description for a terminal markdown renderer.
func (d Description) Markdown() string {
	var b strings.Builder
	title := d.Path
	if title == "" {
		title = d.ID
	}
	if title == "" {
		title = "resource"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	if d.Help != "" {
		fmt.Fprintf(&b, "%s\n\n", d.Help)
	}
	fmt.Fprintf(&b, "Type: `%s`", d.Type)
	if d.Version != "" {
		fmt.Fprintf(&b, " · Version: `%s`", d.Version)
	}
	b.WriteString("\n\n")

	if len(d.Parameters) > 0 {
		b.WriteString("## Parameters\n\n")
		for _, p := range d.Parameters {
			writeEntry(&b, p, true)
		}
		b.WriteString("\n")
	}
	if len(d.Children) > 0 {
		b.WriteString("## Children\n\n")
		for _, c := range d.Children {
			writeEntry(&b, c, false)
		}
		b.WriteString("\n")
	}
	if len(d.Commands) > 0 {
		b.WriteString("## Commands\n\n")
		for _, c := range d.Commands {
			if c == CapCall {
				continue
			}
			fmt.Fprintf(&b, "- `%s`\n", c)
		}
	}
	return b.String()
}

func writeEntry(b *strings.Builder, e Entry, parameter bool) {
	fmt.Fprintf(b, "- `%s`", e.Key)
	if len(e.Aliases) > 0 {
		fmt.Fprintf(b, " (%s)", strings.Join(e.Aliases, ", "))
	}
	fmt.Fprintf(b, " *%s*", e.Type)
	if parameter && e.HasPosition {
		fmt.Fprintf(b, " [position %d]", e.Position)
	}
	if e.Help != "" {
		fmt.Fprintf(b, ": %s", e.Help)
	}
	b.WriteString("\n")
}
