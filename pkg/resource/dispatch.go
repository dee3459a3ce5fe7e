// SPDX-License-Identifier: MPL-2.0

package resource

import "context"

// Invoke dispatches an argument list. Methods consume the whole list.
// Otherwise the first positional selects a command ("@..." keys, looked up
// in the behavior's operation table) or a child, which receives the rest.
// With no positional left the node itself is returned.
func (n *Node) Invoke(ctx context.Context, args Arguments, opts InvokeOptions) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	receiver := opts.Parent
	if receiver == nil {
		receiver = n.parent
	}

	if op, ok := n.behavior.Operation(CapCall); ok && n.behavior.IsMethod() {
		return op(ctx, &Call{Node: n, Receiver: receiver, Command: CapCall, Args: args})
	}

	args = args.Clone()
	key, ok := args.Shift()
	if !ok {
		return n, nil
	}

	if isCommandLike(key) {
		op, ok := n.behavior.Operation(key)
		if !ok {
			return nil, &NotFoundError{Kind: "command", Name: key, Path: n.Path()}
		}
		return op(ctx, &Call{Node: n, Receiver: receiver, Command: key, Args: args})
	}

	child := n.FindChild(key)
	if child == nil {
		return nil, &NotFoundError{Kind: "command", Name: key, Path: n.Path()}
	}
	return child.Invoke(ctx, args, InvokeOptions{Parent: n})
}
