// SPDX-License-Identifier: MPL-2.0

// Package resource turns resource definitions into live nodes.
//
// A definition is an ordered mapping. Keys starting with "@" are attributes
// (@type, @import, @load, @parameters, @export, ...) or built-in commands;
// other keys are children. Creating a node resolves its types and @load
// into bases, refines the native behaviors of those bases into one, layers
// the builders of the bases and the @implementation builder on top, then
// sets the attributes and builds the children in definition order.
//
// Bases loaded from files or registries are cached per [Engine]. Roots
// returned by [Engine.Load] are not: they can be modified and saved.
package resource
