// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the CLI commands for run.
//
// Arguments that are not a subcommand are dispatched to the resource found
// in the current directory (or one of its parents):
//
//	run build --production     invoke the "build" child with --production
//	run @install               broadcast the install lifecycle
//	run describe tools.lint    print help for a child
package cmd
