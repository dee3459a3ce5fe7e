// SPDX-License-Identifier: MPL-2.0

// Package runtime executes method bodies.
//
// VirtualExecutor runs @run scripts with the embedded POSIX shell
// interpreter from mvdan.cc/sh, so methods behave the same on every host
// without requiring bash or sh on PATH. Positional arguments become $1, $2,
// ...; bound parameters are exported as environment variables on top of the
// host environment.
package runtime
