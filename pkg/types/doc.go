// SPDX-License-Identifier: MPL-2.0

// Package types defines small value types shared by the CLI, the runtime
// and configuration. It imports only the standard library.
package types
