// SPDX-License-Identifier: MPL-2.0

// Package testutil holds fixtures shared by command and registry tests:
// resource directories on disk, a recording method executor and an
// environment backed by a map.
package testutil
