// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/resdir/run/cmd/run"

func main() {
	cmd.Execute()
}
