// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"fmt"
	"os"
	"slices"
	"strings"
)

// mergeEnv overlays bound on the host KEY=VALUE list. Bound names win.
// The result is sorted by name.
func mergeEnv(host []string, bound map[string]string) []string {
	env := make(map[string]string, len(host)+len(bound))
	for _, entry := range host {
		name, value, ok := strings.Cut(entry, "=")
		if !ok || name == "" {
			continue
		}
		env[name] = value
	}
	for name, value := range bound {
		env[name] = value
	}

	out := make([]string, 0, len(env))
	for name, value := range env {
		out = append(out, name+"="+value)
	}
	slices.Sort(out)
	return out
}

// validateWorkDir checks that dir exists and is a directory. An empty dir
// means the process working directory.
func validateWorkDir(dir string) error {
	if dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("directory does not exist: %s", dir)
		}
		if os.IsPermission(err) {
			return fmt.Errorf("permission denied: %s", dir)
		}
		return fmt.Errorf("cannot access directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", dir)
	}

	return nil
}
