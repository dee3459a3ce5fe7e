// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"sync"

	"github.com/resdir/run/pkg/resource"
)

// taskReporter prints install progress on the error stream so that stdout
// only carries command output.
type taskReporter struct {
	mu    sync.Mutex
	w     io.Writer
	depth int
}

var _ resource.Reporter = (*taskReporter)(nil)

func newTaskReporter(w io.Writer) *taskReporter {
	return &taskReporter{w: w}
}

func (r *taskReporter) Intro(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.w, "%s%s %s\n", r.indent(), SubtitleStyle.Render("…"), message)
	r.depth++
}

func (r *taskReporter) Outro(message string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.depth > 0 {
		r.depth--
	}
	if err != nil {
		fmt.Fprintf(r.w, "%s%s %s: %v\n", r.indent(), ErrorStyle.Render("✗"), message, err)
		return
	}
	fmt.Fprintf(r.w, "%s%s %s\n", r.indent(), SuccessStyle.Render("✓"), message)
}

func (r *taskReporter) indent() string {
	const step = "  "
	out := ""
	for range r.depth {
		out += step
	}
	return out
}
