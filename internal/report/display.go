package report

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/futureCreator/qcflow/internal/types"
)

// Display handles terminal progress output for a batch.
type Display struct {
	w     io.Writer
	title string
	total int
	quiet bool
}

// NewDisplay creates a display that writes to stdout.
func NewDisplay(title string, total int, quiet bool) *Display {
	return &Display{w: os.Stdout, title: title, total: total, quiet: quiet}
}

// SetOutput redirects the display, e.g. to a command's output stream.
func (d *Display) SetOutput(w io.Writer) { d.w = w }

// columnWidth is the display width reserved for descriptors and errors.
var columnWidth = 40

// ansiEscapeRe matches ANSI terminal escape sequences and C0/DEL control characters.
var ansiEscapeRe = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]|[\x00-\x1f\x7f]`)

// clip sanitizes s and truncates it to columnWidth runes, appending an
// ellipsis if truncation occurs. Only the first line of s is kept.
func clip(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	s = ansiEscapeRe.ReplaceAllString(s, "")
	if utf8.RuneCountInString(s) <= columnWidth {
		return s
	}
	runes := []rune(s)
	return string(runes[:columnWidth-1]) + "…"
}

// Header prints the batch header.
func (d *Display) Header(workers int) {
	fmt.Fprintf(d.w, "\n⚗  qcflow — %s (%d molecules, %d workers)\n", d.title, d.total, workers)
	fmt.Fprintln(d.w, strings.Repeat("─", 76))
}

// Item prints one finished item. done is the number of finished items so far.
func (d *Display) Item(res types.Result, done int) {
	if d.quiet {
		return
	}
	progress := fmt.Sprintf("[%d/%d]", done, d.total)
	if res.OK() {
		fmt.Fprintf(d.w, "✅ %-9s %-14s %-40s %.1fs\n", progress, res.Item.Name, clip(res.Item.Descriptor), res.Duration.Seconds())
		return
	}
	where := "setup"
	if res.FailedStep != types.NoStep {
		where = fmt.Sprintf("step %d", res.FailedStep)
		if res.StepName != "" {
			where += " (" + res.StepName + ")"
		}
	}
	fmt.Fprintf(d.w, "❌ %-9s %-14s %s: %s\n", progress, res.Item.Name, where, clip(res.Error))
}

// Summary prints the final batch summary.
func (d *Display) Summary(c Counts, elapsed time.Duration, root, errorLog string) {
	fmt.Fprintln(d.w, strings.Repeat("─", 76))
	mark := "✅"
	if c.Failed > 0 {
		mark = "⚠️"
	}
	fmt.Fprintf(d.w, "%s %d/%d succeeded, %d failed  %.0fs\n", mark, c.Succeeded, c.Total, c.Failed, elapsed.Seconds())
	fmt.Fprintf(d.w, "Output:    %s\n", root)
	if c.Failed > 0 {
		fmt.Fprintf(d.w, "Error log: %s\n", errorLog)
	}
	fmt.Fprintln(d.w)
}
