// Package display renders terminal output: colors, tables and progress bars.
//
// Color detection is left to fatih/color, which honors NO_COLOR and
// disables itself when stdout is not a terminal. FORCE_COLOR turns it
// back on for piped output.
package display

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

var (
	bold   = color.New(color.Bold)
	dim    = color.New(color.Faint)
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	cyan   = color.New(color.FgCyan)
	gray   = color.New(color.FgHiBlack)
	accent = color.New(color.Bold, color.FgCyan)
)

func init() {
	if _, ok := os.LookupEnv("FORCE_COLOR"); ok {
		if _, off := os.LookupEnv("NO_COLOR"); !off {
			color.NoColor = false
		}
	}
}

// SetEnabled overrides the detected color state, e.g. for --json or --no-color.
func SetEnabled(b bool) {
	color.NoColor = !b
}

func Enabled() bool {
	return !color.NoColor
}

func Bold(text string) string   { return bold.Sprint(text) }
func Dim(text string) string    { return dim.Sprint(text) }
func Green(text string) string  { return green.Sprint(text) }
func Yellow(text string) string { return yellow.Sprint(text) }
func Cyan(text string) string   { return cyan.Sprint(text) }
func Gray(text string) string   { return gray.Sprint(text) }

// Accent marks the active or next prayer.
func Accent(text string) string { return accent.Sprint(text) }

func Boldf(format string, a ...any) string {
	return Bold(fmt.Sprintf(format, a...))
}

// ProgressBar draws pct (0-100) as a bar of width cells.
func ProgressBar(pct float64, width int) string {
	if width <= 0 {
		return ""
	}
	pct = max(0, min(100, pct))
	filled := int(pct / 100 * float64(width))
	return Green(strings.Repeat("█", filled)) + Gray(strings.Repeat("░", width-filled))
}
