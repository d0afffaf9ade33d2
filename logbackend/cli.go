// Package logbackend provides logfacility.Backend implementations: CLI,
// which renders to a terminal with optional VT100 colour, and Ring, a
// fixed-capacity in-memory history used by the LogHistory command.
package logbackend

import (
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/term"

	"github.com/joeycumines/corert/logfacility"
)

// NoColor force-disables colour in every CLI back-end regardless of its
// own Color field, for use by tests that compare rendered output without
// caring about terminal detection.
var NoColor bool

const (
	csiReset   = "\x1b[0m"
	csiYellowB = "\x1b[1;33m"
	csiRed     = "\x1b[31m"
	csiRedB    = "\x1b[1;31m"
)

// CLI writes rendered log lines to an io.Writer (os.Stderr by default),
// colouring Warning/Error/Fatal lines with VT100 CSI escapes when Color
// is enabled. Process is safe for concurrent use; lines from multiple
// loggers arrive serialized by the owning Facility's single worker, but
// Mutex guards against a CLI instance shared across facilities.
type CLI struct {
	mu sync.Mutex
	w  io.Writer

	// Color enables CSI escapes. NewCLI defaults it to whether w looks
	// like a terminal; set explicitly to override.
	Color bool
}

// NewCLI constructs a CLI writing to w (os.Stderr if w is nil), defaulting
// Color to term.IsTerminal when w is an *os.File.
func NewCLI(w io.Writer) *CLI {
	if w == nil {
		w = os.Stderr
	}
	color := false
	if f, ok := w.(*os.File); ok {
		color = term.IsTerminal(int(f.Fd()))
	}
	return &CLI{w: w, Color: color}
}

// Process implements logfacility.Backend.
func (c *CLI) Process(line string, severity logfacility.Level) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !NoColor && c.Color {
		if esc := colorFor(severity); esc != "" {
			fmt.Fprint(c.w, esc)
			fmt.Fprintln(c.w, line)
			fmt.Fprint(c.w, csiReset)
			return
		}
	}
	fmt.Fprintln(c.w, line)
}

func colorFor(severity logfacility.Level) string {
	switch severity {
	case logfacility.Warning:
		return csiYellowB
	case logfacility.Error:
		return csiRed
	case logfacility.Fatal:
		return csiRedB
	default:
		return ""
	}
}
