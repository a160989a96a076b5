package crashlog

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/x/exp/charmtone"
	"github.com/charmbracelet/x/term"
)

var (
	headlineStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(charmtone.Zest.Hex()))

	pathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(charmtone.Malibu.Hex()))
)

// terminalMessage renders the short human-facing crash message. It
// deliberately contains no stack trace; the noise lives in the log
// file the message points at.
func terminalMessage(meta Metadata, logPath string, colored bool) string {
	headline := "Well, this is embarrassing."
	path := fmt.Sprintf("%q", logPath)
	if colored {
		headline = headlineStyle.Render(headline)
		path = pathStyle.Render(path)
	}

	name := meta.Name
	if name == "" {
		name = "This program"
	}

	var b strings.Builder
	b.WriteString(headline)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%s had a problem and crashed. To help us diagnose the problem you can send us a crash report.\n\n", name)
	fmt.Fprintf(&b, "A log of the crash was written to %s. Please submit an issue or email with the subject of %q and include the log as an attachment.\n", path, name+" Crash Report")
	if meta.Homepage != "" || meta.Authors != "" {
		b.WriteByte('\n')
	}
	if meta.Homepage != "" {
		fmt.Fprintf(&b, "- Homepage: %s\n", meta.Homepage)
	}
	if meta.Authors != "" {
		fmt.Fprintf(&b, "- Authors: %s\n", meta.Authors)
	}
	b.WriteString("\nWe take privacy seriously, and do not perform any automated error collection. In order to improve the software, we rely on people to submit reports.\n\nThank you kindly!\n")
	return b.String()
}

// printTerminalMessage writes the message to w, colored only when w is
// an actual terminal. The write error is discarded, this runs inside
// the panic handler.
func printTerminalMessage(w io.Writer, meta Metadata, logPath string) {
	colored := false
	if f, ok := w.(*os.File); ok {
		colored = term.IsTerminal(f.Fd())
	}
	_, _ = io.WriteString(w, terminalMessage(meta, logPath, colored))
}
