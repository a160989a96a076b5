package cmd

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"crashlog/internal/demo/styles"
)

// recordStart matches the timestamp prefix every record in the crash
// log begins with; a panic report is the ERRO record whose message
// opens with "panic:" plus all continuation lines up to the next
// record.
var recordStart = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} `)

var reportStart = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} ERRO panic: `)

var lastCmd = &cobra.Command{
	Use:   "last",
	Short: "Show the most recent crash report from the log",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(logPath)
		if err != nil {
			return err
		}

		block, err := lastReport(string(data))
		if err != nil {
			return err
		}

		if !term.IsTerminal(os.Stdout.Fd()) {
			fmt.Print(block)
			return nil
		}

		r := styles.ReportRenderer(100)
		if r == nil {
			fmt.Print(block)
			return nil
		}
		out, err := r.Render(reportMarkdown(block))
		if err != nil {
			fmt.Print(block)
			return nil
		}
		fmt.Print(out)
		return nil
	},
}

// lastReport extracts the newest panic block from the log contents:
// the last report line together with its continuation lines.
func lastReport(content string) (string, error) {
	lines := strings.Split(content, "\n")

	start := -1
	for i, line := range lines {
		if reportStart.MatchString(line) {
			start = i
		}
	}
	if start == -1 {
		return "", errors.New("no crash report in log")
	}

	end := len(lines)
	for i := start + 1; i < len(lines); i++ {
		if recordStart.MatchString(lines[i]) {
			end = i
			break
		}
	}

	block := strings.Join(lines[start:end], "\n")
	return strings.TrimRight(block, "\n") + "\n", nil
}

// reportMarkdown wraps a raw report block for terminal rendering: the
// headline as a heading, everything else verbatim in a code fence.
func reportMarkdown(block string) string {
	parts := strings.SplitN(strings.TrimRight(block, "\n"), "\n", 2)

	var b strings.Builder
	b.WriteString("# Crash report\n\n")
	fmt.Fprintf(&b, "**%s**\n", parts[0])
	if len(parts) == 2 && strings.TrimSpace(parts[1]) != "" {
		fmt.Fprintf(&b, "\n```text\n%s\n```\n", parts[1])
	}
	return b.String()
}
