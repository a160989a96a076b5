package cmd

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"crashlog"
)

var logPath string

var rootCmd = &cobra.Command{
	Use:   "crashdemo",
	Short: "Small CLI showing crashlog in action",
	Long: `crashdemo exercises the crashlog bootstrap: every invocation routes
its logging to a crash log file and installs the panic reporter, so a
deliberate crash ends up as a report in the file and a short apology on
the terminal instead of a raw stack trace.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return crashlog.SetupWithMetadata(logPath, crashlog.Metadata{
			Name:     "crashdemo",
			Version:  "0.1.0",
			Authors:  "The crashlog Authors",
			Homepage: "https://example.com/crashlog",
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logPath, "log", "crashdemo.log", "path of the crash log file")
	rootCmd.AddCommand(boomCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(lastCmd)
}

func Execute() {
	// fang's rendered help only makes sense on a terminal; piped
	// output goes through plain cobra.
	if !term.IsTerminal(os.Stdout.Fd()) {
		if err := rootCmd.Execute(); err != nil {
			os.Exit(1)
		}
		return
	}

	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}
