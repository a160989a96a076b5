package cmd

import (
	"fmt"

	"github.com/nxadm/tail"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the crash log as new records arrive",
	Long: `watch tails the crash log file and prints new records as they are
appended. Handy in a second terminal while reproducing a crash.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := tail.TailFile(logPath, tail.Config{
			Follow:    true,
			ReOpen:    true,
			MustExist: true,
			Logger:    tail.DiscardingLogger,
		})
		if err != nil {
			return fmt.Errorf("follow %s: %w", logPath, err)
		}

		for line := range t.Lines {
			if line.Err != nil {
				return line.Err
			}
			fmt.Println(line.Text)
		}
		return nil
	},
}
