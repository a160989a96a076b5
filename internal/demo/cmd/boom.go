package cmd

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var boomCmd = &cobra.Command{
	Use:   "boom [message]",
	Short: "Log a line and then crash on purpose",
	Long: `boom writes an ordinary info record to the crash log and then panics,
so you can see the full round trip: the leveled record, the incident
report appended behind it, and the human message on stderr.`,
	Example: `
# Crash with the default message
crashdemo boom

# Crash with your own message
crashdemo boom "the flux capacitor is gone"
  `,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		message := "OMG EVERYTHING IS ON FIRE!!!"
		if len(args) > 0 {
			message = args[0]
		}

		log.Info("about to do something questionable")
		log.Debug("this only shows up in builds tagged debug")

		panic(message)
	},
}
