//go:build !debug

package crashlog

import "github.com/charmbracelet/log"

// Release builds keep the log quiet and replace the runtime's raw
// trace with the human report.
func defaultLevel() log.Level { return log.InfoLevel }

const rawTrace = false
