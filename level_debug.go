//go:build debug

package crashlog

import "github.com/charmbracelet/log"

// Debug builds log everything and re-raise the panic after reporting
// so the native stack trace still prints.
func defaultLevel() log.Level { return log.DebugLevel }

const rawTrace = true
