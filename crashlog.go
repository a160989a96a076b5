// Package crashlog is a drop-in panic-reporting and logging bootstrap
// for command-line programs. One Setup call opens a log file, routes
// the process-wide leveled logger to it, and registers a panic
// reporter. When the program later panics, the reporter appends a full
// incident report (message, source location, stack) to the log file
// and prints a short, human-friendly message to stderr in place of the
// default trace.
//
// Usage:
//
//	func main() {
//		defer crashlog.RecoverPanic()
//		if err := crashlog.Setup("app.log"); err != nil {
//			// no sink, no reporting guarantee
//		}
//		...
//	}
//
// Goroutines that should report their own crashes defer RecoverPanic
// the same way.
package crashlog

import (
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

// Metadata describes the host program for the terminal crash message.
type Metadata struct {
	Name     string
	Version  string
	Authors  string
	Homepage string
}

// reporter is the installed panic handler state: the sink it writes
// reports through and the program metadata for the terminal message.
type reporter struct {
	sink *sink
	meta Metadata
}

var (
	setupMu sync.Mutex
	current atomic.Pointer[reporter]
)

// Indirections for the panic path so tests can observe termination and
// terminal output without killing the test process.
var (
	exit             = os.Exit
	stderr io.Writer = os.Stderr
)

// Setup initializes crash reporting with metadata derived from the
// binary: program name from os.Args and version from build info. See
// SetupWithMetadata.
func Setup(path string) error {
	return SetupWithMetadata(path, defaultMetadata())
}

// SetupWithMetadata opens (or creates) the log file at path for
// append, makes it the destination of the process-wide leveled logger
// with the build-configuration threshold, and registers the panic
// reporter. It fails only when the file cannot be opened; in that case
// nothing is installed and panics keep the runtime's default behavior.
//
// Calling it again replaces the previous registration wholesale and
// closes the previous log file; there is never more than one reporter,
// so a single panic is only ever reported once.
//
// Setting the CRASHLOG_BACKTRACE environment variable skips the
// reporter registration: logging is configured as usual but panics
// print the raw runtime trace.
func SetupWithMetadata(path string, meta Metadata) error {
	setupMu.Lock()
	defer setupMu.Unlock()

	s, err := newSink(path)
	if err != nil {
		return err
	}
	log.SetDefault(s.logger)

	var next *reporter
	if os.Getenv("CRASHLOG_BACKTRACE") == "" {
		next = &reporter{sink: s, meta: meta}
	}
	if prev := current.Swap(next); prev != nil {
		_ = prev.sink.close()
	}

	if next != nil {
		s.emit(log.DebugLevel, "crash reporter installed")
	} else {
		s.emit(log.DebugLevel, "crash reporter skipped, CRASHLOG_BACKTRACE is set")
	}
	return nil
}

// Installed reports whether a panic reporter is currently registered.
func Installed() bool {
	return current.Load() != nil
}

// RecoverPanic intercepts a panic on the calling goroutine, writes the
// incident report to the crash log and, in release builds, prints the
// human message to stderr. Defer it first in main and in any goroutine
// that should report crashes.
//
// Before Setup has run (or when it failed) the panic is re-raised
// untouched. After a report, release builds exit with status 1 and
// debug builds re-raise so the native trace still prints. The handler
// itself is fail-safe: a fault while reporting is swallowed rather
// than turned into a second panic.
func RecoverPanic() {
	v := recover()
	if v == nil {
		return
	}
	rep := current.Load()
	if rep == nil {
		panic(v)
	}

	rep.handle(v)

	if rawTrace {
		panic(v)
	}
	exit(1)
}

// handle writes the report renderings. Each step is best-effort; the
// deferred recover guarantees a faulting reporter can never escalate
// an in-flight panic into a double fault. Debug builds re-raise with
// the native trace afterwards, so the apology is release-only.
func (p *reporter) handle(v any) {
	defer func() {
		_ = recover()
	}()

	r := buildReport(v)
	p.sink.writeReport(r.when, r.logBlock())
	if !rawTrace {
		printTerminalMessage(stderr, p.meta, p.sink.path)
	}
}

// defaultMetadata pulls what it can out of the binary itself: the
// executable name and, when built as a module, the main module version.
func defaultMetadata() Metadata {
	meta := Metadata{Name: filepath.Base(os.Args[0])}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		meta.Version = info.Main.Version
	}
	return meta
}
