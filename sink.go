package crashlog

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// sink owns the crash log file handle for the lifetime of the process.
// Leveled records go through the charmbracelet logger, which writes one
// line per record under its own lock. Multi-line panic reports bypass
// the logger and are appended in a single write so concurrent log lines
// can never land inside a report block.
type sink struct {
	path   string
	file   *os.File
	logger *log.Logger

	mu sync.Mutex // serializes report writes
}

// newSink opens path for append, creating the file if it does not
// exist. The parent directory must already exist.
func newSink(path string) (*sink, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open crash log %s: %w", path, err)
	}

	lg := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Level:           defaultLevel(),
	})

	return &sink{path: path, file: f, logger: lg}, nil
}

// emit writes a single leveled record. Records below the build
// threshold are dropped; write failures are dropped too, a sink that
// cannot write must stay silent rather than fault.
func (s *sink) emit(level log.Level, msg string) {
	s.logger.Log(level, msg)
}

// writeReport appends a panic report block as one atomic write,
// stamped like an ordinary error record with the interception time.
// Errors are discarded: this runs while the program is already
// crashing.
func (s *sink) writeReport(when time.Time, block string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !strings.HasSuffix(block, "\n") {
		block += "\n"
	}
	_, _ = fmt.Fprintf(s.file, "%s ERRO %s", when.Format(time.DateTime), block)
}

func (s *sink) close() error {
	return s.file.Close()
}
