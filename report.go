package crashlog

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"time"
)

// panicReport captures everything we know about a panic at the moment
// of interception. It is built, rendered, written and discarded inside
// the handler; nothing retains it.
type panicReport struct {
	message string
	file    string
	line    int
	stack   string
	when    time.Time
}

// buildReport assembles a report from a recovered panic value. It must
// run on the panicking goroutine, while the deferred handler is still
// executing, so the panic frames are present in the call stack. Every
// field is best-effort: a missing location or stack never fails the
// report.
func buildReport(v any) panicReport {
	r := panicReport{
		message: fmt.Sprintf("%v", v),
		stack:   string(debug.Stack()),
		when:    time.Now(),
	}
	if file, line, ok := panicOrigin(); ok {
		r.file = file
		r.line = line
	}
	return r
}

// panicOrigin walks the current call stack for the frame that raised
// the panic: the first non-runtime caller past runtime.gopanic.
func panicOrigin() (string, int, bool) {
	pcs := make([]uintptr, 64)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	pastPanic := false
	for {
		f, more := frames.Next()
		if pastPanic && f.Function != "" && !strings.HasPrefix(f.Function, "runtime.") {
			return f.File, f.Line, true
		}
		if strings.HasPrefix(f.Function, "runtime.gopanic") {
			pastPanic = true
		}
		if !more {
			return "", 0, false
		}
	}
}

// logBlock renders the verbose log-file form of the report: message,
// source location and the captured stack.
func (r panicReport) logBlock() string {
	var b strings.Builder
	fmt.Fprintf(&b, "panic: %s\n", r.message)
	if r.file != "" {
		fmt.Fprintf(&b, "    at %s:%d\n", r.file, r.line)
	} else {
		b.WriteString("    at unknown location\n")
	}
	if stack := strings.TrimRight(r.stack, "\n"); stack != "" {
		b.WriteString(stack)
		b.WriteByte('\n')
	}
	return b.String()
}
