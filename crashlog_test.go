package crashlog

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

// stubCrash redirects the panic path's terminal output and exit for
// the duration of a test and tears down any installed reporter.
func stubCrash(t *testing.T) (out *bytes.Buffer, exitCode *int) {
	t.Helper()
	t.Setenv("CRASHLOG_BACKTRACE", "")

	var buf bytes.Buffer
	code := -1
	oldExit, oldStderr := exit, stderr
	exit = func(c int) { code = c }
	stderr = &buf

	t.Cleanup(func() {
		exit, stderr = oldExit, oldStderr
		if prev := current.Swap(nil); prev != nil {
			_ = prev.sink.close()
		}
	})
	return &buf, &code
}

func TestSetupOpensSinkAndInstalls(t *testing.T) {
	stubCrash(t)
	path := filepath.Join(t.TempDir(), "app.log")

	if err := Setup(path); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if !Installed() {
		t.Fatal("reporter not installed after Setup")
	}

	log.Info("normal log message")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file missing: %v", err)
	}
	if !strings.Contains(string(data), "INFO normal log message") {
		t.Errorf("leveled record not routed to file: %q", data)
	}
}

func TestSetupMissingParentDir(t *testing.T) {
	stubCrash(t)
	path := filepath.Join(t.TempDir(), "no", "such", "dir", "app.log")

	if err := Setup(path); err == nil {
		t.Fatal("expected I/O error for missing parent directory")
	}
	if Installed() {
		t.Error("failed Setup must not install a reporter")
	}
}

func TestSetupBacktraceEnvSkipsReporter(t *testing.T) {
	stubCrash(t)
	t.Setenv("CRASHLOG_BACKTRACE", "1")
	path := filepath.Join(t.TempDir(), "app.log")

	if err := Setup(path); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if Installed() {
		t.Error("CRASHLOG_BACKTRACE must leave the reporter uninstalled")
	}

	// Logging is still configured.
	log.Info("still logging")
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "still logging") {
		t.Errorf("sink not active: %q", data)
	}
}

func TestRecoverPanicUninstalledRepanics(t *testing.T) {
	stubCrash(t)

	var reraised any
	func() {
		defer func() { reraised = recover() }()
		func() {
			defer RecoverPanic()
			panic("nobody is listening")
		}()
	}()

	if reraised != "nobody is listening" {
		t.Errorf("panic value not re-raised untouched, got %v", reraised)
	}
}

func TestCrashScenario(t *testing.T) {
	if rawTrace {
		t.Skip("debug builds re-raise the panic and skip the terminal message")
	}

	terminal, exitCode := stubCrash(t)
	path := filepath.Join(t.TempDir(), "app.log")

	if err := SetupWithMetadata(path, Metadata{Name: "app", Homepage: "https://example.com"}); err != nil {
		t.Fatalf("Setup: %v", err)
	}

	log.Info("normal log message")
	func() {
		defer RecoverPanic()
		panic("OMG EVERYTHING IS ON FIRE!!!")
	}()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	content := string(data)

	infoAt := strings.Index(content, "normal log message")
	reportAt := strings.Index(content, "ERRO panic: OMG EVERYTHING IS ON FIRE!!!")
	if infoAt < 0 || reportAt < 0 {
		t.Fatalf("log missing records:\n%s", content)
	}
	if reportAt < infoAt {
		t.Error("panic report written before the earlier info record")
	}
	if !strings.Contains(content, "crashlog_test.go") {
		t.Errorf("report missing source location:\n%s", content)
	}
	if !strings.Contains(content, "goroutine") {
		t.Errorf("report missing stack trace:\n%s", content)
	}
	if strings.Count(content, "ERRO panic:") != 1 {
		t.Errorf("expected exactly one report:\n%s", content)
	}

	msg := terminal.String()
	if !strings.Contains(msg, "app had a problem and crashed") {
		t.Errorf("terminal message missing apology:\n%s", msg)
	}
	if !strings.Contains(msg, path) {
		t.Errorf("terminal message does not reference the log path:\n%s", msg)
	}
	if strings.Contains(msg, "goroutine") || strings.Contains(msg, "OMG EVERYTHING IS ON FIRE!!!") {
		t.Errorf("terminal message leaks raw panic detail:\n%s", msg)
	}

	if *exitCode != 1 {
		t.Errorf("exit code = %d, want 1", *exitCode)
	}
}

func TestSetupTwiceReportsOnce(t *testing.T) {
	_, _ = stubCrash(t)
	dir := t.TempDir()
	first := filepath.Join(dir, "first.log")
	second := filepath.Join(dir, "second.log")

	if err := Setup(first); err != nil {
		t.Fatalf("first Setup: %v", err)
	}
	if err := Setup(second); err != nil {
		t.Fatalf("second Setup: %v", err)
	}

	func() {
		defer func() { _ = recover() }() // debug builds re-raise
		func() {
			defer RecoverPanic()
			panic("only once")
		}()
	}()

	firstData, _ := os.ReadFile(first)
	if strings.Contains(string(firstData), "panic:") {
		t.Errorf("replaced sink still received the report: %q", firstData)
	}

	secondData, _ := os.ReadFile(second)
	if got := strings.Count(string(secondData), "ERRO panic: only once"); got != 1 {
		t.Errorf("report count = %d, want 1:\n%s", got, secondData)
	}
}

func TestReporterNeverDoubleFaults(t *testing.T) {
	terminal, exitCode := stubCrash(t)
	path := filepath.Join(t.TempDir(), "app.log")

	if err := Setup(path); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	// Break the sink behind the reporter's back; the handler must
	// swallow the write failure and still finish.
	_ = current.Load().sink.file.Close()

	var reraised any
	func() {
		defer func() { reraised = recover() }()
		func() {
			defer RecoverPanic()
			panic("write will fail")
		}()
	}()

	if rawTrace {
		if reraised != "write will fail" {
			t.Errorf("panic value not re-raised untouched, got %v", reraised)
		}
		return
	}
	if reraised != nil {
		t.Errorf("unexpected re-panic: %v", reraised)
	}
	if terminal.Len() == 0 {
		t.Error("terminal message skipped after sink failure")
	}
	if *exitCode != 1 {
		t.Errorf("exit code = %d, want 1", *exitCode)
	}
}

func TestDefaultMetadata(t *testing.T) {
	meta := defaultMetadata()
	if meta.Name == "" {
		t.Error("default metadata has no program name")
	}
}
