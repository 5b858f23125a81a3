// Package assert is the fail-fast path for programmer errors. A failed check
// appends a diagnostic record to the assert log, reports it through slog and
// aborts the process.
package assert

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"
)

// DefaultLogPath is the assert log used until SetLogPath is called.
const DefaultLogPath = "AssertLog.txt"

// ExitCode is the status the default abort exits with, matching SIGABRT.
const ExitCode = 134

var (
	mu      sync.Mutex
	logPath = DefaultLogPath
	abort   = func() { os.Exit(ExitCode) }
)

// SetLogPath changes the file failed checks are appended to.
func SetLogPath(path string) {
	mu.Lock()
	defer mu.Unlock()
	logPath = path
}

func LogPath() string {
	mu.Lock()
	defer mu.Unlock()
	return logPath
}

// SetAbortFunc replaces the function called after a failed check has been
// recorded and returns a function restoring the previous one. When fn
// returns, the failed check returns to its caller.
func SetAbortFunc(fn func()) (restore func()) {
	mu.Lock()
	defer mu.Unlock()
	prev := abort
	abort = fn
	return func() {
		mu.Lock()
		defer mu.Unlock()
		abort = prev
	}
}

// That aborts when ok is false. condition is the source text of the check
// and message says what went wrong.
func That(ok bool, condition, message string) {
	if ok {
		return
	}
	fail(2, condition, message)
}

// ThatDepth is That reporting the location skip frames above its caller.
func ThatDepth(skip int, ok bool, condition, message string) {
	if ok {
		return
	}
	fail(skip+2, condition, message)
}

func fail(skip int, condition, message string) {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		file, line = "unknown", 0
	}

	mu.Lock()
	path, abortFn := logPath, abort
	mu.Unlock()

	if err := appendRecord(path, file, line, condition, message); err != nil {
		slog.Error("cannot write assert log", slog.String("path", path), slog.Any("err", err))
	}
	slog.Error("assertion failed",
		slog.String("file", file),
		slog.Int("line", line),
		slog.String("condition", condition),
		slog.String("message", message),
	)
	abortFn()
}

func appendRecord(path, file string, line int, condition, message string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(f, "Assertion failed in file %s at line: %d\nCondition: %s\nMessage: %s\n\n",
		file, line, condition, message)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}
