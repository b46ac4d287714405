package tesseract

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotInstalled is returned when no tesseract binary is in PATH.
	ErrNotInstalled = errors.New("tesseract is not installed or not in PATH")
	// ErrTimeout is returned when the subprocess exceeded its deadline
	// and was killed.
	ErrTimeout = errors.New("tesseract process timeout")
)

// RunError reports a tesseract invocation that exited non-zero.
// It carries the exit code and whatever the process wrote to stderr.
type RunError struct {
	ExitCode int
	Stderr   string
}

func (e *RunError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		msg = "no diagnostic output"
	}
	return fmt.Sprintf("tesseract exited with code %d: %s", e.ExitCode, msg)
}
