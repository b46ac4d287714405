package tesseract

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

const binaryName = "tesseract"

// waitDelay bounds how long we wait for the process to exit after its
// context was cancelled, before it is killed forcefully.
const waitDelay = 10 * time.Second

func init() {
	if _, err := exec.LookPath(binaryName); err != nil {
		Initialized = false
	}
}

// Installed reports whether the tesseract binary was found in PATH.
func Installed() bool {
	return Initialized
}

func (in Input) token() string {
	if len(in.path) > 0 {
		return in.path
	}
	return "stdin"
}

func (o *Options) context(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.Timeout > 0 {
		return context.WithTimeout(ctx, o.Timeout)
	}
	return context.WithCancel(ctx)
}

// execute runs the tesseract binary with argv, feeding stdin from in when the
// input is not a file. It returns stdout and stderr separately; stderr is
// needed even on success, as some diagnostics (e.g. the deskew angle) are
// only reported there.
func execute(ctx context.Context, in Input, argv []string) (stdout, stderr []byte, err error) {
	if !Initialized {
		return nil, nil, ErrNotInstalled
	}
	cmd := exec.CommandContext(ctx, binaryName, argv...)
	if in.r != nil {
		cmd.Stdin = in.r
	}
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	cmd.WaitDelay = waitDelay
	err = cmd.Run()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, nil, ErrTimeout
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return outBuf.Bytes(), errBuf.Bytes(),
				&RunError{ExitCode: exitErr.ExitCode(), Stderr: errBuf.String()}
		}
		return nil, nil, err
	}
	return outBuf.Bytes(), errBuf.Bytes(), nil
}

// executeStdout runs one OCR invocation writing its result to stdout,
// with the full option flag set and optional trailing configfile names
// (e.g. "hocr", "pdf").
func executeStdout(ctx context.Context, in Input, o *Options, configfiles ...string) ([]byte, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	argv := append([]string{in.token(), "stdout"}, o.args()...)
	argv = append(argv, configfiles...)
	ctx, cancel := o.context(ctx)
	defer cancel()
	out, _, err := execute(ctx, in, argv)
	return out, err
}
