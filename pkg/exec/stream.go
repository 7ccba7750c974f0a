package exec

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// DefaultWaitDelay bounds how long Stream waits for output pipes held open
// by the process's own children once the process has exited or was killed.
const DefaultWaitDelay = 5 * time.Second

// LineFunc receives one decoded line, without its terminator.
type LineFunc func(line string)

// StartError reports that the process could not be launched at all.
type StartError struct {
	Path string
	Err  error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("failed to start %s: %v", e.Path, e.Err)
}

func (e *StartError) Unwrap() error { return e.Err }

// Stream starts cmd and forwards its stdout and stderr line by line to the
// given callbacks, one goroutine per pipe. Lines of one pipe are delivered in
// the order the process wrote them; there is no ordering between the pipes.
// Lines have no length limit. Both pipes are drained before Stream returns.
// A non-zero exit is reported through the returned code, not as an error.
//
// cmd must not have Stdout or Stderr set. A zero cmd.WaitDelay is replaced
// by DefaultWaitDelay.
func Stream(cmd *exec.Cmd, onStdout, onStderr LineFunc) (int, error) {
	if cmd.Stdout != nil {
		return -1, errors.New("exec: Stdout already set")
	}
	if cmd.Stderr != nil {
		return -1, errors.New("exec: Stderr already set")
	}
	if cmd.WaitDelay == 0 {
		cmd.WaitDelay = DefaultWaitDelay
	}

	// exec copies the OS pipes into these writers and Wait joins the copies,
	// so WaitDelay also covers descendants that keep the pipes open.
	outR, outW := io.Pipe()
	errR, errW := io.Pipe()
	cmd.Stdout = outW
	cmd.Stderr = errW
	if err := cmd.Start(); err != nil {
		return -1, &StartError{Path: cmd.Path, Err: err}
	}

	var g errgroup.Group
	g.Go(func() error { return forwardLines(outR, onStdout) })
	g.Go(func() error { return forwardLines(errR, onStderr) })

	waitErr := cmd.Wait()
	_ = outW.Close()
	_ = errW.Close()
	streamErr := g.Wait()

	if streamErr != nil {
		return -1, streamErr
	}
	if waitErr != nil && !errors.Is(waitErr, exec.ErrWaitDelay) {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return -1, waitErr
	}
	return cmd.ProcessState.ExitCode(), nil
}

// forwardLines decodes r as UTF-8, replacing ill-formed bytes, and calls fn
// once per line. On a read failure the rest of r is discarded so the process
// never blocks on a full pipe.
func forwardLines(r io.Reader, fn LineFunc) error {
	decoded := transform.NewReader(r, transform.Chain(unicode.UTF8BOM.NewDecoder(), runes.ReplaceIllFormed()))
	br := bufio.NewReaderSize(decoded, 64*1024)
	for {
		line, err := br.ReadString('\n')
		if line != "" && fn != nil {
			fn(strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r"))
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			_, _ = io.Copy(io.Discard, r)
			return fmt.Errorf("reading process output: %w", err)
		}
	}
}
