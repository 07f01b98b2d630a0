// Package toolchain runs the external bundling toolchain against a staged
// app directory. Output streams through to the user live while a bounded
// stderr tail is retained for the failure report. A failed run is never
// retried: the staging tree is gone by the time the error surfaces, so a
// retry would rebuild from scratch anyway.
package toolchain

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/webcask/webcask/internal/compose"
	"github.com/webcask/webcask/internal/errors"
)

const (
	// EnvToolchain overrides the configured toolchain binary.
	EnvToolchain = "WEBCASK_TOOLCHAIN"

	// bundleMarker appears on stdout once the toolchain starts packaging.
	// Its absence on a zero exit usually means the build config disabled
	// bundling.
	bundleMarker = "Bundling"

	stderrTailLimit = 40

	maxLineBytes = 1 << 20
)

// ExitOutcome describes one toolchain run.
type ExitOutcome struct {
	ExitCode         int
	BundleMarkerSeen bool
	StderrTail       []string
	Duration         time.Duration
}

func (o *ExitOutcome) Success() bool {
	return o.ExitCode == 0
}

// Invoker abstracts the toolchain run so orchestration and tests can swap
// the external binary for a stand-in.
type Invoker interface {
	Invoke(ctx context.Context, appDir string) (*ExitOutcome, error)
}

// BinaryInvoker executes the configured toolchain binary from PATH.
type BinaryInvoker struct {
	Bin  string
	Args []string

	// Stdout and Stderr receive the streamed toolchain output. They
	// default to the process streams.
	Stdout io.Writer
	Stderr io.Writer
}

// NewInvoker builds an invoker from the composed build config, honoring
// the EnvToolchain override.
func NewInvoker(c *compose.Composed) *BinaryInvoker {
	bin, args := c.ToolchainCommand()
	if override := os.Getenv(EnvToolchain); override != "" {
		slog.Debug("Toolchain binary overridden from environment", "bin", override)
		bin = override
	}
	return &BinaryInvoker{Bin: bin, Args: args, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Invoke runs the toolchain once inside appDir. A process that could not
// start returns a toolchain error and no outcome; a process that ran and
// failed returns both the outcome and a toolchain error carrying the exit
// code and stderr tail.
func (b *BinaryInvoker) Invoke(ctx context.Context, appDir string) (*ExitOutcome, error) {
	if _, err := exec.LookPath(b.Bin); err != nil {
		return nil, errors.ToolchainStartError(b.Bin, err)
	}

	cmd := exec.CommandContext(ctx, b.Bin, b.Args...)
	cmd.Dir = appDir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.ToolchainStartError(b.Bin, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, errors.ToolchainStartError(b.Bin, err)
	}

	slog.Info("Invoking toolchain", "bin", b.Bin, "args", strings.Join(b.Args, " "), "dir", appDir)
	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, errors.ToolchainStartError(b.Bin, err)
	}

	var (
		wg         sync.WaitGroup
		markerSeen bool
		tail       = &tailBuffer{limit: stderrTailLimit}
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		scanLines(stdout, func(line string) {
			if strings.Contains(line, bundleMarker) {
				markerSeen = true
			}
			fmt.Fprintln(b.stdoutWriter(), line)
		})
	}()
	go func() {
		defer wg.Done()
		scanLines(stderr, func(line string) {
			tail.Add(line)
			fmt.Fprintln(b.stderrWriter(), line)
		})
	}()

	// Drain both pipes before Wait closes them.
	wg.Wait()
	waitErr := cmd.Wait()

	outcome := &ExitOutcome{
		ExitCode:         exitCode(waitErr),
		BundleMarkerSeen: markerSeen,
		StderrTail:       tail.Lines(),
		Duration:         time.Since(start),
	}

	if waitErr != nil {
		if ctx.Err() != nil {
			return outcome, errors.Toolchain("toolchain interrupted: "+ctx.Err().Error(), outcome.ExitCode, outcome.StderrTail)
		}
		return outcome, errors.Toolchain(
			fmt.Sprintf("toolchain %s exited with code %d", b.Bin, outcome.ExitCode),
			outcome.ExitCode, outcome.StderrTail)
	}

	slog.Info("Toolchain completed", "bin", b.Bin, "duration_ms", outcome.Duration.Milliseconds())
	return outcome, nil
}

func (b *BinaryInvoker) stdoutWriter() io.Writer {
	if b.Stdout != nil {
		return b.Stdout
	}
	return os.Stdout
}

func (b *BinaryInvoker) stderrWriter() io.Writer {
	if b.Stderr != nil {
		return b.Stderr
	}
	return os.Stderr
}

// scanLines forwards each line of r to fn, tolerating very long lines.
func scanLines(r io.Reader, fn func(string)) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		fn(scanner.Text())
	}
}

func exitCode(waitErr error) int {
	if waitErr == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if stderrors.As(waitErr, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// tailBuffer keeps the last limit lines added.
type tailBuffer struct {
	limit int
	lines []string
}

func (t *tailBuffer) Add(line string) {
	if len(t.lines) == t.limit {
		t.lines = append(t.lines[1:], line)
		return
	}
	t.lines = append(t.lines, line)
}

func (t *tailBuffer) Lines() []string {
	return t.lines
}

// NoopInvoker skips the toolchain entirely. Used where orchestration is
// exercised without a real bundler on PATH.
type NoopInvoker struct{}

func (NoopInvoker) Invoke(ctx context.Context, appDir string) (*ExitOutcome, error) {
	slog.Debug("NoopInvoker skipping toolchain run", "dir", appDir)
	return &ExitOutcome{ExitCode: 0, BundleMarkerSeen: true}, nil
}
