// Package kernel drives the external kernel compiler. A Compiler resolves
// the engine artifacts for a build mode, assembles the compiler's argument
// vector, runs it, and forwards its output: stderr to the error channel and
// stdout to the trace channel. It never inspects what the compiler writes.
package kernel

import (
	"context"
	"errors"
	"os"
	osexec "os/exec"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"kernelc/internal/buildmode"
	"kernelc/internal/digest"
	"kernelc/internal/project"
	e "kernelc/pkg/errors"
	"kernelc/pkg/exec"
	"kernelc/pkg/logger"
	"kernelc/pkg/terminal"
)

const progressMessage = "Building Fuchsia application..."

// ArtifactResolver locates compiler artifacts. It computes paths only.
type ArtifactResolver interface {
	RuntimeBinary() string
	FrontendSnapshot() string
	SDKRoot(mode buildmode.Mode) string
	PlatformDill(mode buildmode.Mode) string
	OutputDir() string
}

// Sink receives forwarded compiler output and diagnostics.
type Sink interface {
	Error(msg string)
	Trace(msg string)
	Debug(msg string)
}

// Status is a running progress indicator.
type Status interface {
	Stop()
}

// ProgressFunc starts a progress indicator showing message.
type ProgressFunc func(message string) Status

// Compiler invokes the kernel compiler. It holds no per-build state, so one
// Compiler may serve concurrent builds; each gets its own subprocess.
type Compiler struct {
	artifacts ArtifactResolver
	commander exec.Commander
	log       Sink
	progress  ProgressFunc
	lookPath  func(string) (string, error)
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithCommander replaces the process launcher.
func WithCommander(c exec.Commander) Option {
	return func(k *Compiler) { k.commander = c }
}

// WithSink replaces the log sink.
func WithSink(s Sink) Option {
	return func(k *Compiler) { k.log = s }
}

// WithProgress replaces the progress indicator.
func WithProgress(p ProgressFunc) Option {
	return func(k *Compiler) { k.progress = p }
}

// New returns a Compiler using the global logger, a terminal spinner and
// the default Commander unless overridden.
func New(artifacts ArtifactResolver, opts ...Option) *Compiler {
	c := &Compiler{
		artifacts: artifacts,
		commander: exec.Default,
		log:       logger.Default(),
		progress:  func(msg string) Status { return terminal.StartSpinner(msg) },
		lookPath:  osexec.LookPath,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Build compiles entrypoint, a path relative to the project root, in mode.
// It returns nil when the compiler exits with status 0 and an *errors.Error
// otherwise. Nothing is launched, and the output directory is not created,
// unless every artifact check passes.
func (c *Compiler) Build(ctx context.Context, p *project.Project, entrypoint string, mode buildmode.Mode) error {
	if !mode.Valid() {
		return invalidMode(mode)
	}

	runtime, err := c.lookPath(c.artifacts.RuntimeBinary())
	if err != nil {
		return e.New(e.ErrRuntimeNotFound, "Dart runtime not found or not executable: "+c.artifacts.RuntimeBinary()).
			WithCause(err).
			WithContext("path", c.artifacts.RuntimeBinary())
	}

	frontend := c.artifacts.FrontendSnapshot()
	if !fileExists(frontend) {
		return missingArtifact("Kernel compiler snapshot", frontend)
	}

	packages, err := filepath.Rel(p.Dir, p.PackagesFile)
	if err != nil {
		return e.Wrap(err, e.ErrInvalidProject, "Packages file is not under the project root").
			WithContext("packages", p.PackagesFile)
	}
	req := Request{
		ProjectDir:   p.Dir,
		PackagesFile: packages,
		AppName:      p.AppName,
		Entrypoint:   entrypoint,
		Mode:         mode,
	}
	paths := Paths{
		Runtime:  runtime,
		Frontend: frontend,
		OutDir:   c.artifacts.OutputDir(),
		SDKRoot:  c.artifacts.SDKRoot(mode),
		Platform: c.artifacts.PlatformDill(mode),
	}
	if !fileExists(paths.Platform) {
		return missingArtifact("Platform dill", paths.Platform)
	}

	flags, err := Flags(req, paths)
	if err != nil {
		return err
	}
	// The compiler writes into OutDir but does not create it.
	if err := os.MkdirAll(paths.OutDir, 0o755); err != nil {
		return e.Wrap(err, e.ErrUnknown, "Cannot create output directory").WithContext("dir", paths.OutDir)
	}
	return c.run(ctx, paths, flags)
}

func (c *Compiler) run(ctx context.Context, paths Paths, flags []string) error {
	args := append([]string{paths.Frontend}, flags...)
	id := uuid.NewString()
	c.log.Debug("kernel compile " + id + " fingerprint " + digest.Command(paths.Runtime, args))
	c.log.Debug("kernel compile " + id + ": " + exec.JoinArgs(append([]string{paths.Runtime}, args...)))

	status := c.progress(progressMessage)
	defer status.Stop()

	cmd := c.commander.CommandContext(ctx, paths.Runtime, args...)
	code, err := exec.Stream(cmd, c.log.Trace, c.log.Error)
	if err != nil {
		var startErr *exec.StartError
		if errors.As(err, &startErr) {
			return e.New(e.ErrProcessStartFailed, "Failed to start the kernel compiler").
				WithCause(err).
				WithContext("runtime", paths.Runtime)
		}
		return e.Wrap(err, e.ErrUnknown, "Kernel compiler output could not be read")
	}
	c.log.Debug("kernel compile " + id + " exited with " + strconv.Itoa(code))
	if code != 0 {
		return e.New(e.ErrBuildFailed, "Build process failed").
			WithContext("exit_code", strconv.Itoa(code))
	}
	return nil
}

func missingArtifact(what, path string) *e.Error {
	return e.New(e.ErrArtifactNotFound, what+" not found at "+path).WithContext("path", path)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
