package kernel

import (
	"bytes"
	"context"
	"os"
	osexec "os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kernelc/internal/artifacts"
	"kernelc/internal/buildmode"
	"kernelc/internal/config"
	"kernelc/internal/project"
	e "kernelc/pkg/errors"
	"kernelc/pkg/exec"
)

// recorder captures everything the compiler reports.
type recorder struct {
	mu     sync.Mutex
	errors []string
	traces []string
}

func (r *recorder) Error(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, msg)
}

func (r *recorder) Trace(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.traces = append(r.traces, msg)
}

func (r *recorder) Debug(string) {}

type fakeStatus struct {
	started []string
	stopped int
}

func (f *fakeStatus) start(msg string) Status {
	f.started = append(f.started, msg)
	return f
}

func (f *fakeStatus) Stop() { f.stopped++ }

// fakeProcess stands in for the compiler: it records the launch and runs script.
type fakeProcess struct {
	script string
	calls  int
	name   string
	args   []string
}

func (f *fakeProcess) CommandContext(ctx context.Context, name string, args ...string) *osexec.Cmd {
	f.calls++
	f.name = name
	f.args = args
	return osexec.CommandContext(ctx, "sh", "-c", f.script)
}

type fixture struct {
	cache    string
	runtime  string
	resolver *artifacts.Resolver
	project  *project.Project
	proc     *fakeProcess
	sink     *recorder
	status   *fakeStatus
}

func newFixture(t *testing.T, script string) *fixture {
	t.Helper()
	root := t.TempDir()
	cache := filepath.Join(root, "cache")
	f := &fixture{
		cache:   cache,
		runtime: filepath.Join(cache, "dart-sdk", "bin", "dart"),
		resolver: artifacts.New(&config.Config{
			CacheDir:       cache,
			BuildDir:       filepath.Join(root, "build"),
			TargetPlatform: "fuchsia-x64",
		}),
		project: &project.Project{
			Dir:          filepath.Join(root, "app"),
			AppName:      "myapp",
			PackagesFile: filepath.Join(root, "app", ".packages"),
			Entrypoint:   "lib/main.dart",
		},
		proc:   &fakeProcess{script: script},
		sink:   &recorder{},
		status: &fakeStatus{},
	}
	writeFile(t, f.runtime, 0o755)
	writeFile(t, f.resolver.FrontendSnapshot(), 0o644)
	for _, m := range buildmode.All() {
		writeFile(t, f.resolver.PlatformDill(m), 0o644)
	}
	return f
}

func writeFile(t *testing.T, p string, mode os.FileMode) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte("#!/bin/sh\n"), mode))
}

func (f *fixture) compiler() *Compiler {
	return New(f.resolver,
		WithCommander(f.proc),
		WithSink(f.sink),
		WithProgress(f.status.start),
	)
}

func (f *fixture) build(mode buildmode.Mode) error {
	return f.compiler().Build(context.Background(), f.project, "lib/main.dart", mode)
}

func TestBuild_DebugSuccess(t *testing.T) {
	f := newFixture(t, `echo compiled; echo note >&2; echo done`)
	require.NoError(t, f.build(buildmode.Debug))

	assert.Equal(t, 1, f.proc.calls)
	assert.Equal(t, f.runtime, f.proc.name)

	out := f.resolver.OutputDir()
	want := []string{
		f.resolver.FrontendSnapshot(),
		"--target", "flutter_runner",
		"--sdk-root", f.resolver.SDKRoot(buildmode.Debug),
		"--platform", f.resolver.PlatformDill(buildmode.Debug),
		"--filesystem-scheme", "main-root",
		"--filesystem-root", f.project.Dir,
		"--packages", "main-root:///.packages",
		"--output-dill", filepath.Join(out, "myapp.dil"),
		"--no-link-platform",
		"--split-output-by-packages",
		"--far-manifest", filepath.Join(out, "myapp.dilpmanifest"),
		"--component-name", "myapp",
		"--embed-source-text", "--gen-bytecode", "--drop-ast",
		"main-root:///lib/main.dart",
	}
	if diff := cmp.Diff(want, f.proc.args); diff != "" {
		t.Fatalf("argument vector mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, []string{"compiled", "done"}, f.sink.traces)
	assert.Equal(t, []string{"note"}, f.sink.errors)
	assert.Equal(t, []string{"Building Fuchsia application..."}, f.status.started)
	assert.Equal(t, 1, f.status.stopped)
}

func TestBuild_ModeFlags(t *testing.T) {
	for _, mode := range buildmode.All() {
		t.Run(mode.String(), func(t *testing.T) {
			f := newFixture(t, `exit 0`)
			require.NoError(t, f.build(mode))

			want, err := ModeFlags(mode)
			require.NoError(t, err)
			args := f.proc.args
			// mode flags sit between the component name and the entrypoint
			got := args[len(args)-1-len(want) : len(args)-1]
			assert.Equal(t, want, got)
			assert.Equal(t, f.resolver.PlatformDill(mode), args[indexOf(args, "--platform")+1])
		})
	}
}

func indexOf(args []string, flag string) int {
	for i, a := range args {
		if a == flag {
			return i
		}
	}
	return -1
}

func TestBuild_InvalidModeLaunchesNothing(t *testing.T) {
	f := newFixture(t, `exit 0`)
	err := f.build(buildmode.Mode(99))
	require.Error(t, err)
	assert.True(t, e.HasCode(err, e.ErrInvalidBuildMode))
	assert.Zero(t, f.proc.calls)
	assert.Empty(t, f.status.started)
}

func TestBuild_MissingRuntimeStopsEarly(t *testing.T) {
	f := newFixture(t, `exit 0`)
	require.NoError(t, os.Remove(f.runtime))
	// Frontend is missing too; the runtime check must come first.
	require.NoError(t, os.Remove(f.resolver.FrontendSnapshot()))

	err := f.build(buildmode.Debug)
	require.Error(t, err)
	assert.True(t, e.HasCode(err, e.ErrRuntimeNotFound))
	assert.Contains(t, err.Error(), f.runtime)
	assert.Zero(t, f.proc.calls)
	assert.Empty(t, f.status.started)
}

func TestBuild_RuntimeNotExecutable(t *testing.T) {
	f := newFixture(t, `exit 0`)
	require.NoError(t, os.Chmod(f.runtime, 0o644))

	err := f.build(buildmode.Debug)
	assert.True(t, e.HasCode(err, e.ErrRuntimeNotFound))
	assert.Zero(t, f.proc.calls)
}

func TestBuild_MissingArtifacts(t *testing.T) {
	tests := []struct {
		name   string
		remove func(f *fixture) string
	}{
		{"frontend", func(f *fixture) string { return f.resolver.FrontendSnapshot() }},
		{"platform", func(f *fixture) string { return f.resolver.PlatformDill(buildmode.Profile) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, `exit 0`)
			missing := tt.remove(f)
			require.NoError(t, os.Remove(missing))

			err := f.build(buildmode.Profile)
			require.Error(t, err)
			assert.True(t, e.HasCode(err, e.ErrArtifactNotFound))
			assert.Contains(t, err.Error(), missing)
			assert.Zero(t, f.proc.calls)
			assert.Empty(t, f.status.started)
		})
	}
}

func TestBuild_NonZeroExitWithoutOutput(t *testing.T) {
	f := newFixture(t, `exit 254`)
	err := f.build(buildmode.Release)
	require.Error(t, err)
	assert.True(t, e.HasCode(err, e.ErrBuildFailed))
	assert.Equal(t, "Build process failed", strings.SplitN(err.Error(), "\n", 2)[0])
	assert.Empty(t, f.sink.traces)
	assert.Empty(t, f.sink.errors)
	assert.Equal(t, 1, f.status.stopped)
}

func TestBuild_ZeroExitIgnoresStderr(t *testing.T) {
	f := newFixture(t, `echo "Error: looks bad" >&2; exit 0`)
	require.NoError(t, f.build(buildmode.Profile))
	assert.Equal(t, []string{"Error: looks bad"}, f.sink.errors)
}

func TestBuild_StartFailureStopsProgress(t *testing.T) {
	f := newFixture(t, "")
	c := New(f.resolver,
		WithCommander(exec.CommanderFunc(func(ctx context.Context, name string, args ...string) *osexec.Cmd {
			return osexec.CommandContext(ctx, filepath.Join(f.cache, "missing-binary"))
		})),
		WithSink(f.sink),
		WithProgress(f.status.start),
	)
	err := c.Build(context.Background(), f.project, "lib/main.dart", buildmode.Debug)
	require.Error(t, err)
	assert.True(t, e.HasCode(err, e.ErrProcessStartFailed))
	assert.Equal(t, 1, f.status.stopped)
}

func TestBuild_StreamsKeepOrderPerChannel(t *testing.T) {
	f := newFixture(t, `i=0; while [ $i -lt 50 ]; do echo out$i; echo err$i >&2; i=$((i+1)); done`)
	require.NoError(t, f.build(buildmode.Debug))

	require.Len(t, f.sink.traces, 50)
	require.Len(t, f.sink.errors, 50)
	for i := 0; i < 50; i++ {
		assert.Equal(t, "out"+strconv.Itoa(i), f.sink.traces[i])
		assert.Equal(t, "err"+strconv.Itoa(i), f.sink.errors[i])
	}
}


func TestBuild_LongOutputLineStillSucceeds(t *testing.T) {
	f := newFixture(t, `head -c 2097152 /dev/zero | tr '\0' x; echo; echo after; exit 0`)
	require.NoError(t, f.build(buildmode.Debug))

	require.Len(t, f.sink.traces, 2)
	assert.Len(t, f.sink.traces[0], 2<<20)
	assert.Equal(t, "after", f.sink.traces[1])
	assert.Equal(t, 1, f.status.stopped)
}

func TestBuild_StreamFailureStopsProgress(t *testing.T) {
	f := newFixture(t, "")
	var cmd *osexec.Cmd
	c := New(f.resolver,
		WithCommander(exec.CommanderFunc(func(ctx context.Context, name string, args ...string) *osexec.Cmd {
			cmd = osexec.CommandContext(ctx, "sh", "-c", "echo hi")
			cmd.Stdout = &bytes.Buffer{}
			return cmd
		})),
		WithSink(f.sink),
		WithProgress(f.status.start),
	)
	err := c.Build(context.Background(), f.project, "lib/main.dart", buildmode.Debug)
	require.Error(t, err)
	assert.False(t, e.HasCode(err, e.ErrBuildFailed))
	assert.False(t, e.HasCode(err, e.ErrProcessStartFailed))
	assert.Equal(t, []string{"Building Fuchsia application..."}, f.status.started)
	assert.Equal(t, 1, f.status.stopped)
	require.NotNil(t, cmd)
	assert.Nil(t, cmd.Process, "nothing should be launched")
	assert.Empty(t, f.sink.traces)
}

func TestBuild_CreatesOutputDirOnlyAfterChecks(t *testing.T) {
	f := newFixture(t, `exit 0`)
	require.NoError(t, os.Remove(f.resolver.PlatformDill(buildmode.Release)))

	require.Error(t, f.build(buildmode.Release))
	_, err := os.Stat(f.resolver.OutputDir())
	assert.True(t, os.IsNotExist(err), "failed checks must leave no output directory")

	require.NoError(t, f.build(buildmode.Debug))
	info, err := os.Stat(f.resolver.OutputDir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
