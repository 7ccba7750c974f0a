package artifacts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kernelc/internal/buildmode"
	"kernelc/internal/config"
)

func touch(t *testing.T, p string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, nil, 0o644))
}

func TestResolverPaths(t *testing.T) {
	r := New(&config.Config{CacheDir: "/cache", BuildDir: "/proj/build", TargetPlatform: "fuchsia-arm64"})

	assert.Equal(t, "/cache/dart-sdk/bin/dart", r.RuntimeBinary())
	assert.Equal(t, "/cache/artifacts/engine/fuchsia/kernel_compiler.snapshot", r.FrontendSnapshot())
	assert.Equal(t, "/cache/artifacts/engine/fuchsia-arm64/profile/flutter_runner_patched_sdk/", r.SDKRoot(buildmode.Profile))
	assert.Equal(t, "/cache/artifacts/engine/fuchsia-arm64/release/flutter_runner_patched_sdk/platform_strong.dill", r.PlatformDill(buildmode.Release))
	assert.Equal(t, "/proj/build/fuchsia", r.OutputDir())
}

func TestResolverRuntimeFallbacks(t *testing.T) {
	t.Setenv("FLUTTER_ROOT", "")
	assert.Equal(t, "/opt/dart", New(&config.Config{Runtime: "/opt/dart", CacheDir: "/cache"}).RuntimeBinary())
	assert.Equal(t, "dart", New(&config.Config{}).RuntimeBinary())

	t.Setenv("FLUTTER_ROOT", "/flutter")
	r := New(&config.Config{})
	assert.Equal(t, "/flutter/bin/cache", r.CacheDir())
	assert.Equal(t, "fuchsia-x64", r.Target())
	assert.Equal(t, filepath.Join("build", "fuchsia"), r.OutputDir())
}

func TestInstalled(t *testing.T) {
	cache := t.TempDir()
	engine := filepath.Join(cache, "artifacts", "engine")
	touch(t, filepath.Join(engine, "fuchsia-x64", "release", "flutter_runner_patched_sdk", "platform_strong.dill"))
	touch(t, filepath.Join(engine, "fuchsia-x64", "debug", "flutter_runner_patched_sdk", "platform_strong.dill"))
	touch(t, filepath.Join(engine, "fuchsia-arm64", "profile", "flutter_runner_patched_sdk", "platform_strong.dill"))
	// Not matched: unknown mode, wrong file name, unknown target.
	touch(t, filepath.Join(engine, "fuchsia-x64", "jit_release", "flutter_runner_patched_sdk", "platform_strong.dill"))
	touch(t, filepath.Join(engine, "fuchsia-x64", "profile", "flutter_runner_patched_sdk", "vm_platform.dill"))
	touch(t, filepath.Join(engine, "android-x64", "debug", "flutter_runner_patched_sdk", "platform_strong.dill"))

	got, err := New(&config.Config{CacheDir: cache}).Installed()
	require.NoError(t, err)
	assert.Equal(t, []Installation{
		{Target: "fuchsia-arm64", Mode: buildmode.Profile},
		{Target: "fuchsia-x64", Mode: buildmode.Debug},
		{Target: "fuchsia-x64", Mode: buildmode.Release},
	}, got)
}

func TestInstalled_MissingEngineDir(t *testing.T) {
	got, err := New(&config.Config{CacheDir: filepath.Join(t.TempDir(), "nope")}).Installed()
	require.NoError(t, err)
	assert.Empty(t, got)
}
