package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	e "kernelc/pkg/errors"
)

func write(t *testing.T, p, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func TestLoad_Defaults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "hello_fuchsia")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	p, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, p.Dir)
	assert.Equal(t, "hello_fuchsia", p.AppName)
	assert.Equal(t, filepath.Join(dir, ".packages"), p.PackagesFile)
	assert.Equal(t, "lib/main.dart", p.Entrypoint)
}

func TestLoad_PrefersPackageConfig(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, ".dart_tool", "package_config.json"), "{}")

	p, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".dart_tool", "package_config.json"), p.PackagesFile)
}

func TestLoad_HCLFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("KERNELC_TEST_APP", "from_env")
	write(t, filepath.Join(dir, FileName), `
app_name      = env.KERNELC_TEST_APP
packages_file = "tool/.packages"
entrypoint    = "lib/app.dart"
`)

	p, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "from_env", p.AppName)
	assert.Equal(t, filepath.Join(dir, "tool", ".packages"), p.PackagesFile)
	assert.Equal(t, "lib/app.dart", p.Entrypoint)
}

func TestLoad_InvalidHCL(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, FileName), `app_name = `)

	_, err := Load(dir)
	require.Error(t, err)
	assert.True(t, e.HasCode(err, e.ErrInvalidProject))
}

func TestLoad_UnknownAttribute(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, FileName), `mode = "debug"`)

	_, err := Load(dir)
	require.Error(t, err)
	assert.True(t, e.HasCode(err, e.ErrInvalidProject))
}
