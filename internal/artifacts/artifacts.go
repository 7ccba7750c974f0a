// Package artifacts locates the engine artifacts the kernel compiler needs:
// the Dart runtime, the kernel compiler snapshot, and the per-mode patched
// SDK with its platform dill. Paths follow the Flutter artifact cache layout:
//
//	<cache>/dart-sdk/bin/dart
//	<cache>/artifacts/engine/fuchsia/kernel_compiler.snapshot
//	<cache>/artifacts/engine/<target>/<mode>/flutter_runner_patched_sdk/platform_strong.dill
//
// The resolver only computes paths; existence checks belong to the caller.
package artifacts

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/gobwas/glob"

	"kernelc/internal/buildmode"
	"kernelc/internal/config"
)

const (
	runtimeName       = "dart"
	frontendSnapshot  = "kernel_compiler.snapshot"
	patchedSDKDir     = "flutter_runner_patched_sdk"
	platformDillName  = "platform_strong.dill"
	fuchsiaOutputName = "fuchsia"
)

// installedPattern matches platform dills relative to the engine directory.
var installedPattern = glob.MustCompile(
	"fuchsia-{x64,arm64}/{debug,profile,release}/"+patchedSDKDir+"/"+platformDillName, '/')

// Resolver computes artifact paths from user configuration.
type Resolver struct {
	cacheDir string
	runtime  string
	buildDir string
	target   string
}

// Installation is one (target, mode) pair with a platform dill on disk.
type Installation struct {
	Target string
	Mode   buildmode.Mode
}

// New builds a resolver from cfg. An empty cache directory falls back to
// $FLUTTER_ROOT/bin/cache.
func New(cfg *config.Config) *Resolver {
	r := &Resolver{
		cacheDir: cfg.CacheDir,
		runtime:  cfg.Runtime,
		buildDir: cfg.BuildDir,
		target:   cfg.TargetPlatform,
	}
	if r.cacheDir == "" {
		if root := os.Getenv("FLUTTER_ROOT"); root != "" {
			r.cacheDir = filepath.Join(root, "bin", "cache")
		}
	}
	if r.buildDir == "" {
		r.buildDir = config.DefaultBuildDir
	}
	if r.target == "" {
		r.target = config.DefaultTargetPlatform
	}
	return r
}

// Target returns the configured target platform.
func (r *Resolver) Target() string { return r.target }

// CacheDir returns the artifact cache root.
func (r *Resolver) CacheDir() string { return r.cacheDir }

// RuntimeBinary returns the Dart runtime to launch. Without an explicit
// override or a cache directory it is the bare name, looked up on PATH by
// the caller.
func (r *Resolver) RuntimeBinary() string {
	if r.runtime != "" {
		return r.runtime
	}
	if r.cacheDir != "" {
		return filepath.Join(r.cacheDir, "dart-sdk", "bin", runtimeName)
	}
	return runtimeName
}

// FrontendSnapshot returns the kernel compiler snapshot path.
func (r *Resolver) FrontendSnapshot() string {
	return filepath.Join(r.engineDir(), "fuchsia", frontendSnapshot)
}

// SDKRoot returns the patched SDK directory for mode, with a trailing separator.
func (r *Resolver) SDKRoot(mode buildmode.Mode) string {
	return filepath.Join(r.engineDir(), r.target, mode.String(), patchedSDKDir) + string(filepath.Separator)
}

// PlatformDill returns the platform definition file for mode.
func (r *Resolver) PlatformDill(mode buildmode.Mode) string {
	return filepath.Join(r.SDKRoot(mode), platformDillName)
}

// OutputDir returns the directory compiler output is written to.
func (r *Resolver) OutputDir() string {
	return filepath.Join(r.buildDir, fuchsiaOutputName)
}

// Installed walks the engine directory and reports every target and mode
// that has a platform dill. A missing engine directory yields no entries.
func (r *Resolver) Installed() ([]Installation, error) {
	root := r.engineDir()
	var found []Installation
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == root && os.IsNotExist(err) {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if !installedPattern.Match(rel) {
			return nil
		}
		// <target>/<mode>/flutter_runner_patched_sdk/platform_strong.dill
		modeDir := path.Dir(path.Dir(rel))
		mode, perr := buildmode.Parse(path.Base(modeDir))
		if perr != nil {
			return nil
		}
		found = append(found, Installation{Target: path.Dir(modeDir), Mode: mode})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].Target != found[j].Target {
			return found[i].Target < found[j].Target
		}
		return found[i].Mode < found[j].Mode
	})
	return found, nil
}

func (r *Resolver) engineDir() string {
	return filepath.Join(r.cacheDir, "artifacts", "engine")
}
