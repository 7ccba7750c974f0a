package kernel

import (
	"path/filepath"

	"kernelc/internal/buildmode"
	e "kernelc/pkg/errors"
)

const (
	targetRuntime   = "flutter_runner"
	multiRootScheme = "main-root"
)

// Request is the input of one compilation. PackagesFile and Entrypoint are
// relative to ProjectDir.
type Request struct {
	ProjectDir   string
	PackagesFile string
	AppName      string
	Entrypoint   string
	Mode         buildmode.Mode
}

// Paths are the artifact locations resolved for one Request.
type Paths struct {
	Runtime  string
	Frontend string
	SDKRoot  string
	Platform string
	OutDir   string
}

// DillPath is the compiled kernel file for appName.
func (p Paths) DillPath(appName string) string {
	return filepath.Join(p.OutDir, appName+".dil")
}

// ManifestPath is the split-package manifest for appName.
func (p Paths) ManifestPath(appName string) string {
	return filepath.Join(p.OutDir, appName+".dilpmanifest")
}

var modeFlags = map[buildmode.Mode][]string{
	buildmode.Debug:   {"--embed-source-text", "--gen-bytecode", "--drop-ast"},
	buildmode.Profile: {"--no-embed-source-text", "-Ddart.vm.profile=true", "--gen-bytecode", "--drop-ast"},
	buildmode.Release: {"--no-embed-source-text", "-Ddart.vm.release=true", "--gen-bytecode", "--drop-ast"},
}

// ModeFlags returns the flags specific to mode.
func ModeFlags(mode buildmode.Mode) ([]string, error) {
	flags, ok := modeFlags[mode]
	if !ok {
		return nil, invalidMode(mode)
	}
	return append([]string(nil), flags...), nil
}

// BaseFlags returns the mode-independent flags in their fixed order.
func BaseFlags(req Request, paths Paths) []string {
	return []string{
		"--target", targetRuntime,
		"--sdk-root", paths.SDKRoot,
		"--platform", paths.Platform,
		"--filesystem-scheme", multiRootScheme,
		"--filesystem-root", req.ProjectDir,
		"--packages", schemeURI(req.PackagesFile),
		"--output-dill", paths.DillPath(req.AppName),
		"--no-link-platform",
		"--split-output-by-packages",
		"--far-manifest", paths.ManifestPath(req.AppName),
		"--component-name", req.AppName,
	}
}

// Flags assembles the compiler flags for req: base flags, mode flags, then
// the entrypoint URI. The frontend snapshot is not included.
func Flags(req Request, paths Paths) ([]string, error) {
	mode, err := ModeFlags(req.Mode)
	if err != nil {
		return nil, err
	}
	flags := BaseFlags(req, paths)
	flags = append(flags, mode...)
	return append(flags, schemeURI(req.Entrypoint)), nil
}

// schemeURI qualifies a project-relative path with the multi-root scheme.
func schemeURI(rel string) string {
	return multiRootScheme + ":///" + filepath.ToSlash(rel)
}

func invalidMode(mode buildmode.Mode) *e.Error {
	return e.New(e.ErrInvalidBuildMode, "Unknown build mode: "+mode.String()).
		WithContext("mode", mode.String())
}
