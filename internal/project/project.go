// Package project loads the description of the application being compiled:
// its root directory, application name, packages file and default
// entrypoint. The description comes from an optional kernelc.hcl in the
// project root:
//
//	app_name      = "hello"
//	packages_file = ".dart_tool/package_config.json"
//	entrypoint    = "lib/main.dart"
//
// Attribute expressions may read the environment through env.NAME. Values
// are passed through to the compiler; their contents are not validated here.
package project

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	e "kernelc/pkg/errors"
)

// FileName is the project description file looked up in the project root.
const FileName = "kernelc.hcl"

const (
	packageConfigFile  = ".dart_tool/package_config.json"
	legacyPackagesFile = ".packages"
	defaultEntrypoint  = "lib/main.dart"
)

// Project describes one application. Dir and PackagesFile are absolute.
type Project struct {
	Dir          string
	AppName      string
	PackagesFile string
	Entrypoint   string
}

type fileSchema struct {
	AppName      string `hcl:"app_name,optional"`
	PackagesFile string `hcl:"packages_file,optional"`
	Entrypoint   string `hcl:"entrypoint,optional"`
}

// Load reads the project rooted at dir. A missing kernelc.hcl is not an
// error: the app name then defaults to the directory name.
func Load(dir string) (*Project, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, e.Wrap(err, e.ErrInvalidProject, "Cannot resolve project directory")
	}

	var desc fileSchema
	path := filepath.Join(abs, FileName)
	if _, err := os.Stat(path); err == nil {
		if err := decodeFile(path, &desc); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, e.Wrap(err, e.ErrInvalidProject, "Cannot read "+FileName)
	}

	p := &Project{
		Dir:          abs,
		AppName:      desc.AppName,
		PackagesFile: desc.PackagesFile,
		Entrypoint:   desc.Entrypoint,
	}
	if p.AppName == "" {
		p.AppName = filepath.Base(abs)
	}
	if p.PackagesFile == "" {
		p.PackagesFile = defaultPackagesFile(abs)
	}
	if !filepath.IsAbs(p.PackagesFile) {
		p.PackagesFile = filepath.Join(abs, filepath.FromSlash(p.PackagesFile))
	}
	if p.Entrypoint == "" {
		p.Entrypoint = defaultEntrypoint
	}
	return p, nil
}

func decodeFile(path string, desc *fileSchema) error {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return e.New(e.ErrInvalidProject, "Invalid "+FileName).WithDetails(diags.Error()).WithContext("file", path)
	}
	diags = gohcl.DecodeBody(f.Body, evalContext(), desc)
	if diags.HasErrors() {
		return e.New(e.ErrInvalidProject, "Invalid "+FileName).WithDetails(diags.Error()).WithContext("file", path)
	}
	return nil
}

// evalContext exposes the process environment as the env object.
func evalContext() *hcl.EvalContext {
	vars := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		vars[k] = cty.StringVal(v)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": cty.ObjectVal(vars)},
	}
}

// defaultPackagesFile prefers package_config.json and falls back to the
// legacy .packages file.
func defaultPackagesFile(dir string) string {
	if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(packageConfigFile))); err == nil {
		return packageConfigFile
	}
	return legacyPackagesFile
}
