// Package doctor provides health checks for the kernel compiler environment.
package doctor

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"kernelc/internal/artifacts"
	"kernelc/internal/buildmode"
	"kernelc/pkg/terminal"
)

// lookPath enables test stubbing.
var lookPath = exec.LookPath

// Doctor performs environment health checks
type Doctor struct {
	checks   []HealthCheck
	out      io.Writer
	verbose  bool
	cacheDir string
}

// HealthCheck represents a single diagnostic check
type HealthCheck interface {
	Name() string
	Run() CheckResult
	CanAutoFix() bool
	Fix() error
}

// CheckResult contains the outcome of a health check
type CheckResult struct {
	Status     Status
	Message    string
	Details    string
	FixCommand string
	Impact     string
}

// Status represents check status
type Status int

const (
	StatusOK Status = iota
	StatusWarning
	StatusError
	StatusCritical
)

// HealthReport summarizes checks
type HealthReport struct {
	TotalChecks int
	Passed      int
	Warnings    int
	Errors      int
	Critical    int
	StartTime   time.Time
	EndTime     time.Time
}

// New builds a doctor with the standard checks for resolver.
func New(resolver *artifacts.Resolver, out io.Writer, verbose bool) *Doctor {
	return &Doctor{
		checks: []HealthCheck{
			&RuntimeCheck{resolver: resolver},
			&FrontendCheck{resolver: resolver},
			&PlatformCheck{resolver: resolver},
			&OutputDirCheck{resolver: resolver},
		},
		out:      out,
		verbose:  verbose,
		cacheDir: resolver.CacheDir(),
	}
}

// Run executes all checks and prints a concise report
func (d *Doctor) Run() HealthReport {
	rpt := HealthReport{StartTime: time.Now()}
	fmt.Fprintln(d.out, "\n🩺 kernelc doctor - Kernel Compiler Environment")
	fmt.Fprintln(d.out, strings.Repeat("=", 52))
	if d.cacheDir != "" {
		fmt.Fprintf(d.out, "%s Artifact cache: %s\n", terminal.IconSearch, d.cacheDir)
	}
	for _, c := range d.checks {
		res := c.Run()
		d.printResult(c.Name(), res)
		rpt.TotalChecks++
		switch res.Status {
		case StatusOK:
			rpt.Passed++
		case StatusWarning:
			rpt.Warnings++
		case StatusError:
			rpt.Errors++
		case StatusCritical:
			rpt.Critical++
		}
	}
	rpt.EndTime = time.Now()
	fmt.Fprintf(d.out, "\n⏱  Completed in %.2fs: %d passed, %d warnings, %d failed\n",
		rpt.EndTime.Sub(rpt.StartTime).Seconds(), rpt.Passed, rpt.Warnings, rpt.Errors+rpt.Critical)
	return rpt
}

func (d *Doctor) printResult(name string, r CheckResult) {
	icon := "✅"
	switch r.Status {
	case StatusOK:
		// keep default icon
	case StatusWarning:
		icon = "⚠️ "
	case StatusError, StatusCritical:
		icon = "❌"
	}
	fmt.Fprintf(d.out, "%s %s: %s\n", icon, name, r.Message)
	if r.Details != "" && d.verbose {
		fmt.Fprintf(d.out, "   %s\n", r.Details)
	}
	if r.FixCommand != "" && r.Status != StatusOK {
		fmt.Fprintf(d.out, "   💡 Fix: %s\n", r.FixCommand)
	}
	if r.Impact != "" && r.Status == StatusCritical {
		fmt.Fprintf(d.out, "   ⚠️  Impact: %s\n", r.Impact)
	}
}

// Fix attempts automatic fixes for checks that support it.
func (d *Doctor) Fix() {
	fmt.Fprintln(d.out, "\n🔧 Attempting to fix issues...")
	for _, c := range d.checks {
		res := c.Run()
		if res.Status != StatusOK && c.CanAutoFix() {
			if err := c.Fix(); err != nil {
				fmt.Fprintf(d.out, "❌ %s: fix failed: %v\n", c.Name(), err)
			} else {
				fmt.Fprintf(d.out, "✅ %s: fixed\n", c.Name())
			}
		}
	}
}

// RuntimeCheck verifies the Dart runtime is present and executable
type RuntimeCheck struct{ resolver *artifacts.Resolver }

func (r *RuntimeCheck) Name() string     { return "Dart runtime" }
func (r *RuntimeCheck) CanAutoFix() bool { return false }
func (r *RuntimeCheck) Fix() error       { return nil }

func (r *RuntimeCheck) Run() CheckResult {
	candidate := r.resolver.RuntimeBinary()
	path, err := lookPath(candidate)
	if err != nil {
		return CheckResult{
			Status:     StatusCritical,
			Message:    fmt.Sprintf("%s not found or not executable", candidate),
			Details:    err.Error(),
			FixCommand: "flutter precache, or export KERNELC_DART=/path/to/dart",
			Impact:     "kernelc build cannot start the compiler",
		}
	}
	return CheckResult{Status: StatusOK, Message: path}
}

// FrontendCheck verifies the kernel compiler snapshot exists
type FrontendCheck struct{ resolver *artifacts.Resolver }

func (f *FrontendCheck) Name() string     { return "Kernel compiler" }
func (f *FrontendCheck) CanAutoFix() bool { return false }
func (f *FrontendCheck) Fix() error       { return nil }

func (f *FrontendCheck) Run() CheckResult {
	p := f.resolver.FrontendSnapshot()
	if info, err := os.Stat(p); err != nil || info.IsDir() {
		return CheckResult{
			Status:     StatusCritical,
			Message:    "snapshot missing",
			Details:    p,
			FixCommand: "flutter precache --fuchsia",
			Impact:     "kernelc build fails before launching the compiler",
		}
	}
	return CheckResult{Status: StatusOK, Message: p}
}

// PlatformCheck reports which build modes have a platform dill for the
// configured target, and what else is installed in the engine cache.
type PlatformCheck struct{ resolver *artifacts.Resolver }

func (p *PlatformCheck) Name() string     { return "Platform dills" }
func (p *PlatformCheck) CanAutoFix() bool { return false }
func (p *PlatformCheck) Fix() error       { return nil }

func (p *PlatformCheck) Run() CheckResult {
	installed, err := p.resolver.Installed()
	if err != nil {
		return CheckResult{Status: StatusWarning, Message: "could not scan engine artifacts", Details: err.Error()}
	}
	target := p.resolver.Target()
	var have, missing []string
	var others []string
	for _, m := range buildmode.All() {
		found := false
		for _, in := range installed {
			if in.Target == target && in.Mode == m {
				found = true
			}
		}
		if found {
			have = append(have, m.String())
		} else {
			missing = append(missing, m.String())
		}
	}
	for _, in := range installed {
		if in.Target != target {
			others = append(others, in.Target+"/"+in.Mode.String())
		}
	}
	details := ""
	if len(others) > 0 {
		details = "also installed: " + strings.Join(others, ", ")
	}
	switch {
	case len(have) == 0:
		return CheckResult{
			Status:     StatusError,
			Message:    fmt.Sprintf("no platform dill for %s", target),
			Details:    details,
			FixCommand: "flutter precache --fuchsia",
		}
	case len(missing) > 0:
		return CheckResult{
			Status:  StatusWarning,
			Message: fmt.Sprintf("%s: %s available, %s missing", target, strings.Join(have, ", "), strings.Join(missing, ", ")),
			Details: details,
		}
	}
	return CheckResult{Status: StatusOK, Message: fmt.Sprintf("%s: all modes available", target), Details: details}
}

// OutputDirCheck ensures the output directory can be written
type OutputDirCheck struct{ resolver *artifacts.Resolver }

func (o *OutputDirCheck) Name() string     { return "Output directory" }
func (o *OutputDirCheck) CanAutoFix() bool { return true }
func (o *OutputDirCheck) Fix() error {
	return os.MkdirAll(o.resolver.OutputDir(), 0o755)
}

func (o *OutputDirCheck) Run() CheckResult {
	dir := o.resolver.OutputDir()
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return CheckResult{Status: StatusWarning, Message: dir + " does not exist yet", FixCommand: "kernelc doctor --fix"}
	}
	if err != nil || !info.IsDir() {
		return CheckResult{Status: StatusError, Message: dir + " is not a directory"}
	}
	probe, err := os.CreateTemp(dir, ".kernelc-probe-*")
	if err != nil {
		return CheckResult{Status: StatusError, Message: dir + " is not writable", Details: err.Error()}
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)
	return CheckResult{Status: StatusOK, Message: filepath.Clean(dir)}
}
