package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	"kernelc/pkg/terminal"
	"kernelc/pkg/version"
)

// PanicHandler recovers from panics and shows friendly errors
type PanicHandler struct{}

// Recover catches panics and converts them to friendly output. It must be
// deferred directly.
func (p *PanicHandler) Recover() { //nolint:revive
	if r := recover(); r != nil {
		p.handlePanic(r)
	}
}

func (p *PanicHandler) handlePanic(r interface{}) {
	var message string
	switch v := r.(type) {
	case string:
		message = v
	case error:
		message = v.Error()
	default:
		message = fmt.Sprintf("%v", r)
	}

	stack := string(debug.Stack())
	crashReport := p.saveCrashReport(message, stack)

	fmt.Println()
	fmt.Printf("💥 %s\n", terminal.Error("kernelc crashed unexpectedly"))
	fmt.Println()
	fmt.Printf("Error: %s\n", message)
	fmt.Println()
	fmt.Printf("A crash report has been saved to:\n%s\n", crashReport)
	fmt.Println()
	fmt.Println("Include the crash report and the command you ran when reporting this issue.")

	osExit(2)
}

func (p *PanicHandler) saveCrashReport(message, stack string) string {
	crashDir := os.ExpandEnv("$HOME/.kernelc/crashes")
	_ = os.MkdirAll(crashDir, 0o755)
	ts := time.Now().Format("2006-01-02-15-04-05")
	fp := filepath.Join(crashDir, fmt.Sprintf("crash-%s.txt", ts))
	report := fmt.Sprintf(`kernelc Crash Report
====================
Time: %s
Version: %s
OS: %s
Arch: %s

Error:
%s

Stack Trace:
%s

Environment:
%s
`, time.Now().Format(time.RFC3339), version.Version, runtime.GOOS, runtime.GOARCH, message, stack, p.getEnvironmentInfo())
	_ = os.WriteFile(fp, []byte(report), 0o644)
	return fp
}

func (p *PanicHandler) getEnvironmentInfo() string {
	var info []string
	for _, key := range []string{"KERNELC_DEBUG", "KERNELC_CACHE_DIR", "KERNELC_DART", "FLUTTER_ROOT", "PATH"} {
		if v := os.Getenv(key); v != "" {
			info = append(info, fmt.Sprintf("%s=%s", key, v))
		}
	}
	return strings.Join(info, "\n")
}
