// Package cli: Central error handling for CLI
// Provides consistent error presentation and the single fatal exit path
package cli

import (
	stdErrors "errors"
	"fmt"
	"os"
	"sort"
	"strings"

	e "kernelc/pkg/errors"
	"kernelc/pkg/terminal"
)

// osExit is replaced in tests.
var osExit = os.Exit

// ErrorHandler handles errors consistently across the CLI
type ErrorHandler struct {
	verbose bool
	debug   bool
}

// NewErrorHandler creates an error handler
func NewErrorHandler(verbose, debug bool) *ErrorHandler {
	return &ErrorHandler{
		verbose: verbose,
		debug:   debug,
	}
}

// Handle displays err and terminates the process with status 1.
// Every error is fatal; nothing is retried.
func (h *ErrorHandler) Handle(err error) {
	if err == nil {
		return
	}

	var kerr *e.Error
	if !stdErrors.As(err, &kerr) {
		kerr = e.Wrap(err, e.ErrUnknown, "An unexpected error occurred")
	}
	h.displayError(kerr)
	osExit(1)
}

func (h *ErrorHandler) displayError(err *e.Error) {
	fmt.Println()
	icon := h.getErrorIcon(err.Code)
	fmt.Printf("%s %s\n", icon, terminal.BoldText(err.Message))

	if err.Details != "" && h.verbose {
		fmt.Printf("\n%s\n", terminal.Faint(err.Details))
	}

	if len(err.Context) > 0 && h.verbose {
		fmt.Println("\nContext:")
		keys := make([]string, 0, len(err.Context))
		for k := range err.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("  %s: %s\n", k, err.Context[k])
		}
	}

	if err.Suggestion != "" {
		fmt.Printf("\n💡 %s\n", terminal.Warning(err.Suggestion))
	}

	if err.Cause != nil && h.verbose {
		fmt.Printf("\n%s\n", terminal.Faint("Caused by:"))
		h.displayCauseChain(err.Cause, 1)
	}

	if h.debug && len(err.Stack) > 0 {
		fmt.Printf("\n%s\n", terminal.Faint("Stack trace:"))
		for _, f := range err.Stack {
			fmt.Printf("  %s\n", h.formatStackFrame(f))
		}
	}

	fmt.Println()
	if !h.verbose {
		fmt.Println(terminal.Faint("Run with --verbose for more details"))
	}
	if !h.debug && err.Code == e.ErrUnknown {
		fmt.Println(terminal.Faint("Run with --debug for stack trace"))
	}
}

func (h *ErrorHandler) displayCauseChain(err error, depth int) {
	indent := strings.Repeat("  ", depth)
	if kerr, ok := err.(*e.Error); ok {
		fmt.Printf("%s• %s\n", indent, kerr.Message)
		if kerr.Cause != nil {
			h.displayCauseChain(kerr.Cause, depth+1)
		}
		return
	}
	fmt.Printf("%s• %s\n", indent, err.Error())
}

func (h *ErrorHandler) formatStackFrame(frame e.StackFrame) string {
	file := frame.File
	if idx := strings.LastIndex(file, "/kernelc/"); idx >= 0 {
		file = "..." + file[idx:]
	}
	fn := frame.Function
	if idx := strings.LastIndex(fn, "."); idx >= 0 {
		fn = fn[idx+1:]
	}
	return fmt.Sprintf("%s:%d %s()", file, frame.Line, fn)
}

func (h *ErrorHandler) getErrorIcon(code e.ErrorCode) string {
	icons := map[e.ErrorCode]string{
		e.ErrRuntimeNotFound:    terminal.IconSearch,
		e.ErrArtifactNotFound:   "📦",
		e.ErrInvalidBuildMode:   terminal.IconGear,
		e.ErrInvalidProject:     "📄",
		e.ErrBuildFailed:        terminal.IconError,
		e.ErrProcessStartFailed: "🚫",
		e.ErrInvalidConfig:      terminal.IconGear,
		e.ErrUnknown:            "❓",
	}
	if ic, ok := icons[code]; ok {
		return ic
	}
	return terminal.IconError
}
