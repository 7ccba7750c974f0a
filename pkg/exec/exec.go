package exec

import (
	"context"
	"os/exec"
)

// Commander provides an interface for command execution that can be mocked in tests.
// This enables dependency injection and makes code more testable.
type Commander interface {
	CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd
}

// DefaultCommander implements Commander using the standard exec.CommandContext.
type DefaultCommander struct{}

// CommandContext creates a new exec.Cmd bound to ctx.
func (DefaultCommander) CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd {
	return exec.CommandContext(ctx, name, args...)
}

// CommanderFunc adapts a function to the Commander interface.
type CommanderFunc func(ctx context.Context, name string, args ...string) *exec.Cmd

// CommandContext calls f.
func (f CommanderFunc) CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd {
	return f(ctx, name, args...)
}

// Global instance that can be overridden in tests
var Default Commander = DefaultCommander{}

// CommandContext is a convenience function that delegates to the global Commander instance.
func CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd {
	return Default.CommandContext(ctx, name, args...)
}
