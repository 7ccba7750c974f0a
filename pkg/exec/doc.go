// Package exec provides command execution wrappers and utilities for kernelc.
// This package handles process launch through a mockable Commander and
// line-oriented forwarding of a child's stdout and stderr.
package exec
