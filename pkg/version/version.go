// Package version holds the kernelc release string. It is overridden at
// link time with -ldflags "-X kernelc/pkg/version.Version=...".
package version

// Version is the current kernelc version.
var Version = "dev"
