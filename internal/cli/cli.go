// Package cli provides the command-line interface for kernelc.
// It builds a cobra command tree with global logging flags and routes
// execution to the subcommands implemented in the commands subpackage.
//
// The main components are:
//   - CLI: owns the root command and the shared configuration
//   - ErrorHandler: the single fatal path for errors returned by commands
//   - PanicHandler: turns crashes into a report instead of a raw trace
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"kernelc/internal/artifacts"
	"kernelc/internal/cli/commands"
	"kernelc/internal/config"
	"kernelc/pkg/logger"
	"kernelc/pkg/version"
)

// CLI represents the command-line interface
type CLI struct {
	config     *config.Config
	root       *cobra.Command
	newBuilder commands.BuilderFactory
	verbose    bool
	debug      bool
}

// New creates a new CLI instance. A nil config is replaced by defaults.
func New(cfg *config.Config) *CLI {
	if cfg == nil {
		cfg = &config.Config{}
	}
	c := &CLI{config: cfg, newBuilder: commands.DefaultBuilder}
	c.root = c.newRootCommand()
	return c
}

func (c *CLI) newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "kernelc",
		Short:         "Compile Flutter applications to split kernel dills",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if strings.EqualFold(os.Getenv("KERNELC_VERBOSE"), "1") {
				c.verbose = true
			}
			if strings.EqualFold(os.Getenv("KERNELC_DEBUG"), "1") {
				c.debug = true
			}
			logger.Initialize(c.verbose, c.debug)
			for _, w := range c.config.Warnings() {
				logger.Warn(w)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "show compiler output and timings")
	root.PersistentFlags().BoolVar(&c.debug, "debug", false, "debug logging, also written to ~/.kernelc/logs")

	root.AddCommand(
		commands.NewBuildCommand(c.config, func(r *artifacts.Resolver) commands.Builder { return c.newBuilder(r) }),
		commands.NewDoctorCommand(c.config, &c.verbose),
		newVersionCommand(),
	)
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "kernelc %s\n", version.Version)
		},
	}
}

// SetOutput redirects command output, for tests and embedding.
func (c *CLI) SetOutput(w io.Writer) {
	c.root.SetOut(w)
	c.root.SetErr(w)
}

// Run executes the CLI with given arguments; args[0] is the program name.
func (c *CLI) Run(args []string) error {
	return c.RunContext(context.Background(), args)
}

// RunContext is Run with a caller-supplied context, cancelled on interrupt by main.
func (c *CLI) RunContext(ctx context.Context, args []string) error {
	if len(args) > 0 {
		args = args[1:]
	}
	c.root.SetArgs(args)
	return c.root.ExecuteContext(ctx)
}

// Verbose reports whether verbose output was requested.
func (c *CLI) Verbose() bool { return c.verbose }

// Debug reports whether debug output was requested.
func (c *CLI) Debug() bool { return c.debug }
