// Package commands implements the kernelc subcommands. Each constructor
// returns a cobra command wired to the shared configuration.
package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"kernelc/internal/artifacts"
	"kernelc/internal/buildmode"
	"kernelc/internal/config"
	"kernelc/internal/kernel"
	"kernelc/internal/project"
	e "kernelc/pkg/errors"
	"kernelc/pkg/logger"
	"kernelc/pkg/terminal"
)

// Builder compiles one project entrypoint.
type Builder interface {
	Build(ctx context.Context, p *project.Project, entrypoint string, mode buildmode.Mode) error
}

// BuilderFactory creates the Builder for a resolver.
type BuilderFactory func(r *artifacts.Resolver) Builder

// DefaultBuilder returns a kernel.Compiler with the global logger and a spinner.
func DefaultBuilder(r *artifacts.Resolver) Builder {
	return kernel.New(r)
}

type buildOptions struct {
	mode       string
	entrypoint string
	projectDir string
}

// NewBuildCommand returns `kernelc build`.
func NewBuildCommand(cfg *config.Config, newBuilder BuilderFactory) *cobra.Command {
	opts := &buildOptions{}
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Compile the application to a split kernel dill",
		Long: `Compile the application's entrypoint with the kernel compiler.

The compiled kernel is written to <build dir>/fuchsia/<app>.dil together with
a <app>.dilpmanifest listing the per-package fragments.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuild(cmd, cfg, newBuilder, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.mode, "mode", "m", buildmode.Debug.String(), "build mode: debug, profile or release")
	cmd.Flags().StringVarP(&opts.entrypoint, "target", "t", "", "entrypoint relative to the project root (default from kernelc.hcl or lib/main.dart)")
	cmd.Flags().StringVarP(&opts.projectDir, "project", "p", ".", "project root directory")
	return cmd
}

func runBuild(cmd *cobra.Command, cfg *config.Config, newBuilder BuilderFactory, opts *buildOptions) error {
	mode, err := buildmode.Parse(opts.mode)
	if err != nil {
		return e.New(e.ErrInvalidBuildMode, err.Error()).WithContext("mode", opts.mode)
	}

	proj, err := project.Load(opts.projectDir)
	if err != nil {
		return err
	}
	entrypoint := opts.entrypoint
	if entrypoint == "" {
		entrypoint = proj.Entrypoint
	}

	resolver := artifacts.New(cfg)

	logger.StartTimer("kernel compile")
	if err := newBuilder(resolver).Build(cmd.Context(), proj, entrypoint, mode); err != nil {
		return err
	}
	logger.EndTimer("kernel compile")

	paths := kernel.Paths{OutDir: resolver.OutputDir()}
	fmt.Fprintf(cmd.OutOrStdout(), "%s Built %s (%s)\n", terminal.IconSuccess, terminal.BoldText(proj.AppName), mode)
	fmt.Fprintf(cmd.OutOrStdout(), "   %s %s\n", terminal.IconArrow, paths.DillPath(proj.AppName))
	fmt.Fprintf(cmd.OutOrStdout(), "   %s %s\n", terminal.IconArrow, paths.ManifestPath(proj.AppName))
	return nil
}
