package commands

import (
	"github.com/spf13/cobra"

	"kernelc/internal/artifacts"
	"kernelc/internal/config"
	"kernelc/internal/doctor"
	e "kernelc/pkg/errors"
)

// NewDoctorCommand returns `kernelc doctor`. verbose points at the root's
// persistent flag.
func NewDoctorCommand(cfg *config.Config, verbose *bool) *cobra.Command {
	fix := false
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that the kernel compiler artifacts are installed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d := doctor.New(artifacts.New(cfg), cmd.OutOrStdout(), *verbose)
			rpt := d.Run()
			if fix {
				d.Fix()
			}
			if rpt.Errors > 0 || rpt.Critical > 0 {
				return e.New(e.ErrArtifactNotFound, "Kernel compiler environment is incomplete").
					WithSuggestion("Run 'flutter precache --fuchsia' or set KERNELC_CACHE_DIR")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&fix, "fix", false, "create missing directories where possible")
	return cmd
}
