package cli

import (
	"fmt"

	"github.com/runoshun/ci-triage/internal/domain"
	"github.com/runoshun/ci-triage/internal/usecase"
	"github.com/spf13/cobra"
)

// newLocateFailureLogCommand creates the locate-failure-log command.
func newLocateFailureLogCommand(g *globals) *cobra.Command {
	var kind, inputFile string

	cmd := &cobra.Command{
		Use:   "locate-failure-log",
		Short: "Print the path of the failure log referenced in a build log",
		Long: `Print the absolute path of the failure log referenced in a build log.

The build log is read from --input-file or stdin. When the referenced path does
not exist as written (for example it was captured inside a container), leading
path components are dropped until an existing file is found.

The path is printed without a trailing newline.

Examples:
  bitbake core-image-minimal 2>&1 | tee build.log
  less "$(ci-triage locate-failure-log --kind yocto --input-file build.log)"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			k, err := domain.ParseFailureKind(kind)
			if err != nil {
				return err
			}

			uc := g.container.LocateFailureLogUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.LocateFailureLogInput{
				Stdin:     cmd.InOrStdin(),
				Kind:      k,
				InputFile: inputFile,
			})
			if err != nil {
				return err
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), out.Path)
			return err
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "Failure kind: yocto or generic (alias: other)")
	cmd.Flags().StringVar(&inputFile, "input-file", "", "Build log to search (default: stdin)")
	_ = cmd.MarkFlagRequired("kind")

	return cmd
}
