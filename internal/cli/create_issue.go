package cli

import (
	"errors"
	"fmt"

	"github.com/runoshun/ci-triage/internal/domain"
	"github.com/runoshun/ci-triage/internal/usecase"
	"github.com/spf13/cobra"
)

// newCreateIssueFromRunCommand creates the create-issue-from-run command.
func newCreateIssueFromRunCommand(g *globals) *cobra.Command {
	var opts struct {
		repo        string
		runID       string
		label       string
		kind        string
		title       string
		noDuplicate bool
	}

	cmd := &cobra.Command{
		Use:   "create-issue-from-run",
		Short: "Open an issue summarizing the failed jobs of a run",
		Long: `Open an issue summarizing the failed jobs of a CI run.

The run, its jobs and its log archive are fetched with the gh CLI. Each failed
step is matched with its raw log, a best effort error summary is extracted and
the issue body is kept within GitHub's size limit.

With --no-duplicate (the default) the issue is skipped when an open issue with
the same label has a nearly identical body. With --dry-run the composed issue
is printed instead of created.

Examples:
  # Triage a run of the repository in the current directory
  ci-triage create-issue-from-run --run-id 123456 --label ci-failure --kind yocto --title "Nightly build failed"

  # Preview the issue for another repository
  ci-triage --dry-run create-issue-from-run --repo owner/repo --run-id 123456 --label ci --title "CI failed"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			kind, err := domain.ParseFailureKind(opts.kind)
			if err != nil {
				return err
			}

			uc, err := g.container.CreateIssueFromRunUseCase(opts.repo)
			if err != nil {
				return err
			}

			out, err := uc.Execute(cmd.Context(), usecase.CreateIssueFromRunInput{
				RunID:       opts.runID,
				Label:       opts.label,
				Title:       opts.title,
				Kind:        kind,
				NoDuplicate: opts.noDuplicate,
				DryRun:      g.dryRun,
			})
			if errors.Is(err, domain.ErrRunNotFailed) {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Nothing to do: %v\n", err)
				return nil
			}
			if err != nil {
				return err
			}

			if g.output == outputYAML {
				return writeReportYAML(cmd.OutOrStdout(), newTriageReport(out, g.dryRun))
			}
			return writeReportText(cmd.OutOrStdout(), out, g.dryRun)
		},
	}

	cmd.Flags().StringVar(&opts.repo, "repo", "", "Repository URL or owner/repo (default: origin remote)")
	cmd.Flags().StringVar(&opts.runID, "run-id", "", "Workflow run ID")
	cmd.Flags().StringVar(&opts.label, "label", "", "Base label of the issue, also used to find duplicates")
	cmd.Flags().StringVar(&opts.kind, "kind", string(domain.KindGeneric), "Failure kind: yocto or generic (alias: other)")
	cmd.Flags().StringVar(&opts.title, "title", "", "Issue title")
	cmd.Flags().BoolVar(&opts.noDuplicate, "no-duplicate", true, "Skip the issue when a similar open issue exists")
	_ = cmd.MarkFlagRequired("run-id")
	_ = cmd.MarkFlagRequired("label")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}
