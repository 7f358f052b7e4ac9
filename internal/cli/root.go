// Package cli provides the command-line interface for ci-triage.
package cli

import (
	"fmt"

	"github.com/runoshun/ci-triage/internal/app"
	"github.com/spf13/cobra"
)

// Command group IDs.
const (
	groupTriage = "triage"
	groupSetup  = "setup"
)

// Output formats accepted by --output.
const (
	outputText = "text"
	outputYAML = "yaml"
)

// ContainerFactory builds the container once global flags are parsed.
type ContainerFactory func(opts app.Options) (*app.Container, error)

// globals holds the global flags and the container built from them.
// Fields are ordered to minimize memory padding.
type globals struct {
	factory    ContainerFactory
	base       app.Options
	container  *app.Container
	configPath string
	output     string
	verbosity  int
	dryRun     bool
}

// NewRootCommand creates the root command for ci-triage.
// base carries the working directory and log sink; global flags are layered on top of it.
func NewRootCommand(factory ContainerFactory, base app.Options, version string) *cobra.Command {
	g := &globals{factory: factory, base: base}

	root := &cobra.Command{
		Use:   "ci-triage",
		Short: "Triage failed CI runs into GitHub issues",
		Long: `ci-triage summarizes the failed jobs of a CI run and files a GitHub issue for them.

Failed steps are matched with their raw logs, a best effort error summary is
extracted (with Yocto/bitbake specific heuristics), and the issue is skipped
when a similar open issue already exists.`,
		Version: version,
		// SilenceUsage prevents usage from being printed on errors
		SilenceUsage: true,
		// SilenceErrors prevents Cobra from printing errors (we handle it in main)
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if g.output != outputText && g.output != outputYAML {
				return fmt.Errorf("invalid --output %q (expected %s or %s)", g.output, outputText, outputYAML)
			}
			if g.verbosity < app.VerbosityFromConfig || g.verbosity > 4 {
				return fmt.Errorf("invalid --verbosity %d (expected 0..4)", g.verbosity)
			}

			opts := g.base
			opts.ConfigPath = g.configPath
			opts.Verbosity = g.verbosity
			if opts.LogOutput == nil {
				opts.LogOutput = cmd.ErrOrStderr()
			}

			c, err := g.factory(opts)
			if err != nil {
				return fmt.Errorf("failed to initialize: %w", err)
			}
			g.container = c

			for _, w := range c.AppConfig.Warnings {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
			}
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if g.container == nil {
				return nil
			}
			return g.container.Close()
		},
	}

	pf := root.PersistentFlags()
	pf.BoolVar(&g.dryRun, "dry-run", false, "Compose the issue without creating labels or issues")
	pf.IntVarP(&g.verbosity, "verbosity", "v", app.VerbosityFromConfig, "Log verbosity 0 (errors) to 4 (trace); defaults to [log] level")
	pf.StringVar(&g.configPath, "config", "", "Additional config file merged last")
	pf.StringVar(&g.output, "output", outputText, "Output format: text or yaml")

	root.AddGroup(
		&cobra.Group{ID: groupTriage, Title: "Triage Commands:"},
		&cobra.Group{ID: groupSetup, Title: "Setup Commands:"},
	)

	createCmd := newCreateIssueFromRunCommand(g)
	createCmd.GroupID = groupTriage

	locateCmd := newLocateFailureLogCommand(g)
	locateCmd.GroupID = groupTriage

	configCmd := newConfigCommand(g)
	configCmd.GroupID = groupSetup

	root.AddCommand(
		createCmd,
		locateCmd,
		configCmd,
	)

	return root
}
