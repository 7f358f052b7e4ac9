package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/runoshun/ci-triage/internal/similarity"
	"github.com/runoshun/ci-triage/internal/usecase"
	"gopkg.in/yaml.v3"
)

// colors is the palette of the triage report.
var colors = struct {
	Primary lipgloss.Color
	Muted   lipgloss.Color
	Error   lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
}{
	Primary: lipgloss.Color("#6C5CE7"), // Purple
	Muted:   lipgloss.Color("#636E72"), // Gray
	Error:   lipgloss.Color("#D63031"), // Red
	Success: lipgloss.Color("#00B894"), // Green
	Warning: lipgloss.Color("#FDCB6E"), // Yellow
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colors.Primary)
	keyStyle    = lipgloss.NewStyle().Foreground(colors.Muted).Width(12)
	jobStyle    = lipgloss.NewStyle().Foreground(colors.Error)
	okStyle     = lipgloss.NewStyle().Foreground(colors.Success)
	warnStyle   = lipgloss.NewStyle().Foreground(colors.Warning)
	boxStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colors.Muted).
			Padding(0, 1)
)

// triageReport is the machine readable result of create-issue-from-run.
type triageReport struct {
	Decision   *similarity.Decision `yaml:"decision,omitempty"`
	Issue      *reportIssue         `yaml:"issue,omitempty"`
	RunID      string               `yaml:"run_id"`
	RunURL     string               `yaml:"run_url"`
	Title      string               `yaml:"title"`
	Body       string               `yaml:"body"`
	Labels     []string             `yaml:"labels"`
	Jobs       []reportJob          `yaml:"jobs"`
	Unsortable []string             `yaml:"unsortable_logs,omitempty"`
	DryRun     bool                 `yaml:"dry_run"`
}

type reportIssue struct {
	URL    string `yaml:"url"`
	Number int    `yaml:"number"`
}

type reportJob struct {
	Name         string `yaml:"name"`
	URL          string `yaml:"url"`
	FailedStep   string `yaml:"failed_step"`
	FailureLabel string `yaml:"failure_label,omitempty"`
	Logfile      string `yaml:"logfile,omitempty"`
	ID           int64  `yaml:"id"`
}

func newTriageReport(out *usecase.CreateIssueFromRunOutput, dryRun bool) triageReport {
	r := triageReport{
		Decision:   out.Decision,
		RunID:      out.Draft.RunID,
		RunURL:     out.Draft.RunURL,
		Title:      out.Draft.Title,
		Body:       out.Body,
		Labels:     out.Draft.Labels,
		Unsortable: out.Unsortable,
		DryRun:     dryRun,
	}
	if out.Issue != nil {
		r.Issue = &reportIssue{URL: out.Issue.URL, Number: out.Issue.Number}
	}
	for _, j := range out.Draft.Jobs {
		r.Jobs = append(r.Jobs, reportJob{
			ID:           j.ID,
			Name:         j.Name,
			URL:          j.URL,
			FailedStep:   j.FailedStep,
			FailureLabel: j.Error.FailureLabel(),
			Logfile:      j.Error.LogfileName(),
		})
	}
	return r
}

func writeReportYAML(w io.Writer, r triageReport) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return enc.Close()
}

// writeReportText prints the created issue URL, the reason no issue was created,
// or for a dry run the triage summary followed by the issue body.
func writeReportText(w io.Writer, out *usecase.CreateIssueFromRunOutput, dryRun bool) error {
	switch {
	case out.Created():
		_, err := fmt.Fprintln(w, out.Issue.URL)
		return err
	case out.Decision != nil && out.Decision.Suppress:
		_, err := fmt.Fprintf(w, "No issue created: %s\n", out.Decision.Reason)
		return err
	case dryRun:
		_, _ = fmt.Fprintln(w, renderSummary(newTriageReport(out, dryRun)))
		_, err := fmt.Fprintln(w, out.Body)
		return err
	}
	return nil
}

func renderSummary(r triageReport) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Dry run: "+r.Title) + "\n")
	b.WriteString(keyStyle.Render("Run") + r.RunID + " " + r.RunURL + "\n")
	b.WriteString(keyStyle.Render("Labels") + strings.Join(r.Labels, ", ") + "\n")
	for _, j := range r.Jobs {
		line := fmt.Sprintf("%s (step %q)", j.Name, j.FailedStep)
		if j.FailureLabel != "" {
			line += " [" + j.FailureLabel + "]"
		}
		b.WriteString(keyStyle.Render("Failed") + jobStyle.Render(line) + "\n")
	}
	if len(r.Unsortable) > 0 {
		b.WriteString(keyStyle.Render("No time") + warnStyle.Render(strings.Join(r.Unsortable, ", ")) + "\n")
	}
	if r.Decision != nil {
		b.WriteString(keyStyle.Render("Duplicate") + okStyle.Render(r.Decision.Reason))
	} else {
		b.WriteString(keyStyle.Render("Duplicate") + "not checked")
	}
	return boxStyle.Render(b.String())
}
