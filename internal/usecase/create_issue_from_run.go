// Package usecase contains the application use cases.
package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/runoshun/ci-triage/internal/correlate"
	"github.com/runoshun/ci-triage/internal/domain"
	"github.com/runoshun/ci-triage/internal/issue"
	"github.com/runoshun/ci-triage/internal/similarity"
)

const pipelineCategory = "pipeline"

// CreateIssueFromRunInput contains the parameters for triaging a failed run.
// Fields are ordered to minimize memory padding.
type CreateIssueFromRunInput struct {
	RunID       string             // Workflow run ID (required)
	Label       string             // Base label of the issue (required)
	Title       string             // Issue title (required)
	Kind        domain.FailureKind // Summarization heuristic
	NoDuplicate bool               // Skip creation when a similar open issue exists
	DryRun      bool               // Compose the issue without writing to the tracker
}

// CreateIssueFromRunOutput contains the result of triaging a failed run.
// Fields are ordered to minimize memory padding.
type CreateIssueFromRunOutput struct {
	Draft      *domain.IssueDraft   // Assembled issue
	Decision   *similarity.Decision // Duplicate check result, nil when not requested
	Issue      *domain.CreatedIssue // Created issue, nil when suppressed or dry run
	Body       string               // Rendered issue body
	Unsortable []string             // Names of logs without a timestamp
}

// Created reports whether an issue was created.
func (o *CreateIssueFromRunOutput) Created() bool {
	return o.Issue != nil
}

// CreateIssueFromRun fetches a failed run, summarizes its failed jobs and opens an issue.
type CreateIssueFromRun struct {
	provider   domain.RunProvider
	summarizer domain.ErrorSummarizer
	logger     domain.Logger
	config     *domain.Config
}

// NewCreateIssueFromRun creates a new CreateIssueFromRun use case.
func NewCreateIssueFromRun(
	provider domain.RunProvider,
	summarizer domain.ErrorSummarizer,
	config *domain.Config,
	logger domain.Logger,
) *CreateIssueFromRun {
	if config == nil {
		config = domain.NewDefaultConfig()
	}
	if logger == nil {
		logger = domain.NopLogger{}
	}
	return &CreateIssueFromRun{
		provider:   provider,
		summarizer: summarizer,
		config:     config,
		logger:     logger,
	}
}

// Execute runs the triage pipeline.
func (uc *CreateIssueFromRun) Execute(ctx context.Context, in CreateIssueFromRunInput) (*CreateIssueFromRunOutput, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, domain.ErrEmptyTitle
	}
	if strings.TrimSpace(in.Label) == "" {
		return nil, domain.ErrEmptyLabel
	}

	snap, err := uc.fetchSnapshot(ctx, in.RunID)
	if err != nil {
		return nil, err
	}
	if !snap.Run.Failed() {
		return nil, fmt.Errorf("%w: run %s concluded %q", domain.ErrRunNotFailed, snap.Run.ID, snap.Run.Conclusion)
	}

	failed := domain.FailedJobs(snap.Jobs)
	if len(failed) == 0 {
		return nil, fmt.Errorf("%w: run %s", domain.ErrNoFailedJobs, snap.Run.ID)
	}
	uc.logger.Info(pipelineCategory, fmt.Sprintf("run %s: %d of %d jobs failed", snap.Run.ID, len(failed), len(snap.Jobs)))

	out := &CreateIssueFromRunOutput{}

	sorted, unsortable := correlate.SortByTimestamp(snap.Logs)
	for _, l := range unsortable {
		uc.logger.Warn(pipelineCategory, fmt.Sprintf("%v: %s", domain.ErrNoTimestamp, l.Name))
		out.Unsortable = append(out.Unsortable, l.Name)
	}
	// Undated logs go first so the most recent dated log still wins a match.
	logs := make([]domain.RawLog, 0, len(unsortable)+len(sorted))
	logs = append(logs, unsortable...)
	logs = append(logs, sorted...)

	jobLogs := correlate.Correlate(failed, correlate.FailedSteps(failed), logs, uc.logger)

	summaries := make([]domain.JobSummary, len(failed))
	for i, job := range failed {
		summaries[i] = uc.summarizeJob(snap.Run, job, jobLogs[i], in.Kind)
	}

	out.Draft = issue.NewDraft(in.Title, in.Label, snap.Run.ID, snap.Run.URL, summaries)
	composer := issue.NewComposer(uc.config.Issue.MaxBodyLen, uc.logger)
	out.Body = composer.Body(out.Draft)
	if err := issue.ValidateBody(out.Body, composer.MaxLen()); err != nil {
		return nil, err
	}

	if in.NoDuplicate {
		decision, err := uc.checkDuplicate(ctx, in.Label, out.Body)
		if err != nil {
			return nil, err
		}
		out.Decision = &decision
		if decision.Suppress {
			uc.logger.Info(pipelineCategory, "not creating issue: "+decision.Reason)
			return out, nil
		}
	}

	if in.DryRun {
		uc.logger.Info(pipelineCategory, "dry run: not creating labels or issue")
		return out, nil
	}

	if err := uc.createLabels(ctx, out.Draft.Labels, in.Label); err != nil {
		return nil, err
	}

	created, err := uc.provider.CreateIssue(ctx, out.Draft.Title, out.Body, out.Draft.Labels)
	if err != nil {
		return nil, fmt.Errorf("create issue: %w", err)
	}
	uc.logger.Info(pipelineCategory, fmt.Sprintf("created issue #%d: %s", created.Number, created.URL))
	out.Issue = created
	return out, nil
}

func (uc *CreateIssueFromRun) fetchSnapshot(ctx context.Context, runID string) (*domain.RunSnapshot, error) {
	if f, ok := uc.provider.(domain.SnapshotFetcher); ok {
		snap, err := f.FetchSnapshot(ctx, runID)
		if err != nil {
			return nil, fmt.Errorf("fetch run %s: %w", runID, err)
		}
		return snap, nil
	}

	run, err := uc.provider.FetchRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("fetch run %s: %w", runID, err)
	}
	jobs, err := uc.provider.FetchJobs(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("fetch jobs of run %s: %w", runID, err)
	}
	logs, err := uc.provider.FetchRawLogs(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("fetch logs of run %s: %w", runID, err)
	}
	return &domain.RunSnapshot{Run: *run, Jobs: jobs, Logs: logs}, nil
}

func (uc *CreateIssueFromRun) summarizeJob(run domain.Run, job domain.Job, jl domain.JobErrorLog, kind domain.FailureKind) domain.JobSummary {
	failedStep := "unknown"
	if steps := job.FailedSteps(); len(steps) > 0 {
		failedStep = steps[0].Name
	}
	url := job.URL
	if url == "" {
		url = domain.JobURL(run.URL, job.ID)
	}

	uc.logger.Debug(pipelineCategory, fmt.Sprintf("summarizing job %q (%d step logs)", job.Name, len(jl.FailedStepLogs)))
	return domain.JobSummary{
		ID:         job.ID,
		Name:       job.Name,
		URL:        url,
		FailedStep: failedStep,
		Error:      uc.summarizer.Summarize(jl.LogsAsString(), kind),
	}
}

func (uc *CreateIssueFromRun) checkDuplicate(ctx context.Context, label, body string) (similarity.Decision, error) {
	existing, err := uc.provider.FetchOpenIssues(ctx, label)
	if err != nil {
		return similarity.Decision{}, fmt.Errorf("fetch open issues: %w", err)
	}
	bodies := make([]string, len(existing))
	for i, e := range existing {
		bodies[i] = e.Body
	}
	decision := similarity.Check(body, bodies, uc.config.Duplicate.Threshold)
	uc.logger.Debug(pipelineCategory, fmt.Sprintf("compared against %d open issues: %s", len(existing), decision.Reason))
	return decision, nil
}

func (uc *CreateIssueFromRun) createLabels(ctx context.Context, labels []string, baseLabel string) error {
	for _, l := range labels {
		color := uc.config.Issue.FailureLabelColor
		if l == baseLabel {
			color = uc.config.Issue.LabelColor
		}
		if err := uc.provider.CreateLabel(ctx, l, color); err != nil {
			return fmt.Errorf("create label %q: %w", l, err)
		}
	}
	return nil
}
