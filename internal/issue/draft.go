package issue

import "github.com/runoshun/ci-triage/internal/domain"

// NewDraft assembles an IssueDraft. The base label comes first, followed by the
// failure labels of the jobs in job order, without duplicates.
func NewDraft(title, baseLabel, runID, runURL string, jobs []domain.JobSummary) *domain.IssueDraft {
	d := &domain.IssueDraft{
		Title:  title,
		RunID:  runID,
		RunURL: domain.EnsureHTTPSPrefix(runURL),
		Jobs:   make([]domain.JobSummary, len(jobs)),
	}
	d.AddLabel(baseLabel)
	for i, j := range jobs {
		j.URL = domain.EnsureHTTPSPrefix(j.URL)
		d.Jobs[i] = j
		d.AddLabel(j.Error.FailureLabel())
	}
	return d
}
