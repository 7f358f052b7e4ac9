package domain

// JobSummary is one failed job's triage result.
// Fields are ordered to minimize memory padding.
type JobSummary struct {
	Name       string
	URL        string
	FailedStep string
	Error      ErrorSummary
	ID         int64
}

// IssueDraft is the unit handed to issue creation.
type IssueDraft struct {
	Title  string
	RunID  string
	RunURL string
	Labels []string
	Jobs   []JobSummary
}

// AddLabel appends a label unless it is empty or already present.
// It reports whether the label was added.
func (d *IssueDraft) AddLabel(label string) bool {
	if label == "" {
		return false
	}
	for _, l := range d.Labels {
		if l == label {
			return false
		}
	}
	d.Labels = append(d.Labels, label)
	return true
}

// ExistingIssue is an open issue fetched from the tracker for duplicate comparison.
// Fields are ordered to minimize memory padding.
type ExistingIssue struct {
	Title  string
	Body   string
	URL    string
	Labels []string
	Number int
}

// CreatedIssue identifies an issue created in the tracker.
type CreatedIssue struct {
	URL    string
	Number int
}
