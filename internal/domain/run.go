package domain

import "strings"

// Conclusions reported by the CI provider for runs, jobs and steps.
const (
	ConclusionSuccess   = "success"
	ConclusionFailure   = "failure"
	ConclusionCancelled = "cancelled"
	ConclusionSkipped   = "skipped"
)

// Run is one execution of a CI workflow.
type Run struct {
	ID         string
	URL        string
	Conclusion string
}

// Failed reports whether the run concluded with a failure.
func (r Run) Failed() bool {
	return r.Conclusion == ConclusionFailure
}

// Job is a named unit of work in a run.
// Fields are ordered to minimize memory padding.
type Job struct {
	Name       string
	Conclusion string
	URL        string
	Steps      []Step
	ID         int64
	RunAttempt int
}

// Failed reports whether the job concluded with a failure.
func (j Job) Failed() bool {
	return j.Conclusion == ConclusionFailure
}

// FailedSteps returns the steps of the job that failed, in step order.
func (j Job) FailedSteps() []Step {
	var steps []Step
	for _, s := range j.Steps {
		if s.Failed() {
			steps = append(steps, s)
		}
	}
	return steps
}

// Step is a named sub-unit of a job.
type Step struct {
	Name       string
	Conclusion string
	Number     int
}

// Failed reports whether the step concluded with a failure.
func (s Step) Failed() bool {
	return s.Conclusion == ConclusionFailure
}

// FailedJobs filters jobs down to the ones that failed.
func FailedJobs(jobs []Job) []Job {
	var failed []Job
	for _, j := range jobs {
		if j.Failed() {
			failed = append(failed, j)
		}
	}
	return failed
}

// RawLog is one captured log artifact.
// The name encodes job and step provenance, e.g. "build linux/3_Build image.txt".
type RawLog struct {
	Name    string
	Content string
}

// StepErrorLog is the raw log captured for one failed step.
type StepErrorLog struct {
	StepName string
	Contents string
}

// JobErrorLog collects the step logs attached to one failed job.
type JobErrorLog struct {
	JobName        string
	FailedStepLogs []StepErrorLog
	JobID          int64
}

// LogsAsString concatenates the attached step logs in order.
func (l JobErrorLog) LogsAsString() string {
	var sb strings.Builder
	for _, s := range l.FailedStepLogs {
		sb.WriteString(s.Contents)
	}
	return sb.String()
}

// RunSnapshot is an immutable view of everything the triage pipeline needs from a run.
type RunSnapshot struct {
	Run  Run
	Jobs []Job
	Logs []RawLog
}
