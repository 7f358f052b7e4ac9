// Package correlate matches raw step logs to failed jobs and orders logs by time.
package correlate

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/runoshun/ci-triage/internal/domain"
)

const category = "correlate"

var timestampRe = regexp.MustCompile(`\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d+Z`)

// TimestampFromLog returns the first ISO-8601 timestamp found in a log,
// e.g. "2024-01-17T11:23:18.0396058Z".
func TimestampFromLog(content string) (time.Time, error) {
	m := timestampRe.FindString(content)
	if m == "" {
		return time.Time{}, domain.ErrNoTimestamp
	}
	ts, err := time.Parse(time.RFC3339Nano, m)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", m, err)
	}
	return ts, nil
}

// SortByTimestamp orders logs ascending by their first timestamp.
// Logs without a parseable timestamp are returned separately in input order.
// Logs with equal timestamps keep their input order.
func SortByTimestamp(logs []domain.RawLog) (sorted, unsortable []domain.RawLog) {
	type stamped struct {
		ts  time.Time
		log domain.RawLog
	}
	entries := make([]stamped, 0, len(logs))
	for _, l := range logs {
		ts, err := TimestampFromLog(l.Content)
		if err != nil {
			unsortable = append(unsortable, l)
			continue
		}
		entries = append(entries, stamped{ts: ts, log: l})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].ts.Before(entries[j].ts)
	})

	sorted = make([]domain.RawLog, len(entries))
	for i, e := range entries {
		sorted[i] = e.log
	}
	return sorted, unsortable
}

// FailedSteps pools the failed steps of all jobs, deduplicated by name in first-seen order.
func FailedSteps(jobs []domain.Job) []domain.Step {
	seen := make(map[string]bool)
	var steps []domain.Step
	for _, j := range jobs {
		for _, s := range j.FailedSteps() {
			if seen[s.Name] {
				continue
			}
			seen[s.Name] = true
			steps = append(steps, s)
		}
	}
	return steps
}

// Correlate attaches raw logs to failed jobs.
//
// Steps are pooled across all failed jobs, so each job is searched for every
// failed step name. A log matches when its name contains both the step name and
// the job name. When several logs match, the last one in logs wins, which for
// timestamp-ordered logs is the most recent attempt. Missing matches are logged
// and skipped, so a job may end up with fewer step logs than failed steps.
func Correlate(jobs []domain.Job, steps []domain.Step, logs []domain.RawLog, logger domain.Logger) []domain.JobErrorLog {
	if logger == nil {
		logger = domain.NopLogger{}
	}
	out := make([]domain.JobErrorLog, 0, len(jobs))
	for _, job := range jobs {
		jl := domain.JobErrorLog{JobID: job.ID, JobName: job.Name}
		for _, step := range steps {
			raw, ok := findLog(logs, job.Name, step.Name)
			if !ok {
				logger.Warn(category, fmt.Sprintf("%v: job %q step %q", domain.ErrNoLogMatch, job.Name, step.Name))
				continue
			}
			logger.Debug(category, fmt.Sprintf("attaching log %q to job %q", raw.Name, job.Name))
			jl.FailedStepLogs = append(jl.FailedStepLogs, domain.StepErrorLog{
				StepName: step.Name,
				Contents: raw.Content,
			})
		}
		out = append(out, jl)
	}
	return out
}

func findLog(logs []domain.RawLog, jobName, stepName string) (domain.RawLog, bool) {
	for i := len(logs) - 1; i >= 0; i-- {
		if strings.Contains(logs[i].Name, stepName) && strings.Contains(logs[i].Name, jobName) {
			return logs[i], true
		}
	}
	return domain.RawLog{}, false
}
