package correlate

import (
	"testing"
	"time"

	"github.com/runoshun/ci-triage/internal/domain"
	"github.com/runoshun/ci-triage/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampFromLog(t *testing.T) {
	ts, err := TimestampFromLog("2024-01-17T11:23:18.0396058Z This is a log message")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 17, 11, 23, 18, 39605800, time.UTC), ts)

	_, err = TimestampFromLog("no timestamp here")
	assert.ErrorIs(t, err, domain.ErrNoTimestamp)
}

func TestSortByTimestamp(t *testing.T) {
	t1 := domain.RawLog{Name: "t1", Content: "2024-01-17T11:23:18.1Z one"}
	t2 := domain.RawLog{Name: "t2", Content: "2024-01-17T11:23:19.1Z two"}
	t3 := domain.RawLog{Name: "t3", Content: "prefix\n2024-01-18T00:00:00.5Z three"}

	for _, in := range [][]domain.RawLog{
		{t3, t1, t2},
		{t2, t3, t1},
		{t1, t2, t3},
	} {
		sorted, unsortable := SortByTimestamp(in)
		assert.Equal(t, []domain.RawLog{t1, t2, t3}, sorted)
		assert.Empty(t, unsortable)
	}
}

func TestSortByTimestamp_Unsortable(t *testing.T) {
	a := domain.RawLog{Name: "a", Content: "2024-01-17T11:23:19.1Z a"}
	b := domain.RawLog{Name: "b", Content: "2024-01-17T11:23:18.1Z b"}
	bad1 := domain.RawLog{Name: "bad1", Content: "no time"}
	bad2 := domain.RawLog{Name: "bad2", Content: ""}

	sorted, unsortable := SortByTimestamp([]domain.RawLog{bad1, a, bad2, b})

	assert.Equal(t, []domain.RawLog{b, a}, sorted)
	assert.Equal(t, []domain.RawLog{bad1, bad2}, unsortable)
}

func TestFailedSteps_PooledAcrossJobs(t *testing.T) {
	jobs := []domain.Job{
		{Name: "job1", Steps: []domain.Step{
			{Name: "Build", Conclusion: domain.ConclusionFailure},
			{Name: "Test", Conclusion: domain.ConclusionSuccess},
		}},
		{Name: "job2", Steps: []domain.Step{
			{Name: "Build", Conclusion: domain.ConclusionFailure},
			{Name: "Lint", Conclusion: domain.ConclusionFailure},
		}},
	}

	steps := FailedSteps(jobs)

	require.Len(t, steps, 2)
	assert.Equal(t, "Build", steps[0].Name)
	assert.Equal(t, "Lint", steps[1].Name)
}

func TestCorrelate(t *testing.T) {
	jobs := []domain.Job{{ID: 1, Name: "job1"}, {ID: 2, Name: "job2"}}
	steps := []domain.Step{{Name: "Build"}}
	logs := []domain.RawLog{
		{Name: "job1/2_Build.txt", Content: "log of job1"},
		{Name: "job2/2_Build.txt", Content: "log of job2"},
	}

	got := Correlate(jobs, steps, logs, nil)

	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].JobID)
	assert.Equal(t, "log of job1", got[0].LogsAsString())
	assert.Equal(t, "job2", got[1].JobName)
	assert.Equal(t, "log of job2", got[1].LogsAsString())
}

func TestCorrelate_MissingLogIsNotFatal(t *testing.T) {
	logger := testutil.NewMockLogger()
	jobs := []domain.Job{{ID: 1, Name: "job1"}}
	steps := []domain.Step{{Name: "Build"}, {Name: "Lint"}}
	logs := []domain.RawLog{{Name: "job1/2_Build.txt", Content: "build log"}}

	got := Correlate(jobs, steps, logs, logger)

	require.Len(t, got, 1)
	require.Len(t, got[0].FailedStepLogs, 1)
	assert.Equal(t, "Build", got[0].FailedStepLogs[0].StepName)
	assert.True(t, logger.Contains("WARN", `job "job1" step "Lint"`))
}

func TestCorrelate_PrefersLatestLog(t *testing.T) {
	jobs := []domain.Job{{ID: 1, Name: "job1"}}
	steps := []domain.Step{{Name: "Build"}}
	logs := []domain.RawLog{
		{Name: "job1/2_Build.txt", Content: "attempt 1"},
		{Name: "job1/2_Build.txt", Content: "attempt 2"},
	}

	got := Correlate(jobs, steps, logs, nil)

	assert.Equal(t, "attempt 2", got[0].LogsAsString())
}
