package errparse

import (
	"testing"

	"github.com/runoshun/ci-triage/internal/domain"
	"github.com/runoshun/ci-triage/internal/locate"
	"github.com/runoshun/ci-triage/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoveTimestampPrefixes(t *testing.T) {
	in := "2024-01-17T11:23:18.0396058Z first line\n2024-01-17T11:23:19.1Z second 2024-01-17T11:23:19.1Z kept\nthird"
	want := "first line\nsecond 2024-01-17T11:23:19.1Z kept\nthird"
	assert.Equal(t, want, RemoveTimestampPrefixes(in))
}

func TestSummarizer_Prefilter(t *testing.T) {
	in := "2024-01-17T11:23:18.0396058Z \x1b[31mERROR:\x1b[0m boom"

	tests := []struct {
		name string
		opts Options
		want string
	}{
		{"none", Options{}, in},
		{"timestamps", Options{TrimTimestamps: true}, "\x1b[31mERROR:\x1b[0m boom"},
		{"ansi", Options{TrimANSI: true}, "2024-01-17T11:23:18.0396058Z ERROR: boom"},
		{"both", Options{TrimTimestamps: true, TrimANSI: true}, "ERROR: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(nil, nil, tt.opts)
			assert.Equal(t, tt.want, s.Prefilter(in))
		})
	}
}

func TestSummarizer_Generic(t *testing.T) {
	s := New(nil, nil, Options{})

	got := s.Summarize("some failure output\n", domain.KindGeneric)

	assert.Equal(t, domain.KindGeneric, got.Kind)
	assert.Equal(t, "some failure output\n", got.Summary)
	assert.Nil(t, got.Logfile)
	assert.Equal(t, "", got.FailureLabel())
}

func TestSummarizer_YoctoFallsBackToRawText(t *testing.T) {
	logger := testutil.NewMockLogger()
	s := New(locate.New(logger), logger, Options{TrimTimestamps: true})

	got := s.Summarize("2024-01-17T11:23:18.0396058Z nothing bitbake-like here", domain.KindYocto)

	assert.Equal(t, domain.KindYocto, got.Kind)
	assert.Equal(t, domain.YoctoTaskMisc, got.YoctoTask)
	assert.Equal(t, "nothing bitbake-like here", got.Summary)
	assert.Nil(t, got.Logfile)
	assert.True(t, logger.Contains("WARN", "Failed to parse Yocto error, returning error message as is"))
}

func TestSummarizer_YoctoMissingFailureLog(t *testing.T) {
	logger := testutil.NewMockLogger()
	s := New(locate.New(logger), logger, Options{})
	text := bitbakeLog("/definitely/not/existing/log.do_fetch.1")

	got := s.Summarize(text, domain.KindYocto)

	assert.Equal(t, text, got.Summary)
	assert.Nil(t, got.Logfile)
	assert.True(t, logger.Contains("WARN", "no file found"))
}

func TestSummarizer_Yocto(t *testing.T) {
	failureLog := writeFailureLog(t, "fetch failed")
	s := New(nil, nil, Options{TrimTimestamps: true, TrimANSI: true})

	got := s.Summarize(bitbakeLog(failureLog), domain.KindYocto)

	require.NotNil(t, got.Logfile)
	assert.Equal(t, "do_fetch", got.FailureLabel())
	assert.Equal(t, "fetch failed", got.Logfile.Contents)
}

func TestSummarizer_LocateFailureLog(t *testing.T) {
	failureLog := writeFailureLog(t, "fetch failed")
	s := New(locate.New(nil), nil, Options{TrimTimestamps: true, TrimANSI: true})

	t.Run("yocto", func(t *testing.T) {
		path, err := s.LocateFailureLog("2024-01-17T11:23:18.0396058Z "+bitbakeLog(failureLog), domain.KindYocto)
		require.NoError(t, err)
		assert.Equal(t, failureLog, path)
	})

	t.Run("generic resolves the first path", func(t *testing.T) {
		path, err := s.LocateFailureLog("see /app"+failureLog+" for details", domain.KindGeneric)
		require.NoError(t, err)
		assert.Equal(t, failureLog, path)
	})

	t.Run("generic without path", func(t *testing.T) {
		_, err := s.LocateFailureLog("nothing to see", domain.KindGeneric)
		assert.ErrorIs(t, err, domain.ErrNoPath)
	})

	t.Run("build log and summary logged at trace", func(t *testing.T) {
		logger := testutil.NewMockLogger()
		traced := New(locate.New(nil), logger, Options{})

		_, err := traced.LocateFailureLog(bitbakeLog(failureLog), domain.KindYocto)

		require.NoError(t, err)
		assert.True(t, logger.Contains("TRACE", "build log contents: "))
		assert.True(t, logger.Contains("TRACE", "trimmed error summary: "))
	})
}
