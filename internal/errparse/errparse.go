// Package errparse turns raw CI logs into concise, best-effort error summaries.
//
// Summarization never fails: when a failure-kind heuristic cannot make sense of
// a log, the (pre-filtered) log text is returned as the summary instead.
package errparse

import (
	"fmt"
	"regexp"

	"github.com/charmbracelet/x/ansi"
	"github.com/runoshun/ci-triage/internal/domain"
	"github.com/runoshun/ci-triage/internal/locate"
)

const category = "summarize"

// LogfileMaxLen is the maximum number of characters of a located logfile kept in a summary.
// The full issue body is limited to 65536 characters.
const LogfileMaxLen = 5000

var timestampPrefixRe = regexp.MustCompile(`(?m)^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d+)?Z ?`)

// Options controls the pre-filters applied before summarizing.
type Options struct {
	TrimTimestamps bool // Strip line-leading ISO-8601 timestamps
	TrimANSI       bool // Strip ANSI escape sequences
}

// OptionsFromConfig extracts the summarizer options from the configuration.
func OptionsFromConfig(cfg *domain.Config) Options {
	return Options{
		TrimTimestamps: cfg.Summary.TrimTimestamp,
		TrimANSI:       cfg.Summary.TrimANSI,
	}
}

// Ensure Summarizer implements domain.ErrorSummarizer.
var _ domain.ErrorSummarizer = (*Summarizer)(nil)

// Summarizer produces error summaries for a failure kind.
type Summarizer struct {
	logger  domain.Logger
	locator *locate.Locator
	opts    Options
}

// New creates a Summarizer.
func New(locator *locate.Locator, logger domain.Logger, opts Options) *Summarizer {
	if logger == nil {
		logger = domain.NopLogger{}
	}
	if locator == nil {
		locator = locate.New(logger)
	}
	return &Summarizer{
		logger:  logger,
		locator: locator,
		opts:    opts,
	}
}

// Summarize converts log text into an ErrorSummary for the given kind.
func (s *Summarizer) Summarize(text string, kind domain.FailureKind) domain.ErrorSummary {
	text = s.Prefilter(text)

	switch kind {
	case domain.KindYocto:
		summary, err := NewYocto(s.locator, s.logger).Parse(text)
		if err != nil {
			s.logger.Warn(category, fmt.Sprintf("Failed to parse Yocto error, returning error message as is: %v", err))
			return domain.ErrorSummary{
				Kind:      domain.KindYocto,
				YoctoTask: domain.YoctoTaskMisc,
				Summary:   text,
			}
		}
		return summary
	default:
		return domain.ErrorSummary{
			Kind:    domain.KindGeneric,
			Summary: text,
		}
	}
}

// LocateFailureLog finds the failure log file referenced in text.
// Yocto logs are searched for the bitbake "Logfile of failure stored in" line;
// any other kind resolves the first path-like token of the whole text.
func (s *Summarizer) LocateFailureLog(text string, kind domain.FailureKind) (string, error) {
	text = s.Prefilter(text)
	s.logger.Trace(category, "build log contents: "+text)
	if kind == domain.KindYocto {
		return NewYocto(s.locator, s.logger).LocateFailureLog(text)
	}
	return s.locator.Resolve(text)
}

// Prefilter applies the configured timestamp and ANSI passes, in that order.
func (s *Summarizer) Prefilter(text string) string {
	if s.opts.TrimTimestamps {
		s.logger.Debug(category, "trimming timestamp prefixes from the log")
		text = RemoveTimestampPrefixes(text)
	}
	if s.opts.TrimANSI {
		s.logger.Debug(category, "trimming ANSI escape sequences from the log")
		text = ansi.Strip(text)
	}
	return text
}

// RemoveTimestampPrefixes strips ISO-8601 timestamps at the start of each line,
// e.g. "2024-01-17T11:23:18.0396058Z ".
func RemoveTimestampPrefixes(text string) string {
	return timestampPrefixRe.ReplaceAllString(text, "")
}
