package errparse

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/runoshun/ci-triage/internal/domain"
	"github.com/runoshun/ci-triage/internal/locate"
)

// Markers in bitbake output.
const (
	yoctoErrorSummaryMarker = "--- Error summary ---"
	yoctoErrorMarker        = "ERROR:"
	yoctoSummaryEndMarker   = "Summary: There w"
	yoctoFailureLogMarker   = "Logfile of failure stored in"
)

var justRecipeRe = regexp.MustCompile("(?m)^.*error: Recipe `[^`]*` failed.*$")

// Yocto summarizes bitbake build failures.
type Yocto struct {
	logger  domain.Logger
	locator *locate.Locator
}

// NewYocto creates the Yocto heuristic.
func NewYocto(locator *locate.Locator, logger domain.Logger) *Yocto {
	if logger == nil {
		logger = domain.NopLogger{}
	}
	return &Yocto{logger: logger, locator: locator}
}

// Parse extracts the error summary region and attaches the failure log it references.
func (y *Yocto) Parse(text string) (domain.ErrorSummary, error) {
	region, err := ErrorSummaryRegion(text)
	if err != nil {
		return domain.ErrorSummary{}, err
	}
	region = TrimTrailingJustRecipes(region)

	path, err := y.locateFailureLog(region)
	if err != nil {
		return domain.ErrorSummary{}, err
	}
	contents, err := os.ReadFile(path)
	if err != nil {
		return domain.ErrorSummary{}, fmt.Errorf("read failure log: %w", err)
	}

	name := filepath.Base(path)
	return domain.ErrorSummary{
		Kind:      domain.KindYocto,
		YoctoTask: domain.YoctoTaskFromLogName(name),
		Summary:   region,
		Logfile: &domain.Logfile{
			Name:     name,
			Contents: tail(string(contents), LogfileMaxLen),
		},
	}, nil
}

// LocateFailureLog returns the canonical path of the failure log referenced by a bitbake log.
func (y *Yocto) LocateFailureLog(text string) (string, error) {
	region, err := ErrorSummaryRegion(text)
	if err != nil {
		return "", err
	}
	region = TrimTrailingJustRecipes(region)
	y.logger.Trace(category, "trimmed error summary: "+region)
	return y.locateFailureLog(region)
}

func (y *Yocto) locateFailureLog(region string) (string, error) {
	line, err := FindFailureLogLine(region)
	if err != nil {
		return "", err
	}
	return y.locator.Resolve(line)
}

// ErrorSummaryRegion returns the part of a bitbake log describing the failure.
// It starts after an "--- Error summary ---" marker if there is one, otherwise at
// the first line containing "ERROR:", and ends with the "Summary: There w..." line.
func ErrorSummaryRegion(text string) (string, error) {
	lines := strings.Split(text, "\n")

	start := -1
	for i, l := range lines {
		if strings.Contains(l, yoctoErrorSummaryMarker) {
			start = i + 1
			break
		}
	}
	if start < 0 {
		for i, l := range lines {
			if strings.Contains(l, yoctoErrorMarker) {
				start = i
				break
			}
		}
	}
	if start < 0 {
		return "", fmt.Errorf("%w: no %q line found", domain.ErrParseFailure, yoctoErrorMarker)
	}

	end := len(lines)
	for i := len(lines) - 1; i >= start; i-- {
		if strings.Contains(lines[i], yoctoSummaryEndMarker) {
			end = i + 1
			break
		}
	}

	region := strings.TrimSpace(strings.Join(lines[start:end], "\n"))
	if region == "" {
		return "", fmt.Errorf("%w: empty error summary", domain.ErrParseFailure)
	}
	return region, nil
}

// TrimTrailingJustRecipes cuts the text at the first failed just recipe line,
// e.g. "error: Recipe `build` failed on line 12 with exit code 1".
func TrimTrailingJustRecipes(text string) string {
	loc := justRecipeRe.FindStringIndex(text)
	if loc == nil {
		return text
	}
	return strings.TrimSpace(text[:loc[0]])
}

// FindFailureLogLine returns the first line naming the failure log.
func FindFailureLogLine(text string) (string, error) {
	for _, l := range strings.Split(text, "\n") {
		if strings.Contains(l, yoctoFailureLogMarker) {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w: No log file line found", domain.ErrParseFailure)
}

// tail returns at most the last n characters of s.
func tail(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}
