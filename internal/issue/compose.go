// Package issue renders triage results as a size-bounded Markdown issue body.
package issue

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/runoshun/ci-triage/internal/domain"
)

// MaxBodyLen is the tracker's hard limit on issue body length, in characters.
const MaxBodyLen = 65536

// ContentTooLongSentinel replaces a job's evidence when trimming the summary cannot
// make the block fit.
const ContentTooLongSentinel = "(content > max len)"

const category = "compose"

// Composer renders an IssueDraft as Markdown within a length budget.
// A Composer is not safe for concurrent use.
type Composer struct {
	logger domain.Logger
	memo   map[int]string // Rendered blocks by position in the draft's job list
	maxLen int
}

// NewComposer creates a Composer. A non-positive maxLen selects MaxBodyLen.
func NewComposer(maxLen int, logger domain.Logger) *Composer {
	if maxLen <= 0 {
		maxLen = MaxBodyLen
	}
	if logger == nil {
		logger = domain.NopLogger{}
	}
	return &Composer{maxLen: maxLen, logger: logger}
}

// MaxLen returns the budget the composer renders against.
func (c *Composer) MaxLen() int {
	return c.maxLen
}

// Body renders the draft. The preface is never truncated; the remaining budget is
// split evenly between jobs, and each job block is trimmed from the front of its
// error summary to fit its share.
func (c *Composer) Body(d *domain.IssueDraft) string {
	c.memo = make(map[int]string, len(d.Jobs))

	preface := Preface(d.RunID, d.RunURL, d.Jobs)
	var sb strings.Builder
	sb.WriteString(preface)

	if n := len(d.Jobs); n > 0 {
		perJob := (c.maxLen - runeLen(preface)) / n
		if perJob < 0 {
			perJob = 0
		}
		for i, j := range d.Jobs {
			sb.WriteString(c.jobBlock(i, j, perJob))
		}
	}

	body := sb.String()
	if l := runeLen(body); l > c.maxLen {
		c.logger.Warn(category, fmt.Sprintf(
			"Failed to format issue body within max length, truncating %d characters from the end", l-c.maxLen))
		body = truncateRunes(body, c.maxLen)
	}
	return body
}

// Preface renders the run header and the list of failed job names.
func Preface(runID, runURL string, jobs []domain.JobSummary) string {
	noun := "jobs"
	if len(jobs) == 1 {
		noun = "job"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "**Run ID**: %s [LINK TO RUN](%s)\n\n**%d %s failed:**\n", runID, runURL, len(jobs), noun)
	for _, j := range jobs {
		fmt.Fprintf(&sb, "- **`%s`**\n", j.Name)
	}
	return sb.String()
}

// jobBlock renders the job at index i within budget characters, at most once per Body call.
// Blocks are keyed by position so jobs sharing an ID still render separately.
func (c *Composer) jobBlock(i int, j domain.JobSummary, budget int) string {
	if block, ok := c.memo[i]; ok {
		return block
	}

	header := fmt.Sprintf("\n### `%s` (ID %d)\n**Step failed:** `%s`\n\\\n**Log:** %s\n\\\n*Best effort error summary*:",
		j.Name, j.ID, j.FailedStep, j.URL)
	details := logDetails(j.Error.Logfile)
	summary := j.Error.Summary

	block := header + evidence(summary, details)
	if overflow := runeLen(block) - budget; overflow > 0 {
		if runeLen(summary) >= overflow {
			c.logger.Debug(category, fmt.Sprintf("job %d: dropping %d characters from the summary", j.ID, overflow))
			block = header + evidence(dropRunes(summary, overflow), details)
		} else {
			c.logger.Warn(category, fmt.Sprintf("job %d: summary cannot fit in %d characters", j.ID, budget))
			block = header + ContentTooLongSentinel
		}
	}

	c.memo[i] = block
	return block
}

func evidence(summary, details string) string {
	return "\n```\n" + summary + "```" + details
}

func logDetails(lf *domain.Logfile) string {
	if lf == nil {
		return ""
	}
	return fmt.Sprintf("\n<details>\n<summary>%s</summary>\n<br>\n\n```\n%s\n```\n</details>", lf.Name, lf.Contents)
}

// ValidateBody checks the body against the budget.
func ValidateBody(body string, maxLen int) error {
	if l := runeLen(body); l > maxLen {
		return fmt.Errorf("%w: %d > %d characters", domain.ErrBodyTooLong, l, maxLen)
	}
	return nil
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// dropRunes removes the first n runes of s.
func dropRunes(s string, n int) string {
	for i := range s {
		if n == 0 {
			return s[i:]
		}
		n--
	}
	return ""
}

// truncateRunes keeps the first n runes of s.
func truncateRunes(s string, n int) string {
	for i := range s {
		if n == 0 {
			return s[:i]
		}
		n--
	}
	return s
}
