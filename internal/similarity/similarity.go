// Package similarity detects issue bodies that duplicate already-open issues.
package similarity

import (
	"fmt"
	"regexp"

	"github.com/agnivade/levenshtein"
)

// DefaultThreshold is the edit distance below which two bodies count as near duplicates.
const DefaultThreshold = 100

// volatileRe matches text that differs between runs of the same failure:
// "YYYY-MM-DD HH:MM:SS" dates, and 10-11 digit ids together with the
// non-letter characters around them.
var volatileRe = regexp.MustCompile(
	`([0-9]{4}-[0-9]{2}-[0-9]{2} [0-9]{2}:[0-9]{2}:[0-9]{2})|(?:[^a-zA-Z])([0-9]{10,11})(?:[^a-zA-Z])`)

// Normalize removes dates and run/job ids from an issue body.
func Normalize(body string) string {
	return volatileRe.ReplaceAllString(body, "")
}

// Distance is the Levenshtein distance between two normalized bodies.
func Distance(a, b string) int {
	return levenshtein.ComputeDistance(Normalize(a), Normalize(b))
}

// MinDistance returns the smallest distance between candidate and any of others.
// ok is false when others is empty.
func MinDistance(candidate string, others []string) (dist int, ok bool) {
	if len(others) == 0 {
		return 0, false
	}
	norm := Normalize(candidate)
	for i, o := range others {
		d := levenshtein.ComputeDistance(norm, Normalize(o))
		if i == 0 || d < dist {
			dist = d
		}
		if dist == 0 {
			break
		}
	}
	return dist, true
}

// Decision is the outcome of a duplicate check.
type Decision struct {
	Reason   string `yaml:"reason"`
	Distance int    `yaml:"distance"`
	Suppress bool   `yaml:"suppress"`
}

// Decide turns a minimum distance into a create-or-suppress decision.
// A non-positive threshold selects DefaultThreshold.
func Decide(distance, threshold int) Decision {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	switch {
	case distance == 0:
		return Decision{Suppress: true, Distance: 0, Reason: "exact duplicate of an open issue"}
	case distance < threshold:
		return Decision{
			Suppress: true,
			Distance: distance,
			Reason:   fmt.Sprintf("near duplicate of an open issue (distance %d < %d)", distance, threshold),
		}
	default:
		return Decision{
			Distance: distance,
			Reason:   fmt.Sprintf("no similar open issue (distance %d >= %d)", distance, threshold),
		}
	}
}

// Check compares candidate against the bodies of open issues.
// With no open issues the candidate is never suppressed.
func Check(candidate string, others []string, threshold int) Decision {
	dist, ok := MinDistance(candidate, others)
	if !ok {
		return Decision{Reason: "no open issues to compare against"}
	}
	return Decide(dist, threshold)
}
