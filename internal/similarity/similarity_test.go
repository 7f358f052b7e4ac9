package similarity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "id with surrounding spaces", in: "ID 21442749267 ", want: "ID"},
		{name: "id and date", in: "ID 21442749267\ndate: 2024-02-28 00:03:46\nother text", want: "IDdate: \nother text"},
		{name: "short numbers kept", in: "exit code 2", want: "exit code 2"},
		{name: "id glued to letters kept", in: "abc21442749267def", want: "abc21442749267def"},
		{name: "no volatile content", in: "plain text", want: "plain text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestDistance_Reflexive(t *testing.T) {
	body := "**Run ID**: 7 [LINK TO RUN](u)\nsomething broke"
	assert.Equal(t, 0, Distance(body, body))
}

func TestDistance_IgnoresRunIDs(t *testing.T) {
	a := "**Run ID**: 21442749267 [LINK TO RUN](https://github.com/o/r/actions/runs/21442749267)\nboom"
	b := "**Run ID**: 21442749999 [LINK TO RUN](https://github.com/o/r/actions/runs/21442749999)\nboom"
	assert.Equal(t, 0, Distance(a, b))
}

func TestMinDistance(t *testing.T) {
	_, ok := MinDistance("x", nil)
	assert.False(t, ok)

	d, ok := MinDistance("kitten", []string{"something else entirely", "sitting", "kitten!"})
	assert.True(t, ok)
	assert.Equal(t, 1, d)
}

func TestDecide(t *testing.T) {
	d := Decide(0, 100)
	assert.True(t, d.Suppress)
	assert.Contains(t, d.Reason, "exact duplicate")

	d = Decide(99, 100)
	assert.True(t, d.Suppress)
	assert.Contains(t, d.Reason, "near duplicate")

	d = Decide(100, 100)
	assert.False(t, d.Suppress)
	assert.Equal(t, 100, d.Distance)

	d = Decide(50, 0)
	assert.True(t, d.Suppress)
}

func TestCheck(t *testing.T) {
	base := "**Run ID**: 21442749267 [LINK TO RUN](u)\n" + strings.Repeat("error line\n", 20)
	recurring := strings.Replace(base, "21442749267", "21442750000", 1)
	different := strings.Repeat("a totally different failure\n", 20)

	assert.False(t, Check(base, nil, DefaultThreshold).Suppress)
	assert.True(t, Check(recurring, []string{different, base}, DefaultThreshold).Suppress)
	assert.False(t, Check(base, []string{different}, DefaultThreshold).Suppress)
}
