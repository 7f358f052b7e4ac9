package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFailureKind(t *testing.T) {
	tests := []struct {
		input string
		want  FailureKind
	}{
		{"yocto", KindYocto},
		{"Yocto", KindYocto},
		{"generic", KindGeneric},
		{"Other", KindGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFailureKind(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseFailureKind("pytest")
	assert.ErrorIs(t, err, ErrInvalidKind)
}

func TestYoctoTaskFromLogName(t *testing.T) {
	assert.Equal(t, YoctoTaskFetch, YoctoTaskFromLogName("log.do_fetch.21616"))
	assert.Equal(t, YoctoTaskCompile, YoctoTaskFromLogName("/tmp/work/temp/log.do_compile.1"))
	assert.Equal(t, YoctoTaskMisc, YoctoTaskFromLogName("log.do_something_else.1"))
	assert.Equal(t, YoctoTaskMisc, YoctoTaskFromLogName("build.log"))
}

func TestErrorSummary_FailureLabel(t *testing.T) {
	assert.Equal(t, "", ErrorSummary{Kind: KindGeneric}.FailureLabel())
	assert.Equal(t, "misc", ErrorSummary{Kind: KindYocto}.FailureLabel())
	assert.Equal(t, "do_fetch", ErrorSummary{Kind: KindYocto, YoctoTask: YoctoTaskFetch}.FailureLabel())
}

func TestIssueDraft_AddLabel(t *testing.T) {
	d := &IssueDraft{}
	assert.True(t, d.AddLabel("bug"))
	assert.True(t, d.AddLabel("do_fetch"))
	assert.False(t, d.AddLabel("bug"))
	assert.False(t, d.AddLabel(""))
	assert.Equal(t, []string{"bug", "do_fetch"}, d.Labels)
}
