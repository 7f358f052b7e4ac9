package github

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/runoshun/ci-triage/internal/domain"
	"github.com/runoshun/ci-triage/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	_, err := zw.Create("build/")
	require.NoError(t, err)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// routes answers gh api calls by endpoint substring.
func routes(t *testing.T, responses map[string]string) func(*domain.ExecCommand) ([]byte, error) {
	t.Helper()
	return func(cmd *domain.ExecCommand) ([]byte, error) {
		require.Equal(t, "gh", cmd.Program)
		require.Equal(t, "api", cmd.Args[0])
		joined := strings.Join(cmd.Args, " ")
		for key, out := range responses {
			if strings.Contains(joined, key) {
				return []byte(out), nil
			}
		}
		return []byte("gh: Not Found (HTTP 404)"), errors.New("exit status 1")
	}
}

func newTestProvider(t *testing.T, exec domain.CommandExecutor) *Provider {
	t.Helper()
	p, err := NewProvider(exec, "https://github.com/owner/repo", 0, nil)
	require.NoError(t, err)
	return p
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(&testutil.MockExecutor{}, "https://ghe.example.com/owner/repo", 5, nil)
	require.NoError(t, err)
	assert.Equal(t, "ghe.example.com", p.host)
	assert.Equal(t, "owner", p.owner)
	assert.Equal(t, "repo", p.repo)

	_, err = NewProvider(&testutil.MockExecutor{}, "nonsense", 5, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidRepo)
}

func TestProvider_FetchRun(t *testing.T) {
	exec := &testutil.MockExecutor{Handler: routes(t, map[string]string{
		"repos/owner/repo/actions/runs/42": `{"id":42,"html_url":"https://github.com/owner/repo/actions/runs/42","conclusion":"failure"}`,
	})}

	run, err := newTestProvider(t, exec).FetchRun(context.Background(), "42")
	require.NoError(t, err)

	assert.Equal(t, "42", run.ID)
	assert.True(t, run.Failed())
	assert.Equal(t, "https://github.com/owner/repo/actions/runs/42", run.URL)
}

func TestProvider_FetchRun_NotFound(t *testing.T) {
	exec := &testutil.MockExecutor{Handler: routes(t, nil)}

	_, err := newTestProvider(t, exec).FetchRun(context.Background(), "42")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), "HTTP 404")
}

func TestProvider_GHEHostname(t *testing.T) {
	exec := &testutil.MockExecutor{Handler: routes(t, map[string]string{
		"actions/runs/1": `{"id":1,"conclusion":"success"}`,
	})}
	p, err := NewProvider(exec, "https://ghe.example.com/owner/repo", 0, nil)
	require.NoError(t, err)

	_, err = p.FetchRun(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, []string{"api", "--hostname", "ghe.example.com", "repos/owner/repo/actions/runs/1"}, exec.Calls[0].Args)
}

func TestProvider_FetchJobs(t *testing.T) {
	exec := &testutil.MockExecutor{Handler: routes(t, map[string]string{
		"/jobs": `{"id":1,"name":"build","conclusion":"failure","html_url":"https://x/job/1","run_attempt":2,"steps":[{"name":"Checkout","conclusion":"success","number":1},{"name":"Build","conclusion":"failure","number":2}]}
{"id":2,"name":"lint","conclusion":"success","steps":[]}
`,
	})}

	jobs, err := newTestProvider(t, exec).FetchJobs(context.Background(), "42")
	require.NoError(t, err)

	require.Len(t, jobs, 2)
	assert.Equal(t, int64(1), jobs[0].ID)
	assert.Equal(t, 2, jobs[0].RunAttempt)
	require.Len(t, jobs[0].FailedSteps(), 1)
	assert.Equal(t, "Build", jobs[0].FailedSteps()[0].Name)
	assert.False(t, jobs[1].Failed())
	assert.Contains(t, exec.CallArgs()[0], "--paginate --jq .jobs[]")
}

func TestExtractLogs(t *testing.T) {
	archive := buildZip(t, map[string]string{
		"build/2_Build.txt": "2024-01-17T11:23:18.0396058Z build failed",
		"0_build.txt":       "whole job log",
	})

	logs, err := ExtractLogs(archive)
	require.NoError(t, err)

	assert.Equal(t, []domain.RawLog{
		{Name: "0_build.txt", Content: "whole job log"},
		{Name: "build/2_Build.txt", Content: "2024-01-17T11:23:18.0396058Z build failed"},
	}, logs)

	_, err = ExtractLogs([]byte("not a zip"))
	assert.Error(t, err)
}

func TestProvider_FetchSnapshot(t *testing.T) {
	archive := buildZip(t, map[string]string{"build/2_Build.txt": "boom"})
	exec := &testutil.MockExecutor{Handler: func(cmd *domain.ExecCommand) ([]byte, error) {
		switch cmd.Args[1] {
		case "repos/owner/repo/actions/runs/42":
			return []byte(`{"id":42,"conclusion":"failure","html_url":"u"}`), nil
		case "repos/owner/repo/actions/runs/42/jobs?per_page=100":
			return []byte(`{"id":1,"name":"build","conclusion":"failure"}`), nil
		case "repos/owner/repo/actions/runs/42/logs":
			return archive, nil
		}
		return nil, errors.New("unexpected call")
	}}

	snap, err := newTestProvider(t, exec).FetchSnapshot(context.Background(), "42")
	require.NoError(t, err)

	assert.Equal(t, "42", snap.Run.ID)
	require.Len(t, snap.Jobs, 1)
	require.Len(t, snap.Logs, 1)
	assert.Equal(t, "boom", snap.Logs[0].Content)
	assert.Len(t, exec.Calls, 3)
}

func TestProvider_FetchSnapshot_Error(t *testing.T) {
	exec := &testutil.MockExecutor{Handler: routes(t, map[string]string{
		"/jobs": `{"id":1}`,
	})}

	_, err := newTestProvider(t, exec).FetchSnapshot(context.Background(), "42")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProvider_FetchOpenIssues(t *testing.T) {
	exec := &testutil.MockExecutor{Handler: routes(t, map[string]string{
		"search/issues": `{"number":3,"title":"CI failed","body":"body 3","html_url":"https://x/3","labels":[{"name":"ci"}]}
{"number":5,"title":"CI failed again","body":"body 5","html_url":"https://x/5","labels":[]}`,
	})}

	issues, err := newTestProvider(t, exec).FetchOpenIssues(context.Background(), "ci")
	require.NoError(t, err)

	require.Len(t, issues, 2)
	assert.Equal(t, 3, issues[0].Number)
	assert.Equal(t, []string{"ci"}, issues[0].Labels)
	assert.Equal(t, "body 5", issues[1].Body)
	assert.Contains(t, exec.CallArgs()[0], `q=repo:owner/repo is:issue is:open label:"ci"`)
}

func TestProvider_CreateLabel(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		exec := &testutil.MockExecutor{Handler: routes(t, map[string]string{"/labels": `{"name":"do_fetch"}`})}
		err := newTestProvider(t, exec).CreateLabel(context.Background(), "do_fetch", "#fbca04")
		require.NoError(t, err)
		assert.Contains(t, exec.CallArgs()[0], "-f name=do_fetch -f color=fbca04")
	})

	t.Run("already exists", func(t *testing.T) {
		exec := &testutil.MockExecutor{Handler: func(*domain.ExecCommand) ([]byte, error) {
			return []byte(`{"message":"Validation Failed","errors":[{"resource":"Label","code":"already_exists","field":"name"}]}`),
				errors.New("exit status 1")
		}}
		err := newTestProvider(t, exec).CreateLabel(context.Background(), "do_fetch", "fbca04")
		assert.NoError(t, err)
	})

	t.Run("other failure", func(t *testing.T) {
		exec := &testutil.MockExecutor{Handler: func(*domain.ExecCommand) ([]byte, error) {
			return []byte("gh: Forbidden (HTTP 403)"), errors.New("exit status 1")
		}}
		err := newTestProvider(t, exec).CreateLabel(context.Background(), "do_fetch", "fbca04")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "HTTP 403")
	})
}

func TestProvider_CreateIssue(t *testing.T) {
	exec := &testutil.MockExecutor{Handler: routes(t, map[string]string{
		"/issues": `{"number":12,"html_url":"https://github.com/owner/repo/issues/12"}`,
	})}

	created, err := newTestProvider(t, exec).CreateIssue(context.Background(), "CI failed", "body", []string{"ci", "do_fetch"})
	require.NoError(t, err)

	assert.Equal(t, 12, created.Number)
	assert.Equal(t, "https://github.com/owner/repo/issues/12", created.URL)

	require.Len(t, exec.Calls, 1)
	assert.Contains(t, exec.CallArgs()[0], "--input -")
	var req createIssueRequest
	require.NoError(t, json.Unmarshal(exec.Calls[0].Stdin, &req))
	assert.Equal(t, createIssueRequest{Title: "CI failed", Body: "body", Labels: []string{"ci", "do_fetch"}}, req)
}
