// Package github implements domain.RunProvider on top of the gh CLI.
package github

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"

	"github.com/runoshun/ci-triage/internal/domain"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const category = "github"

// Ensure Provider implements the provider ports.
var (
	_ domain.RunProvider     = (*Provider)(nil)
	_ domain.SnapshotFetcher = (*Provider)(nil)
)

// Provider talks to the GitHub REST API through `gh api`.
// Fields are ordered to minimize memory padding.
type Provider struct {
	exec    domain.CommandExecutor
	logger  domain.Logger
	limiter *rate.Limiter
	host    string
	owner   string
	repo    string
}

// NewProvider creates a Provider for the repository at repoURL
// (e.g. https://github.com/owner/repo). rps limits gh api calls per second;
// a non-positive rps disables the limit.
func NewProvider(exec domain.CommandExecutor, repoURL string, rps float64, logger domain.Logger) (*Provider, error) {
	owner, repo, err := domain.OwnerRepo(repoURL)
	if err != nil {
		return nil, err
	}
	host := domain.DefaultHost
	if u, err := url.Parse(repoURL); err == nil && u.Host != "" {
		host = u.Host
	}
	if logger == nil {
		logger = domain.NopLogger{}
	}

	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &Provider{
		exec:    exec,
		logger:  logger,
		limiter: rate.NewLimiter(limit, 1),
		host:    host,
		owner:   owner,
		repo:    repo,
	}, nil
}

// apiError is a failed gh api call.
type apiError struct {
	endpoint string
	err      error
	stderr   string
	body     string
}

func (e *apiError) Error() string {
	msg := strings.TrimSpace(e.stderr)
	if msg == "" {
		msg = e.err.Error()
	}
	return fmt.Sprintf("gh api %s: %s", e.endpoint, msg)
}

func (e *apiError) Unwrap() error {
	if strings.Contains(e.stderr, "HTTP 404") {
		return domain.ErrNotFound
	}
	return e.err
}

func (e *apiError) contains(s string) bool {
	return strings.Contains(e.stderr, s) || strings.Contains(e.body, s)
}

// api runs `gh api <endpoint> [args...]` and returns stdout.
func (p *Provider) api(ctx context.Context, endpoint string, stdin []byte, args ...string) ([]byte, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	cmdArgs := []string{"api"}
	if p.host != domain.DefaultHost {
		cmdArgs = append(cmdArgs, "--hostname", p.host)
	}
	cmdArgs = append(cmdArgs, endpoint)
	cmdArgs = append(cmdArgs, args...)

	cmd := domain.NewCommand("gh", cmdArgs, "")
	cmd.Stdin = stdin

	p.logger.Debug(category, "gh "+strings.Join(cmdArgs, " "))
	var stdout, stderr bytes.Buffer
	if err := p.exec.ExecuteWithContext(ctx, cmd, &stdout, &stderr); err != nil {
		return nil, &apiError{endpoint: endpoint, err: err, stderr: stderr.String(), body: stdout.String()}
	}
	return stdout.Bytes(), nil
}

func (p *Provider) repoPath(suffix string) string {
	return fmt.Sprintf("repos/%s/%s/%s", p.owner, p.repo, suffix)
}

type runResponse struct {
	HTMLURL    string `json:"html_url"`
	Conclusion string `json:"conclusion"`
	ID         int64  `json:"id"`
}

// FetchRun retrieves a workflow run.
func (p *Provider) FetchRun(ctx context.Context, runID string) (*domain.Run, error) {
	out, err := p.api(ctx, p.repoPath("actions/runs/"+runID), nil)
	if err != nil {
		return nil, fmt.Errorf("fetch run %s: %w", runID, err)
	}
	var r runResponse
	if err := json.Unmarshal(out, &r); err != nil {
		return nil, fmt.Errorf("decode run %s: %w", runID, err)
	}
	return &domain.Run{
		ID:         runID,
		URL:        r.HTMLURL,
		Conclusion: r.Conclusion,
	}, nil
}

type jobResponse struct {
	Name       string `json:"name"`
	Conclusion string `json:"conclusion"`
	HTMLURL    string `json:"html_url"`
	Steps      []struct {
		Name       string `json:"name"`
		Conclusion string `json:"conclusion"`
		Number     int    `json:"number"`
	} `json:"steps"`
	ID         int64 `json:"id"`
	RunAttempt int   `json:"run_attempt"`
}

// FetchJobs retrieves the jobs of a run, including their steps.
func (p *Provider) FetchJobs(ctx context.Context, runID string) ([]domain.Job, error) {
	out, err := p.api(ctx, p.repoPath("actions/runs/"+runID+"/jobs?per_page=100"), nil,
		"--paginate", "--jq", ".jobs[]")
	if err != nil {
		return nil, fmt.Errorf("fetch jobs of run %s: %w", runID, err)
	}

	var jobs []domain.Job
	dec := json.NewDecoder(bytes.NewReader(out))
	for {
		var jr jobResponse
		if err := dec.Decode(&jr); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("decode jobs of run %s: %w", runID, err)
		}
		job := domain.Job{
			ID:         jr.ID,
			Name:       jr.Name,
			Conclusion: jr.Conclusion,
			URL:        jr.HTMLURL,
			RunAttempt: jr.RunAttempt,
		}
		for _, s := range jr.Steps {
			job.Steps = append(job.Steps, domain.Step{Name: s.Name, Conclusion: s.Conclusion, Number: s.Number})
		}
		jobs = append(jobs, job)
	}
	p.logger.Debug(category, fmt.Sprintf("run %s has %d jobs", runID, len(jobs)))
	return jobs, nil
}

// FetchRawLogs downloads the log archive of a run and returns every file in it.
func (p *Provider) FetchRawLogs(ctx context.Context, runID string) ([]domain.RawLog, error) {
	out, err := p.api(ctx, p.repoPath("actions/runs/"+runID+"/logs"), nil)
	if err != nil {
		return nil, fmt.Errorf("fetch logs of run %s: %w", runID, err)
	}
	logs, err := ExtractLogs(out)
	if err != nil {
		return nil, fmt.Errorf("extract logs of run %s: %w", runID, err)
	}
	p.logger.Debug(category, fmt.Sprintf("run %s has %d log files", runID, len(logs)))
	return logs, nil
}

// ExtractLogs reads every regular file of a log archive, sorted by name.
func ExtractLogs(archive []byte) ([]domain.RawLog, error) {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, err
	}

	logs := make([]domain.RawLog, 0, len(zr.File))
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Name, err)
		}
		logs = append(logs, domain.RawLog{Name: f.Name, Content: string(content)})
	}

	sort.Slice(logs, func(i, j int) bool { return logs[i].Name < logs[j].Name })
	return logs, nil
}

// FetchSnapshot retrieves the run, its jobs and its logs concurrently.
func (p *Provider) FetchSnapshot(ctx context.Context, runID string) (*domain.RunSnapshot, error) {
	var (
		run  *domain.Run
		jobs []domain.Job
		logs []domain.RawLog
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		run, err = p.FetchRun(gctx, runID)
		return err
	})
	g.Go(func() error {
		var err error
		jobs, err = p.FetchJobs(gctx, runID)
		return err
	})
	g.Go(func() error {
		var err error
		logs, err = p.FetchRawLogs(gctx, runID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &domain.RunSnapshot{Run: *run, Jobs: jobs, Logs: logs}, nil
}

type issueResponse struct {
	Title   string `json:"title"`
	Body    string `json:"body"`
	HTMLURL string `json:"html_url"`
	Labels  []struct {
		Name string `json:"name"`
	} `json:"labels"`
	Number int `json:"number"`
}

// FetchOpenIssues retrieves open issues of the repository carrying the label.
func (p *Provider) FetchOpenIssues(ctx context.Context, label string) ([]domain.ExistingIssue, error) {
	filter := domain.LabelFilter{Labels: []string{label}, Match: domain.LabelMatchAll}
	query := fmt.Sprintf("repo:%s/%s is:issue is:open %s", p.owner, p.repo, filter)

	out, err := p.api(ctx, "search/issues", nil,
		"-X", "GET", "-f", "q="+query, "-f", "per_page=100", "--paginate", "--jq", ".items[]")
	if err != nil {
		return nil, fmt.Errorf("search issues labeled %q: %w", label, err)
	}

	var issues []domain.ExistingIssue
	dec := json.NewDecoder(bytes.NewReader(out))
	for {
		var ir issueResponse
		if err := dec.Decode(&ir); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("decode issues: %w", err)
		}
		issue := domain.ExistingIssue{
			Number: ir.Number,
			Title:  ir.Title,
			Body:   ir.Body,
			URL:    ir.HTMLURL,
		}
		for _, l := range ir.Labels {
			issue.Labels = append(issue.Labels, l.Name)
		}
		issues = append(issues, issue)
	}
	p.logger.Debug(category, fmt.Sprintf("%d open issues labeled %q", len(issues), label))
	return issues, nil
}

// CreateLabel creates a label. An already existing label is not an error.
func (p *Provider) CreateLabel(ctx context.Context, name, color string) error {
	_, err := p.api(ctx, p.repoPath("labels"), nil,
		"-X", "POST", "-f", "name="+name, "-f", "color="+strings.TrimPrefix(color, "#"))
	if err != nil {
		var apiErr *apiError
		if errors.As(err, &apiErr) && apiErr.contains("already_exists") {
			p.logger.Debug(category, fmt.Sprintf("label %q already exists", name))
			return nil
		}
		return fmt.Errorf("create label %q: %w", name, err)
	}
	p.logger.Info(category, fmt.Sprintf("created label %q", name))
	return nil
}

type createIssueRequest struct {
	Title  string   `json:"title"`
	Body   string   `json:"body"`
	Labels []string `json:"labels"`
}

// CreateIssue creates an issue and returns where it lives.
func (p *Provider) CreateIssue(ctx context.Context, title, body string, labels []string) (*domain.CreatedIssue, error) {
	payload, err := json.Marshal(createIssueRequest{Title: title, Body: body, Labels: labels})
	if err != nil {
		return nil, fmt.Errorf("encode issue: %w", err)
	}

	out, err := p.api(ctx, p.repoPath("issues"), payload, "-X", "POST", "--input", "-")
	if err != nil {
		return nil, fmt.Errorf("create issue: %w", err)
	}

	var ir issueResponse
	if err := json.Unmarshal(out, &ir); err != nil {
		return nil, fmt.Errorf("decode created issue: %w", err)
	}
	return &domain.CreatedIssue{Number: ir.Number, URL: ir.HTMLURL}, nil
}
