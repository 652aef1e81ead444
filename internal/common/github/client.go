// internal/common/github/client.go
package github

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"net/url"
	"strings"
	"time"

	intakeerrors "recruit-intake/internal/common/errors"
	"recruit-intake/internal/common/logger"

	gogithub "github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// maxPerPage is the largest page size the REST API accepts.
const maxPerPage = 100

// Config holds client settings. Timeout bounds each HTTP request.
type Config struct {
	Token             string
	BaseURL           string
	UserAgent         string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// Account is the subset of a GitHub user the analyzer reads.
type Account struct {
	Login       string
	PublicRepos int
}

// Repository is one entry of an account's repository listing.
type Repository struct {
	Owner string
	Name  string
	Fork  bool
	Stars int
}

// Client is a read-only GitHub directory: users, repository listings and
// repository contents.
type Client struct {
	gh     *gogithub.Client
	logger logger.Logger
}

// NewClient builds a go-github client whose transport waits on a token
// bucket before every request and, when a token is set, authenticates with it.
func NewClient(cfg Config, log logger.Logger) (*Client, error) {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	var transport http.RoundTripper = &rateLimitedTransport{
		base:    http.DefaultTransport,
		limiter: rate.NewLimiter(limit, burst),
	}
	if cfg.Token != "" {
		transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token}),
			Base:   transport,
		}
	}

	gh := gogithub.NewClient(&http.Client{Transport: transport, Timeout: cfg.Timeout})
	if cfg.UserAgent != "" {
		gh.UserAgent = cfg.UserAgent
	}
	if cfg.BaseURL != "" {
		base := cfg.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("invalid github base url %q: %w", cfg.BaseURL, err)
		}
		gh.BaseURL = u
	}

	return &Client{
		gh:     gh,
		logger: log.WithFields(map[string]interface{}{"component": "github"}),
	}, nil
}

type rateLimitedTransport struct {
	base    http.RoundTripper
	limiter *rate.Limiter
}

func (t *rateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	return t.base.RoundTrip(req)
}

// GetAccount resolves username. A 404 is ACCOUNT_NOT_FOUND; every other
// failure is GITHUB_API_FAILED.
func (c *Client) GetAccount(ctx context.Context, username string) (*Account, error) {
	user, resp, err := c.gh.Users.Get(ctx, username)
	if err != nil {
		if isNotFound(resp, err) {
			return nil, intakeerrors.NewAccountNotFoundError(username)
		}
		return nil, intakeerrors.NewGitHubAPIError("get user", err)
	}

	return &Account{
		Login:       user.GetLogin(),
		PublicRepos: user.GetPublicRepos(),
	}, nil
}

// Repositories yields at most limit repositories of username, fetching pages
// on demand. Iteration stops after the first error, which is yielded once.
func (c *Client) Repositories(ctx context.Context, username string, limit int) iter.Seq2[Repository, error] {
	return func(yield func(Repository, error) bool) {
		if limit <= 0 {
			return
		}
		opts := &gogithub.RepositoryListByUserOptions{
			ListOptions: gogithub.ListOptions{PerPage: min(limit, maxPerPage)},
		}

		seen := 0
		for {
			repos, resp, err := c.gh.Repositories.ListByUser(ctx, username, opts)
			if err != nil {
				yield(Repository{}, intakeerrors.NewGitHubAPIError("list repositories", err))
				return
			}

			for _, r := range repos {
				repo := Repository{
					Owner: r.GetOwner().GetLogin(),
					Name:  r.GetName(),
					Fork:  r.GetFork(),
					Stars: r.GetStargazersCount(),
				}
				if repo.Owner == "" {
					repo.Owner = username
				}
				if !yield(repo, nil) {
					return
				}
				seen++
				if seen >= limit {
					return
				}
			}

			if resp == nil || resp.NextPage == 0 {
				return
			}
			opts.Page = resp.NextPage
		}
	}
}

// ListRootEntries returns the names at the repository root. An empty
// repository has no contents and yields an empty list.
func (c *Client) ListRootEntries(ctx context.Context, owner, repo string) ([]string, error) {
	_, entries, resp, err := c.gh.Repositories.GetContents(ctx, owner, repo, "", nil)
	if err != nil {
		if isNotFound(resp, err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("list root of %s/%s: %w", owner, repo, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.GetName())
	}
	return names, nil
}

// PathExists reports whether path resolves to a file or directory in repo.
func (c *Client) PathExists(ctx context.Context, owner, repo, path string) (bool, error) {
	_, _, resp, err := c.gh.Repositories.GetContents(ctx, owner, repo, path, nil)
	if err != nil {
		if isNotFound(resp, err) {
			return false, nil
		}
		return false, fmt.Errorf("probe %s in %s/%s: %w", path, owner, repo, err)
	}
	return true, nil
}

func isNotFound(resp *gogithub.Response, err error) bool {
	if resp != nil && resp.StatusCode == http.StatusNotFound {
		return true
	}
	var ghErr *gogithub.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return ghErr.Response.StatusCode == http.StatusNotFound
	}
	return false
}
