package analyzegithubprofile

import (
	"context"
	stderrors "errors"
	"fmt"
	"iter"
	"testing"
	"time"

	"recruit-intake/internal/common/cache"
	"recruit-intake/internal/common/errors"
	"recruit-intake/internal/common/github"
	"recruit-intake/internal/common/logger"
	"recruit-intake/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// ==========================
// Mock Directory Implementation
// ==========================

type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) GetAccount(ctx context.Context, username string) (*github.Account, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*github.Account), args.Error(1)
}

// Repositories yields at most limit of the configured repositories, then the
// configured error if any.
func (m *MockDirectory) Repositories(ctx context.Context, username string, limit int) iter.Seq2[github.Repository, error] {
	args := m.Called(ctx, username, limit)
	repos := args.Get(0).([]github.Repository)
	listErr := args.Error(1)
	return func(yield func(github.Repository, error) bool) {
		for i, r := range repos {
			if i >= limit {
				return
			}
			if !yield(r, nil) {
				return
			}
		}
		if listErr != nil {
			yield(github.Repository{}, listErr)
		}
	}
}

func (m *MockDirectory) ListRootEntries(ctx context.Context, owner, repo string) ([]string, error) {
	args := m.Called(ctx, owner, repo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockDirectory) PathExists(ctx context.Context, owner, repo, path string) (bool, error) {
	args := m.Called(ctx, owner, repo, path)
	return args.Bool(0), args.Error(1)
}

// ==========================
// Test Helpers
// ==========================

func repo(name string, stars int) github.Repository {
	return github.Repository{Owner: "octocat", Name: name, Stars: stars}
}

// expectBareRepo sets up a repo with no marker and no probes hitting.
func expectBareRepo(d *MockDirectory, name string, probeCI, probeTests bool) {
	d.On("ListRootEntries", mock.Anything, "octocat", name).Return([]string{"README.md"}, nil).Once()
	if probeCI {
		d.On("PathExists", mock.Anything, "octocat", name, ".github/workflows").Return(false, nil).Once()
	}
	if probeTests {
		for _, dir := range testDirs {
			d.On("PathExists", mock.Anything, "octocat", name, dir).Return(false, nil).Once()
		}
	}
}

func newTestHandler(t *testing.T, d AccountDirectory, c ScanCache) *Handler {
	h := NewHandler(LoadConfig(nil), d, c, logger.NewTestLogger(t))
	h.now = func() time.Time { return time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC) }
	return h
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_FullScan(t *testing.T) {
	d := new(MockDirectory)
	d.On("GetAccount", mock.Anything, "octocat").Return(&github.Account{Login: "octocat", PublicRepos: 15}, nil)
	d.On("Repositories", mock.Anything, "octocat", 30).Return([]github.Repository{
		repo("agent", 12),
		{Owner: "octocat", Name: "forked", Fork: true, Stars: 900},
		repo("notes", 3),
		repo("site", 0),
	}, nil)

	// agent: marker found, CI present, tests probed in order until spec
	d.On("ListRootEntries", mock.Anything, "octocat", "agent").Return([]string{"go.mod", ".claude", ".cursorrules"}, nil).Once()
	d.On("PathExists", mock.Anything, "octocat", "agent", ".github/workflows").Return(true, nil).Once()
	d.On("PathExists", mock.Anything, "octocat", "agent", "test").Return(false, nil).Once()
	d.On("PathExists", mock.Anything, "octocat", "agent", "tests").Return(false, stderrors.New("403 rate limited")).Once()
	d.On("PathExists", mock.Anything, "octocat", "agent", "__tests__").Return(false, nil).Once()
	d.On("PathExists", mock.Anything, "octocat", "agent", "spec").Return(false, nil).Once()

	// notes: marker, CI already sticky so not probed, tests found on second dir
	d.On("ListRootEntries", mock.Anything, "octocat", "notes").Return([]string{"cursor.json"}, nil).Once()
	d.On("PathExists", mock.Anything, "octocat", "notes", "test").Return(false, nil).Once()
	d.On("PathExists", mock.Anything, "octocat", "notes", "tests").Return(true, nil).Once()

	// site: root listing fails, both flags sticky so no probes
	d.On("ListRootEntries", mock.Anything, "octocat", "site").Return(nil, stderrors.New("502")).Once()

	out, err := newTestHandler(t, d, nil).Execute(context.Background(), &Input{Username: "octocat"})
	require.NoError(t, err)

	assert.Equal(t, models.ProfileMetrics{
		RepositoryScan: models.RepositoryScan{
			AIToolMarkerCount: 2,
			HighStarRepoCount: 1,
			TotalStars:        15,
			HasCICD:           true,
			HasTests:          true,
			ReposScanned:      3,
			ScannedAt:         time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC),
		},
		PublicRepoCount: 15,
	}, out.Metrics)

	// genai 20, oss min(5+10,30)=15, projects 10, activity 5, prod 5
	assert.Equal(t, models.ScoreBreakdown{
		GenAIScore: 20, OSSScore: 15, ProjectsScore: 10, ActivityScore: 5, ProdScore: 5, TotalScore: 55,
	}, out.Breakdown)
	assert.False(t, out.FromCache)

	d.AssertExpectations(t)
	d.AssertNotCalled(t, "ListRootEntries", mock.Anything, "octocat", "forked")
}

func TestHandler_Execute_AccountNotFound(t *testing.T) {
	d := new(MockDirectory)
	d.On("GetAccount", mock.Anything, "ghost").Return(nil, errors.NewAccountNotFoundError("ghost"))

	out, err := newTestHandler(t, d, nil).Execute(context.Background(), &Input{Username: "ghost"})

	require.Error(t, err)
	assert.Nil(t, out)
	assert.True(t, stderrors.Is(err, errors.ErrAccountNotFound))
	d.AssertNotCalled(t, "Repositories", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandler_Execute_EmptyUsername(t *testing.T) {
	d := new(MockDirectory)

	_, err := newTestHandler(t, d, nil).Execute(context.Background(), &Input{})
	assert.True(t, errors.IsCode(err, errors.ErrCodeAccountNotFound))
	d.AssertNotCalled(t, "GetAccount", mock.Anything, mock.Anything)
}

func TestHandler_Execute_ListingFailure(t *testing.T) {
	d := new(MockDirectory)
	d.On("GetAccount", mock.Anything, "octocat").Return(&github.Account{Login: "octocat", PublicRepos: 3}, nil)
	d.On("Repositories", mock.Anything, "octocat", 30).Return([]github.Repository{repo("one", 1)},
		errors.NewGitHubAPIError("list repositories", stderrors.New("500")))
	expectBareRepo(d, "one", true, true)

	out, err := newTestHandler(t, d, nil).Execute(context.Background(), &Input{Username: "octocat"})

	require.Error(t, err)
	assert.Nil(t, out)
	assert.True(t, errors.IsCode(err, errors.ErrCodeGitHubAPIFailed))
	assert.False(t, errors.IsCode(err, errors.ErrCodeAccountNotFound))
}

func TestHandler_Execute_ZeroScoreIsNotAnError(t *testing.T) {
	d := new(MockDirectory)
	d.On("GetAccount", mock.Anything, "quiet").Return(&github.Account{Login: "quiet", PublicRepos: 0}, nil)
	d.On("Repositories", mock.Anything, "quiet", 30).Return([]github.Repository{}, nil)

	out, err := newTestHandler(t, d, nil).Execute(context.Background(), &Input{Username: "quiet"})
	require.NoError(t, err)
	assert.Equal(t, 4, out.Breakdown.TotalScore)
}

func TestHandler_Execute_ScanLimit(t *testing.T) {
	repos := make([]github.Repository, 0, 35)
	for i := 0; i < 35; i++ {
		repos = append(repos, repo(fmt.Sprintf("r%02d", i), 1))
	}

	d := new(MockDirectory)
	d.On("GetAccount", mock.Anything, "octocat").Return(&github.Account{Login: "octocat", PublicRepos: 35}, nil)
	d.On("Repositories", mock.Anything, "octocat", 30).Return(repos, nil)
	d.On("ListRootEntries", mock.Anything, "octocat", mock.Anything).Return([]string{}, nil)
	d.On("PathExists", mock.Anything, "octocat", mock.Anything, mock.Anything).Return(false, nil)

	out, err := newTestHandler(t, d, nil).Execute(context.Background(), &Input{Username: "octocat"})
	require.NoError(t, err)

	assert.Equal(t, 30, out.Metrics.ReposScanned)
	assert.Equal(t, 30, out.Metrics.TotalStars)
	d.AssertNotCalled(t, "ListRootEntries", mock.Anything, "octocat", "r30")
}

func TestHandler_Execute_Idempotent(t *testing.T) {
	d := new(MockDirectory)
	d.On("GetAccount", mock.Anything, "octocat").Return(&github.Account{Login: "octocat", PublicRepos: 4}, nil)
	d.On("Repositories", mock.Anything, "octocat", 30).Return([]github.Repository{repo("a", 20), repo("b", 2)}, nil)
	d.On("ListRootEntries", mock.Anything, "octocat", "a").Return([]string{".copilot"}, nil)
	d.On("ListRootEntries", mock.Anything, "octocat", "b").Return([]string{}, nil)
	d.On("PathExists", mock.Anything, "octocat", mock.Anything, mock.Anything).Return(false, nil)

	h := newTestHandler(t, d, nil)
	first, err := h.Execute(context.Background(), &Input{Username: "octocat"})
	require.NoError(t, err)
	second, err := h.Execute(context.Background(), &Input{Username: "octocat"})
	require.NoError(t, err)

	assert.Equal(t, first.Breakdown, second.Breakdown)
}

func TestHandler_Execute_CancelledContext(t *testing.T) {
	d := new(MockDirectory)
	d.On("GetAccount", mock.Anything, "octocat").Return(&github.Account{Login: "octocat", PublicRepos: 1}, nil)
	d.On("Repositories", mock.Anything, "octocat", 30).Return([]github.Repository{repo("a", 1)}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestHandler(t, d, nil).Execute(ctx, &Input{Username: "octocat"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHandler_Execute_DeadlineDuringLastRepository(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	scanCache := cache.NewScanCache(client, time.Hour, "day", logger.NewNoOpLogger())

	d := new(MockDirectory)
	d.On("GetAccount", mock.Anything, "octocat").Return(&github.Account{Login: "octocat", PublicRepos: 1}, nil)
	d.On("Repositories", mock.Anything, "octocat", 30).Return([]github.Repository{repo("slow", 12)}, nil)
	d.On("ListRootEntries", mock.Anything, "octocat", "slow").
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(nil, context.DeadlineExceeded)
	d.On("PathExists", mock.Anything, "octocat", "slow", mock.Anything).Return(false, context.DeadlineExceeded).Maybe()

	h := NewHandler(&Config{Timeout: 50 * time.Millisecond, RepoScanLimit: 30}, d, scanCache, logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{Username: "octocat"})
	require.Error(t, err)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, mr.Keys(), "a truncated scan must not be cached")
}

// ==========================
// Scan Cache Tests
// ==========================

func TestHandler_Execute_UsesScanCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	clock := func() time.Time { return time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC) }
	scanCache := cache.NewScanCache(client, time.Hour, "day", logger.NewNoOpLogger(), cache.WithClock(clock))

	d := new(MockDirectory)
	d.On("GetAccount", mock.Anything, "octocat").Return(&github.Account{Login: "octocat", PublicRepos: 15}, nil).Twice()
	d.On("Repositories", mock.Anything, "octocat", 30).Return([]github.Repository{repo("a", 11)}, nil).Once()
	d.On("ListRootEntries", mock.Anything, "octocat", "a").Return([]string{".cursorrules"}, nil).Once()
	d.On("PathExists", mock.Anything, "octocat", "a", mock.Anything).Return(false, nil)

	h := newTestHandler(t, d, scanCache)

	first, err := h.Execute(context.Background(), &Input{Username: "octocat"})
	require.NoError(t, err)
	assert.False(t, first.FromCache)
	assert.True(t, mr.Exists("intake:scan:octocat:2025-03-14"))

	second, err := h.Execute(context.Background(), &Input{Username: "octocat"})
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Breakdown, second.Breakdown)

	d.AssertExpectations(t)
}

func TestHandler_Execute_CacheOutageFallsBackToScan(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	scanCache := cache.NewScanCache(client, time.Hour, "day", logger.NewNoOpLogger())
	mr.Close()

	d := new(MockDirectory)
	d.On("GetAccount", mock.Anything, "octocat").Return(&github.Account{Login: "octocat", PublicRepos: 2}, nil)
	d.On("Repositories", mock.Anything, "octocat", 30).Return([]github.Repository{}, nil)

	out, err := newTestHandler(t, d, scanCache).Execute(context.Background(), &Input{Username: "octocat"})
	require.NoError(t, err)
	assert.False(t, out.FromCache)
}

func TestHandler_Execute_AccountLookupRunsDespiteCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	scanCache := cache.NewScanCache(client, time.Hour, "day", logger.NewNoOpLogger())
	require.NoError(t, scanCache.Put(context.Background(), "ghost", &models.RepositoryScan{AIToolMarkerCount: 3}))

	d := new(MockDirectory)
	d.On("GetAccount", mock.Anything, "ghost").Return(nil, errors.NewAccountNotFoundError("ghost"))

	_, err := newTestHandler(t, d, scanCache).Execute(context.Background(), &Input{Username: "ghost"})
	assert.True(t, errors.IsCode(err, errors.ErrCodeAccountNotFound))
}

// ==========================
// Tracing Tests
// ==========================

func TestHandler_Execute_RecordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	d := new(MockDirectory)
	d.On("GetAccount", mock.Anything, "octocat").Return(&github.Account{Login: "octocat", PublicRepos: 15}, nil)
	d.On("Repositories", mock.Anything, "octocat", 30).Return([]github.Repository{}, nil)

	out, err := newTestHandler(t, d, nil).Execute(context.Background(), &Input{Username: "octocat"})
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, TaskType, spans[0].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.Int("intake.total_score", out.Breakdown.TotalScore))
	assert.Contains(t, spans[0].Attributes(), attribute.String("github.username", "octocat"))
}
