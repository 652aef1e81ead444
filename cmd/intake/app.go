// cmd/intake/app.go
package main

import (
	"context"
	"fmt"
	"time"

	"recruit-intake/internal/common/cache"
	"recruit-intake/internal/common/config"
	"recruit-intake/internal/common/errors"
	"recruit-intake/internal/common/github"
	"recruit-intake/internal/common/logger"
	"recruit-intake/internal/models"
	vap "recruit-intake/internal/tasks/application/validate-application-profile"
	ws "recruit-intake/internal/tasks/application/write-scorecard"
	agp "recruit-intake/internal/tasks/profile/analyze-github-profile"

	"github.com/google/uuid"
)

// app is the state shared by the commands of one invocation.
type app struct {
	cfg     *config.Config
	log     logger.Logger
	runID   string
	command string
	closers []func() error
}

func (a *app) init(command, cfgFile string, debug, jsonLogs bool) error {
	var (
		cfg *config.Config
		err error
	)
	if cfgFile != "" {
		cfg, err = config.LoadFromFile(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return errors.NewConfigInvalidError(err.Error())
	}

	level := cfg.Logging.Level
	if debug {
		level = "debug"
	}
	format := cfg.Logging.Format
	if jsonLogs {
		format = "json"
	}

	a.cfg = cfg
	a.command = command
	a.runID = uuid.NewString()
	a.log = logger.NewStructured(level, format, cfg.Logging.Output).WithFields(map[string]interface{}{
		"runId":   a.runID,
		"command": command,
	})
	a.log.Debug("configuration loaded", map[string]interface{}{
		"environment": cfg.App.Environment,
		"cache":       cfg.Cache.Enabled,
		"root":        cfg.Applications.Root,
		"year":        cfg.Applications.Year,
	})
	return nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && a.log != nil {
			a.log.Warn("close failed", map[string]interface{}{"error": err.Error()})
		}
	}
	a.closers = nil
}

func (a *app) newDirectory() (*github.Client, error) {
	return github.NewClient(github.Config{
		Token:             a.cfg.GitHub.Token,
		BaseURL:           a.cfg.GitHub.BaseURL,
		UserAgent:         a.cfg.GitHub.UserAgent,
		Timeout:           config.GetDuration(a.cfg.GitHub.Timeout),
		RequestsPerSecond: a.cfg.GitHub.RequestsPerSecond,
		Burst:             a.cfg.GitHub.Burst,
	}, a.log)
}

// openScanCache connects to Redis. It returns nil without error when the
// cache is disabled.
func (a *app) openScanCache(ctx context.Context) (*cache.ScanCache, error) {
	if !a.cfg.Cache.Enabled {
		return nil, nil
	}

	rc := cache.NewRedis(a.cfg.Cache)
	err := retryWithBackoff(ctx, func() error {
		return rc.Ping(ctx)
	}, 3, 200*time.Millisecond, a.log, "redis connection")
	if err != nil {
		_ = rc.Close()
		return nil, errors.NewCacheUnavailableError(err)
	}
	a.closers = append(a.closers, rc.Close)

	ttl := time.Duration(a.cfg.Cache.TTL) * time.Second
	return cache.NewScanCache(rc.GetClient(), ttl, a.cfg.Cache.AsOfGranularity, a.log), nil
}

// requireTask fails when the task is switched off in the tasks section.
func (a *app) requireTask(taskType string) error {
	if !config.IsTaskEnabled(a.cfg, taskType) {
		return errors.NewConfigInvalidError(fmt.Sprintf("task %s is disabled", taskType))
	}
	return nil
}

func (a *app) newAnalyzer(ctx context.Context) (*agp.Handler, error) {
	if err := a.requireTask(agp.TaskType); err != nil {
		return nil, err
	}
	directory, err := a.newDirectory()
	if err != nil {
		return nil, errors.NewConfigInvalidError(err.Error())
	}

	// a nil *ScanCache must not reach the handler as a non-nil interface
	var scanCache agp.ScanCache
	sc, err := a.openScanCache(ctx)
	switch {
	case err != nil:
		a.log.Warn("scan cache disabled for this run", map[string]interface{}{"error": err.Error()})
	case sc != nil:
		scanCache = sc
	}

	return agp.NewHandler(agp.LoadConfig(a.cfg), directory, scanCache, a.log), nil
}

func (a *app) analyze(ctx context.Context, username string) (*agp.Output, error) {
	handler, err := a.newAnalyzer(ctx)
	if err != nil {
		return nil, err
	}
	return handler.Execute(ctx, &agp.Input{Username: username})
}

func (a *app) newValidator() (*vap.Handler, error) {
	if err := a.requireTask(vap.TaskType); err != nil {
		return nil, err
	}
	return vap.NewHandler(vap.LoadConfig(a.cfg), a.log), nil
}

func (a *app) writeScorecard(ctx context.Context, username string, breakdown models.ScoreBreakdown, year int) (*ws.Output, error) {
	if err := a.requireTask(ws.TaskType); err != nil {
		return nil, err
	}
	handler := ws.NewHandler(ws.LoadConfig(a.cfg), a.log)
	return handler.Execute(ctx, &ws.Input{
		Username:  username,
		Breakdown: breakdown,
		Year:      year,
	})
}

// retryWithBackoff attempts operation up to maxRetries times, doubling the
// delay between attempts.
func retryWithBackoff(ctx context.Context, operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err.Error(),
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}
