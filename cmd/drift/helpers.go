package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/raphi011/drift/internal/config"
	"github.com/raphi011/drift/internal/divergence"
	"github.com/raphi011/drift/internal/events"
	"github.com/raphi011/drift/internal/git"
	"github.com/raphi011/drift/internal/log"
	"github.com/raphi011/drift/internal/store"
)

// gitComparer adapts git rev-list counting to the scheduler's Comparer.
// An unparsable rev-list answer yields a nil result without an error, so
// the scheduler skips caching it.
func gitComparer() divergence.Comparer {
	return divergence.ComparerFunc(func(ctx context.Context, repoPath, revRange string) (*divergence.Result, error) {
		ahead, behind, ok, err := git.CountDivergence(ctx, repoPath, revRange)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		return &divergence.Result{Ahead: ahead, Behind: behind}, nil
	})
}

// newScheduler wires a scheduler for the repo with the configured idle
// delay between comparisons.
func newScheduler(cfg config.Config, repoRoot string, broker *events.Broker) *divergence.Scheduler {
	queue := divergence.NewQueue(divergence.WithIdleDelay(cfg.IdleDelay.Std()))
	return divergence.NewScheduler(repoRoot, broker, gitComparer(), git.RevRange,
		divergence.WithQueue(queue))
}

// resolveRepoRoot resolves the repository root containing dir, defaulting
// to the working directory.
func resolveRepoRoot(ctx context.Context, dir string) (string, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		dir = wd
	}
	root, err := git.RepoRoot(ctx, dir)
	if err != nil {
		return "", fmt.Errorf("not inside a git repository: %w", err)
	}
	return root, nil
}

func toDivergenceBranch(b git.Branch) divergence.Branch {
	return divergence.Branch{Name: b.Name, Tip: b.Tip}
}

// buildScheduleRequest assembles a scheduling round for the repo. Rows
// holds every branch except the checked out one, in recency order, for
// display. The request prioritizes the default branch, then the most
// recently active branches, then the rest.
func buildScheduleRequest(ctx context.Context, repoRoot string, recentCount int) (divergence.ScheduleRequest, []divergence.Branch, error) {
	current, err := git.CurrentBranch(ctx, repoRoot)
	if err != nil {
		return divergence.ScheduleRequest{}, nil, err
	}

	branches, err := git.ListBranches(ctx, repoRoot)
	if err != nil {
		return divergence.ScheduleRequest{}, nil, err
	}

	var rows []divergence.Branch
	for _, b := range branches {
		if b.Name == current.Name {
			continue
		}
		rows = append(rows, toDivergenceBranch(b))
	}

	req := divergence.ScheduleRequest{Current: toDivergenceBranch(current)}

	if def, ok := git.DefaultBranch(ctx, repoRoot); ok && def.Name != current.Name {
		b := toDivergenceBranch(def)
		req.Default = &b
	}

	recent := rows
	if recentCount >= 0 && len(recent) > recentCount {
		recent = recent[:recentCount]
	}
	req.Recent = recent
	req.All = rows

	return req, rows, nil
}

// saveCache folds the session's results into the on-disk cache under the
// repo's lock file. Failures are logged, never fatal.
func saveCache(ctx context.Context, repoRoot string, cache *divergence.Cache) {
	logger := log.FromContext(ctx)

	s, unlock, err := store.LoadWithLock(repoRoot)
	if err != nil {
		logger.Debugf("skip cache save: %v\n", err)
		return
	}
	defer unlock()

	s.Merge(cache, time.Now())
	if err := store.Save(repoRoot, s); err != nil {
		logger.Debugf("cache save failed: %v\n", err)
	}
}

// replayCache seeds the scheduler's cache from persisted results so this
// session starts warm. Missing or unreadable caches are ignored.
func replayCache(ctx context.Context, repoRoot string, sched *divergence.Scheduler) {
	s, err := store.Load(repoRoot)
	if err != nil {
		log.FromContext(ctx).Debugf("skip cache replay: %v\n", err)
		return
	}
	if n := s.Replay(sched.Insert); n > 0 {
		log.FromContext(ctx).Debugf("replayed %d cached comparisons\n", n)
	}
}

func shortTip(tip string) string {
	if len(tip) > 7 {
		return tip[:7]
	}
	return tip
}
