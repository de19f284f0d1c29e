package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/colorprofile"
	"golang.org/x/sync/errgroup"

	"github.com/raphi011/drift/internal/config"
	"github.com/raphi011/drift/internal/divergence"
	"github.com/raphi011/drift/internal/events"
	"github.com/raphi011/drift/internal/git"
	"github.com/raphi011/drift/internal/log"
	"github.com/raphi011/drift/internal/ui/watch"
)

// runWatch runs the live view until the user quits or the context is
// cancelled. Branches are re-listed on every poll tick so new branches
// and moved tips show up without restarting.
func runWatch(ctx context.Context, cfg config.Config, repoRoot string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	broker := events.NewBroker()
	sched := newScheduler(cfg, repoRoot, broker)
	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer sched.Stop()

	if cfg.PersistCache {
		replayCache(ctx, repoRoot, sched)
	}

	model := watch.New(watch.Options{
		RepoName: filepath.Base(repoRoot),
		Broker:   broker,
		Cache:    sched.Cache(),
		RangeKey: git.RevRange,
		Pending:  sched.Pending,
	})

	program := tea.NewProgram(model,
		tea.WithColorProfile(colorprofile.Detect(os.Stdout, os.Environ())))

	// Quit the view when the surrounding context ends (signal handling
	// lives on the root context).
	go func() {
		<-ctx.Done()
		program.Quit()
	}()

	g, gctx := errgroup.WithContext(ctx)

	// Bridge cache updates from the bus into the program.
	g.Go(func() error {
		updated := broker.Subscribe(divergence.EventUpdated)
		defer broker.Unsubscribe(updated, divergence.EventUpdated)

		for {
			select {
			case <-gctx.Done():
				return nil
			case <-updated:
				program.Send(watch.UpdatedMsg{})
			}
		}
	})

	// Poll loop: list branches, hand the rows to the view, and request
	// a scheduling round on the bus.
	g.Go(func() error {
		ticker := time.NewTicker(cfg.PollInterval.Std())
		defer ticker.Stop()

		for {
			req, rows, err := buildScheduleRequest(gctx, repoRoot, cfg.RecentCount)
			if err != nil {
				log.FromContext(gctx).Debugf("branch listing failed: %v\n", err)
			} else {
				program.Send(watch.BranchesMsg{Request: req, Rows: rows})
				broker.Publish(events.Event{Type: divergence.EventSchedule, Payload: req})
			}

			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
			}
		}
	})

	_, runErr := program.Run()

	cancel()
	_ = g.Wait()
	sched.Stop()

	if cfg.PersistCache {
		saveCache(context.WithoutCancel(ctx), repoRoot, sched.Cache())
	}

	return runErr
}
