package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/raphi011/drift/internal/config"
	"github.com/raphi011/drift/internal/divergence"
	"github.com/raphi011/drift/internal/events"
	"github.com/raphi011/drift/internal/git"
	"github.com/raphi011/drift/internal/log"
	"github.com/raphi011/drift/internal/output"
	"github.com/raphi011/drift/internal/ui/progress"
	"github.com/raphi011/drift/internal/ui/static"
)

// BranchDisplay holds one branch row for display
type BranchDisplay struct {
	Branch string `json:"branch"`
	Tip    string `json:"tip"`
	Ahead  *int   `json:"ahead"`
	Behind *int   `json:"behind"`
}

type statusOptions struct {
	jsonOutput bool
	plain      bool
	noCache    bool
	timeout    time.Duration

	// spin, when set, is stopped once the round has drained so the
	// animation never interleaves with the printed results.
	spin *progress.Spinner
}

// runStatus runs one full comparison round and prints the results.
func runStatus(ctx context.Context, cfg config.Config, repoRoot string, opts statusOptions) error {
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	broker := events.NewBroker()
	sched := newScheduler(cfg, repoRoot, broker)
	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer sched.Stop()

	persist := cfg.PersistCache && !opts.noCache
	if persist {
		replayCache(ctx, repoRoot, sched)
	}

	req, rows, err := buildScheduleRequest(ctx, repoRoot, cfg.RecentCount)
	if err != nil {
		return err
	}

	updated := broker.Subscribe(divergence.EventUpdated)
	defer broker.Unsubscribe(updated, divergence.EventUpdated)

	broker.Publish(events.Event{Type: divergence.EventSchedule, Payload: req})

	err = awaitDrain(ctx, sched, updated)
	if opts.spin != nil {
		opts.spin.Stop()
	}
	if err != nil {
		return err
	}

	if persist {
		saveCache(ctx, repoRoot, sched.Cache())
	}

	return printStatus(ctx, req.Current, rows, sched.Cache(), opts)
}

// awaitDrain blocks until the round has settled: nothing pending and no
// update for a short grace window, covering the comparison in flight.
func awaitDrain(ctx context.Context, sched *divergence.Scheduler, updated <-chan events.Event) error {
	const settle = 200 * time.Millisecond

	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	lastUpdate := time.Now()
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timed out waiting for comparisons: %w", ctx.Err())
		case <-updated:
			lastUpdate = time.Now()
		case <-ticker.C:
			if sched.Pending() == 0 && time.Since(lastUpdate) >= settle {
				return nil
			}
		}
	}
}

func printStatus(ctx context.Context, current divergence.Branch, rows []divergence.Branch, cache *divergence.Cache, opts statusOptions) error {
	printer := output.FromContext(ctx)

	displays := make([]BranchDisplay, 0, len(rows))
	for _, row := range rows {
		d := BranchDisplay{Branch: row.Name, Tip: shortTip(row.Tip)}
		if r, ok := cache.Get(git.RevRange(current.Tip, row.Tip)); ok {
			ahead, behind := r.Ahead, r.Behind
			d.Ahead, d.Behind = &ahead, &behind
		}
		displays = append(displays, d)
	}

	if opts.jsonOutput {
		enc := json.NewEncoder(printer.Writer())
		enc.SetIndent("", "  ")
		return enc.Encode(displays)
	}

	if opts.plain {
		for _, d := range displays {
			printer.Printf("%s\t%s\t%s\n", d.Branch, countOrDash(d.Ahead), countOrDash(d.Behind))
		}
		return nil
	}

	log.FromContext(ctx).Printf("Branches compared against %s\n\n", current.Name)

	tableRows := make([][]string, 0, len(displays))
	for _, d := range displays {
		tableRows = append(tableRows, []string{d.Branch, countOrDash(d.Ahead), countOrDash(d.Behind), d.Tip})
	}
	printer.Printf("%s", static.RenderTable(
		[]string{"BRANCH", "AHEAD", "BEHIND", "TIP"}, tableRows, 1, 2))
	return nil
}

func countOrDash(n *int) string {
	if n == nil {
		return "-"
	}
	return strconv.Itoa(*n)
}
