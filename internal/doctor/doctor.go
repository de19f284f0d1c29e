// Package doctor diagnoses problems with the persisted comparison cache.
//
// The cache is append-mostly and survives rewritten history, deleted
// branches, and version upgrades, so it can accumulate entries that no
// longer pay their way. Doctor finds them and, on request, removes them.
package doctor

import (
	"fmt"
	"time"

	"github.com/raphi011/drift/internal/git"
	"github.com/raphi011/drift/internal/store"
)

// Category groups issues by type.
type Category string

const (
	// CategoryMalformed marks entries whose key is not a range expression.
	CategoryMalformed Category = "malformed"
	// CategoryStale marks entries older than the retention window.
	CategoryStale Category = "stale"
	// CategoryUnknownTip marks entries referencing commits the repository
	// no longer has, usually after a rewrite or aggressive gc.
	CategoryUnknownTip Category = "unknown-tip"
)

// Issue represents one problem found in the cache.
type Issue struct {
	Key         string   // cache key
	Description string   // human-readable description
	Category    Category // issue category
}

// Report summarizes a cache check.
type Report struct {
	Valid  int
	Issues []Issue
}

// TipResolver reports whether a commit exists in the repository.
// It is a parameter so checks can run without a real repo in tests.
type TipResolver func(sha string) bool

// Check inspects every cache entry and reports the ones worth removing.
func Check(s *store.Store, now time.Time, resolve TipResolver) Report {
	var report Report

	for key, entry := range s.Entries {
		from, to, ok := git.SplitRevRange(key)
		if !ok {
			report.Issues = append(report.Issues, Issue{
				Key:         key,
				Description: fmt.Sprintf("key %q is not a range expression", key),
				Category:    CategoryMalformed,
			})
			continue
		}

		if age := now.Sub(entry.CachedAt); age > store.MaxEntryAge {
			report.Issues = append(report.Issues, Issue{
				Key:         key,
				Description: fmt.Sprintf("entry is %d days old", int(age.Hours()/24)),
				Category:    CategoryStale,
			})
			continue
		}

		if resolve != nil && (!resolve(from) || !resolve(to)) {
			report.Issues = append(report.Issues, Issue{
				Key:         key,
				Description: "references commits the repository no longer has",
				Category:    CategoryUnknownTip,
			})
			continue
		}

		report.Valid++
	}

	return report
}

// Fix removes the reported entries from the store and returns how many
// were dropped. The caller is responsible for saving the store.
func Fix(s *store.Store, issues []Issue) int {
	removed := 0
	for _, issue := range issues {
		if _, ok := s.Entries[issue.Key]; ok {
			delete(s.Entries, issue.Key)
			removed++
		}
	}
	return removed
}
