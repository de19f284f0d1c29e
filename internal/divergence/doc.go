// Package divergence keeps ahead/behind commit counts between a repository's
// branches up to date in the background.
//
// Counting divergence requires an external git invocation per branch pair,
// which is too expensive to repeat on every refresh. The package serializes
// these comparisons through a single-worker [Queue], caches every computed
// result by its symmetric-difference range key in a write-once [Cache], and
// publishes an update event whenever a comparison produces a new value.
//
// A [Scheduler] owns one cache and one queue and is scoped to a single
// repository for its entire lifetime. It reacts to three broker events:
// insert a known value, schedule comparisons for a branch set, and pause.
// Which branches are interesting is the caller's policy; the scheduler only
// works through whatever branch set each schedule request carries.
package divergence
