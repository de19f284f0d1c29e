package divergence

import "github.com/raphi011/drift/internal/events"

// Broker event types the scheduler consumes and produces.
const (
	// EventInsert carries an [InsertRequest]: a divergence value already
	// known through another path (e.g. a prior session) to warm the cache.
	EventInsert events.Type = "divergence.insert"

	// EventSchedule carries a [ScheduleRequest] asking for a new round of
	// comparisons against the given branch set.
	EventSchedule events.Type = "divergence.schedule"

	// EventPause asks the scheduler to cancel all outstanding comparisons,
	// e.g. because its repository is no longer the active one. No payload.
	EventPause events.Type = "divergence.pause"

	// EventUpdated carries an [Update] and is published after a comparison
	// completed with a genuine new value.
	EventUpdated events.Type = "divergence.updated"
)

// Branch identifies a branch by name and tip commit hash. Only the tip
// takes part in comparisons; the name is carried for display and logging.
type Branch struct {
	Name string
	Tip  string
}

// InsertRequest is the payload of [EventInsert].
type InsertRequest struct {
	From  string
	To    string
	Value Result
}

// ScheduleRequest is the payload of [EventSchedule]. The caller decides
// which branches are interesting: the default branch (if any) plus the
// recent and remaining branch lists, compared against Current's tip.
// Duplicates across the lists are fine, the scheduler deduplicates.
type ScheduleRequest struct {
	Current Branch
	Default *Branch
	Recent  []Branch
	All     []Branch
}

// Update is the payload of [EventUpdated]. Cache is the scheduler's live
// cache, mutated in place as further comparisons complete.
type Update struct {
	RepoPath string
	Cache    *Cache
}
