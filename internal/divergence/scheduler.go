package divergence

import (
	"context"
	"fmt"
	"sync"

	"github.com/raphi011/drift/internal/events"
	"github.com/raphi011/drift/internal/log"
)

// Comparer performs the expensive external comparison for one
// symmetric-difference range. A nil result with nil error means "no usable
// result": nothing is cached and no update is published.
type Comparer interface {
	Divergence(ctx context.Context, repoPath, revRange string) (*Result, error)
}

// ComparerFunc adapts a function to the Comparer interface.
type ComparerFunc func(ctx context.Context, repoPath, revRange string) (*Result, error)

// Divergence calls f.
func (f ComparerFunc) Divergence(ctx context.Context, repoPath, revRange string) (*Result, error) {
	return f(ctx, repoPath, revRange)
}

// RangeKeyFunc builds the order-sensitive range expression for a pair of
// tips. The expression doubles as the cache key, so semantically equal
// pairs must map to the same string.
type RangeKeyFunc func(fromTip, toTip string) string

// Scheduler keeps one repository's divergence cache up to date. It owns one
// [Cache] and one [Queue] for its entire lifetime and reacts to broker
// events: [EventInsert] warms the cache, [EventSchedule] starts a new
// comparison round that supersedes any previous one, [EventPause] cancels
// all outstanding work.
//
// Lifecycle is Created -> Started -> Stopped. Insert and Schedule work
// before Start (jobs just queue up unstarted), but completions can only be
// observed after Start wires the queue listeners. A stopped scheduler must
// not be reused.
type Scheduler struct {
	repoPath string
	broker   *events.Broker
	comparer Comparer
	rangeKey RangeKeyFunc

	cache *Cache
	queue *Queue

	mu      sync.Mutex
	started bool
	stopped bool
	ctx     context.Context
	cancel  context.CancelFunc
	busCh   <-chan events.Event
	done    chan struct{}
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithQueue replaces the scheduler's queue. Useful for tuning the idle
// delay between comparisons.
func WithQueue(q *Queue) SchedulerOption {
	return func(s *Scheduler) { s.queue = q }
}

// NewScheduler creates a scheduler scoped to the repository at repoPath.
func NewScheduler(repoPath string, broker *events.Broker, comparer Comparer, rangeKey RangeKeyFunc, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		repoPath: repoPath,
		broker:   broker,
		comparer: comparer,
		rangeKey: rangeKey,
		cache:    NewCache(),
		queue:    NewQueue(),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Cache returns the scheduler's cache.
func (s *Scheduler) Cache() *Cache {
	return s.cache
}

// Pending returns the number of comparisons still outstanding for the
// current round, including one that is executing right now.
func (s *Scheduler) Pending() int {
	n := s.queue.Len()
	if s.queue.InFlight() {
		n++
	}
	return n
}

// RepoPath returns the repository this scheduler is scoped to.
func (s *Scheduler) RepoPath() string {
	return s.repoPath
}

// Start subscribes to the broker, starts the queue worker and the
// scheduler's event loop. The scheduler runs until Stop is called or ctx is
// cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return fmt.Errorf("scheduler for %s already stopped", s.repoPath)
	}
	if s.started {
		return nil
	}
	s.started = true

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.busCh = s.broker.Subscribe(EventInsert, EventSchedule, EventPause)
	s.queue.Start(s.ctx)
	go s.run()
	return nil
}

// Stop tears the scheduler down: ends the queue, cancels the worker and
// event loop, and releases the broker subscription. Terminal.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	started := s.started
	s.mu.Unlock()

	if !started {
		close(s.done)
		return
	}

	s.queue.End(nil)
	s.cancel()
	<-s.done
	s.broker.Unsubscribe(s.busCh, EventInsert, EventSchedule, EventPause)
}

// Insert stores a divergence value already known through another path.
// Pure cache-warm: no job is scheduled, no update published, and an
// existing entry for the pair is never overwritten.
func (s *Scheduler) Insert(from, to string, value Result) {
	s.cache.Set(s.rangeKey(from, to), value)
}

// Schedule starts a new comparison round for the given branch set. Any
// previous round is cancelled first: stale requests for a branch set that
// no longer reflects the caller's interest are discarded, not left to
// finish. One job is pushed per branch tip whose pair with the current
// branch is not yet cached.
func (s *Scheduler) Schedule(req ScheduleRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}

	s.clearLocked()
	if s.started {
		s.queue.Start(s.ctx)
	} else {
		// Not dispatching yet; jobs queue up until Start
		s.queue.Resume()
	}

	from := req.Current.Tip
	if from == "" {
		return
	}

	candidates := make([]Branch, 0, 1+len(req.Recent)+len(req.All))
	if req.Default != nil {
		candidates = append(candidates, *req.Default)
	}
	candidates = append(candidates, req.Recent...)
	candidates = append(candidates, req.All...)

	// First pass drops tips whose pair is already cached; duplicates
	// survive until the set pass below. The order matters: an early dedupe
	// could change which job reaches the cache first.
	tips := make([]string, 0, len(candidates))
	for _, b := range candidates {
		if b.Tip == "" {
			continue
		}
		if !s.cache.Has(s.rangeKey(from, b.Tip)) {
			tips = append(tips, b.Tip)
		}
	}

	seen := make(map[string]bool, len(tips))
	for _, to := range tips {
		if seen[to] {
			continue
		}
		seen[to] = true
		s.pushJob(from, to)
	}
}

// Clear cancels all pending comparisons.
func (s *Scheduler) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

func (s *Scheduler) clearLocked() {
	if discarded := s.queue.End(nil); discarded > 0 {
		log.FromContext(s.logCtx()).Debugf("divergence: abandoned %d pending comparisons for %s\n", discarded, s.repoPath)
	}
}

// pushJob enqueues the comparison for one (from, to) pair.
func (s *Scheduler) pushJob(from, to string) {
	key := s.rangeKey(from, to)
	s.queue.Push(Job{
		Key: key,
		Run: func(ctx context.Context) (*Result, error) {
			// Recheck: another path may have filled the pair since the
			// round was scheduled
			if _, ok := s.cache.Get(key); ok {
				return nil, nil
			}

			result, err := s.comparer.Divergence(ctx, s.repoPath, key)
			if err != nil {
				return nil, err
			}
			if result == nil {
				log.FromContext(ctx).Debugf("divergence: no usable result for %s\n", key)
				return nil, nil
			}

			s.cache.Set(key, *result)
			return result, nil
		},
	})
}

// run is the scheduler's event loop. All broker events and queue
// notifications are handled here, on one goroutine.
func (s *Scheduler) run() {
	defer close(s.done)
	notifs := s.queue.Notifications()

	for {
		select {
		case <-s.ctx.Done():
			return
		case e, ok := <-s.busCh:
			if !ok {
				return
			}
			s.handleEvent(e)
		case n := <-notifs:
			s.handleNotification(n)
		}
	}
}

func (s *Scheduler) handleEvent(e events.Event) {
	switch e.Type {
	case EventInsert:
		if req, ok := e.Payload.(InsertRequest); ok {
			s.Insert(req.From, req.To, req.Value)
		}
	case EventSchedule:
		if req, ok := e.Payload.(ScheduleRequest); ok {
			s.Schedule(req)
		}
	case EventPause:
		s.Clear()
	}
}

func (s *Scheduler) handleNotification(n Notification) {
	l := log.FromContext(s.logCtx())

	switch n.Kind {
	case KindSuccess:
		if n.Result == nil {
			// Comparison yielded nothing to cache; already logged by the job
			return
		}
		s.broker.Publish(events.Event{
			Type:    EventUpdated,
			Payload: Update{RepoPath: s.repoPath, Cache: s.cache},
		})
	case KindError:
		l.Debugf("divergence: comparison %s failed: %v\n", n.Key, n.Err)
	case KindEnded:
		if n.Err != nil {
			l.Debugf("divergence: queue for %s ended: %v\n", s.repoPath, n.Err)
		}
	}
}

// logCtx returns the scheduler's context for logger retrieval, falling back
// to the background context before Start.
func (s *Scheduler) logCtx() context.Context {
	if s.ctx != nil {
		return s.ctx
	}
	return context.Background()
}
