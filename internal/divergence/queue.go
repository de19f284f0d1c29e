package divergence

import (
	"context"
	"runtime"
	"sync"
	"time"
)

// Job is a unit of comparison work. Run returns the computed result, or nil
// when the comparison produced no usable value.
type Job struct {
	Key string
	Run func(ctx context.Context) (*Result, error)
}

// NotificationKind classifies a queue notification.
type NotificationKind int

const (
	// KindSuccess reports a job that completed normally.
	KindSuccess NotificationKind = iota
	// KindError reports a job that failed. The queue keeps running.
	KindError
	// KindEnded reports the queue transitioning to the ended state.
	KindEnded
)

// Notification is emitted by the queue worker once per completed job and
// once per End transition.
type Notification struct {
	Kind   NotificationKind
	Key    string
	Result *Result // success only, nil when the job yielded no usable value
	Err    error   // error cause, or the optional End reason
}

// defaultNotifyBuffer bounds the notification channel. The consumer reads
// continuously while running, the buffer only covers shutdown races.
const defaultNotifyBuffer = 64

// Queue executes jobs one at a time in submission order.
//
// Push never runs a job synchronously: jobs are dispatched by a single
// worker goroutine launched by Start. The worker yields the processor
// before each job and sleeps for a configurable idle delay after each one,
// so a burst of comparisons never starves interactive work.
//
// End atomically discards every job still queued and bumps a generation
// token: a job already executing is allowed to finish, but its completion
// notification is dropped because it belongs to a cancelled round. After
// End, Push silently drops jobs until Start resumes the queue.
type Queue struct {
	mu          sync.Mutex
	jobs        []Job
	gen         uint64
	ended       bool
	running     bool
	inFlight    bool
	inFlightGen uint64

	wake      chan struct{}
	notifs    chan Notification
	idleDelay time.Duration
}

// QueueOption configures a Queue.
type QueueOption func(*Queue)

// WithIdleDelay sets the pause between dispatched jobs.
func WithIdleDelay(d time.Duration) QueueOption {
	return func(q *Queue) { q.idleDelay = d }
}

// NewQueue creates a queue. Jobs may be pushed before Start; they are
// dispatched once the worker is running.
func NewQueue(opts ...QueueOption) *Queue {
	q := &Queue{
		wake:   make(chan struct{}, 1),
		notifs: make(chan Notification, defaultNotifyBuffer),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Notifications returns the channel the worker reports on.
func (q *Queue) Notifications() <-chan Notification {
	return q.notifs
}

// Len returns the number of jobs waiting to be executed. The job
// currently executing is not counted; see [Queue.InFlight].
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// InFlight reports whether the worker is executing a job of the current
// round. A job surviving from an ended round is not reported: its result
// will be discarded, so no caller should wait on it.
func (q *Queue) InFlight() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.inFlight && q.inFlightGen == q.gen
}

// Push enqueues a job and returns immediately. Dropped silently if the
// queue has been ended and not resumed; resubmission is the caller's
// responsibility, not the queue's.
func (q *Queue) Push(job Job) {
	q.mu.Lock()
	if q.ended {
		q.mu.Unlock()
		return
	}
	q.jobs = append(q.jobs, job)
	q.mu.Unlock()

	q.signal()
}

// Start begins or resumes dispatching. Idempotent; the worker goroutine is
// launched at most once and runs until ctx is cancelled.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	q.ended = false
	spawn := !q.running
	if spawn {
		q.running = true
	}
	q.mu.Unlock()

	if spawn {
		go q.worker(ctx)
	}
	q.signal()
}

// Resume clears the ended state so Push accepts jobs again, without
// touching the worker. Used when jobs should queue up before Start.
func (q *Queue) Resume() {
	q.mu.Lock()
	q.ended = false
	q.mu.Unlock()
}

// End cancels every job still queued, so the observed queue length drops to
// zero, and emits an ended notification carrying the optional reason.
// A job already executing finishes, but its notification is discarded.
// Returns the number of discarded jobs.
func (q *Queue) End(reason error) int {
	q.mu.Lock()
	if q.ended {
		q.mu.Unlock()
		return 0
	}
	discarded := len(q.jobs)
	q.jobs = nil
	q.gen++
	q.ended = true
	q.mu.Unlock()

	q.notify(Notification{Kind: KindEnded, Err: reason})
	return discarded
}

// signal wakes the worker without blocking.
func (q *Queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// notify delivers a notification without blocking. The buffer is large
// enough that drops only occur when the consumer has already shut down.
func (q *Queue) notify(n Notification) {
	select {
	case q.notifs <- n:
	default:
	}
}

// next pops the head job together with the generation it belongs to.
func (q *Queue) next() (Job, uint64, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.ended || len(q.jobs) == 0 {
		return Job{}, 0, false
	}
	job := q.jobs[0]
	q.jobs = q.jobs[1:]
	q.inFlight = true
	q.inFlightGen = q.gen
	return job, q.gen, true
}

// finish marks the in-flight job as completed.
func (q *Queue) finish() {
	q.mu.Lock()
	q.inFlight = false
	q.mu.Unlock()
}

// stale reports whether gen belongs to a round cancelled since dispatch.
func (q *Queue) stale(gen uint64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return gen != q.gen
}

func (q *Queue) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-q.wake:
		}

		for {
			job, gen, ok := q.next()
			if !ok {
				break
			}

			// Let pending interactive work run before the expensive call
			runtime.Gosched()

			result, err := job.Run(ctx)
			if ctx.Err() != nil {
				q.finish()
				return
			}
			if q.stale(gen) {
				// Round was cancelled while the job was in flight
				q.finish()
				continue
			}

			if err != nil {
				q.notify(Notification{Kind: KindError, Key: job.Key, Err: err})
			} else {
				q.notify(Notification{Kind: KindSuccess, Key: job.Key, Result: result})
			}
			q.finish()

			if q.idleDelay > 0 {
				select {
				case <-ctx.Done():
					return
				case <-time.After(q.idleDelay):
				}
			}
		}
	}
}
