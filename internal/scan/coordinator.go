package scan

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/devscope/devscope/internal/metrics"
	"github.com/devscope/devscope/internal/project"
	"github.com/devscope/devscope/internal/scanner"
	"github.com/devscope/devscope/internal/store"
)

// ErrScanInProgress is returned by Start when a session is already active.
// The running session is left untouched.
var ErrScanInProgress = errors.New("scan already in progress")

// subscriberBuffer bounds each subscriber channel. Delivery is best
// effort: when a subscriber falls this far behind, new events are dropped
// for it rather than stalling the scan.
const subscriberBuffer = 64

// session is one exclusive in-flight discovery operation.
type session struct {
	id        string
	cancel    context.CancelFunc
	cancelled atomic.Bool
	total     int // touched only by the scan goroutine
	startedAt time.Time
}

// Coordinator drives the scanner as a cancellable, single-flight,
// progress-streaming session. At most one session is active at a time;
// a competing Start is rejected synchronously.
type Coordinator struct {
	scanner  *scanner.Scanner
	store    store.ProjectStore
	dirs     []string
	maxDepth int
	log      *slog.Logger

	mu      sync.Mutex
	current *session
	subs    map[int]chan Event
	nextSub int
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithDefaults sets the base directories and depth used when Start is
// called without explicit ones.
func WithDefaults(dirs []string, maxDepth int) Option {
	return func(c *Coordinator) {
		c.dirs = dirs
		c.maxDepth = maxDepth
	}
}

// WithLogger sets the structured logger. Defaults to slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) { c.log = l }
}

func NewCoordinator(sc *scanner.Scanner, st store.ProjectStore, opts ...Option) *Coordinator {
	c := &Coordinator{
		scanner:  sc,
		store:    st,
		maxDepth: 3,
		log:      slog.Default(),
		subs:     make(map[int]chan Event),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Subscribe registers a progress listener. The returned cancel func must
// be called to release the channel.
func (c *Coordinator) Subscribe() (<-chan Event, func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	ch := make(chan Event, subscriberBuffer)
	c.subs[id] = ch
	c.mu.Unlock()
	return ch, func() {
		c.mu.Lock()
		if sub, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(sub)
		}
		c.mu.Unlock()
	}
}

// Broadcast publishes an event to all subscribers independent of any
// active session. Periodic external rescans use it to announce
// out-of-band project updates.
func (c *Coordinator) Broadcast(ev Event) {
	c.mu.Lock()
	for _, ch := range c.subs {
		select {
		case ch <- ev:
		default:
			// Slow subscriber: drop rather than stall.
		}
	}
	c.mu.Unlock()
}

// Start begins a scan session over dirs (or the configured defaults) and
// returns once the session is launched. A Start while another session is
// scanning is rejected with ErrScanInProgress and a conflict event, and
// does not disturb the running session.
func (c *Coordinator) Start(dirs []string, maxDepth int) error {
	if len(dirs) == 0 {
		dirs = c.dirs
	}
	if maxDepth <= 0 {
		maxDepth = c.maxDepth
	}

	c.mu.Lock()
	if c.current != nil {
		c.mu.Unlock()
		c.Broadcast(Event{Type: EventScanError, Reason: ReasonConflict})
		return ErrScanInProgress
	}
	ctx, cancel := context.WithCancel(context.Background())
	sess := &session{id: uuid.NewString(), cancel: cancel, startedAt: time.Now()}
	c.current = sess
	c.mu.Unlock()

	metrics.IncScanStarted()
	c.Broadcast(Event{Type: EventScanStarted})
	go c.run(ctx, sess, dirs, maxDepth)
	return nil
}

// Stop cancels the current session, if any. Cancellation is cooperative:
// the scan unwinds at the next safe point and emits scan-error{cancelled}.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	sess := c.current
	c.mu.Unlock()
	if sess == nil {
		return
	}
	sess.cancelled.Store(true)
	sess.cancel()
}

// Active reports whether a session is scanning.
func (c *Coordinator) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil
}

func (c *Coordinator) run(ctx context.Context, sess *session, dirs []string, maxDepth int) {
	defer sess.cancel()

	err := c.scanner.ScanForest(ctx, dirs, maxDepth, func(cand *project.Candidate) error {
		// Safe point: check cancellation before persisting or emitting.
		if sess.cancelled.Load() {
			return context.Canceled
		}
		saved := c.save(ctx, cand)
		sess.total++
		metrics.IncProjectDiscovered()
		c.Broadcast(Event{
			Type:  EventProjectDiscovered,
			Path:  cand.Path,
			Saved: saved,
			Total: sess.total,
		})
		return nil
	})

	c.mu.Lock()
	c.current = nil
	c.mu.Unlock()
	metrics.ObserveScanDuration(time.Since(sess.startedAt).Seconds())

	switch {
	case sess.cancelled.Load() || errors.Is(err, context.Canceled):
		metrics.IncScanCancelled()
		c.log.Info("scan cancelled", "session", sess.id, "discovered", sess.total)
		c.Broadcast(Event{Type: EventScanError, Reason: ReasonCancelled, Total: sess.total})
	case err != nil:
		c.log.Error("scan failed", "session", sess.id, "error", err)
		c.Broadcast(Event{Type: EventScanError, Reason: err.Error(), Total: sess.total})
	default:
		metrics.IncScanCompleted()
		c.log.Info("scan completed", "session", sess.id, "discovered", sess.total)
		c.Broadcast(Event{Type: EventScanCompleted, Total: sess.total})
	}
}

// save hands the discovery to the persistence collaborator. Persistence
// problems degrade to an unsaved emission; the scan itself continues.
func (c *Coordinator) save(ctx context.Context, cand *project.Candidate) *project.Saved {
	if c.store == nil {
		return nil
	}
	saved, err := c.store.Save(ctx, *cand)
	if err != nil {
		c.log.Warn("failed to persist project", "path", cand.Path, "error", err)
		return nil
	}
	return &saved
}
