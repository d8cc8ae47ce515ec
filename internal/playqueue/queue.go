// Package playqueue implements a lazily extending play queue over a paginated remote
// collection.
//
// A Queue starts either from a bare source descriptor or from an already loaded first
// page. Fetch grows it: the first fetch of a bare queue is a head fetch that replaces
// the items, every later fetch appends the next page. At most one fetch is in flight per
// queue, and each completed fetch is applied in a single critical section, so readers
// always observe whole pages in fetch order.
package playqueue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"media-queue-service/internal/domain"
)

// ErrNoFetcher is returned when a queue that may need to paginate has no fetcher.
var ErrNoFetcher = errors.New("playqueue: fetcher is required")

// seed is the construction-time state that Reset restores.
type seed struct {
	items    []domain.QueueItem
	cursor   int
	nextPage string
	initial  bool
}

// Queue is an ordered, growable list of playable items with a single cursor.
// All methods are safe for concurrent use.
type Queue struct {
	source  domain.Source
	fetcher domain.PageFetcher
	logger  *zap.Logger
	seed    seed

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	items      []domain.QueueItem
	cursor     int
	nextPage   string
	state      FetchState
	initial    bool
	lastErr    error
	generation uint64
	inflight   context.CancelFunc
	disposed   bool
	listeners  []Listener
}

// New creates an empty queue for the given source. The first Fetch is a head fetch.
func New(src domain.Source, fetcher domain.PageFetcher, logger *zap.Logger) (*Queue, error) {
	if fetcher == nil {
		return nil, ErrNoFetcher
	}

	return newQueue(src, fetcher, logger, seed{cursor: -1, initial: true}), nil
}

// NewFromPage creates a queue whose first page is already known, with the cursor at
// index. The first Fetch requests the page after it.
func NewFromPage(src domain.Source, page *domain.Page, index int, fetcher domain.PageFetcher, logger *zap.Logger) (*Queue, error) {
	if page == nil {
		page = &domain.Page{}
	}
	if page.HasNextPage() && fetcher == nil {
		return nil, ErrNoFetcher
	}

	items := make([]domain.QueueItem, len(page.Items))
	copy(items, page.Items)

	return newQueue(src, fetcher, logger, seed{
		items:    items,
		cursor:   clampCursor(index, len(items)),
		nextPage: page.NextPage,
	}), nil
}

// NewSingle creates a queue holding one already fetched stream.
func NewSingle(item domain.QueueItem, logger *zap.Logger) *Queue {
	src := domain.Source{ServiceID: item.ServiceID, URL: item.URL}

	return newQueue(src, nil, logger, seed{
		items:  []domain.QueueItem{item},
		cursor: 0,
	})
}

func newQueue(src domain.Source, fetcher domain.PageFetcher, logger *zap.Logger, s seed) *Queue {
	ctx, cancel := context.WithCancel(context.Background())

	q := &Queue{
		source:  src,
		fetcher: fetcher,
		logger: logger.With(
			zap.Int("service_id", src.ServiceID),
			zap.String("url", src.URL),
		),
		seed:   s,
		ctx:    ctx,
		cancel: cancel,
	}
	q.restoreLocked()

	return q
}

// Source returns the collection descriptor the queue was built for.
func (q *Queue) Source() domain.Source {
	return q.source
}

// Listen registers a listener for queue changes.
func (q *Queue) Listen(l Listener) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.listeners = append(q.listeners, l)
}

// Fetch dispatches the next fetch and returns immediately.
//
// The returned channel receives exactly one Result and is then closed. ok is false and
// the channel nil when nothing was dispatched: a fetch is already in flight, the
// collection is exhausted, or the queue was disposed.
func (q *Queue) Fetch() (<-chan Result, bool) {
	q.mu.Lock()

	if q.disposed {
		q.mu.Unlock()
		return nil, false
	}

	switch q.state {
	case StateFetching:
		q.mu.Unlock()
		q.logger.Debug("fetch ignored, another fetch is in flight")

		return nil, false
	case StateExhausted:
		q.mu.Unlock()
		return nil, false
	}

	if !q.initial && q.nextPage == "" {
		q.state = StateExhausted
		ev := q.eventLocked(EventExhausted, nil)
		q.mu.Unlock()
		q.notify(ev)

		return nil, false
	}

	kind := FetchNextPage
	if q.initial {
		kind = FetchHead
	}
	token := q.nextPage
	gen := q.generation

	ctx, cancel := context.WithCancel(q.ctx)
	q.inflight = cancel
	q.state = StateFetching
	ev := q.eventLocked(EventFetchStarted, nil)
	q.mu.Unlock()

	q.notify(ev)
	q.logger.Debug("fetch dispatched",
		zap.String("kind", kind.String()),
		zap.String("page", token),
	)

	done := make(chan Result, 1)
	go q.run(ctx, cancel, kind, token, gen, done)

	return done, true
}

// run executes one fetch off the caller's goroutine and applies its result.
func (q *Queue) run(ctx context.Context, cancel context.CancelFunc, kind FetchKind, token string, gen uint64, done chan<- Result) {
	defer close(done)
	defer cancel()

	start := time.Now()

	var (
		page *domain.Page
		err  error
	)
	if kind == FetchHead {
		page, err = q.fetcher.FetchHead(ctx, q.source)
	} else {
		page, err = q.fetcher.FetchPage(ctx, q.source, token)
	}
	if err == nil && page == nil {
		err = fmt.Errorf("empty %s result: %w", kind, domain.ErrMalformedResponse)
	}

	fetchDuration.WithLabelValues(kind.String()).Observe(time.Since(start).Seconds())

	res, ev := q.apply(kind, gen, page, err)
	fetchesTotal.WithLabelValues(kind.String(), outcome(res)).Inc()

	if ev != nil {
		q.notify(*ev)
	}

	done <- res
}

// apply mutates the queue with a completed fetch in one critical section.
func (q *Queue) apply(kind FetchKind, gen uint64, page *domain.Page, err error) (Result, *Event) {
	q.mu.Lock()
	defer q.mu.Unlock()

	res := Result{Kind: kind, Err: err}

	if q.disposed || gen != q.generation {
		res.Discarded = true
		res.State = q.state
		q.logger.Debug("discarding stale fetch result",
			zap.String("kind", kind.String()),
			zap.Bool("disposed", q.disposed),
		)

		return res, nil
	}
	q.inflight = nil

	if err != nil {
		q.state = StateFailed
		q.lastErr = err
		res.State = q.state
		q.logger.Warn("fetch failed",
			zap.String("kind", kind.String()),
			zap.Error(err),
		)
		ev := q.eventLocked(EventFetchFailed, &res)

		return res, &ev
	}

	evType := EventItemsAppended
	if kind == FetchHead {
		q.items = make([]domain.QueueItem, len(page.Items))
		copy(q.items, page.Items)
		q.initial = false
		evType = EventItemsReplaced
	} else {
		q.items = append(q.items, page.Items...)
	}
	q.cursor = clampCursor(q.cursor, len(q.items))
	q.nextPage = page.NextPage
	q.lastErr = nil

	q.state = StateIdle
	if page.NextPage == "" {
		q.state = StateExhausted
	}

	res.Added = len(page.Items)
	res.ItemErrors = page.Errors
	res.State = q.state

	if len(page.Errors) > 0 {
		q.logger.Info("page applied with item errors",
			zap.String("kind", kind.String()),
			zap.Int("added", res.Added),
			zap.Int("item_errors", len(page.Errors)),
		)
	} else {
		q.logger.Debug("page applied",
			zap.String("kind", kind.String()),
			zap.Int("added", res.Added),
			zap.Int("size", len(q.items)),
		)
	}

	ev := q.eventLocked(evType, &res)

	return res, &ev
}

// Current returns the item at the cursor.
func (q *Queue) Current() (domain.QueueItem, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.cursor < 0 || q.cursor >= len(q.items) {
		return domain.QueueItem{}, false
	}

	return q.items[q.cursor], true
}

// Advance moves the cursor to the next item. At the tail it reports whether more
// pages may still arrive.
func (q *Queue) Advance() Move {
	q.mu.Lock()

	if q.cursor+1 >= len(q.items) {
		complete := q.completeLocked()
		q.mu.Unlock()

		if complete {
			return EndOfQueue
		}

		return AwaitingFetch
	}

	q.cursor++
	ev := q.eventLocked(EventCursorMoved, nil)
	q.mu.Unlock()
	q.notify(ev)

	return Moved
}

// Retreat moves the cursor to the previous item.
func (q *Queue) Retreat() Move {
	q.mu.Lock()

	if q.cursor <= 0 {
		q.mu.Unlock()
		return StartOfQueue
	}

	q.cursor--
	ev := q.eventLocked(EventCursorMoved, nil)
	q.mu.Unlock()
	q.notify(ev)

	return Moved
}

// Size returns the number of items known so far.
func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.items)
}

// Cursor returns the index of the current item, -1 when the queue is empty.
func (q *Queue) Cursor() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.cursor
}

// State returns the current fetch state.
func (q *Queue) State() FetchState {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.state
}

// Items returns a copy of the items known so far.
func (q *Queue) Items() []domain.QueueItem {
	q.mu.Lock()
	defer q.mu.Unlock()

	items := make([]domain.QueueItem, len(q.items))
	copy(items, q.items)

	return items
}

// Snapshot is a consistent copy of a queue's observable state.
type Snapshot struct {
	Source   domain.Source
	Items    []domain.QueueItem
	Cursor   int
	State    FetchState
	NextPage string
	Initial  bool
	LastErr  error
}

// Snapshot returns a consistent copy of the queue's state.
func (q *Queue) Snapshot() Snapshot {
	q.mu.Lock()
	defer q.mu.Unlock()

	items := make([]domain.QueueItem, len(q.items))
	copy(items, q.items)

	return Snapshot{
		Source:   q.source,
		Items:    items,
		Cursor:   q.cursor,
		State:    q.state,
		NextPage: q.nextPage,
		Initial:  q.initial,
		LastErr:  q.lastErr,
	}
}

// Reset restores the queue to its construction-time state. An in-flight fetch is
// cancelled and its result discarded.
func (q *Queue) Reset() {
	q.mu.Lock()

	if q.disposed {
		q.mu.Unlock()
		return
	}

	q.generation++
	if q.inflight != nil {
		q.inflight()
		q.inflight = nil
	}
	q.restoreLocked()
	ev := q.eventLocked(EventReset, nil)
	q.mu.Unlock()

	q.logger.Debug("queue reset")
	q.notify(ev)
}

// Dispose cancels any in-flight fetch. Results arriving afterwards are discarded and
// Fetch becomes a no-op. Navigation keeps working on the items already known.
func (q *Queue) Dispose() {
	q.mu.Lock()
	if q.disposed {
		q.mu.Unlock()
		return
	}
	q.disposed = true
	q.inflight = nil
	q.listeners = nil
	q.mu.Unlock()

	q.cancel()
	q.logger.Debug("queue disposed")
}

// Disposed returns true once Dispose was called.
func (q *Queue) Disposed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.disposed
}

func (q *Queue) restoreLocked() {
	q.items = make([]domain.QueueItem, len(q.seed.items))
	copy(q.items, q.seed.items)
	q.cursor = q.seed.cursor
	q.nextPage = q.seed.nextPage
	q.initial = q.seed.initial
	q.state = StateIdle
	q.lastErr = nil
}

// completeLocked reports whether no further items can ever arrive.
func (q *Queue) completeLocked() bool {
	return q.state == StateExhausted || (!q.initial && q.nextPage == "")
}

func (q *Queue) eventLocked(t EventType, res *Result) Event {
	return Event{
		Type:   t,
		Size:   len(q.items),
		Cursor: q.cursor,
		State:  q.state,
		Result: res,
	}
}

func (q *Queue) notify(ev Event) {
	q.mu.Lock()
	listeners := make([]Listener, len(q.listeners))
	copy(listeners, q.listeners)
	q.mu.Unlock()

	for _, l := range listeners {
		l(ev)
	}
}

func clampCursor(cursor, size int) int {
	switch {
	case size == 0:
		return -1
	case cursor < 0:
		return 0
	case cursor >= size:
		return size - 1
	default:
		return cursor
	}
}

func outcome(res Result) string {
	switch {
	case res.Discarded:
		return "discarded"
	case res.Err != nil:
		return "failed"
	default:
		return "applied"
	}
}
