package playqueue

// FetchState is the pagination state of a queue.
type FetchState int

const (
	// StateIdle means no fetch is in flight and more pages may exist.
	StateIdle FetchState = iota
	// StateFetching means exactly one fetch is in flight.
	StateFetching
	// StateExhausted means the remote collection has no further pages.
	StateExhausted
	// StateFailed means the last fetch failed. Fetch retries it.
	StateFailed
)

// String returns the lower-case name of the state.
func (s FetchState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StateExhausted:
		return "exhausted"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FetchKind tells which variant of fetch was issued.
type FetchKind int

const (
	// FetchHead loads the first page and replaces the items.
	FetchHead FetchKind = iota
	// FetchNextPage loads a continuation page and appends it.
	FetchNextPage
)

// String returns the lower-case name of the fetch kind.
func (k FetchKind) String() string {
	if k == FetchHead {
		return "head"
	}

	return "next_page"
}

// Move is the outcome of a cursor movement.
type Move int

const (
	// Moved means the cursor changed.
	Moved Move = iota
	// AwaitingFetch means the cursor is at the tail but more pages may exist.
	AwaitingFetch
	// EndOfQueue means the cursor is at the tail of an exhausted collection.
	EndOfQueue
	// StartOfQueue means the cursor is already at the first item.
	StartOfQueue
)

// String returns the lower-case name of the move.
func (m Move) String() string {
	switch m {
	case Moved:
		return "moved"
	case AwaitingFetch:
		return "awaiting_fetch"
	case EndOfQueue:
		return "end_of_queue"
	case StartOfQueue:
		return "start_of_queue"
	default:
		return "unknown"
	}
}

// EventType identifies what changed in a queue.
type EventType int

const (
	EventFetchStarted EventType = iota
	EventItemsReplaced
	EventItemsAppended
	EventFetchFailed
	EventExhausted
	EventCursorMoved
	EventReset
)

// Event describes a change of a queue's content, cursor or fetch state.
type Event struct {
	Type   EventType
	Size   int
	Cursor int
	State  FetchState

	// Result is set for events produced by a completed fetch.
	Result *Result
}

// Listener is notified of queue changes. It is called without the queue lock held,
// so it may read the queue, but it must not block.
type Listener func(Event)

// Result is the outcome of one fetch.
type Result struct {
	Kind FetchKind

	// Added is the number of items the fetch contributed.
	Added int

	// ItemErrors holds recoverable per-item failures of an applied page.
	ItemErrors []error

	// Err is set when the fetch failed. The queue is left unchanged.
	Err error

	// State is the queue state right after the result was handled.
	State FetchState

	// Discarded is true when the queue was reset or disposed while the fetch was
	// in flight. Discarded results never mutate the queue.
	Discarded bool
}
