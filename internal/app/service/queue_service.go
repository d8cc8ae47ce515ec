package service

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"media-queue-service/internal/domain"
	"media-queue-service/internal/playqueue"
)

var activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "playqueue_sessions_active",
	Help: "Number of live play queue sessions.",
})

// Session is a play queue owned by one client.
type Session struct {
	ID        string
	Queue     *playqueue.Queue
	CreatedAt time.Time

	lastAccess atomic.Int64
}

// LastAccess returns when the session was last looked up.
func (s *Session) LastAccess() time.Time {
	return time.Unix(0, s.lastAccess.Load())
}

func (s *Session) touch(now time.Time) {
	s.lastAccess.Store(now.UnixNano())
}

// QueueService keeps the registry of live play queue sessions.
type QueueService struct {
	fetcher domain.PageFetcher
	logger  *zap.Logger
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewQueueService creates a new QueueService. Queues paginate through fetcher.
func NewQueueService(fetcher domain.PageFetcher, logger *zap.Logger) *QueueService {
	return &QueueService{
		fetcher:  fetcher,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Create opens a session over a bare source. Its first fetch loads the head page.
func (s *QueueService) Create(src domain.Source) (*Session, error) {
	q, err := playqueue.New(src, s.fetcher, s.logger)
	if err != nil {
		return nil, err
	}

	return s.register(q), nil
}

// CreateFromInfo opens a session over an already loaded info with the cursor at index.
// A stream info becomes a single item queue.
func (s *QueueService) CreateFromInfo(info *domain.Info, index int) (*Session, error) {
	if info.Kind == domain.InfoKindStream {
		return s.register(playqueue.NewSingle(domain.QueueItem{
			ServiceID:  info.ServiceID,
			URL:        info.URL,
			Title:      info.Name,
			StreamType: domain.StreamTypeVideo,
		}, s.logger)), nil
	}

	q, err := playqueue.NewFromPage(info.Source(), info.FirstPage(), index, s.fetcher, s.logger)
	if err != nil {
		return nil, err
	}

	return s.register(q), nil
}

// Get returns the session with the given id and marks it as accessed.
func (s *QueueService) Get(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, domain.ErrNotFound
	}
	sess.touch(s.now())

	return sess, nil
}

// Dispose closes and forgets the session with the given id.
func (s *QueueService) Dispose(id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	if !ok {
		return domain.ErrNotFound
	}

	sess.Queue.Dispose()
	activeSessions.Dec()
	s.logger.Info("queue session disposed", zap.String("session_id", id))

	return nil
}

// ReapIdle disposes every session not accessed within maxIdle and returns how many
// were removed.
func (s *QueueService) ReapIdle(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle)

	var stale []*Session

	s.mu.Lock()
	for id, sess := range s.sessions {
		if sess.LastAccess().Before(cutoff) {
			stale = append(stale, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range stale {
		sess.Queue.Dispose()
		activeSessions.Dec()
	}

	if len(stale) > 0 {
		s.logger.Info("idle queue sessions reaped",
			zap.Int("count", len(stale)),
			zap.Duration("max_idle", maxIdle),
		)
	}

	return len(stale)
}

// DisposeAll closes every session. Used on shutdown.
func (s *QueueService) DisposeAll() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.Queue.Dispose()
		activeSessions.Dec()
	}
}

// Count returns the number of live sessions.
func (s *QueueService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.sessions)
}

func (s *QueueService) register(q *playqueue.Queue) *Session {
	now := s.now()
	sess := &Session{
		ID:        uuid.NewString(),
		Queue:     q,
		CreatedAt: now,
	}
	sess.touch(now)

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	activeSessions.Inc()
	s.logger.Info("queue session created",
		zap.String("session_id", sess.ID),
		zap.Int("service_id", q.Source().ServiceID),
		zap.String("url", q.Source().URL),
		zap.Int("size", q.Size()),
	)

	return sess
}
