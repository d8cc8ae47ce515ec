package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"media-queue-service/internal/domain"
	"media-queue-service/internal/playqueue"
)

func newTestQueueService(t *testing.T) (*QueueService, *InfoService) {
	t.Helper()

	infos, _ := newTestInfoService(t)

	return NewQueueService(infos, zap.NewNop()), infos
}

func TestQueueService_CreateAndFetch(t *testing.T) {
	svc, _ := newTestQueueService(t)

	sess, err := svc.Create(playlistSource)
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID)
	assert.Equal(t, 1, svc.Count())

	q := sess.Queue
	assert.Zero(t, q.Size())

	done, ok := q.Fetch()
	require.True(t, ok)
	res := <-done
	require.NoError(t, res.Err)
	assert.Equal(t, playqueue.FetchHead, res.Kind)
	assert.Equal(t, 2, q.Size())

	done, ok = q.Fetch()
	require.True(t, ok)
	res = <-done
	require.NoError(t, res.Err)
	assert.Equal(t, playqueue.FetchNextPage, res.Kind)
	assert.Equal(t, 3, q.Size())
	assert.Equal(t, playqueue.StateExhausted, q.State())

	got, err := svc.Get(sess.ID)
	require.NoError(t, err)
	assert.Same(t, sess, got)
}

func TestQueueService_CreateFromInfo(t *testing.T) {
	svc, _ := newTestQueueService(t)

	sess, err := svc.CreateFromInfo(playlistInfo(), 1)
	require.NoError(t, err)

	q := sess.Queue
	assert.Equal(t, 2, q.Size())
	assert.Equal(t, 1, q.Cursor())

	item, ok := q.Current()
	require.True(t, ok)
	assert.Equal(t, "two", item.Title)

	done, ok := q.Fetch()
	require.True(t, ok)
	res := <-done
	assert.Equal(t, playqueue.FetchNextPage, res.Kind, "first page is already known")
	assert.Equal(t, 3, q.Size())
}

func TestQueueService_CreateFromStreamInfo(t *testing.T) {
	svc, _ := newTestQueueService(t)

	sess, err := svc.CreateFromInfo(&domain.Info{
		ServiceID: domain.ServiceSoundCloud,
		URL:       "https://soundcloud.com/artist/track",
		Name:      "Track",
		Kind:      domain.InfoKindStream,
	}, 0)
	require.NoError(t, err)

	q := sess.Queue
	assert.Equal(t, 1, q.Size())

	item, ok := q.Current()
	require.True(t, ok)
	assert.Equal(t, "Track", item.Title)

	_, ok = q.Fetch()
	assert.False(t, ok)
	assert.Equal(t, playqueue.StateExhausted, q.State())
}

func TestQueueService_GetUnknown(t *testing.T) {
	svc, _ := newTestQueueService(t)

	sess, err := svc.Get("missing")

	assert.Nil(t, sess)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, svc.Dispose("missing"), domain.ErrNotFound)
}

func TestQueueService_Dispose(t *testing.T) {
	svc, _ := newTestQueueService(t)

	sess, err := svc.Create(playlistSource)
	require.NoError(t, err)

	require.NoError(t, svc.Dispose(sess.ID))

	assert.True(t, sess.Queue.Disposed())
	assert.Zero(t, svc.Count())

	_, err = svc.Get(sess.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestQueueService_ReapIdle(t *testing.T) {
	svc, _ := newTestQueueService(t)

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	idle, err := svc.Create(playlistSource)
	require.NoError(t, err)
	active, err := svc.Create(playlistSource)
	require.NoError(t, err)

	now = now.Add(20 * time.Minute)
	_, err = svc.Get(active.ID)
	require.NoError(t, err)

	now = now.Add(15 * time.Minute)
	removed := svc.ReapIdle(30 * time.Minute)

	assert.Equal(t, 1, removed)
	assert.True(t, idle.Queue.Disposed())
	assert.False(t, active.Queue.Disposed())
	assert.Equal(t, 1, svc.Count())

	assert.Zero(t, svc.ReapIdle(30*time.Minute))
}

func TestQueueService_DisposeAll(t *testing.T) {
	svc, _ := newTestQueueService(t)

	a, err := svc.Create(playlistSource)
	require.NoError(t, err)
	b, err := svc.CreateFromInfo(playlistInfo(), 0)
	require.NoError(t, err)

	svc.DisposeAll()

	assert.Zero(t, svc.Count())
	assert.True(t, a.Queue.Disposed())
	assert.True(t, b.Queue.Disposed())
}

func TestQueueService_DisposedQueueDropsLateResult(t *testing.T) {
	svc, _ := newTestQueueService(t)

	sess, err := svc.Create(playlistSource)
	require.NoError(t, err)

	done, ok := sess.Queue.Fetch()
	require.True(t, ok)
	require.NoError(t, svc.Dispose(sess.ID))

	res := <-done
	if res.Discarded {
		assert.Zero(t, sess.Queue.Size())
	}
	_, ok = sess.Queue.Fetch()
	assert.False(t, ok)
}
