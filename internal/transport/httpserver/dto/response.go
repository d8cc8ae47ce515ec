package dto

import (
	"time"

	"media-queue-service/internal/app/service"
	"media-queue-service/internal/domain"
	"media-queue-service/internal/playqueue"
)

// QueueItemResponse represents a single playable item.
type QueueItemResponse struct {
	ServiceID    int    `json:"service_id"`
	URL          string `json:"url"`
	Title        string `json:"title"`
	Uploader     string `json:"uploader,omitempty"`
	Duration     int64  `json:"duration"` // seconds
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	StreamType   string `json:"stream_type"`
}

// FromQueueItem converts domain.QueueItem to QueueItemResponse.
func FromQueueItem(i domain.QueueItem) QueueItemResponse {
	return QueueItemResponse{
		ServiceID:    i.ServiceID,
		URL:          i.URL,
		Title:        i.Title,
		Uploader:     i.Uploader,
		Duration:     int64(i.Duration / time.Second),
		ThumbnailURL: i.ThumbnailURL,
		StreamType:   string(i.StreamType),
	}
}

func fromQueueItems(items []domain.QueueItem) []QueueItemResponse {
	out := make([]QueueItemResponse, len(items))
	for i, item := range items {
		out[i] = FromQueueItem(item)
	}
	return out
}

// QueueResponse represents the state of a play queue session.
type QueueResponse struct {
	ID          string              `json:"id"`
	ServiceID   int                 `json:"service_id"`
	URL         string              `json:"url"`
	State       string              `json:"state"`
	Size        int                 `json:"size"`
	Cursor      int                 `json:"cursor"`
	Current     *QueueItemResponse  `json:"current,omitempty"`
	HasNextPage bool                `json:"has_next_page"`
	Initial     bool                `json:"initial"`
	LastError   string              `json:"last_error,omitempty"`
	Items       []QueueItemResponse `json:"items"`
	CreatedAt   string              `json:"created_at"`
}

// FromSession converts a queue session to QueueResponse.
func FromSession(sess *service.Session) QueueResponse {
	snap := sess.Queue.Snapshot()

	resp := QueueResponse{
		ID:          sess.ID,
		ServiceID:   snap.Source.ServiceID,
		URL:         snap.Source.URL,
		State:       snap.State.String(),
		Size:        len(snap.Items),
		Cursor:      snap.Cursor,
		HasNextPage: snap.NextPage != "",
		Initial:     snap.Initial,
		Items:       fromQueueItems(snap.Items),
		CreatedAt:   sess.CreatedAt.Format(time.RFC3339),
	}

	if snap.Cursor >= 0 && snap.Cursor < len(snap.Items) {
		current := FromQueueItem(snap.Items[snap.Cursor])
		resp.Current = &current
	}
	if snap.LastErr != nil {
		resp.LastError = snap.LastErr.Error()
	}

	return resp
}

// Fetch statuses reported by FetchResponse.
const (
	FetchStatusDispatched = "dispatched"
	FetchStatusCompleted  = "completed"
	FetchStatusRejected   = "rejected"
	FetchStatusExhausted  = "exhausted"
)

// FetchResponse represents the outcome of a fetch request.
type FetchResponse struct {
	Status     string   `json:"status"`
	Kind       string   `json:"kind,omitempty"`
	Added      int      `json:"added"`
	State      string   `json:"state"`
	ItemErrors []string `json:"item_errors,omitempty"`
	Error      string   `json:"error,omitempty"`
	Discarded  bool     `json:"discarded,omitempty"`
}

// FromFetchResult converts a completed playqueue.Result to FetchResponse.
func FromFetchResult(res playqueue.Result) FetchResponse {
	resp := FetchResponse{
		Status:    FetchStatusCompleted,
		Kind:      res.Kind.String(),
		Added:     res.Added,
		State:     res.State.String(),
		Discarded: res.Discarded,
	}

	for _, e := range res.ItemErrors {
		resp.ItemErrors = append(resp.ItemErrors, e.Error())
	}
	if res.Err != nil {
		resp.Error = res.Err.Error()
	}

	return resp
}

// MoveResponse represents the outcome of a cursor move.
type MoveResponse struct {
	Move            string             `json:"move"`
	Cursor          int                `json:"cursor"`
	Current         *QueueItemResponse `json:"current,omitempty"`
	FetchDispatched bool               `json:"fetch_dispatched"`
}

// InfoResponse represents an extracted info.
type InfoResponse struct {
	ServiceID  int                 `json:"service_id"`
	URL        string              `json:"url"`
	Name       string              `json:"name"`
	Kind       string              `json:"kind"`
	Items      []QueueItemResponse `json:"items"`
	NextPage   string              `json:"next_page,omitempty"`
	ItemErrors []string            `json:"item_errors,omitempty"`
	FetchedAt  string              `json:"fetched_at"`
}

// FromInfo converts domain.Info to InfoResponse.
func FromInfo(info *domain.Info) InfoResponse {
	resp := InfoResponse{
		ServiceID: info.ServiceID,
		URL:       info.URL,
		Name:      info.Name,
		Kind:      string(info.Kind),
		Items:     fromQueueItems(info.RelatedItems),
		NextPage:  info.NextPage,
		FetchedAt: info.FetchedAt.Format(time.RFC3339),
	}

	for _, e := range info.Errors {
		resp.ItemErrors = append(resp.ItemErrors, e.Error())
	}

	return resp
}

// CacheStatsResponse represents the occupancy of the info cache.
type CacheStatsResponse struct {
	Size       int `json:"size"`
	MaxItems   int `json:"max_items"`
	TrimTarget int `json:"trim_target"`
}

// FromCacheStats converts service.CacheStats to CacheStatsResponse.
func FromCacheStats(s service.CacheStats) CacheStatsResponse {
	return CacheStatsResponse{
		Size:       s.Size,
		MaxItems:   s.MaxItems,
		TrimTarget: s.TrimTarget,
	}
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}
