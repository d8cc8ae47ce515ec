package extractor

import (
	"time"

	"media-queue-service/internal/domain"
)

// InfoResponse represents the JSON response of the info endpoint.
type InfoResponse struct {
	ServiceID int            `json:"service_id"`
	URL       string         `json:"url"`
	Name      string         `json:"name"`
	Kind      string         `json:"kind"`
	Items     []StreamItem   `json:"items"`
	NextPage  string         `json:"next_page"`
	Errors    []ItemErrorDTO `json:"errors"`
}

// PageResponse represents the JSON response of the page endpoint.
type PageResponse struct {
	Items    []StreamItem   `json:"items"`
	NextPage string         `json:"next_page"`
	Errors   []ItemErrorDTO `json:"errors"`
}

// StreamItem represents a single playable entry.
type StreamItem struct {
	ServiceID    int    `json:"service_id"`
	URL          string `json:"url"`
	Title        string `json:"title"`
	Uploader     string `json:"uploader"`
	Duration     int64  `json:"duration"` // seconds, -1 for live streams
	ThumbnailURL string `json:"thumbnail_url"`
	StreamType   string `json:"stream_type"`
}

// ItemErrorDTO represents an entry the extraction service failed to extract.
type ItemErrorDTO struct {
	URL     string `json:"url"`
	Message string `json:"message"`
}

// ToDomain converts StreamItem to domain.QueueItem.
func (s *StreamItem) ToDomain() domain.QueueItem {
	var duration time.Duration
	if s.Duration > 0 {
		duration = time.Duration(s.Duration) * time.Second
	}

	streamType := domain.StreamType(s.StreamType)
	if streamType == "" {
		streamType = domain.StreamTypeVideo
	}

	return domain.QueueItem{
		ServiceID:    s.ServiceID,
		URL:          s.URL,
		Title:        s.Title,
		Uploader:     s.Uploader,
		Duration:     duration,
		ThumbnailURL: s.ThumbnailURL,
		StreamType:   streamType,
	}
}

// toPage converts wire items and errors to a domain.Page.
// Entries without a URL cannot be played; they are reported as item errors.
func toPage(items []StreamItem, nextPage string, errs []ItemErrorDTO) *domain.Page {
	page := &domain.Page{
		Items:    make([]domain.QueueItem, 0, len(items)),
		NextPage: nextPage,
	}

	for i := range items {
		if items[i].URL == "" {
			page.Errors = append(page.Errors, &domain.ItemError{
				Message: "entry " + items[i].Title + " has no url",
			})
			continue
		}
		page.Items = append(page.Items, items[i].ToDomain())
	}

	for _, e := range errs {
		page.Errors = append(page.Errors, &domain.ItemError{URL: e.URL, Message: e.Message})
	}

	return page
}

// ToDomain converts InfoResponse to domain.Info.
func (r *InfoResponse) ToDomain(src domain.Source, fetchedAt time.Time) *domain.Info {
	page := toPage(r.Items, r.NextPage, r.Errors)

	kind := domain.InfoKind(r.Kind)
	if kind == "" {
		kind = domain.InfoKindPlaylist
	}

	url := r.URL
	if url == "" {
		url = src.URL
	}

	return &domain.Info{
		ServiceID:    src.ServiceID,
		URL:          url,
		Name:         r.Name,
		Kind:         kind,
		RelatedItems: page.Items,
		NextPage:     page.NextPage,
		Errors:       page.Errors,
		FetchedAt:    fetchedAt,
	}
}
