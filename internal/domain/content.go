// Package domain contains the core entities and ports of the queue service.
// This package has no external dependencies (only stdlib).
package domain

import (
	"time"
)

// Well-known extraction service identifiers.
const (
	ServiceYouTube    = 0
	ServiceSoundCloud = 1
)

// InfoKind represents the kind of collection or stream an Info describes.
type InfoKind string

const (
	InfoKindStream   InfoKind = "stream"
	InfoKindPlaylist InfoKind = "playlist"
	InfoKindChannel  InfoKind = "channel"
	InfoKindKiosk    InfoKind = "kiosk"
)

// StreamType represents the type of a playable stream.
type StreamType string

const (
	StreamTypeVideo      StreamType = "video"
	StreamTypeAudio      StreamType = "audio"
	StreamTypeLiveStream StreamType = "live"
)

// Source identifies a remote collection: the extraction service and the base URL.
type Source struct {
	ServiceID int    `json:"service_id"`
	URL       string `json:"url"`
}

// QueueItem is an immutable descriptor of one playable unit.
// It is always passed by value; a queue never shares an item with another queue.
type QueueItem struct {
	ServiceID    int           `json:"service_id"`
	URL          string        `json:"url"`
	Title        string        `json:"title"`
	Uploader     string        `json:"uploader,omitempty"`
	Duration     time.Duration `json:"duration"`
	ThumbnailURL string        `json:"thumbnail_url,omitempty"`
	StreamType   StreamType    `json:"stream_type"`
}

// IsLive returns true if the item is a live stream.
func (i QueueItem) IsLive() bool {
	return i.StreamType == StreamTypeLiveStream
}

// Page is one ordered slice of a remote collection.
type Page struct {
	Items []QueueItem

	// NextPage is the continuation token. Empty means the collection is exhausted.
	NextPage string

	// Errors holds recoverable per-item failures. They never abort the page.
	Errors []error
}

// HasNextPage returns true if another page can be requested.
func (p *Page) HasNextPage() bool {
	return p != nil && p.NextPage != ""
}

// Info is a fully extracted collection or stream, as returned by a head fetch.
// Infos are the values stored in the extraction cache.
type Info struct {
	ServiceID int
	URL       string
	Name      string
	Kind      InfoKind

	// RelatedItems is the first page of the collection.
	RelatedItems []QueueItem
	NextPage     string
	Errors       []error

	FetchedAt time.Time
}

// Source returns the descriptor of the collection this info was extracted from.
func (i *Info) Source() Source {
	return Source{ServiceID: i.ServiceID, URL: i.URL}
}

// FirstPage returns the info's first page. Items are copied.
func (i *Info) FirstPage() *Page {
	items := make([]QueueItem, len(i.RelatedItems))
	copy(items, i.RelatedItems)

	return &Page{
		Items:    items,
		NextPage: i.NextPage,
		Errors:   i.Errors,
	}
}
