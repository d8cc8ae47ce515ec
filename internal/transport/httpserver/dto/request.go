// Package dto provides Data Transfer Objects for HTTP requests and responses.
package dto

import "media-queue-service/internal/domain"

// CreateQueueRequest represents the body of POST /api/v1/queues.
// Without an index the queue starts empty and loads its first page on the first fetch.
// With an index the first page is loaded up front and the cursor placed on it.
type CreateQueueRequest struct {
	ServiceID *int   `json:"service_id" validate:"required,gte=0,lte=16"`
	URL       string `json:"url" validate:"required,max=2048,streaming_url"`
	Index     *int   `json:"index" validate:"omitempty,gte=0"`
}

// Source converts the request to a domain.Source.
func (r *CreateQueueRequest) Source() domain.Source {
	return domain.Source{ServiceID: *r.ServiceID, URL: r.URL}
}

// SourceQuery represents the query parameters identifying a remote collection.
type SourceQuery struct {
	ServiceID int    `query:"service_id" validate:"gte=0,lte=16"`
	URL       string `query:"url" validate:"required,max=2048,streaming_url"`
}

// Source converts the query to a domain.Source.
func (q *SourceQuery) Source() domain.Source {
	return domain.Source{ServiceID: q.ServiceID, URL: q.URL}
}

// InfoQuery represents the query parameters of GET /api/v1/info.
type InfoQuery struct {
	ServiceID int    `query:"service_id" validate:"gte=0,lte=16"`
	URL       string `query:"url" validate:"required,max=2048,streaming_url"`
	Force     bool   `query:"force"`
}

// Source converts the query to a domain.Source.
func (q *InfoQuery) Source() domain.Source {
	return domain.Source{ServiceID: q.ServiceID, URL: q.URL}
}

// FetchQuery represents the query parameters of POST /api/v1/queues/:id/fetch.
type FetchQuery struct {
	Wait bool `query:"wait"`
}
