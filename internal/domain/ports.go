package domain

import (
	"context"
)

// PageFetcher fetches ordered pages of a remote collection.
// Implementations: internal/app/service/info_service.go
type PageFetcher interface {
	// FetchHead retrieves the first page of the collection identified by src.
	FetchHead(ctx context.Context, src Source) (*Page, error)

	// FetchPage retrieves the page identified by the continuation token.
	FetchPage(ctx context.Context, src Source, token string) (*Page, error)
}

// Extractor talks to the remote extraction service. Results are never cached.
// Implementations: internal/infra/extractor/client.go
type Extractor interface {
	// FetchInfo retrieves the full info for the given source.
	FetchInfo(ctx context.Context, src Source) (*Info, error)

	// FetchPage retrieves a continuation page of the given source.
	FetchPage(ctx context.Context, src Source, token string) (*Page, error)

	// HealthCheck verifies the extraction service is accessible.
	HealthCheck(ctx context.Context) error
}

// InfoCache stores extracted infos keyed by service id and url.
// Implementations: internal/infocache/cache.go
type InfoCache interface {
	Get(serviceID int, url string) (*Info, bool)
	Put(serviceID int, url string, info *Info)
	Remove(serviceID int, url string)
	Clear()
	Trim()
	Size() int
	Limits() (maxItems, trimTarget int)
}
