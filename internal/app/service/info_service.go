// Package service provides application use cases.
package service

import (
	"context"

	"go.uber.org/zap"

	"media-queue-service/internal/domain"
)

// InfoService resolves infos through the shared cache and paginates collections.
// It is the domain.PageFetcher handed to every play queue.
type InfoService struct {
	extractor domain.Extractor
	cache     domain.InfoCache
	logger    *zap.Logger
}

// NewInfoService creates a new InfoService.
func NewInfoService(extractor domain.Extractor, cache domain.InfoCache, logger *zap.Logger) *InfoService {
	return &InfoService{
		extractor: extractor,
		cache:     cache,
		logger:    logger,
	}
}

// CacheStats describes the occupancy of the info cache.
type CacheStats struct {
	Size       int
	MaxItems   int
	TrimTarget int
}

// GetInfo returns the info for src. The cache is consulted first unless forceLoad is
// set; a fetched info always replaces the cached one.
func (s *InfoService) GetInfo(ctx context.Context, src domain.Source, forceLoad bool) (*domain.Info, error) {
	if !forceLoad {
		if info, ok := s.cache.Get(src.ServiceID, src.URL); ok {
			return info, nil
		}
	}

	info, err := s.extractor.FetchInfo(ctx, src)
	if err != nil {
		s.logger.Warn("info fetch failed",
			zap.Int("service_id", src.ServiceID),
			zap.String("url", src.URL),
			zap.Bool("force_load", forceLoad),
			zap.Error(err),
		)
		return nil, err
	}

	s.cache.Put(src.ServiceID, src.URL, info)

	return info, nil
}

// FetchHead returns the first page of src, served from the cache when possible.
func (s *InfoService) FetchHead(ctx context.Context, src domain.Source) (*domain.Page, error) {
	info, err := s.GetInfo(ctx, src, false)
	if err != nil {
		return nil, err
	}

	return info.FirstPage(), nil
}

// FetchPage returns a continuation page of src. Continuation pages are never cached.
func (s *InfoService) FetchPage(ctx context.Context, src domain.Source, token string) (*domain.Page, error) {
	return s.extractor.FetchPage(ctx, src, token)
}

// Invalidate drops the cached info for src.
func (s *InfoService) Invalidate(src domain.Source) {
	s.cache.Remove(src.ServiceID, src.URL)
}

// TrimCache removes expired entries and shrinks the cache to its trim target.
func (s *InfoService) TrimCache() CacheStats {
	s.cache.Trim()
	return s.CacheStats()
}

// ClearCache removes every cached info.
func (s *InfoService) ClearCache() {
	s.cache.Clear()
}

// CacheStats returns the current cache occupancy.
func (s *InfoService) CacheStats() CacheStats {
	maxItems, trimTarget := s.cache.Limits()

	return CacheStats{
		Size:       s.cache.Size(),
		MaxItems:   maxItems,
		TrimTarget: trimTarget,
	}
}

// HealthCheck verifies the extraction service is reachable.
func (s *InfoService) HealthCheck(ctx context.Context) error {
	return s.extractor.HealthCheck(ctx)
}
