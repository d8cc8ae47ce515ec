// Package extractor implements the client of the remote extraction service.
package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"media-queue-service/internal/domain"
)

// API paths of the extraction service.
const (
	InfoEndpoint   = "/api/v1/info"
	PageEndpoint   = "/api/v1/page"
	HealthEndpoint = "/health"
)

// Client implements domain.Extractor over HTTP/JSON.
type Client struct {
	client *resty.Client
	cb     *gobreaker.CircuitBreaker[*resty.Response]
	logger *zap.Logger
}

// New creates a new extraction service client.
func New(cfg ClientConfig, logger *zap.Logger) *Client {
	return &Client{
		client: newRestyClient(cfg),
		cb:     newCircuitBreaker[*resty.Response]("extractor", cfg.CB, logger),
		logger: logger,
	}
}

// FetchInfo retrieves the full info of a stream or collection.
func (c *Client) FetchInfo(ctx context.Context, src domain.Source) (*domain.Info, error) {
	var result InfoResponse
	err := c.get(ctx, InfoEndpoint, map[string]string{
		"service_id": strconv.Itoa(src.ServiceID),
		"url":        src.URL,
	}, &result)
	if err != nil {
		return nil, err
	}

	info := result.ToDomain(src, time.Now().UTC())

	c.logger.Info("info fetch completed",
		zap.Int("service_id", src.ServiceID),
		zap.String("url", src.URL),
		zap.String("kind", string(info.Kind)),
		zap.Int("count", len(info.RelatedItems)),
		zap.Int("item_errors", len(info.Errors)),
		zap.Bool("has_next_page", info.NextPage != ""),
	)

	return info, nil
}

// FetchPage retrieves the continuation page identified by token.
func (c *Client) FetchPage(ctx context.Context, src domain.Source, token string) (*domain.Page, error) {
	var result PageResponse
	err := c.get(ctx, PageEndpoint, map[string]string{
		"service_id": strconv.Itoa(src.ServiceID),
		"url":        src.URL,
		"page":       token,
	}, &result)
	if err != nil {
		return nil, err
	}

	page := toPage(result.Items, result.NextPage, result.Errors)

	c.logger.Info("page fetch completed",
		zap.Int("service_id", src.ServiceID),
		zap.String("url", src.URL),
		zap.Int("count", len(page.Items)),
		zap.Int("item_errors", len(page.Errors)),
		zap.Bool("has_next_page", page.HasNextPage()),
	)

	return page, nil
}

// HealthCheck verifies the extraction service is accessible.
func (c *Client) HealthCheck(ctx context.Context) error {
	resp, err := c.client.R().
		SetContext(ctx).
		Get(HealthEndpoint)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("health check returned status %d", resp.StatusCode())
	}

	return nil
}

// get performs a guarded GET and decodes the JSON body into result.
func (c *Client) get(ctx context.Context, endpoint string, params map[string]string, result any) error {
	resp, err := c.cb.Execute(func() (*resty.Response, error) {
		r, err := c.client.R().
			SetContext(ctx).
			SetQueryParams(params).
			Get(endpoint)
		if err != nil {
			return nil, err
		}
		if r.IsError() {
			return nil, fmt.Errorf("extractor returned status %d", r.StatusCode())
		}

		return r, nil
	})

	if err != nil {
		c.logger.Warn("extractor request failed",
			zap.String("endpoint", endpoint),
			zap.String("url", params["url"]),
			zap.Error(err),
			zap.String("state", c.cb.State().String()),
		)

		return fmt.Errorf("fetching %s: %w: %w", endpoint, domain.ErrSourceUnavailable, err)
	}

	if err := json.Unmarshal(resp.Body(), result); err != nil {
		return fmt.Errorf("decoding %s response: %w: %w", endpoint, domain.ErrMalformedResponse, err)
	}

	return nil
}
