package infocache

import (
	"time"

	"media-queue-service/internal/domain"
)

// Default expiration policy values.
const (
	DefaultTTL           = time.Hour
	DefaultSoundCloudTTL = 5 * time.Minute
)

// TTLPolicy returns how long an info extracted from the given service stays fresh.
type TTLPolicy interface {
	TTL(serviceID int) time.Duration
}

// ServiceTTL is a TTLPolicy with a default and per-service overrides.
// Services with fast-changing data get shorter TTLs.
type ServiceTTL struct {
	Default   time.Duration
	Overrides map[int]time.Duration
}

// DefaultServiceTTL returns the stock policy: one hour, five minutes for SoundCloud.
func DefaultServiceTTL() ServiceTTL {
	return ServiceTTL{
		Default: DefaultTTL,
		Overrides: map[int]time.Duration{
			domain.ServiceSoundCloud: DefaultSoundCloudTTL,
		},
	}
}

// TTL implements TTLPolicy.
func (p ServiceTTL) TTL(serviceID int) time.Duration {
	if ttl, ok := p.Overrides[serviceID]; ok {
		return ttl
	}
	if p.Default <= 0 {
		return DefaultTTL
	}

	return p.Default
}

// FixedTTL is a TTLPolicy returning the same duration for every service.
type FixedTTL time.Duration

// TTL implements TTLPolicy.
func (f FixedTTL) TTL(int) time.Duration {
	return time.Duration(f)
}
