package health

import "context"

// CachePinger checks the optional cache backend.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// ProviderChecker checks an embedding or generation provider.
type ProviderChecker interface {
	HealthCheck(ctx context.Context) error
}

// Occupancy reports how full the store registry is.
type Occupancy interface {
	Len() int
	Capacity() int
}
