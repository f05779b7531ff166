package health

import (
	"context"
	"fmt"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Check names.
const (
	CheckCache      = "cache"
	CheckEmbedding  = "embedding"
	CheckGeneration = "generation"
)

// Report aggregates health check results.
type Report struct {
	Status  Status
	Checks  map[string]CheckResult
	Stores  int
	Message string
}

// Service coordinates health checks.
type Service struct {
	cache      CachePinger
	embedding  ProviderChecker
	generation ProviderChecker
	stores     Occupancy
}

// New creates a Service. Every dependency can be nil; nil ones are skipped.
func New(cache CachePinger, embedding, generation ProviderChecker, stores Occupancy) *Service {
	return &Service{cache: cache, embedding: embedding, generation: generation, stores: stores}
}

// Check runs health checks against all configured components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if s.cache != nil {
		checks[CheckCache] = result(s.cache.Ping(ctx))
	}
	if s.embedding != nil {
		checks[CheckEmbedding] = result(s.embedding.HealthCheck(ctx))
	}
	if s.generation != nil {
		checks[CheckGeneration] = result(s.generation.HealthCheck(ctx))
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	r := Report{Status: status, Checks: checks}
	if s.stores != nil {
		r.Stores = s.stores.Len()
	}
	r.Message = message(r, s.stores)
	return r
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}

func message(r Report, stores Occupancy) string {
	var base string
	if r.Status == Healthy {
		base = "Backend is running"
	} else {
		base = "Backend is running with failing dependencies"
	}
	if stores == nil {
		return base
	}
	if c := stores.Capacity(); c > 0 {
		return fmt.Sprintf("%s, %d/%d vector stores in memory", base, r.Stores, c)
	}
	return fmt.Sprintf("%s, %d vector stores in memory", base, r.Stores)
}
