package ports

import "context"

// HealthChecker probes one backing dependency (Postgres, Redis) for the
// /health endpoint. A non-nil error marks the service degraded.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}
