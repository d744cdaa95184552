// Package probe decides, once per process, whether the remote SentinelLite
// service is reachable. The first call issues a bounded health check; the
// result — success or failure — is cached for the lifetime of the Probe and
// shared by every client operation.
//
// Caching for the whole process lifetime is a deliberate staleness
// trade-off: a remote service that recovers mid-session is not
// rediscovered. Reset exists so tests can simulate recovery; production
// code never calls it.
package probe

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// DefaultTimeout is the health-check budget when none is configured.
const DefaultTimeout = 2 * time.Second

// Probe is the process-wide cached availability flag.
type Probe struct {
	healthURL string
	timeout   time.Duration
	client    *http.Client
	logger    *slog.Logger

	mu        sync.Mutex
	checked   bool
	available bool
}

// New creates a Probe that checks baseURL + "/health". timeout <= 0 falls
// back to DefaultTimeout; a nil logger falls back to slog.Default().
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Probe {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Probe{
		healthURL: baseURL + "/health",
		timeout:   timeout,
		client:    &http.Client{},
		logger:    logger,
	}
}

// Available reports whether the remote service answered the health check.
// Only the first call probes; any network failure, non-2xx status, or
// timeout resolves to false and the result is cached until Reset.
func (p *Probe) Available(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.checked {
		return p.available
	}

	p.available = p.check(ctx)
	p.checked = true

	if !p.available {
		p.logger.Warn("probe: remote service unavailable, entering fallback mode",
			slog.String("health_url", p.healthURL),
		)
	}
	return p.available
}

// check performs the single bounded health request. The timeout guarantees
// resolution: an unreachable service yields false rather than a hang.
func (p *Probe) check(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.healthURL, nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// Reset clears the cached result so the next Available call re-probes.
// Test-only: the production lifecycle is initialize-once, never-reset.
func (p *Probe) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.checked = false
	p.available = false
}
