// Package health provides liveness and readiness probe endpoints. Each
// registered check runs periodically in the background; the HTTP endpoints
// only read the latest cached result, so probes stay cheap even when a check
// (like a database ping) is slow.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// CheckFunc reports on one component: nil means healthy.
type CheckFunc func(ctx context.Context) error

type check struct {
	name    string
	timeout time.Duration
	fn      CheckFunc

	mu      sync.Mutex
	lastErr error
}

func (c *check) run(ctx context.Context) {
	cctx, cancel := context.WithTimeout(ctx, c.timeout)
	err := c.fn(cctx)
	cancel()

	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()
}

func (c *check) err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Service holds the registered probes and the manual readiness gate.
type Service struct {
	mu        sync.Mutex
	liveness  []*check
	readiness []*check
	ready     bool

	stop   context.CancelFunc
	stopWG sync.WaitGroup
}

// New creates an empty health Service. It is not ready until SetReady(true).
func New() *Service {
	return &Service{}
}

// AddLivenessCheck registers a liveness probe check.
func (s *Service) AddLivenessCheck(name string, timeout time.Duration, fn CheckFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.liveness = append(s.liveness, &check{name: name, timeout: timeout, fn: fn})
}

// AddReadinessCheck registers a readiness probe check.
func (s *Service) AddReadinessCheck(name string, timeout time.Duration, fn CheckFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readiness = append(s.readiness, &check{name: name, timeout: timeout, fn: fn})
}

// SetReady flips the manual readiness gate, used to drain before shutdown.
func (s *Service) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

// Start runs every registered check now and then at the given interval until
// Stop is called or ctx is cancelled.
func (s *Service) Start(ctx context.Context, interval time.Duration) {
	ctx, s.stop = context.WithCancel(ctx)

	s.mu.Lock()
	checks := make([]*check, 0, len(s.liveness)+len(s.readiness))
	checks = append(checks, s.liveness...)
	checks = append(checks, s.readiness...)
	s.mu.Unlock()

	for _, c := range checks {
		c.run(ctx)
		s.stopWG.Add(1)
		go func(c *check) {
			defer s.stopWG.Done()
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					c.run(ctx)
				}
			}
		}(c)
	}
}

// Stop halts the background check loops and waits for them to exit.
func (s *Service) Stop() {
	if s.stop != nil {
		s.stop()
	}
	s.stopWG.Wait()
}

type probeResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// LiveEndpoint serves the liveness probe.
func (s *Service) LiveEndpoint(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	checks := append([]*check(nil), s.liveness...)
	s.mu.Unlock()
	s.serveProbe(w, checks, true)
}

// ReadyEndpoint serves the readiness probe. It fails while the manual gate
// is closed regardless of individual check results.
func (s *Service) ReadyEndpoint(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	checks := append([]*check(nil), s.readiness...)
	gate := s.ready
	s.mu.Unlock()
	s.serveProbe(w, checks, gate)
}

func (s *Service) serveProbe(w http.ResponseWriter, checks []*check, gate bool) {
	healthy := gate
	results := make(map[string]string, len(checks))
	for _, c := range checks {
		if err := c.err(); err != nil {
			healthy = false
			results[c.name] = err.Error()
		} else {
			results[c.name] = "ok"
		}
	}

	resp := probeResponse{Status: "ok", Checks: results}
	status := http.StatusOK
	if !healthy {
		resp.Status = "unavailable"
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
