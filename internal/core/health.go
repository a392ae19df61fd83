package core

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// healthCheckTimeout bounds the total time spent probing subsystems.
const healthCheckTimeout = 2 * time.Second

// HealthProbe checks one critical dependency (database, weather provider,
// queue). Check must respect the context deadline.
type HealthProbe interface {
	Name() string
	Check(ctx context.Context) error
}

// ProbeFunc adapts a plain function into a HealthProbe.
type ProbeFunc struct {
	ProbeName string
	Fn        func(ctx context.Context) error
}

func (p ProbeFunc) Name() string                    { return p.ProbeName }
func (p ProbeFunc) Check(ctx context.Context) error { return p.Fn(ctx) }

type componentStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type healthResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components,omitempty"`
}

// HandleHealth runs every registered probe concurrently under a shared
// 2-second deadline. All probes healthy yields 200; any failure or timeout
// yields 503 with per-component detail. Mounted publicly at GET /health.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	probes := s.HealthProbes
	if len(probes) == 0 {
		JSON(w, r, http.StatusOK, healthResponse{Status: "healthy"})
		return
	}

	var (
		mu      sync.Mutex
		results = make(map[string]error, len(probes))
		wg      sync.WaitGroup
	)

	for _, probe := range probes {
		wg.Add(1)
		go func(p HealthProbe) {
			defer wg.Done()

			var err error
			func() {
				defer func() {
					if rvr := recover(); rvr != nil {
						err = fmt.Errorf("probe panicked: %v", rvr)
					}
				}()
				err = p.Check(ctx)
			}()

			mu.Lock()
			results[p.Name()] = err
			mu.Unlock()
		}(probe)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		// Deadline hit; report whatever completed and mark the rest timed out.
	}

	mu.Lock()
	components := make(map[string]componentStatus, len(probes))
	allHealthy := true
	for _, probe := range probes {
		name := probe.Name()
		err, completed := results[name]
		switch {
		case !completed:
			allHealthy = false
			components[name] = componentStatus{Status: "unhealthy", Message: "health check timed out"}
		case err != nil:
			allHealthy = false
			components[name] = componentStatus{Status: "unhealthy", Message: err.Error()}
		default:
			components[name] = componentStatus{Status: "healthy"}
		}
	}
	mu.Unlock()

	resp := healthResponse{Status: "healthy", Components: components}
	if !allHealthy {
		resp.Status = "unhealthy"
		JSON(w, r, http.StatusServiceUnavailable, resp)
		return
	}
	JSON(w, r, http.StatusOK, resp)
}
