package core

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// healthCheckTimeout bounds all health probes together.
const healthCheckTimeout = 2 * time.Second

// HealthProbe is one subsystem health check (database, weather provider).
type HealthProbe interface {
	Name() string
	Check(ctx context.Context) error
}

type componentStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type healthResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components,omitempty"`
}

// HandleHealth runs every registered probe concurrently. 200 when all
// report healthy, 503 when any fails or the deadline passes. Mounted
// unauthenticated so load balancers can probe it.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	if len(s.Probes) == 0 {
		JSON(w, r, http.StatusOK, healthResponse{Status: "healthy"})
		return
	}

	components := make(map[string]componentStatus, len(s.Probes))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, probe := range s.Probes {
		wg.Add(1)
		go func(p HealthProbe) {
			defer wg.Done()
			status := componentStatus{Status: "healthy"}
			if err := p.Check(ctx); err != nil {
				status = componentStatus{Status: "unhealthy", Message: err.Error()}
			}
			mu.Lock()
			components[p.Name()] = status
			mu.Unlock()
		}(probe)
	}
	wg.Wait()

	overall := "healthy"
	code := http.StatusOK
	for _, c := range components {
		if c.Status != "healthy" {
			overall = "unhealthy"
			code = http.StatusServiceUnavailable
			break
		}
	}
	JSON(w, r, code, healthResponse{Status: overall, Components: components})
}
