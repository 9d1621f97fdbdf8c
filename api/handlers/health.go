package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/OldStager01/housing-valuator/internal/artifacts"
)

const probeTimeout = 5 * time.Second

// Check probes one dependency; a nil error means healthy.
type Check func(ctx context.Context) error

type HealthHandler struct {
	source BundleSource
	checks map[string]Check
}

func NewHealthHandler(source BundleSource, checks map[string]Check) *HealthHandler {
	return &HealthHandler{source: source, checks: checks}
}

type HealthResponse struct {
	Status     string            `json:"status"`
	Timestamp  string            `json:"timestamp"`
	ModelRunID string            `json:"model_run_id,omitempty"`
	Checks     map[string]string `json:"checks,omitempty"`
}

func stamp(status string) HealthResponse {
	return HealthResponse{Status: status, Timestamp: time.Now().UTC().Format(time.RFC3339)}
}

// Health reports the model plus every registered dependency. Probes run
// concurrently under a shared deadline; any failure makes the whole
// response a 503.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), probeTimeout)
	defer cancel()

	resp := stamp("healthy")
	resp.Checks = make(map[string]string, len(h.checks)+1)

	if b := h.bundle(); b.IsLoaded() {
		resp.ModelRunID = b.RunID()
		resp.Checks["model"] = "healthy"
	} else {
		resp.Checks["model"] = "unhealthy: " + errNoArtifacts.Error()
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for name, probe := range h.checks {
		wg.Add(1)
		go func(name string, probe Check) {
			defer wg.Done()
			verdict := "healthy"
			if err := probe(ctx); err != nil {
				verdict = "unhealthy: " + err.Error()
			}
			mu.Lock()
			resp.Checks[name] = verdict
			mu.Unlock()
		}(name, probe)
	}
	wg.Wait()

	code := http.StatusOK
	for _, verdict := range resp.Checks {
		if verdict != "healthy" {
			resp.Status = "unhealthy"
			code = http.StatusServiceUnavailable
			break
		}
	}
	c.JSON(code, resp)
}

// Ready only requires a loaded model; optional stores do not gate traffic.
func (h *HealthHandler) Ready(c *gin.Context) {
	if h.bundle().IsLoaded() {
		c.JSON(http.StatusOK, stamp("ready"))
		return
	}
	c.JSON(http.StatusServiceUnavailable, stamp("not ready"))
}

func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, stamp("alive"))
}

func (h *HealthHandler) bundle() *artifacts.Bundle {
	if h.source == nil {
		return nil
	}
	return h.source.Current()
}
