package server

import (
	"context"
	"maps"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

type healthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

// health runs every probe concurrently under one timeout. Any failing probe
// turns the response into 503 "degraded".
func (s *Server) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.HealthTimeout)
	defer cancel()

	services := maps.Clone(s.info)
	healthy := true
	var mu sync.Mutex
	var g errgroup.Group
	for name, probe := range s.probes {
		g.Go(func() error {
			state := "ok"
			if err := probe(ctx); err != nil {
				state = "unavailable: " + err.Error()
			}
			mu.Lock()
			defer mu.Unlock()
			services[name] = state
			if state != "ok" {
				healthy = false
			}
			return nil
		})
	}
	_ = g.Wait()

	resp := healthResponse{Status: "healthy", Timestamp: s.now().UTC(), Services: services}
	status := http.StatusOK
	if !healthy {
		resp.Status = "degraded"
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}
