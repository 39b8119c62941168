package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns server health status with component checks",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status" doc:"Component status: healthy, degraded, or unhealthy"`
	Latency string `json:"latency,omitempty" doc:"Response time for this component"`
	Message string `json:"message,omitempty" doc:"Additional status information"`
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status     string                     `json:"status" doc:"Overall status: healthy, degraded, or unhealthy"`
	Components map[string]ComponentHealth `json:"components" doc:"Individual component statuses"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) handleHealthCheck(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
	resp := HealthResponse{
		Status: statusHealthy,
		Components: map[string]ComponentHealth{
			"database": s.checkDatabase(ctx),
			"search":   s.checkSearchIndex(),
			"sse":      s.checkSSEManager(),
		},
	}
	// Only the store can make the server unhealthy; anything else degrades it.
	for name, c := range resp.Components {
		if c.Status == statusHealthy {
			continue
		}
		if name == "database" && c.Status == statusUnhealthy {
			resp.Status = statusUnhealthy
			break
		}
		resp.Status = statusDegraded
	}
	return &HealthOutput{Body: resp}, nil
}

// timed runs check and stamps its latency on the result.
func timed(check func() ComponentHealth) ComponentHealth {
	start := time.Now()
	h := check()
	h.Latency = time.Since(start).String()
	return h
}

func (s *Server) checkDatabase(ctx context.Context) ComponentHealth {
	if s.store == nil {
		return ComponentHealth{Status: statusDegraded, Message: "database not configured"}
	}
	return timed(func() ComponentHealth {
		if err := s.store.Ping(ctx); err != nil {
			return ComponentHealth{Status: statusUnhealthy, Message: "database ping failed"}
		}
		return ComponentHealth{Status: statusHealthy}
	})
}

// checkSearchIndex treats an empty index as degraded: the storefront still
// works, search just finds nothing until a reindex.
func (s *Server) checkSearchIndex() ComponentHealth {
	if s.services == nil || s.services.Search == nil {
		return ComponentHealth{Status: statusDegraded, Message: "search service not configured"}
	}
	return timed(func() ComponentHealth {
		n, err := s.services.Search.DocumentCount()
		switch {
		case err != nil:
			return ComponentHealth{Status: statusUnhealthy, Message: "search index unreachable"}
		case n == 0:
			return ComponentHealth{Status: statusDegraded, Message: "search index empty"}
		}
		return ComponentHealth{Status: statusHealthy, Message: fmt.Sprintf("%d documents", n)}
	})
}

func (s *Server) checkSSEManager() ComponentHealth {
	if s.sseManager == nil {
		return ComponentHealth{Status: statusDegraded, Message: "event stream not configured"}
	}
	n := s.sseManager.ClientCount()
	if n == 1 {
		return ComponentHealth{Status: statusHealthy, Message: "1 connected client"}
	}
	return ComponentHealth{Status: statusHealthy, Message: fmt.Sprintf("%d connected clients", n)}
}
