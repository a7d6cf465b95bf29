package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is a dependency that can be probed for readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a context-free probe such as a NATS connection check.
type PingFunc func() error

func (f PingFunc) Ping(context.Context) error { return f() }

type SystemHandler struct {
	deps map[string]Pinger
}

// NewSystemHandler probes postgres, minio and nats on /readyz. Nil deps are skipped.
func NewSystemHandler(db, minio, nats Pinger) *SystemHandler {
	deps := map[string]Pinger{}
	for name, p := range map[string]Pinger{"postgres": db, "minio": minio, "nats": nats} {
		if p != nil {
			deps[name] = p
		}
	}
	return &SystemHandler{deps: deps}
}

func (h *SystemHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *SystemHandler) Readyz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true
	for name, dep := range h.deps {
		if err := dep.Ping(ctx); err != nil {
			checks[name] = err.Error()
			healthy = false
			continue
		}
		checks[name] = "ok"
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status": map[bool]string{true: "ready", false: "not ready"}[healthy],
		"checks": checks,
	})
}
