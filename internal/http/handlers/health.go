package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ReadyFunc reports the database connection state.
type ReadyFunc func() (status string, ok bool)

type HealthHandler struct {
	ready ReadyFunc
}

// create a new instance of the health handler
func NewHealthHandler(ready ReadyFunc) *HealthHandler {
	return &HealthHandler{ready: ready}
}

func (h *HealthHandler) Healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readyz is 200 only while the connection cache holds a live handle.
func (h *HealthHandler) Readyz(ctx *gin.Context) {
	if h.ready == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "db": "unknown"})
		return
	}

	status, ok := h.ready()
	if !ok {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "db": status})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ready", "db": status})
}
