package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/tasksync/api/transport"
	"github.com/fastygo/tasksync/internal/infrastructure/monitor"
	"github.com/fastygo/tasksync/pkg/httpcontext"
)

// StatusSource reports the current connectivity snapshot.
type StatusSource interface {
	GetStatus() monitor.Status
}

// BufferSizer reports how many writes wait for replay.
type BufferSizer interface {
	Size() int
}

type HealthHandler struct {
	baseHandler
	monitor StatusSource
	buffer  BufferSizer
}

func NewHealthHandler(mon StatusSource, buffer BufferSizer, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		monitor:     mon,
		buffer:      buffer,
	}
}

// @Summary Health check
// @Tags health
// @Router /health [get]
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	status := h.monitor.GetStatus()
	pending := 0
	if h.buffer != nil {
		pending = h.buffer.Size()
	}

	payload := map[string]interface{}{
		"timestamp": time.Now().UTC(),
		"connectivity": map[string]interface{}{
			"networkReachable":  status.NetworkReachable,
			"internetReachable": status.InternetReachable,
			"connected":         status.Connected(),
			"lastCheck":         status.LastCheck,
			"lastError":         status.LastError,
		},
		"buffer": map[string]interface{}{
			"pending": pending,
		},
	}

	if status.Connected() {
		h.respondSuccess(ctx, http.StatusOK, payload)
		return
	}
	// Offline is a supported mode: reads come from the local cache and writes are queued.
	h.respondJSON(ctx, http.StatusOK, transport.Envelope{Status: "degraded", Code: "OFFLINE", Data: payload})
}
