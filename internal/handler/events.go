package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"riderapp/internal/service"
)

// EventsHandler exposes the buffered UI events to the client shell.
type EventsHandler struct {
	sink *service.MemorySink
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(sink *service.MemorySink) *EventsHandler {
	return &EventsHandler{sink: sink}
}

// Drain handles GET /v1/events. Events are delivered at most once; the
// caller owns them after the response is written.
func (h *EventsHandler) Drain(c *gin.Context) {
	events := h.sink.Drain()
	if events == nil {
		events = []service.Event{}
	}
	respondJSON(c, http.StatusOK, gin.H{"events": events})
}
