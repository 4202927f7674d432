package handlers

import (
	"bufio"
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/spec-kit/asset-service/internal/events"
	"github.com/spec-kit/asset-service/internal/observability"
)

// EventsHandler streams broadcast events to live subscribers over SSE. One
// JSON object per message; keep-alive frames flow through the same channel.
type EventsHandler struct {
	broadcaster *events.Broadcaster
	metrics     *observability.Metrics
	logger      *zap.Logger
}

// NewEventsHandler constructs handler.
func NewEventsHandler(broadcaster *events.Broadcaster, metrics *observability.Metrics, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{broadcaster: broadcaster, metrics: metrics, logger: logger}
}

// Stream GET /events/stream.
func (h *EventsHandler) Stream(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		id, ch := h.broadcaster.Subscribe()
		defer h.broadcaster.Unsubscribe(id)
		h.logger.Debug("event subscriber connected", zap.String("subscriber_id", id))

		for ev := range ch {
			payload, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			h.metrics.RecordEvent(string(ev.Kind))
			if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
				return
			}
			// A failed flush means the client is gone; the deferred
			// unsubscribe removes it from the registry.
			if err := w.Flush(); err != nil {
				return
			}
		}
	}))
	return nil
}
