package handler

import (
	"io"

	"cashdesk/internal/infra"

	"github.com/gin-gonic/gin"
)

type StreamHandler struct{ bus *infra.EventBus }

func NewStreamHandler(bus *infra.EventBus) *StreamHandler { return &StreamHandler{bus: bus} }

// Events streams cash day events over Server-Sent Events. Each Redis pub/sub
// message becomes one SSE "cash" event; the connection lives until the client
// disconnects. Dashboards use this to refresh totals without polling.
func (h *StreamHandler) Events(c *gin.Context) {
	sub := h.bus.Subscribe(c.Request.Context())
	defer sub.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ch := sub.Channel()
	c.Stream(func(w io.Writer) bool {
		select {
		case msg, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("cash", msg.Payload)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
