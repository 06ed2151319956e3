package websocket

import (
	"context"
	"time"

	"ai-writer-be/internal/agent/event"
	"ai-writer-be/internal/agent/eventbus"
	"ai-writer-be/internal/pkg/logger"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// ServeAgentStream bridges one websocket connection to the in-process event
// bus for a session. The connection receives every envelope published after
// registration, in publish order, as JSON text frames. Clients are not
// expected to send anything; the read pump only watches for disconnects.
// The loop ends after session_closed or when the client goes away.
func ServeAgentStream(bus *eventbus.Bus, conn *websocket.Conn, sessionID string, log logger.ILogger) {
	sub := bus.Register(sessionID)
	defer bus.Unregister(sessionID, sub)
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// Read pump. Its only job is to notice the peer leaving.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// Delivery pump. Moves envelopes from the subscriber queue onto a
	// channel the write loop can select on alongside the ping ticker.
	envelopes := make(chan event.Envelope)
	go func() {
		defer close(envelopes)
		for {
			ev, err := sub.Next(ctx)
			if err != nil {
				return
			}
			select {
			case envelopes <- ev:
			case <-ctx.Done():
				return
			}
			if ev.Type == event.TypeSessionClosed {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-envelopes:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				log.Warn("agent_stream", "write failed, dropping connection", map[string]interface{}{
					"session_id": sessionID,
					"error":      err.Error(),
				})
				return
			}
			if ev.Type == event.TypeSessionClosed {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
