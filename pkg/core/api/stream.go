/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package api pkg/core/api/stream.go
package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/carverauto/fleetradar/pkg/logger"
	"github.com/carverauto/fleetradar/pkg/models"
)

const (
	// streamWriteTimeout bounds a single WebSocket write; a client that
	// cannot drain a frame within it is treated as broken.
	streamWriteTimeout = 10 * time.Second
	// streamPingPeriod is the keepalive interval.
	streamPingPeriod = 30 * time.Second
	// streamSendBuffer is the per-client outbound queue. A full queue
	// means the client is too slow and gets dropped.
	streamSendBuffer = 8
)

// StreamMessage represents a message sent over the summary WebSocket.
type StreamMessage struct {
	Type      string               `json:"type"` // "summary", "ping", "error"
	Summary   *models.FleetSummary `json:"summary,omitempty"`
	Meta      *models.SummaryMeta  `json:"meta,omitempty"`
	Error     string               `json:"error,omitempty"`
	Timestamp time.Time            `json:"timestamp"`
}

func summaryMessage(summary *models.FleetSummary, meta models.SummaryMeta) StreamMessage {
	return StreamMessage{
		Type:      "summary",
		Summary:   summary,
		Meta:      &meta,
		Timestamp: time.Now(),
	}
}

func pingMessage() StreamMessage {
	return StreamMessage{
		Type:      "ping",
		Timestamp: time.Now(),
	}
}

// summaryHub tracks connected summary-stream clients and fans each new
// snapshot out to all of them.
type summaryHub struct {
	mu      sync.Mutex
	clients map[*streamClient]struct{}
	logger  logger.Logger
}

type streamClient struct {
	conn *websocket.Conn
	send chan StreamMessage
}

func newSummaryHub(log logger.Logger) *summaryHub {
	return &summaryHub{
		clients: make(map[*streamClient]struct{}),
		logger:  log,
	}
}

func (h *summaryHub) register(client *streamClient) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()
}

// unregister removes the client and closes its queue. Safe to call
// more than once for the same client.
func (h *summaryHub) unregister(client *streamClient) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	h.mu.Unlock()
}

// broadcast queues the message for every client. Clients whose queue
// is full are dropped rather than allowed to stall the pipeline.
func (h *summaryHub) broadcast(msg StreamMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		select {
		case client.send <- msg:
		default:
			h.logger.Warn().Msg("Dropping slow summary stream client")

			delete(h.clients, client)
			close(client.send)
		}
	}
}

func (h *summaryHub) clientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.clients)
}

// handleSummaryStream upgrades the connection and streams the fleet
// summary: the current snapshot immediately, then one message per
// pipeline run.
func (s *APIServer) handleSummaryStream(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return s.checkWebSocketOrigin(r)
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("remote_addr", r.RemoteAddr).
			Str("origin", r.Header.Get("Origin")).
			Msg("Failed to upgrade to WebSocket")

		return
	}

	s.logger.Info().
		Str("remote_addr", r.RemoteAddr).
		Msg("Summary stream connected")

	client := &streamClient{
		conn: conn,
		send: make(chan StreamMessage, streamSendBuffer),
	}

	// Queue the current state before registering so the connect-time
	// snapshot is always the first frame the client sees.
	client.send <- summaryMessage(s.coreService.Summary(), s.coreService.Meta())

	s.hub.register(client)

	go client.writePump(s.hub, s.logger)

	// Read loop: the client is not expected to send anything, but
	// reading is what surfaces close frames and dead connections.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	s.hub.unregister(client)

	s.logger.Debug().
		Str("remote_addr", r.RemoteAddr).
		Msg("Summary stream disconnected")
}

// writePump owns all writes to the connection: queued snapshots plus
// periodic pings. It exits when the queue closes or a write fails.
func (c *streamClient) writePump(hub *summaryHub, log logger.Logger) {
	ticker := time.NewTicker(streamPingPeriod)

	defer func() {
		ticker.Stop()
		hub.unregister(c)

		if err := c.conn.Close(); err != nil {
			log.Debug().Err(err).Msg("Summary stream close failed")
		}
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				deadline := time.Now().Add(streamWriteTimeout)
				_ = c.conn.WriteControl(websocket.CloseMessage, []byte{}, deadline)

				return
			}

			_ = c.conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))

			if err := c.conn.WriteJSON(msg); err != nil {
				log.Debug().
					Err(err).
					Str("remote_addr", c.conn.RemoteAddr().String()).
					Msg("Summary stream write failed")

				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))

			if err := c.conn.WriteJSON(pingMessage()); err != nil {
				return
			}
		}
	}
}

// checkWebSocketOrigin validates the Origin header for WebSocket
// connections using the same allow-list as the CORS middleware.
func (s *APIServer) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")

	// If there's no Origin header, allow the connection (same as middleware logic)
	if origin == "" {
		return true
	}

	// Check if the request origin is in the allowed list
	for _, allowedOrigin := range s.corsConfig.AllowedOrigins {
		if allowedOrigin == origin || allowedOrigin == "*" {
			return true
		}
	}

	// Log the rejected origin for debugging
	if s.logger != nil {
		s.logger.Warn().
			Str("origin", origin).
			Interface("allowed_origins", s.corsConfig.AllowedOrigins).
			Msg("WebSocket CORS: Origin not allowed")
	}

	return false
}
