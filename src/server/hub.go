package server

import (
	"encoding/json"
	"net/http"

	"series-proxy/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// handleWebsockets is the main Hub loop
func (s *APIServer) handleWebsockets() {
	for {
		select {
		case client := <-s.register:
			s.clients[client] = struct{}{}
			s.connections.Add(1)

			// Send the current snapshot on connect
			s.stateMutex.RLock()
			latest := s.latestState
			s.stateMutex.RUnlock()
			if latest != nil {
				client.trySend(withType(latest, "INITIAL"))
			}

		case client := <-s.unregister:
			s.dropClient(client)

		case message := <-s.broadcast:
			s.stateMutex.Lock()
			s.latestState = message
			s.stateMutex.Unlock()

			for client := range s.clients {
				if !client.trySend(message) {
					// Client too slow, disconnect to prevent Hub blocking
					s.dropClient(client)
				}
			}

		case <-s.done:
			for client := range s.clients {
				s.dropClient(client)
			}
			return
		}
	}
}

// -----------------------------------------------------------------------------

func (s *APIServer) dropClient(client *Client) {
	if _, ok := s.clients[client]; ok {
		delete(s.clients, client)
		client.closeSend()
		s.connections.Add(-1)
	}
}

// -----------------------------------------------------------------------------
// Data Exchange Interface Implementation
// -----------------------------------------------------------------------------

// UpdateLatest replaces the cached snapshot without notifying websocket clients.
func (s *APIServer) UpdateLatest(snapshot *models.MLatestData) {
	if snapshot == nil {
		return
	}
	s.stateMutex.Lock()
	s.latestState = snapshot
	s.stateMutex.Unlock()
}

// -----------------------------------------------------------------------------

// Broadcast queues a snapshot for every websocket client and caches it.
func (s *APIServer) Broadcast(snapshot *models.MLatestData) {
	if snapshot == nil {
		return
	}
	s.UpdateLatest(snapshot)

	select {
	case s.broadcast <- snapshot:
	case <-s.done:
	}
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *APIServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		hub:  s,
		conn: conn,
		// Buffered channel to prevent blocking the Hub loop
		send: make(chan *models.MLatestData, 256),
	}

	select {
	case s.register <- client:
	case <-s.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

// HandleClientMessage answers a subscribe command with the matching part of
// the latest snapshot.
func (s *APIServer) HandleClientMessage(client *Client, message []byte) {
	var cmd models.MSubscribeCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		s.Logger.Info("Failed to parse client command: %v, disconnecting client", err)
		client.conn.Close()
		return
	}

	if cmd.Command != "subscribe" {
		return
	}

	s.stateMutex.RLock()
	latest := s.latestState
	s.stateMutex.RUnlock()
	if latest == nil {
		return
	}

	client.trySend(filterSnapshot(latest, cmd.Series))
}

// -----------------------------------------------------------------------------
// Response Filtering
// -----------------------------------------------------------------------------

// filterSnapshot keeps the requested series, in request order. An empty list
// selects everything.
func filterSnapshot(latest *models.MLatestData, series []string) *models.MLatestData {
	out := withType(latest, "INITIAL")
	if len(series) == 0 || latest.Results == nil {
		return out
	}

	wanted := models.NewSeriesRequest(series)
	filtered := models.NewResultMap(len(wanted))
	for _, id := range wanted {
		if r, ok := latest.Results.Get(id); ok {
			filtered.Set(id, r)
		}
	}
	out.Results = filtered

	changes := make([]models.MSeriesChange, 0, len(latest.Changes))
	for _, c := range latest.Changes {
		if _, ok := filtered.Get(c.SeriesID); ok {
			changes = append(changes, c)
		}
	}
	out.Changes = changes
	return out
}

func withType(latest *models.MLatestData, kind string) *models.MLatestData {
	cp := *latest
	cp.Type = kind
	return &cp
}
