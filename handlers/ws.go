package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/pworkhq/portal/database"
	"github.com/pworkhq/portal/services"
)

// WSHandler upgrades authenticated connections into snapshot subscribers.
type WSHandler struct {
	store *database.Store
	hub   *services.Hub
}

func NewWSHandler(store *database.Store, hub *services.Hub) *WSHandler {
	return &WSHandler{store: store, hub: hub}
}

// Subscribe upgrades the HTTP connection and registers the client with the
// hub. The current state of every collection is pushed immediately, then the
// client receives a snapshot whenever any write lands, its own included. The
// subscription lives until the connection drops; there is no finer-grained
// cancellation.
func (h *WSHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if user == nil {
		http.Error(w, "user not found", http.StatusUnauthorized)
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true // Allow all origins in development
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Error upgrading to WebSocket: %v", err)
		return
	}

	client := &services.Client{
		Hub:    h.hub,
		Conn:   conn,
		Send:   make(chan []byte, 256),
		UserID: user.ID,
	}

	h.hub.Register(client)
	log.Printf("Snapshot subscriber registered: %s", user.ID)

	// Initial snapshots, like a fresh listener attaching.
	h.pushInitial(client)

	// Start goroutines for reading and writing
	go client.WritePump()
	go client.ReadPump()
}

func (h *WSHandler) pushInitial(client *services.Client) {
	if cfg, err := h.store.GetConfig(); err == nil {
		h.queue(client, services.SnapshotConfig, cfg)
	}
	if users, err := h.store.ListUsers(); err == nil {
		for i := range users {
			users[i].Password = ""
		}
		h.queue(client, services.SnapshotUsers, users)
	}
	if projects, err := h.store.ListProjects(); err == nil {
		h.queue(client, services.SnapshotProjects, projects)
	}
}

func (h *WSHandler) queue(client *services.Client, msgType string, data any) {
	payload, err := json.Marshal(services.SnapshotMessage{Type: msgType, Data: data})
	if err != nil {
		log.Printf("Error marshalling initial snapshot: %v", err)
		return
	}
	select {
	case client.Send <- payload:
	default:
	}
}
