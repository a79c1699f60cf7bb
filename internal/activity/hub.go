package activity

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/issuedesk-dev/issuedesk/internal/models"
	"gorm.io/datatypes"
)

var (
	projectClients   = make(map[uint]map[*websocket.Conn]bool)
	projectClientsMu sync.RWMutex
)

const (
	WriteWait      = 10 * time.Second
	PongWait       = 60 * time.Second
	PingPeriod     = (PongWait * 9) / 10
	MaxMessageSize = 512
)

type eventMessage struct {
	Type        string         `json:"type"`
	ID          uint           `json:"id"`
	ProjectID   uint           `json:"project_id"`
	ActorUserID uint           `json:"actor_user_id"`
	Action      string         `json:"action"`
	Payload     datatypes.JSON `json:"payload"`
	CreatedTime time.Time      `json:"created_time"`
}

// RegisterClient attaches a websocket connection to a project's event stream.
func RegisterClient(projectID uint, conn *websocket.Conn) {
	projectClientsMu.Lock()
	if projectClients[projectID] == nil {
		projectClients[projectID] = make(map[*websocket.Conn]bool)
	}
	projectClients[projectID][conn] = true
	projectClientsMu.Unlock()
}

// UnregisterClient detaches a connection. Closing the connection is the
// caller's job.
func UnregisterClient(projectID uint, conn *websocket.Conn) {
	projectClientsMu.Lock()

	if clients, exists := projectClients[projectID]; exists {
		delete(clients, conn)

		if len(clients) == 0 {
			delete(projectClients, projectID)
		}
	}

	projectClientsMu.Unlock()
}

func broadcast(event models.ActivityEvent) {
	projectClientsMu.RLock()
	clients, exists := projectClients[event.ProjectID]
	if !exists || len(clients) == 0 {
		projectClientsMu.RUnlock()
		return
	}

	// Copy the connections so the lock is not held while writing
	clientsCopy := make([]*websocket.Conn, 0, len(clients))
	for conn := range clients {
		clientsCopy = append(clientsCopy, conn)
	}
	projectClientsMu.RUnlock()

	message := eventMessage{
		Type:        "activity",
		ID:          event.ID,
		ProjectID:   event.ProjectID,
		ActorUserID: event.ActorUserID,
		Action:      event.Action,
		Payload:     event.Payload,
		CreatedTime: event.CreatedAt,
	}

	for _, conn := range clientsCopy {
		if err := conn.SetWriteDeadline(time.Now().Add(WriteWait)); err != nil {
			log.Printf("Failed to set write deadline for broadcast: %v", err)
			continue
		}

		if err := conn.WriteJSON(message); err != nil {
			log.Printf("Failed to broadcast event to client: %v", err)
			UnregisterClient(event.ProjectID, conn)
			conn.Close()
		}
	}
}
