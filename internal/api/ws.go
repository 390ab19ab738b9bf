package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"sommelier/internal/chat"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// WebSocket upgrader configuration
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// chatSession maintains one device's websocket ordering conversation.
type chatSession struct {
	conn         *websocket.Conn
	send         chan []byte
	mu           sync.Mutex
	orchestrator *chat.Orchestrator
}

// userFrame is what the client sends: one user message per frame.
type userFrame struct {
	Text string `json:"text"`
}

// turnFrame is what the server pushes back after each completed turn.
type turnFrame struct {
	ResponseToUser    string       `json:"response_to_user"`
	Action            *chat.Action `json:"action"`
	CheckoutRequested bool         `json:"checkout_requested"`
	Cart              cartView     `json:"cart"`
}

// HandleChatSocket upgrades the connection and runs the turn loop for
// the device named in the query string. Turns run one at a time; the
// orchestrator serializes them.
func (s *Server) HandleChatSocket(c *gin.Context) {
	device := c.Query("device")
	if device == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "device query parameter is required"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	var recorders []chat.Recorder
	if s.monitor != nil {
		recorders = append(recorders, s.monitor)
	}

	session := &chatSession{
		conn: conn,
		send: make(chan []byte, 256),
		orchestrator: chat.NewOrchestrator(
			s.menu, s.carts.Cart(device), s.gen, recorders...,
		),
	}

	go session.writePump()
	go session.readPump(device)
}

// readPump pumps user messages from the connection into chat turns
func (cs *chatSession) readPump(device string) {
	defer func() {
		cs.conn.Close()
	}()

	cs.conn.SetReadLimit(64 * 1024)
	cs.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	cs.conn.SetPongHandler(func(string) error {
		cs.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := cs.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error on device %s: %v", device, err)
			}
			break
		}

		cs.handleMessage(message, device)
	}
}

// writePump pumps outbound frames to the connection
func (cs *chatSession) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		cs.conn.Close()
	}()

	for {
		select {
		case message, ok := <-cs.send:
			cs.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				cs.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := cs.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			cs.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := cs.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage runs one chat turn for an inbound user frame.
func (cs *chatSession) handleMessage(message []byte, device string) {
	var frame userFrame
	if err := json.Unmarshal(message, &frame); err != nil {
		cs.sendError("invalid message format")
		return
	}
	if frame.Text == "" {
		cs.sendError("text is required")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result := cs.orchestrator.Turn(ctx, frame.Text)

	cs.sendFrame(turnFrame{
		ResponseToUser:    result.Reply,
		Action:            result.Action,
		CheckoutRequested: result.CheckoutRequested,
		Cart:              viewOf(device, cs.orchestrator.Cart()),
	})
}

func (cs *chatSession) sendFrame(frame turnFrame) {
	data, err := json.Marshal(frame)
	if err != nil {
		log.Printf("Error marshaling turn frame: %v", err)
		return
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()

	select {
	case cs.send <- data:
	default:
		log.Println("WebSocket buffer full, dropping message")
	}
}

func (cs *chatSession) sendError(message string) {
	response := map[string]string{"error": message}
	data, _ := json.Marshal(response)

	cs.mu.Lock()
	defer cs.mu.Unlock()

	select {
	case cs.send <- data:
	default:
		log.Println("WebSocket buffer full, dropping error message")
	}
}
