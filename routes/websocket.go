package routes

import (
	"context"
	"encoding/json"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/socialcause/cause-api/models"
	"github.com/socialcause/cause-api/utils"
)

// contributionEvent is the payload pushed to live feed subscribers whenever
// a contribution is recorded.
type contributionEvent struct {
	Type         string               `json:"type"`
	Contribution *models.Contribution `json:"contribution"`
}

// initialFeed is sent once to every client right after connecting.
type initialFeed struct {
	Type          string                `json:"type"`
	Contributions []models.Contribution `json:"contributions"`
}

// WebSocketHandler 处理WebSocket连接
func (ar *APIRoutes) WebSocketHandler(c *gin.Context) {
	conn, err := ar.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Error upgrading to WebSocket: %v", err)
		return
	}

	// 注册新客户端
	ar.register <- conn

	// 忽略客户端发送的消息，只处理服务器推送
	for {
		messageType, _, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		if messageType == websocket.PingMessage {
			if err := conn.WriteMessage(websocket.PongMessage, nil); err != nil {
				break
			}
		}
	}

	// 注销客户端
	ar.unregister <- conn
}

// runWebSocketHub owns the client map: registrations, disconnects and
// broadcast fan-out all go through here.
func (ar *APIRoutes) runWebSocketHub() {
	for {
		select {
		case client := <-ar.register:
			ar.mutex.Lock()
			ar.clients[client] = utils.GenerateReference()
			count := len(ar.clients)
			ar.mutex.Unlock()
			log.Printf("WebSocket client connected, %d active", count)

			// 发送初始数据
			go ar.sendInitialFeed(client)

		case client := <-ar.unregister:
			ar.mutex.Lock()
			if _, ok := ar.clients[client]; ok {
				delete(ar.clients, client)
				client.Close()
			}
			count := len(ar.clients)
			ar.mutex.Unlock()
			log.Printf("WebSocket client disconnected, %d active", count)

		case message := <-ar.broadcast:
			ar.mutex.Lock()
			for client, connID := range ar.clients {
				if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
					log.Printf("WebSocket write failed for %s: %v", connID, err)
					client.Close()
					delete(ar.clients, client)
				}
			}
			ar.mutex.Unlock()
		}
	}
}

// sendInitialFeed pushes the most recent contributions to a new client so
// the feed is not empty until the next donation.
func (ar *APIRoutes) sendInitialFeed(client *websocket.Conn) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	recent, err := ar.contributions.Recent(ctx, 10)
	if err != nil {
		log.Printf("Failed to load recent contributions: %v", err)
		return
	}

	payload, err := json.Marshal(initialFeed{
		Type:          "recent_contributions",
		Contributions: recent,
	})
	if err != nil {
		log.Printf("Failed to marshal initial feed: %v", err)
		return
	}

	ar.mutex.Lock()
	defer ar.mutex.Unlock()
	if _, ok := ar.clients[client]; !ok {
		return // 客户端已断开
	}
	if err := client.WriteMessage(websocket.TextMessage, payload); err != nil {
		log.Printf("Failed to send initial feed: %v", err)
	}
}

// broadcastContribution queues a live feed event without blocking the
// request that recorded the contribution.
func (ar *APIRoutes) broadcastContribution(contribution *models.Contribution) {
	payload, err := json.Marshal(contributionEvent{
		Type:         "contribution",
		Contribution: contribution,
	})
	if err != nil {
		log.Printf("Failed to marshal contribution event: %v", err)
		return
	}

	select {
	case ar.broadcast <- payload:
	default:
		log.Printf("WebSocket broadcast queue full, dropping event")
	}
}
