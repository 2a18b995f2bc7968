package http

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	jackpotService "naffles.com/pointsbackend/internal/modules/jackpot/service"
	"naffles.com/pointsbackend/pkg/response"
)

type JackpotHandler struct {
	service     jackpotService.Service
	redisClient *redis.Client
	upgrader    websocket.Upgrader
}

func NewJackpotHandler(service jackpotService.Service, redisClient *redis.Client) *JackpotHandler {
	return &JackpotHandler{
		service:     service,
		redisClient: redisClient,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins for now
			},
		},
	}
}

func (h *JackpotHandler) GetJackpot(c *gin.Context) {
	jackpot, err := h.service.Get(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": jackpot})
}

// HandleWebSocket streams live pot updates. Every increment, growth tick and
// win publishes the new amount on the jackpot channel; this just forwards
// those payloads to the client.
func (h *JackpotHandler) HandleWebSocket(c *gin.Context) {
	if _, err := response.GetUserID(c); err != nil {
		response.ResponseError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade websocket: %v", err)
		return
	}
	defer conn.Close()

	if h.redisClient == nil {
		log.Println("Redis client is nil, cannot subscribe")
		return
	}

	pubsub := h.redisClient.Subscribe(c.Request.Context(), jackpotService.JackpotChannel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(c.Request.Context()); err != nil {
		log.Printf("Failed to subscribe to redis channel: %v", err)
		return
	}

	ch := pubsub.Channel()

	clientClosed := make(chan struct{})
	go func() {
		defer close(clientClosed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case msg := <-ch:
			// Payload is already the JSON pot snapshot, forward as-is.
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				log.Printf("Failed to write message to websocket: %v", err)
				return
			}
		case <-clientClosed:
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}
