package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/salaohub/salon-scheduler/internal/bot"
)

// WebhookHandler recebe os eventos do gateway do WhatsApp e os entrega
// ao roteador do bot. Sempre responde rápido: o gateway reentrega em 5xx.
type WebhookHandler struct {
	router *bot.Router
}

func NewWebhookHandler(router *bot.Router) *WebhookHandler {
	return &WebhookHandler{router: router}
}

func (h *WebhookHandler) Receive(c *gin.Context) {
	instance := c.Param("instance")

	var payload bot.InboundPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_payload"})
		return
	}

	result, err := h.router.HandleInbound(c.Request.Context(), instance, &payload)
	if err != nil {
		switch {
		case errors.Is(err, bot.ErrInvalidPayload):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_payload"})
		case errors.Is(err, bot.ErrUnknownInstance):
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown_instance"})
		default:
			log.Println("webhook:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "processing_failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": string(result)})
}
