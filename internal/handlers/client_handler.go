package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/salaohub/salon-scheduler/internal/middleware"
	"github.com/salaohub/salon-scheduler/internal/models"
	"github.com/salaohub/salon-scheduler/internal/validators"
)

type ClientHandler struct {
	db *gorm.DB
}

func NewClientHandler(db *gorm.DB) *ClientHandler {
	return &ClientHandler{db: db}
}

// ======================================================
// LIST
// ======================================================
func (h *ClientHandler) List(c *gin.Context) {
	salonID := c.MustGet(middleware.ContextSalonID).(uint)

	query := strings.ToLower(strings.TrimSpace(c.Query("query")))

	q := h.db.Where("salon_id = ?", salonID)

	if query != "" {
		like := "%" + query + "%"
		q = q.Where(
			"LOWER(name) LIKE ? OR whatsapp LIKE ? OR LOWER(email) LIKE ?",
			like, like, like,
		)
	}

	var clients []models.Client
	if err := q.
		Order("created_at DESC").
		Find(&clients).Error; err != nil {

		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_list_clients"})
		return
	}

	c.JSON(http.StatusOK, clients)
}

// ======================================================
// CREATE
// ======================================================

type ClientRequest struct {
	Name      string `json:"name" binding:"required"`
	WhatsApp  string `json:"whatsapp"`
	Email     string `json:"email"`
	Notes     string `json:"notes"`
	Birthdate string `json:"birthdate"` // 2006-01-02
}

func (h *ClientHandler) Create(c *gin.Context) {
	salonID := c.MustGet(middleware.ContextSalonID).(uint)

	var req ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	client := models.Client{
		SalonID:  salonID,
		Name:     req.Name,
		WhatsApp: validators.NormalizePhone(req.WhatsApp),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Notes:    req.Notes,
	}

	if req.Birthdate != "" {
		bd, err := time.Parse("2006-01-02", req.Birthdate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_birthdate"})
			return
		}
		client.Birthdate = &bd
	}

	if err := h.db.Create(&client).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_create_client"})
		return
	}

	c.JSON(http.StatusCreated, client)
}

// ======================================================
// UPDATE (inclui o desligamento do bot para o número)
// ======================================================

type UpdateClientRequest struct {
	Name        *string `json:"name"`
	WhatsApp    *string `json:"whatsapp"`
	Email       *string `json:"email"`
	Notes       *string `json:"notes"`
	Birthdate   *string `json:"birthdate"`
	BotDisabled *bool   `json:"bot_disabled"`
}

func (h *ClientHandler) Update(c *gin.Context) {
	salonID := c.MustGet(middleware.ContextSalonID).(uint)

	var client models.Client
	if err := h.db.
		Where("id = ? AND salon_id = ?", c.Param("id"), salonID).
		First(&client).Error; err != nil {

		c.JSON(http.StatusNotFound, gin.H{"error": "client_not_found"})
		return
	}

	var req UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	if req.Name != nil {
		client.Name = *req.Name
	}
	if req.WhatsApp != nil {
		client.WhatsApp = validators.NormalizePhone(*req.WhatsApp)
	}
	if req.Email != nil {
		client.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Notes != nil {
		client.Notes = *req.Notes
	}
	if req.Birthdate != nil {
		if *req.Birthdate == "" {
			client.Birthdate = nil
		} else {
			bd, err := time.Parse("2006-01-02", *req.Birthdate)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_birthdate"})
				return
			}
			client.Birthdate = &bd
		}
	}
	if req.BotDisabled != nil {
		client.BotDisabled = *req.BotDisabled
	}

	if err := h.db.Save(&client).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_update_client"})
		return
	}

	c.JSON(http.StatusOK, client)
}
