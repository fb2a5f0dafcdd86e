package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/salaohub/salon-scheduler/internal/middleware"
	"github.com/salaohub/salon-scheduler/internal/models"
	"github.com/salaohub/salon-scheduler/internal/storage"
	"github.com/salaohub/salon-scheduler/internal/timezone"
	"github.com/salaohub/salon-scheduler/internal/validators"
)

type SalonHandler struct {
	db       *gorm.DB
	uploader *storage.Uploader
}

func NewSalonHandler(db *gorm.DB, uploader *storage.Uploader) *SalonHandler {
	return &SalonHandler{db: db, uploader: uploader}
}

// ======================================================
// MEU SALÃO
// ======================================================

func (h *SalonHandler) GetMeSalon(c *gin.Context) {
	salonID := c.MustGet(middleware.ContextSalonID).(uint)

	var salon models.Salon
	if err := h.db.First(&salon, salonID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "salon_not_found"})
		return
	}

	c.JSON(http.StatusOK, salon)
}

type UpdateSalonRequest struct {
	Name              *string `json:"name"`
	Phone             *string `json:"phone"`
	WhatsApp          *string `json:"whatsapp"`
	Address           *string `json:"address"`
	OpeningHours      *string `json:"opening_hours"`
	Timezone          *string `json:"timezone"`
	MinAdvanceMinutes *int    `json:"min_advance_minutes"`
}

func (h *SalonHandler) UpdateMeSalon(c *gin.Context) {
	salonID := c.MustGet(middleware.ContextSalonID).(uint)

	var req UpdateSalonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	var salon models.Salon
	if err := h.db.First(&salon, salonID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "salon_not_found"})
		return
	}

	if req.Name != nil {
		salon.Name = *req.Name
	}
	if req.Phone != nil {
		salon.Phone = *req.Phone
	}
	if req.WhatsApp != nil {
		normalized := validators.NormalizePhone(*req.WhatsApp)
		if !validators.IsPhoneValid(normalized) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_whatsapp_number"})
			return
		}
		salon.WhatsApp = normalized
	}
	if req.Address != nil {
		salon.Address = *req.Address
	}
	if req.OpeningHours != nil {
		salon.OpeningHours = *req.OpeningHours
	}
	if req.Timezone != nil {
		if !timezone.IsValid(*req.Timezone) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_timezone"})
			return
		}
		salon.Timezone = *req.Timezone
	}
	if req.MinAdvanceMinutes != nil {
		if *req.MinAdvanceMinutes < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_min_advance"})
			return
		}
		salon.MinAdvanceMinutes = *req.MinAdvanceMinutes
	}

	if err := h.db.Save(&salon).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_update_salon"})
		return
	}

	c.JSON(http.StatusOK, salon)
}

// ======================================================
// FOTO
// ======================================================

func (h *SalonHandler) UploadPhoto(c *gin.Context) {
	salonID := c.MustGet(middleware.ContextSalonID).(uint)

	var salon models.Salon
	if err := h.db.First(&salon, salonID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "salon_not_found"})
		return
	}

	file, _, err := c.Request.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_photo_file"})
		return
	}
	defer file.Close()

	url, err := h.uploader.UploadPhoto(
		c.Request.Context(),
		"salons",
		fmt.Sprintf("%d", salon.ID),
		file,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_upload_photo"})
		return
	}

	salon.PhotoURL = url
	if err := h.db.Save(&salon).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_update_salon"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"photo_url": url})
}
