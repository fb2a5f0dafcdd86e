package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/salaohub/salon-scheduler/internal/httpresp"
	"github.com/salaohub/salon-scheduler/internal/middleware"
	"github.com/salaohub/salon-scheduler/internal/models"
)

type InteractionHandler struct {
	db *gorm.DB
}

func NewInteractionHandler(db *gorm.DB) *InteractionHandler {
	return &InteractionHandler{db: db}
}

// ======================================================
// LIST (atendimentos do salão)
// ======================================================
func (h *InteractionHandler) List(c *gin.Context) {
	salonID := c.MustGet(middleware.ContextSalonID).(uint)

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 || limit > 200 {
		limit = 50
	}

	var interactions []models.Interaction
	if err := h.db.
		Where("salon_id = ?", salonID).
		Order("created_at DESC").
		Limit(limit).
		Find(&interactions).Error; err != nil {

		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_list_interactions"})
		return
	}

	httpresp.List(c, interactions)
}

// ======================================================
// METRICS (resumo do bot do salão)
// ======================================================
func (h *InteractionHandler) Metrics(c *gin.Context) {
	salonID := c.MustGet(middleware.ContextSalonID).(uint)

	var total, llmCalls, failures int64

	base := h.db.Model(&models.Interaction{}).Where("salon_id = ?", salonID)

	base.Session(&gorm.Session{}).Count(&total)
	base.Session(&gorm.Session{}).Where("used_llm = ?", true).Count(&llmCalls)
	base.Session(&gorm.Session{}).Where("success = ?", false).Count(&failures)

	var avgLatency float64
	h.db.Model(&models.Interaction{}).
		Where("salon_id = ? AND used_llm = ?", salonID, true).
		Select("COALESCE(AVG(latency_seconds), 0)").
		Scan(&avgLatency)

	c.JSON(http.StatusOK, gin.H{
		"total":               total,
		"llm_calls":           llmCalls,
		"failures":            failures,
		"avg_latency_seconds": avgLatency,
	})
}

// ======================================================
// ADMIN: atendimentos do bot de suporte (leads)
// ======================================================
func (h *InteractionHandler) ListSupport(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 || limit > 200 {
		limit = 50
	}

	q := h.db.Where("channel = ?", models.InteractionSupportBot)

	if c.Query("leads") == "true" {
		q = q.Where("is_lead = ?", true)
	}

	var interactions []models.Interaction
	if err := q.
		Order("created_at DESC").
		Limit(limit).
		Find(&interactions).Error; err != nil {

		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_list_interactions"})
		return
	}

	httpresp.List(c, interactions)
}
