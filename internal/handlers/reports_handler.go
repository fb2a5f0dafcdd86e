package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/salaohub/salon-scheduler/internal/httpresp"
	"github.com/salaohub/salon-scheduler/internal/middleware"
	"github.com/salaohub/salon-scheduler/internal/models"
	"github.com/salaohub/salon-scheduler/internal/timezone"
)

// ReportsHandler expõe os relatórios do painel do salão: frequência de
// clientes, serviços mais agendados, horários de pico e faturamento.
type ReportsHandler struct {
	db *gorm.DB
}

func NewReportsHandler(db *gorm.DB) *ReportsHandler {
	return &ReportsHandler{db: db}
}

// parsePeriod interpreta ?from=AAAA-MM-DD&to=AAAA-MM-DD. Sem parâmetros,
// cobre os últimos 30 dias. O fim devolvido é exclusivo (dia seguinte a "to").
func parsePeriod(fromStr, toStr string, now time.Time, loc *time.Location) (time.Time, time.Time, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	start := today.AddDate(0, 0, -30)
	end := today.AddDate(0, 0, 1)

	if fromStr != "" {
		t, err := time.ParseInLocation("2006-01-02", fromStr, loc)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start = t
	}

	if toStr != "" {
		t, err := time.ParseInLocation("2006-01-02", toStr, loc)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end = t.AddDate(0, 0, 1)
	}

	return start, end, nil
}

func (h *ReportsHandler) period(c *gin.Context, loc *time.Location) (time.Time, time.Time, bool) {
	start, end, err := parsePeriod(c.Query("from"), c.Query("to"), time.Now().In(loc), loc)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_period"})
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func (h *ReportsHandler) salonLocation(c *gin.Context, salonID uint) *time.Location {
	var salon models.Salon
	if err := h.db.First(&salon, salonID).Error; err != nil {
		return timezone.Location(timezone.DefaultTimezone)
	}
	return timezone.Location(salon.Timezone)
}

// ======================================================
// FREQUÊNCIA DE CLIENTES
// ======================================================
func (h *ReportsHandler) ClientFrequency(c *gin.Context) {
	salonID := c.MustGet(middleware.ContextSalonID).(uint)

	start, end, ok := h.period(c, h.salonLocation(c, salonID))
	if !ok {
		return
	}

	type row struct {
		ClientID uint   `json:"client_id"`
		Name     string `json:"name"`
		WhatsApp string `json:"whatsapp"`
		Total    int64  `json:"total"`
	}

	var rows []row
	err := h.db.Model(&models.Appointment{}).
		Select("appointments.client_id, clients.name, clients.whatsapp, COUNT(*) AS total").
		Joins("JOIN clients ON clients.id = appointments.client_id").
		Where("appointments.salon_id = ? AND appointments.start_time >= ? AND appointments.start_time < ?",
			salonID, start, end).
		Where("appointments.status <> ?", "cancelled").
		Group("appointments.client_id, clients.name, clients.whatsapp").
		Order("total DESC").
		Limit(20).
		Scan(&rows).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_build_report"})
		return
	}

	httpresp.List(c, rows)
}

// ======================================================
// SERVIÇOS MAIS AGENDADOS
// ======================================================
func (h *ReportsHandler) PopularServices(c *gin.Context) {
	salonID := c.MustGet(middleware.ContextSalonID).(uint)

	start, end, ok := h.period(c, h.salonLocation(c, salonID))
	if !ok {
		return
	}

	type row struct {
		ServiceID uint    `json:"service_id"`
		Name      string  `json:"name"`
		Total     int64   `json:"total"`
		Revenue   float64 `json:"revenue"`
	}

	var rows []row
	err := h.db.Model(&models.Appointment{}).
		Select("appointments.service_id, services.name, COUNT(*) AS total, COALESCE(SUM(services.price), 0) AS revenue").
		Joins("JOIN services ON services.id = appointments.service_id").
		Where("appointments.salon_id = ? AND appointments.start_time >= ? AND appointments.start_time < ?",
			salonID, start, end).
		Where("appointments.status <> ?", "cancelled").
		Group("appointments.service_id, services.name").
		Order("total DESC").
		Scan(&rows).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_build_report"})
		return
	}

	httpresp.List(c, rows)
}

// ======================================================
// HORÁRIOS DE PICO
// ======================================================
func (h *ReportsHandler) PeakHours(c *gin.Context) {
	salonID := c.MustGet(middleware.ContextSalonID).(uint)

	var salon models.Salon
	if err := h.db.First(&salon, salonID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "salon_not_found"})
		return
	}

	loc := timezone.Location(salon.Timezone)
	start, end, ok := h.period(c, loc)
	if !ok {
		return
	}

	type row struct {
		Hour  int   `json:"hour"`
		Total int64 `json:"total"`
	}

	var rows []row
	err := h.db.Model(&models.Appointment{}).
		Select("CAST(EXTRACT(HOUR FROM start_time AT TIME ZONE ?) AS int) AS hour, COUNT(*) AS total", salon.Timezone).
		Where("salon_id = ? AND start_time >= ? AND start_time < ?", salonID, start, end).
		Where("status <> ?", "cancelled").
		Group("hour").
		Order("total DESC").
		Scan(&rows).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_build_report"})
		return
	}

	httpresp.List(c, rows)
}

// ======================================================
// FATURAMENTO
// ======================================================
func (h *ReportsHandler) Finance(c *gin.Context) {
	salonID := c.MustGet(middleware.ContextSalonID).(uint)

	start, end, ok := h.period(c, h.salonLocation(c, salonID))
	if !ok {
		return
	}

	type totals struct {
		Completed int64   `json:"completed"`
		Cancelled int64   `json:"cancelled"`
		Revenue   float64 `json:"revenue"`
	}

	var out totals

	base := h.db.Model(&models.Appointment{}).
		Where("appointments.salon_id = ? AND appointments.start_time >= ? AND appointments.start_time < ?",
			salonID, start, end)

	base.Session(&gorm.Session{}).Where("status = ?", "completed").Count(&out.Completed)
	base.Session(&gorm.Session{}).Where("status = ?", "cancelled").Count(&out.Cancelled)

	err := base.Session(&gorm.Session{}).
		Select("COALESCE(SUM(services.price), 0)").
		Joins("JOIN services ON services.id = appointments.service_id").
		Where("appointments.status = ?", "completed").
		Scan(&out.Revenue).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_build_report"})
		return
	}

	c.JSON(http.StatusOK, out)
}

// ======================================================
// ADMIN: VISÃO GERAL DA PLATAFORMA
// ======================================================
func (h *ReportsHandler) AdminStats(c *gin.Context) {
	var salons, activeSalons, appointments, interactions int64

	h.db.Model(&models.Salon{}).Count(&salons)
	h.db.Model(&models.Salon{}).Where("active = ?", true).Count(&activeSalons)
	h.db.Model(&models.Appointment{}).Count(&appointments)
	h.db.Model(&models.Interaction{}).Count(&interactions)

	c.JSON(http.StatusOK, gin.H{
		"salons":        salons,
		"active_salons": activeSalons,
		"appointments":  appointments,
		"interactions":  interactions,
	})
}
