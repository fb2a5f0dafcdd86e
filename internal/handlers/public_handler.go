package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	domain "github.com/salaohub/salon-scheduler/internal/domain/booking"
	"github.com/salaohub/salon-scheduler/internal/httperr"
	"github.com/salaohub/salon-scheduler/internal/models"
	"github.com/salaohub/salon-scheduler/internal/timezone"
	ucBooking "github.com/salaohub/salon-scheduler/internal/usecase/booking"
	"github.com/salaohub/salon-scheduler/internal/validators"
)

// PublicHandler expõe a página de agendamento do salão por slug,
// sem autenticação.
type PublicHandler struct {
	db *gorm.DB

	createUC       *ucBooking.CreateAppointment
	availabilityUC *ucBooking.GetAvailability
}

func NewPublicHandler(
	db *gorm.DB,
	createUC *ucBooking.CreateAppointment,
	availabilityUC *ucBooking.GetAvailability,
) *PublicHandler {
	return &PublicHandler{
		db:             db,
		createUC:       createUC,
		availabilityUC: availabilityUC,
	}
}

func (h *PublicHandler) findSalon(c *gin.Context) (*models.Salon, bool) {
	var salon models.Salon
	if err := h.db.
		Where("slug = ? AND active = ?", c.Param("slug"), true).
		First(&salon).Error; err != nil {

		httperr.NotFound(c, "salon_not_found", "Salão não encontrado.")
		return nil, false
	}
	return &salon, true
}

// ======================================================
// INFO + CATÁLOGO
// ======================================================

func (h *PublicHandler) GetSalon(c *gin.Context) {
	salon, ok := h.findSalon(c)
	if !ok {
		return
	}

	c.JSON(200, gin.H{
		"name":          salon.Name,
		"slug":          salon.Slug,
		"address":       salon.Address,
		"phone":         salon.Phone,
		"whatsapp":      salon.WhatsApp,
		"opening_hours": salon.OpeningHours,
		"photo_url":     salon.PhotoURL,
	})
}

func (h *PublicHandler) ListServices(c *gin.Context) {
	salon, ok := h.findSalon(c)
	if !ok {
		return
	}

	var services []models.Service
	if err := h.db.
		Where("salon_id = ? AND active = ?", salon.ID, true).
		Order("id").
		Find(&services).Error; err != nil {

		httperr.Internal(c, "failed_to_list_services", "Erro ao listar serviços.")
		return
	}

	c.JSON(200, services)
}

func (h *PublicHandler) ListProfessionals(c *gin.Context) {
	salon, ok := h.findSalon(c)
	if !ok {
		return
	}

	var professionals []models.Professional
	if err := h.db.
		Select("id", "name", "specialty").
		Where("salon_id = ?", salon.ID).
		Order("id").
		Find(&professionals).Error; err != nil {

		httperr.Internal(c, "failed_to_list_professionals", "Erro ao listar profissionais.")
		return
	}

	c.JSON(200, professionals)
}

// ======================================================
// DISPONIBILIDADE
// ======================================================

func (h *PublicHandler) Availability(c *gin.Context) {
	salon, ok := h.findSalon(c)
	if !ok {
		return
	}

	professionalID, err := strconv.ParseUint(c.Query("professional_id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_professional", "Profissional inválido.")
		return
	}

	serviceID, err := strconv.ParseUint(c.Query("service_id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_service", "Serviço inválido.")
		return
	}

	date, err := time.ParseInLocation("2006-01-02", c.Query("date"), timezone.Location(salon.Timezone))
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Data inválida.")
		return
	}

	slots, err := h.availabilityUC.Execute(c.Request.Context(), domain.AvailabilityInput{
		SalonID:        salon.ID,
		ProfessionalID: uint(professionalID),
		ServiceID:      uint(serviceID),
		Date:           date,
	})
	if err != nil {
		writeBookingError(c, err)
		return
	}

	c.JSON(200, gin.H{"slots": slots})
}

// ======================================================
// AGENDAMENTO PÚBLICO
// ======================================================

type PublicAppointmentRequest struct {
	ProfessionalID uint   `json:"professional_id" binding:"required"`
	ServiceID      uint   `json:"service_id" binding:"required"`
	ClientName     string `json:"client_name" binding:"required"`
	ClientPhone    string `json:"client_phone" binding:"required"`
	ClientEmail    string `json:"client_email"`
	Date           string `json:"date" binding:"required"`
	Time           string `json:"time" binding:"required"`
}

func (h *PublicHandler) CreateAppointment(c *gin.Context) {
	salon, ok := h.findSalon(c)
	if !ok {
		return
	}

	var req PublicAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	phone := validators.NormalizePhone(req.ClientPhone)
	if !validators.IsPhoneValid(phone) {
		httperr.BadRequest(c, "invalid_phone", "Telefone inválido.")
		return
	}

	ap, err := h.createUC.Execute(c.Request.Context(), ucBooking.CreateAppointmentInput{
		SalonID:        salon.ID,
		ProfessionalID: req.ProfessionalID,
		ServiceID:      req.ServiceID,
		ClientName:     req.ClientName,
		ClientPhone:    phone,
		ClientEmail:    req.ClientEmail,
		Date:           req.Date,
		Time:           req.Time,
	})
	if err != nil {
		writeBookingError(c, err)
		return
	}

	c.JSON(201, gin.H{
		"id":         ap.ID,
		"start_time": ap.StartTime,
		"end_time":   ap.EndTime,
		"status":     ap.Status,
	})
}
