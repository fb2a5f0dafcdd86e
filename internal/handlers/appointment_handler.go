package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	domain "github.com/salaohub/salon-scheduler/internal/domain/booking"
	"github.com/salaohub/salon-scheduler/internal/httperr"
	"github.com/salaohub/salon-scheduler/internal/middleware"
	"github.com/salaohub/salon-scheduler/internal/models"
	"github.com/salaohub/salon-scheduler/internal/timezone"
	ucBooking "github.com/salaohub/salon-scheduler/internal/usecase/booking"
	"github.com/salaohub/salon-scheduler/internal/validators"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	db *gorm.DB

	createUC       *ucBooking.CreateAppointment
	cancelUC       *ucBooking.CancelAppointment
	completeUC     *ucBooking.CompleteAppointment
	availabilityUC *ucBooking.GetAvailability
	listUC         *ucBooking.ListAppointments
}

func NewAppointmentHandler(
	db *gorm.DB,
	createUC *ucBooking.CreateAppointment,
	cancelUC *ucBooking.CancelAppointment,
	completeUC *ucBooking.CompleteAppointment,
	availabilityUC *ucBooking.GetAvailability,
	listUC *ucBooking.ListAppointments,
) *AppointmentHandler {
	return &AppointmentHandler{
		db:             db,
		createUC:       createUC,
		cancelUC:       cancelUC,
		completeUC:     completeUC,
		availabilityUC: availabilityUC,
		listUC:         listUC,
	}
}

// ======================================================
// CREATE
// ======================================================

type CreateAppointmentRequest struct {
	ProfessionalID uint   `json:"professional_id" binding:"required"`
	ServiceID      uint   `json:"service_id" binding:"required"`
	ClientName     string `json:"client_name" binding:"required"`
	ClientPhone    string `json:"client_phone" binding:"required"`
	ClientEmail    string `json:"client_email"`
	Date           string `json:"date" binding:"required"`
	Time           string `json:"time" binding:"required"`
	Notes          string `json:"notes"`
}

func (h *AppointmentHandler) Create(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)
	salonID := c.MustGet(middleware.ContextSalonID).(uint)

	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	ap, err := h.createUC.Execute(c.Request.Context(), ucBooking.CreateAppointmentInput{
		SalonID:        salonID,
		ProfessionalID: req.ProfessionalID,
		ServiceID:      req.ServiceID,
		ClientName:     req.ClientName,
		ClientPhone:    validators.NormalizePhone(req.ClientPhone),
		ClientEmail:    req.ClientEmail,
		Date:           req.Date,
		Time:           req.Time,
		Notes:          req.Notes,
		RequestedBy:    &userID,
	})
	if err != nil {
		writeBookingError(c, err)
		return
	}

	c.JSON(201, ap)
}

// writeBookingError converte os erros de negócio do agendamento
func writeBookingError(c *gin.Context, err error) {
	for _, code := range []string{
		"invalid_date_or_time",
		"too_soon",
		"service_not_found",
		"professional_not_found",
		"outside_working_hours",
		"time_conflict",
	} {
		if httperr.IsBusiness(err, code) {
			httperr.BadRequest(c, code, "Não foi possível agendar.")
			return
		}
	}
	if httperr.IsBusiness(err, "appointment_not_found") {
		httperr.NotFound(c, "appointment_not_found", "Agendamento não encontrado.")
		return
	}
	if httperr.IsBusiness(err, "invalid_state") {
		httperr.BadRequest(c, "invalid_state", "Estado inválido para a operação.")
		return
	}
	httperr.Internal(c, "appointment_error", "Erro ao processar agendamento.")
}

// ======================================================
// CANCEL / COMPLETE
// ======================================================

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)
	salonID := c.MustGet(middleware.ContextSalonID).(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "ID inválido.")
		return
	}

	ap, err := h.cancelUC.Execute(c.Request.Context(), salonID, userID, uint(id))
	if err != nil {
		writeBookingError(c, err)
		return
	}

	c.JSON(200, ap)
}

func (h *AppointmentHandler) Complete(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)
	salonID := c.MustGet(middleware.ContextSalonID).(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "ID inválido.")
		return
	}

	ap, err := h.completeUC.Execute(c.Request.Context(), salonID, userID, uint(id))
	if err != nil {
		writeBookingError(c, err)
		return
	}

	c.JSON(200, ap)
}

// ======================================================
// LIST
// ======================================================

func (h *AppointmentHandler) ListByDate(c *gin.Context) {
	salonID := c.MustGet(middleware.ContextSalonID).(uint)

	dateStr := c.Query("date")
	if dateStr == "" {
		httperr.BadRequest(c, "missing_date", "Data obrigatória.")
		return
	}

	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Data inválida.")
		return
	}

	aps, err := h.listUC.ByDate(c.Request.Context(), salonID, date)
	if err != nil {
		httperr.Internal(c, "failed_to_list_appointments", "Erro ao listar agendamentos.")
		return
	}

	c.JSON(200, aps)
}

func (h *AppointmentHandler) ListByMonth(c *gin.Context) {
	salonID := c.MustGet(middleware.ContextSalonID).(uint)

	year, err := strconv.Atoi(c.Query("year"))
	if err != nil || year < 2000 || year > 2100 {
		httperr.BadRequest(c, "invalid_year", "Ano inválido.")
		return
	}

	month, err := strconv.Atoi(c.Query("month"))
	if err != nil || month < 1 || month > 12 {
		httperr.BadRequest(c, "invalid_month", "Mês inválido.")
		return
	}

	aps, err := h.listUC.ByMonth(c.Request.Context(), salonID, year, month)
	if err != nil {
		httperr.Internal(c, "failed_to_list_appointments", "Erro ao listar agendamentos.")
		return
	}

	c.JSON(200, gin.H{
		"year":         year,
		"month":        month,
		"appointments": aps,
	})
}

// ======================================================
// AVAILABILITY
// ======================================================

func (h *AppointmentHandler) Availability(c *gin.Context) {
	salonID := c.MustGet(middleware.ContextSalonID).(uint)

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

	var salon models.Salon
	if err := h.db.First(&salon, salonID).Error; err != nil {
		httperr.Internal(c, "salon_not_found", "Salão não encontrado.")
		return
	}

	date, err := time.ParseInLocation("2006-01-02", c.Query("date"), timezone.Location(salon.Timezone))
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Data inválida.")
		return
	}

	slots, err := h.availabilityUC.Execute(c.Request.Context(), domain.AvailabilityInput{
		SalonID:        salonID,
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
