package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/salaohub/salon-scheduler/internal/httperr"
	"github.com/salaohub/salon-scheduler/internal/middleware"
	"github.com/salaohub/salon-scheduler/internal/models"
	"github.com/salaohub/salon-scheduler/internal/payments"
)

type PaymentHandler struct {
	db       *gorm.DB
	payments *payments.Service
}

func NewPaymentHandler(db *gorm.DB, svc *payments.Service) *PaymentHandler {
	return &PaymentHandler{db: db, payments: svc}
}

// ======================================================
// PLANOS
// ======================================================
func (h *PaymentHandler) ListPlans(c *gin.Context) {
	var plans []models.Plan
	if err := h.db.
		Where("active = ?", true).
		Order("price ASC").
		Find(&plans).Error; err != nil {

		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_list_plans"})
		return
	}

	c.JSON(http.StatusOK, plans)
}

// ======================================================
// CHECKOUT
// ======================================================

type CheckoutRequest struct {
	PlanID uint `json:"plan_id" binding:"required"`
}

func (h *PaymentHandler) CreateCheckout(c *gin.Context) {
	salonID := c.MustGet(middleware.ContextSalonID).(uint)

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	var salon models.Salon
	if err := h.db.First(&salon, salonID).Error; err != nil {
		httperr.NotFound(c, "salon_not_found", "Salão não encontrado.")
		return
	}

	var plan models.Plan
	if err := h.db.
		Where("id = ? AND active = ?", req.PlanID, true).
		First(&plan).Error; err != nil {

		httperr.NotFound(c, "plan_not_found", "Plano não encontrado.")
		return
	}

	checkout, err := h.payments.CreateCheckout(c.Request.Context(), &salon, &plan)
	if err != nil {
		httperr.BadGateway(c, "payment_provider_error", "Erro ao iniciar o pagamento.")
		return
	}

	c.JSON(http.StatusCreated, checkout)
}

// ======================================================
// PROCESSAMENTO (retorno do checkout)
// ======================================================

// Process confirma o pagamento informado no redirect de retorno.
// Aprovado → salão ativo + transação registrada (idempotente por payment_id).
func (h *PaymentHandler) Process(c *gin.Context) {
	salonID := c.MustGet(middleware.ContextSalonID).(uint)

	paymentID, err := strconv.Atoi(c.Query("payment_id"))
	if err != nil {
		httperr.BadRequest(c, "invalid_payment_id", "Pagamento inválido.")
		return
	}

	info, err := h.payments.GetPayment(c.Request.Context(), paymentID)
	if err != nil {
		httperr.BadGateway(c, "payment_provider_error", "Erro ao consultar o pagamento.")
		return
	}

	// o external_reference da preferência precisa apontar para este salão
	if !strings.HasSuffix(info.ExternalReference, "_"+strconv.FormatUint(uint64(salonID), 10)) {
		httperr.BadRequest(c, "payment_mismatch", "Pagamento não pertence a este salão.")
		return
	}

	var existing models.Transaction
	if err := h.db.Where("payment_id = ?", info.ID).First(&existing).Error; err == nil {
		c.JSON(http.StatusOK, gin.H{"status": existing.Status, "already_processed": true})
		return
	}

	tx := models.Transaction{
		SalonID:           salonID,
		Amount:            info.Amount,
		Type:              "subscription",
		Status:            info.Status,
		PaymentID:         info.ID,
		ExternalReference: info.ExternalReference,
	}

	if err := h.db.Create(&tx).Error; err != nil {
		httperr.Internal(c, "failed_to_save_transaction", "Erro ao registrar a transação.")
		return
	}

	if info.Status == "approved" {
		if err := h.db.Model(&models.Salon{}).
			Where("id = ?", salonID).
			Update("active", true).Error; err != nil {

			httperr.Internal(c, "failed_to_activate_salon", "Erro ao ativar o salão.")
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": info.Status})
}
