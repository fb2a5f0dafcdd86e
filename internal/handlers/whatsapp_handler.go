package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/salaohub/salon-scheduler/internal/config"
	"github.com/salaohub/salon-scheduler/internal/gateway"
	"github.com/salaohub/salon-scheduler/internal/httperr"
	"github.com/salaohub/salon-scheduler/internal/middleware"
	"github.com/salaohub/salon-scheduler/internal/models"
	"github.com/salaohub/salon-scheduler/internal/validators"
)

// WhatsAppHandler gerencia o ciclo de vida do canal de um salão no
// gateway: provisionamento, QR Code, status e desligamento.
type WhatsAppHandler struct {
	db     *gorm.DB
	config *config.Config
	gw     *gateway.Client
}

func NewWhatsAppHandler(db *gorm.DB, cfg *config.Config, gw *gateway.Client) *WhatsAppHandler {
	return &WhatsAppHandler{db: db, config: cfg, gw: gw}
}

func (h *WhatsAppHandler) salon(c *gin.Context) (*models.Salon, bool) {
	salonID := c.MustGet(middleware.ContextSalonID).(uint)

	var salon models.Salon
	if err := h.db.First(&salon, salonID).Error; err != nil {
		httperr.NotFound(c, "salon_not_found", "Salão não encontrado.")
		return nil, false
	}
	return &salon, true
}

// ======================================================
// CONNECT (cria o canal se necessário e devolve o QR)
// ======================================================

func (h *WhatsAppHandler) Connect(c *gin.Context) {
	salon, ok := h.salon(c)
	if !ok {
		return
	}

	if salon.WhatsApp == "" {
		httperr.BadRequest(c, "missing_whatsapp_number", "Cadastre o número do WhatsApp do salão antes de conectar.")
		return
	}

	ctx := c.Request.Context()
	instanceName := gateway.SalonInstance(salon.ID)

	exists, err := h.gw.InstanceExists(ctx, instanceName)
	if err != nil {
		httperr.BadGateway(c, "gateway_unavailable", "Gateway do WhatsApp indisponível.")
		return
	}

	if !exists {
		if _, err := h.gw.CreateInstance(ctx, instanceName, salon.WhatsApp); err != nil {
			httperr.BadGateway(c, "failed_to_create_instance", "Erro ao criar o canal no gateway.")
			return
		}
		if err := h.gw.SetWebhook(ctx, instanceName, h.config.WebhookURL(instanceName), true); err != nil {
			httperr.BadGateway(c, "failed_to_set_webhook", "Erro ao configurar o webhook.")
			return
		}
	}

	qr, err := h.gw.Connect(ctx, instanceName)
	if err != nil {
		httperr.BadGateway(c, "failed_to_connect", "Erro ao obter o QR Code.")
		return
	}

	salon.InstanceName = instanceName
	salon.ConnStatus = models.ConnStatusPending
	h.db.Save(salon)

	c.JSON(http.StatusOK, gin.H{
		"instance_name": instanceName,
		"qrcode":        qr.Base64,
		"pairing_code":  qr.PairingCode,
	})
}

// ======================================================
// STATUS (consulta o gateway e sincroniza o banco)
// ======================================================

func (h *WhatsAppHandler) Status(c *gin.Context) {
	salon, ok := h.salon(c)
	if !ok {
		return
	}

	if salon.InstanceName == "" {
		c.JSON(http.StatusOK, gin.H{"conn_status": models.ConnStatusDisconnected})
		return
	}

	state, err := h.gw.ConnectionState(c.Request.Context(), salon.InstanceName)
	if err != nil {
		httperr.BadGateway(c, "gateway_unavailable", "Gateway do WhatsApp indisponível.")
		return
	}

	status := connStatusFromState(state)
	if status != salon.ConnStatus {
		salon.ConnStatus = status
		h.db.Save(salon)
	}

	c.JSON(http.StatusOK, gin.H{
		"conn_status": status,
		"state":       state,
	})
}

func connStatusFromState(state string) string {
	switch state {
	case "open":
		return models.ConnStatusConnected
	case "connecting":
		return models.ConnStatusPending
	case "close":
		return models.ConnStatusDisconnected
	default:
		return models.ConnStatusError
	}
}

// ======================================================
// DISCONNECT / DELETE
// ======================================================

func (h *WhatsAppHandler) Disconnect(c *gin.Context) {
	salon, ok := h.salon(c)
	if !ok {
		return
	}

	if salon.InstanceName == "" {
		httperr.BadRequest(c, "not_connected", "Salão sem canal provisionado.")
		return
	}

	if err := h.gw.Logout(c.Request.Context(), salon.InstanceName); err != nil {
		httperr.BadGateway(c, "failed_to_disconnect", "Erro ao desconectar o canal.")
		return
	}

	salon.ConnStatus = models.ConnStatusDisconnected
	h.db.Save(salon)

	c.JSON(http.StatusOK, gin.H{"conn_status": salon.ConnStatus})
}

func (h *WhatsAppHandler) Delete(c *gin.Context) {
	salon, ok := h.salon(c)
	if !ok {
		return
	}

	if salon.InstanceName == "" {
		httperr.BadRequest(c, "not_connected", "Salão sem canal provisionado.")
		return
	}

	if err := h.gw.DeleteInstance(c.Request.Context(), salon.InstanceName); err != nil {
		httperr.BadGateway(c, "failed_to_delete_instance", "Erro ao remover o canal.")
		return
	}

	salon.InstanceName = ""
	salon.ConnStatus = models.ConnStatusDisconnected
	h.db.Save(salon)

	c.JSON(http.StatusOK, gin.H{"conn_status": salon.ConnStatus})
}

// ======================================================
// ENVIO MANUAL
// ======================================================

type SendMessageRequest struct {
	Number string `json:"number" binding:"required"`
	Text   string `json:"text" binding:"required"`
}

func (h *WhatsAppHandler) SendMessage(c *gin.Context) {
	salon, ok := h.salon(c)
	if !ok {
		return
	}

	if salon.InstanceName == "" || salon.ConnStatus != models.ConnStatusConnected {
		httperr.BadRequest(c, "not_connected", "Conecte o WhatsApp do salão antes de enviar mensagens.")
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	number := validators.NormalizePhone(req.Number)
	if !validators.IsPhoneValid(number) {
		httperr.BadRequest(c, "invalid_number", "Número inválido.")
		return
	}

	res, err := h.gw.SendText(c.Request.Context(), salon.InstanceName, number, req.Text)
	if err != nil {
		httperr.BadGateway(c, "failed_to_send", "Erro ao enviar a mensagem.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message_id": res.Key.ID, "status": res.Status})
}

// ======================================================
// CONFIGURAÇÃO DO BOT DO SALÃO
// ======================================================

func (h *WhatsAppHandler) GetBotConfig(c *gin.Context) {
	salonID := c.MustGet(middleware.ContextSalonID).(uint)

	var cfg models.BotConfig
	err := h.db.Where("salon_id = ?", salonID).First(&cfg).Error
	if err == gorm.ErrRecordNotFound {
		cfg = models.BotConfig{SalonID: salonID, Active: true}
		if err := h.db.Create(&cfg).Error; err != nil {
			httperr.Internal(c, "failed_to_create_bot_config", "Erro ao criar a configuração.")
			return
		}
	} else if err != nil {
		httperr.Internal(c, "failed_to_get_bot_config", "Erro ao buscar a configuração.")
		return
	}

	c.JSON(http.StatusOK, cfg)
}

type UpdateBotConfigRequest struct {
	Active          *bool   `json:"active"`
	QuietStart      *string `json:"quiet_start"`
	QuietEnd        *string `json:"quiet_end"`
	OffHoursMessage *string `json:"off_hours_message"`
	DisabledMessage *string `json:"disabled_message"`
}

func (h *WhatsAppHandler) UpdateBotConfig(c *gin.Context) {
	salonID := c.MustGet(middleware.ContextSalonID).(uint)

	var req UpdateBotConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	var cfg models.BotConfig
	err := h.db.Where("salon_id = ?", salonID).First(&cfg).Error
	if err == gorm.ErrRecordNotFound {
		cfg = models.BotConfig{SalonID: salonID, Active: true}
	} else if err != nil {
		httperr.Internal(c, "failed_to_get_bot_config", "Erro ao buscar a configuração.")
		return
	}

	if req.Active != nil {
		cfg.Active = *req.Active
	}
	if req.QuietStart != nil {
		if *req.QuietStart != "" && !isValidHM(*req.QuietStart) {
			httperr.BadRequest(c, "invalid_quiet_start", "Horário inválido (use HH:MM).")
			return
		}
		cfg.QuietStart = *req.QuietStart
	}
	if req.QuietEnd != nil {
		if *req.QuietEnd != "" && !isValidHM(*req.QuietEnd) {
			httperr.BadRequest(c, "invalid_quiet_end", "Horário inválido (use HH:MM).")
			return
		}
		cfg.QuietEnd = *req.QuietEnd
	}
	if req.OffHoursMessage != nil {
		cfg.OffHoursMessage = *req.OffHoursMessage
	}
	if req.DisabledMessage != nil {
		cfg.DisabledMessage = *req.DisabledMessage
	}

	if err := h.db.Save(&cfg).Error; err != nil {
		httperr.Internal(c, "failed_to_save_bot_config", "Erro ao salvar a configuração.")
		return
	}

	c.JSON(http.StatusOK, cfg)
}

func isValidHM(hm string) bool {
	_, err := time.Parse("15:04", hm)
	return err == nil
}

// ======================================================
// ADMIN: CONFIGURAÇÃO DA PLATAFORMA (BOT DE SUPORTE)
// ======================================================

func (h *WhatsAppHandler) GetSystemConfig(c *gin.Context) {
	var cfg models.SystemConfig
	if err := h.db.First(&cfg).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			httperr.Internal(c, "failed_to_get_system_config", "Erro ao buscar a configuração.")
			return
		}
		cfg = models.SystemConfig{SupportInstance: gateway.SupportInstance, SupportBotActive: true}
		if err := h.db.Create(&cfg).Error; err != nil {
			httperr.Internal(c, "failed_to_create_system_config", "Erro ao criar a configuração.")
			return
		}
	}

	c.JSON(http.StatusOK, cfg)
}

type UpdateSystemConfigRequest struct {
	CompanyName      *string `json:"company_name"`
	SupportWhatsApp  *string `json:"support_whatsapp"`
	SupportBotActive *bool   `json:"support_bot_active"`
}

func (h *WhatsAppHandler) UpdateSystemConfig(c *gin.Context) {
	var req UpdateSystemConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	var cfg models.SystemConfig
	if err := h.db.First(&cfg).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			httperr.Internal(c, "failed_to_get_system_config", "Erro ao buscar a configuração.")
			return
		}
		cfg = models.SystemConfig{SupportInstance: gateway.SupportInstance, SupportBotActive: true}
	}

	if req.CompanyName != nil {
		cfg.CompanyName = *req.CompanyName
	}
	if req.SupportWhatsApp != nil {
		cfg.SupportWhatsApp = validators.NormalizePhone(*req.SupportWhatsApp)
	}
	if req.SupportBotActive != nil {
		cfg.SupportBotActive = *req.SupportBotActive
	}

	if err := h.db.Save(&cfg).Error; err != nil {
		httperr.Internal(c, "failed_to_save_system_config", "Erro ao salvar a configuração.")
		return
	}

	c.JSON(http.StatusOK, cfg)
}

// ConnectSupport provisiona e conecta o canal de suporte da plataforma
func (h *WhatsAppHandler) ConnectSupport(c *gin.Context) {
	var cfg models.SystemConfig
	if err := h.db.First(&cfg).Error; err != nil {
		httperr.Internal(c, "failed_to_get_system_config", "Erro ao buscar a configuração.")
		return
	}

	ctx := c.Request.Context()

	exists, err := h.gw.InstanceExists(ctx, cfg.SupportInstance)
	if err != nil {
		httperr.BadGateway(c, "gateway_unavailable", "Gateway do WhatsApp indisponível.")
		return
	}

	if !exists {
		if _, err := h.gw.CreateInstance(ctx, cfg.SupportInstance, cfg.SupportWhatsApp); err != nil {
			httperr.BadGateway(c, "failed_to_create_instance", "Erro ao criar o canal de suporte.")
			return
		}
		if err := h.gw.SetWebhook(ctx, cfg.SupportInstance, h.config.WebhookURL(cfg.SupportInstance), true); err != nil {
			httperr.BadGateway(c, "failed_to_set_webhook", "Erro ao configurar o webhook.")
			return
		}
	}

	qr, err := h.gw.Connect(ctx, cfg.SupportInstance)
	if err != nil {
		httperr.BadGateway(c, "failed_to_connect", "Erro ao obter o QR Code.")
		return
	}

	cfg.ConnStatus = models.ConnStatusPending
	h.db.Save(&cfg)

	c.JSON(http.StatusOK, gin.H{
		"instance_name": cfg.SupportInstance,
		"qrcode":        qr.Base64,
		"pairing_code":  qr.PairingCode,
	})
}
