package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/salaohub/salon-scheduler/internal/config"
	"github.com/salaohub/salon-scheduler/internal/gateway"
	"github.com/salaohub/salon-scheduler/internal/models"
	"github.com/salaohub/salon-scheduler/internal/validators"
)

type AuthHandler struct {
	db     *gorm.DB
	config *config.Config
	gw     *gateway.Client
}

func NewAuthHandler(db *gorm.DB, cfg *config.Config, gw *gateway.Client) *AuthHandler {
	return &AuthHandler{db: db, config: cfg, gw: gw}
}

// --------- Requests ---------

type RegisterRequest struct {
	SalonName     string `json:"salon_name" binding:"required"`
	SalonSlug     string `json:"salon_slug" binding:"required"`
	SalonPhone    string `json:"salon_phone"`
	SalonWhatsApp string `json:"salon_whatsapp"`
	SalonAddress  string `json:"salon_address"`

	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone"`
}

type LoginRequest struct {
	// E-mail ou telefone, qualquer um dos dois
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// --------- Handlers ---------

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	slug := strings.ToLower(strings.TrimSpace(req.SalonSlug))

	var count int64
	h.db.Model(&models.Salon{}).Where("slug = ?", slug).Count(&count)
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "slug_already_exists"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	if !validators.IsEmailDomainValid(email) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_email_domain",
			"message": "O domínio do e-mail informado não parece ser válido.",
		})
		return
	}

	whatsapp := ""
	if req.SalonWhatsApp != "" {
		whatsapp = validators.NormalizePhone(req.SalonWhatsApp)
		if !validators.IsPhoneValid(whatsapp) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_whatsapp_number"})
			return
		}
	}

	salon := models.Salon{
		Name:     req.SalonName,
		Slug:     slug,
		Phone:    req.SalonPhone,
		WhatsApp: whatsapp,
		Address:  req.SalonAddress,
	}

	if err := h.db.Create(&salon).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_create_salon"})
		return
	}

	// Provisiona o canal do WhatsApp já no cadastro; falha no gateway
	// não impede o registro, o salão fica como "error" para reconectar depois
	if whatsapp != "" {
		h.provisionInstance(c, &salon)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_hash_password"})
		return
	}

	user := models.User{
		SalonID:      salon.ID,
		Name:         req.Name,
		Email:        email,
		PasswordHash: string(hashed),
		Phone:        validators.NormalizePhone(req.Phone),
		Role:         "owner",
	}

	if err := h.db.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_create_user"})
		return
	}

	token, err := h.generateToken(&user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_generate_token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user": gin.H{
			"id":       user.ID,
			"name":     user.Name,
			"email":    user.Email,
			"phone":    user.Phone,
			"salon_id": user.SalonID,
		},
		"salon": gin.H{
			"id":          salon.ID,
			"name":        salon.Name,
			"slug":        salon.Slug,
			"phone":       salon.Phone,
			"whatsapp":    salon.WhatsApp,
			"address":     salon.Address,
			"conn_status": salon.ConnStatus,
		},
		"token": token,
	})
}

func (h *AuthHandler) provisionInstance(c *gin.Context, salon *models.Salon) {
	instanceName := gateway.SalonInstance(salon.ID)

	_, err := h.gw.CreateInstance(c.Request.Context(), instanceName, salon.WhatsApp)
	if err == nil {
		err = h.gw.SetWebhook(c.Request.Context(), instanceName, h.config.WebhookURL(instanceName), true)
	}

	salon.InstanceName = instanceName
	if err != nil {
		log.Println("auth: provisionamento do canal:", err)
		salon.ConnStatus = models.ConnStatusError
	} else {
		salon.ConnStatus = models.ConnStatusPending
	}

	if err := h.db.Save(salon).Error; err != nil {
		log.Println("auth: salvar canal do salão:", err)
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	identifier := strings.TrimSpace(req.Identifier)

	q := h.db.Preload("Salon")
	if strings.Contains(identifier, "@") {
		q = q.Where("email = ?", strings.ToLower(identifier))
	} else {
		q = q.Where("phone = ?", validators.NormalizePhone(identifier))
	}

	var user models.User
	if err := q.First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
		return
	}

	token, err := h.generateToken(&user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_generate_token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":       user.ID,
			"name":     user.Name,
			"email":    user.Email,
			"phone":    user.Phone,
			"salon_id": user.SalonID,
			"is_admin": user.IsAdmin,
		},
		"salon": gin.H{
			"id":          user.Salon.ID,
			"name":        user.Salon.Name,
			"slug":        user.Salon.Slug,
			"phone":       user.Salon.Phone,
			"whatsapp":    user.Salon.WhatsApp,
			"address":     user.Salon.Address,
			"conn_status": user.Salon.ConnStatus,
			"active":      user.Salon.Active,
		},
		"token": token,
	})
}

// --------- JWT ---------

func (h *AuthHandler) generateToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":     user.ID,
		"salonId": user.SalonID,
		"role":    user.Role,
		"admin":   user.IsAdmin,
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.config.JWTSecret))
}
