package models

import "time"

// Singleton com a configuração da plataforma (bot de suporte)
type SystemConfig struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CompanyName     string `gorm:"size:100;default:'SalãoHub'" json:"company_name"`
	SupportWhatsApp string `gorm:"size:20" json:"support_whatsapp"`

	SupportInstance string `gorm:"size:100;default:'support_bot'" json:"support_instance"`
	ConnStatus      string `gorm:"size:30;default:'disconnected'" json:"conn_status"`

	SupportBotActive bool `gorm:"default:true" json:"support_bot_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
