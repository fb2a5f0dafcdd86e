package models

import "time"

const (
	InteractionSupportBot = "support_bot"
	InteractionSalonBot   = "salon_bot"
)

// Registro append-only de uma troca de mensagens do bot.
// Criado uma vez por atendimento e nunca alterado.
type Interaction struct {
	ID uint `gorm:"primaryKey" json:"id"`

	SalonID *uint `gorm:"index" json:"salon_id"`

	Channel  string `gorm:"size:20;index" json:"channel"` // support_bot | salon_bot
	Number   string `gorm:"size:20;index" json:"number"`
	Inbound  string `gorm:"type:text" json:"inbound"`
	Outbound string `gorm:"type:text" json:"outbound"`

	UsedLLM        bool    `gorm:"column:used_llm;default:false" json:"used_llm"`
	LatencySeconds float64 `json:"latency_seconds"`
	Success        bool    `gorm:"default:false" json:"success"`
	IsLead         bool    `gorm:"default:false" json:"is_lead"`

	CreatedAt time.Time `json:"created_at"`
}
