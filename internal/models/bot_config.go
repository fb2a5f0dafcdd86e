package models

import "time"

// Configuração do bot de atendimento de um salão
type BotConfig struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	SalonID uint `gorm:"uniqueIndex" json:"salon_id"`

	Active bool `gorm:"default:true" json:"active"`

	// Janela de silêncio (HH:MM). Vazio desativa a janela.
	QuietStart string `gorm:"size:5" json:"quiet_start"`
	QuietEnd   string `gorm:"size:5" json:"quiet_end"`

	OffHoursMessage string `gorm:"size:255" json:"off_hours_message"`
	DisabledMessage string `gorm:"size:255" json:"disabled_message"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
