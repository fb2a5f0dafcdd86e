package models

import "time"

// ===============================
// Connection Status (Evolution)
// ===============================

const (
	ConnStatusDisconnected = "disconnected"
	ConnStatusConnected    = "connected"
	ConnStatusPending      = "pending_connection"
	ConnStatusError        = "error"
)

type Salon struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;not null" json:"name"`
	Slug string `gorm:"size:100;uniqueIndex;not null" json:"slug"`

	Phone    string `gorm:"size:20" json:"phone"`
	WhatsApp string `gorm:"column:whatsapp;size:20;index" json:"whatsapp"`
	Address  string `gorm:"size:255" json:"address"`

	// Horário de funcionamento em texto livre (ex: "Seg-Sáb 09:00-19:00")
	OpeningHours string `gorm:"size:100" json:"opening_hours"`

	Timezone          string `gorm:"size:50;default:'America/Sao_Paulo'" json:"timezone"`
	MinAdvanceMinutes int    `gorm:"default:120" json:"min_advance_minutes"`

	// Canal do WhatsApp no gateway (salon_{id}); vazio enquanto não provisionado
	InstanceName string `gorm:"size:100" json:"instance_name"`
	ConnStatus   string `gorm:"size:30;default:'disconnected'" json:"conn_status"`

	PhotoURL string `gorm:"size:255" json:"photo_url"`
	Active   bool   `gorm:"default:false" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
