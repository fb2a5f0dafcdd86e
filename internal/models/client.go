package models

import "time"

// Cliente final do salão, sem login próprio
type Client struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	SalonID uint `gorm:"index" json:"salon_id"`

	Name     string `gorm:"size:100;not null" json:"name"`
	WhatsApp string `gorm:"column:whatsapp;size:20;index" json:"whatsapp"`
	Email    string `gorm:"size:100" json:"email"`
	Notes    string `gorm:"type:text" json:"notes"`

	Birthdate *time.Time `json:"birthdate"`

	// Override por cliente: bot nunca responde este número
	BotDisabled bool `gorm:"default:false" json:"bot_disabled"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
