package models

import "time"

type Transaction struct {
	ID uint `gorm:"primaryKey" json:"id"`

	SalonID uint  `gorm:"index" json:"salon_id"`
	Salon   Salon `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`

	Amount float64 `json:"amount"`
	Type   string  `gorm:"size:30" json:"type"`   // subscription
	Status string  `gorm:"size:30" json:"status"` // approved, pending, rejected

	PaymentID         string `gorm:"size:100;index" json:"payment_id"`
	ExternalReference string `gorm:"size:100" json:"external_reference"`

	CreatedAt time.Time `json:"created_at"`
}
