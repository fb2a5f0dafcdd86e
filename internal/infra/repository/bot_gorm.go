package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/salaohub/salon-scheduler/internal/bot"
	"github.com/salaohub/salon-scheduler/internal/models"
)

var _ bot.Repository = (*BotGormRepository)(nil)

type BotGormRepository struct {
	db *gorm.DB
}

func NewBotGormRepository(db *gorm.DB) *BotGormRepository {
	return &BotGormRepository{db: db}
}

func (r *BotGormRepository) SalonByInstance(ctx context.Context, instanceName string) (*models.Salon, error) {
	var salon models.Salon
	err := r.db.WithContext(ctx).
		Where("instance_name = ?", instanceName).
		First(&salon).Error
	if err != nil {
		return nil, err
	}
	return &salon, nil
}

func (r *BotGormRepository) SalonByWhatsApp(ctx context.Context, number string) (*models.Salon, error) {
	var salon models.Salon
	err := r.db.WithContext(ctx).
		Where("whatsapp = ?", number).
		First(&salon).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &salon, nil
}

func (r *BotGormRepository) BotConfigForSalon(ctx context.Context, salonID uint) (*models.BotConfig, error) {
	var cfg models.BotConfig
	err := r.db.WithContext(ctx).
		Where("salon_id = ?", salonID).
		First(&cfg).Error

	// Salão sem configuração usa os padrões (bot ativo, sem janela)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *BotGormRepository) ClientByNumber(ctx context.Context, salonID uint, number string) (*models.Client, error) {
	var client models.Client
	err := r.db.WithContext(ctx).
		Where("salon_id = ? AND whatsapp = ?", salonID, number).
		First(&client).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *BotGormRepository) ListActiveServices(ctx context.Context, salonID uint) ([]models.Service, error) {
	var services []models.Service
	err := r.db.WithContext(ctx).
		Where("salon_id = ? AND active = ?", salonID, true).
		Order("id").
		Find(&services).Error
	if err != nil {
		return nil, err
	}
	return services, nil
}

func (r *BotGormRepository) ListProfessionals(ctx context.Context, salonID uint) ([]models.Professional, error) {
	var professionals []models.Professional
	err := r.db.WithContext(ctx).
		Where("salon_id = ?", salonID).
		Order("id").
		Find(&professionals).Error
	if err != nil {
		return nil, err
	}
	return professionals, nil
}

func (r *BotGormRepository) GetSystemConfig(ctx context.Context) (*models.SystemConfig, error) {
	var cfg models.SystemConfig
	err := r.db.WithContext(ctx).First(&cfg).Error

	// Primeira execução: cria o singleton com os padrões
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cfg = models.SystemConfig{SupportInstance: "support_bot", SupportBotActive: true}
		if err := r.db.WithContext(ctx).Create(&cfg).Error; err != nil {
			return nil, err
		}
		return &cfg, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}
