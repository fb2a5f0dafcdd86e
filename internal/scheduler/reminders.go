package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/salaohub/salon-scheduler/internal/gateway"
	"github.com/salaohub/salon-scheduler/internal/interaction"
	"github.com/salaohub/salon-scheduler/internal/models"
	"github.com/salaohub/salon-scheduler/internal/timezone"
)

// Scheduler roda as rotinas periódicas da plataforma: a mensagem de
// aniversário dos clientes e o agradecimento pós-atendimento.
type Scheduler struct {
	db   *gorm.DB
	gw   *gateway.Client
	rec  *interaction.Recorder
	cron *cron.Cron
}

func New(db *gorm.DB, gw *gateway.Client, rec *interaction.Recorder) *Scheduler {
	return &Scheduler{
		db:   db,
		gw:   gw,
		rec:  rec,
		cron: cron.New(cron.WithLocation(timezone.Location(timezone.DefaultTimezone))),
	}
}

func (s *Scheduler) Start() error {
	// todo dia às 09:00
	if _, err := s.cron.AddFunc("0 9 * * *", s.sendBirthdayMessages); err != nil {
		return err
	}

	// todo dia às 10:00, para os atendimentos concluídos na véspera
	if _, err := s.cron.AddFunc("0 10 * * *", s.sendFollowUpMessages); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) sendBirthdayMessages() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	today := timezone.Now()

	var clients []models.Client
	err := s.db.WithContext(ctx).
		Where("birthdate IS NOT NULL").
		Where("EXTRACT(MONTH FROM birthdate) = ? AND EXTRACT(DAY FROM birthdate) = ?",
			int(today.Month()), today.Day()).
		Find(&clients).Error
	if err != nil {
		log.Println("scheduler: aniversários:", err)
		return
	}

	for _, client := range clients {
		if client.WhatsApp == "" || client.BotDisabled {
			continue
		}

		var salon models.Salon
		if err := s.db.WithContext(ctx).First(&salon, client.SalonID).Error; err != nil {
			continue
		}
		if salon.InstanceName == "" || salon.ConnStatus != models.ConnStatusConnected {
			continue
		}

		msg := birthdayMessage(client.Name, salon.Name)

		salonID := client.SalonID
		_, sendErr := s.gw.SendText(ctx, salon.InstanceName, client.WhatsApp, msg)
		if sendErr != nil {
			log.Println("scheduler: envio de aniversário:", sendErr)
		}

		s.rec.Record(interaction.Event{
			SalonID:  &salonID,
			Channel:  models.InteractionSalonBot,
			Number:   client.WhatsApp,
			Outbound: msg,
			Success:  sendErr == nil,
		})
	}
}

func (s *Scheduler) sendFollowUpMessages() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	start, end := previousDayRange(timezone.Now())

	var apps []models.Appointment
	err := s.db.WithContext(ctx).
		Preload("Client").
		Where("status = ? AND start_time >= ? AND start_time < ?",
			"completed", start, end).
		Order("start_time ASC").
		Find(&apps).Error
	if err != nil {
		log.Println("scheduler: pós-atendimento:", err)
		return
	}

	// um agradecimento por cliente, mesmo com mais de um atendimento no dia
	sent := make(map[uint]bool)

	for _, ap := range apps {
		client := ap.Client
		if sent[client.ID] || client.WhatsApp == "" || client.BotDisabled {
			continue
		}

		var salon models.Salon
		if err := s.db.WithContext(ctx).First(&salon, ap.SalonID).Error; err != nil {
			continue
		}
		if salon.InstanceName == "" || salon.ConnStatus != models.ConnStatusConnected {
			continue
		}

		msg := followUpMessage(client.Name, salon.Name)

		salonID := ap.SalonID
		_, sendErr := s.gw.SendText(ctx, salon.InstanceName, client.WhatsApp, msg)
		if sendErr != nil {
			log.Println("scheduler: envio de pós-atendimento:", sendErr)
		}

		sent[client.ID] = true

		s.rec.Record(interaction.Event{
			SalonID:  &salonID,
			Channel:  models.InteractionSalonBot,
			Number:   client.WhatsApp,
			Outbound: msg,
			Success:  sendErr == nil,
		})
	}
}

// previousDayRange devolve [00:00 de ontem, 00:00 de hoje) no fuso de now
func previousDayRange(now time.Time) (time.Time, time.Time) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return today.AddDate(0, 0, -1), today
}

func birthdayMessage(clientName, salonName string) string {
	return fmt.Sprintf(
		"Feliz aniversário, %s! 🎉 Aqui é o %s. Que tal comemorar com um horário especial? É só responder \"agendar\". 💈",
		clientName, salonName,
	)
}

func followUpMessage(clientName, salonName string) string {
	return fmt.Sprintf(
		"Olá, %s! Obrigado por escolher o %s ontem. 😊 Esperamos que tenha gostado! Quando quiser marcar o próximo horário, é só responder \"agendar\".",
		clientName, salonName,
	)
}
