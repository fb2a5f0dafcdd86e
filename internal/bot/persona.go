package bot

import (
	"context"

	"github.com/salaohub/salon-scheduler/internal/gateway"
	"github.com/salaohub/salon-scheduler/internal/interaction"
	"github.com/salaohub/salon-scheduler/internal/llm"
	"github.com/salaohub/salon-scheduler/internal/models"
	booking "github.com/salaohub/salon-scheduler/internal/usecase/booking"
)

// ======================================================
// PERSONA
// ======================================================

// Persona é uma das duas personalidades do bot: suporte da
// plataforma ou assistente de um salão específico.
type Persona interface {
	BuildPrompt(ctx context.Context) (string, error)
}

// ======================================================
// COLABORADORES
// ======================================================

type Repository interface {
	SalonByInstance(ctx context.Context, instanceName string) (*models.Salon, error)

	// SalonByWhatsApp devolve (nil, nil) quando o número não pertence a um salão
	SalonByWhatsApp(ctx context.Context, number string) (*models.Salon, error)

	BotConfigForSalon(ctx context.Context, salonID uint) (*models.BotConfig, error)

	// ClientByNumber devolve (nil, nil) quando o número não é cliente do salão
	ClientByNumber(ctx context.Context, salonID uint, number string) (*models.Client, error)

	ListActiveServices(ctx context.Context, salonID uint) ([]models.Service, error)
	ListProfessionals(ctx context.Context, salonID uint) ([]models.Professional, error)

	GetSystemConfig(ctx context.Context) (*models.SystemConfig, error)
}

type Gateway interface {
	SendText(ctx context.Context, instanceName, number, text string) (*gateway.SendResult, error)
}

type Completer interface {
	Complete(ctx context.Context, systemPrompt string, history []llm.Message, userText string) (string, error)
}

type Recorder interface {
	Record(ev interaction.Event)
}

type Booker interface {
	Execute(ctx context.Context, in booking.CreateAppointmentInput) (*models.Appointment, error)
}
