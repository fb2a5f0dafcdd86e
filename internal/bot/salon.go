package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/salaohub/salon-scheduler/internal/models"
)

// SalonPersona atende os clientes de um salão no canal do próprio salão.
type SalonPersona struct {
	repo  Repository
	salon *models.Salon
}

func NewSalonPersona(repo Repository, salon *models.Salon) *SalonPersona {
	return &SalonPersona{repo: repo, salon: salon}
}

func (p *SalonPersona) BuildPrompt(ctx context.Context) (string, error) {
	services, err := p.repo.ListActiveServices(ctx, p.salon.ID)
	if err != nil {
		return "", err
	}

	professionals, err := p.repo.ListProfessionals(ctx, p.salon.ID)
	if err != nil {
		return "", err
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Você é o assistente virtual do salão %s.\n", p.salon.Name)

	if p.salon.Address != "" {
		fmt.Fprintf(&b, "Endereço: %s\n", p.salon.Address)
	}
	if p.salon.OpeningHours != "" {
		fmt.Fprintf(&b, "Horário de funcionamento: %s\n", p.salon.OpeningHours)
	}

	if len(services) > 0 {
		b.WriteString("\nServiços oferecidos:\n")
		for _, s := range services {
			fmt.Fprintf(&b, "- %s (%d min) - R$ %.2f\n", s.Name, s.DurationMin, s.Price)
		}
	}

	if len(professionals) > 0 {
		b.WriteString("\nProfissionais:\n")
		for _, pro := range professionals {
			fmt.Fprintf(&b, "- %s\n", pro.Name)
		}
	}

	b.WriteString("\nResponda dúvidas sobre serviços, preços e horários sempre em português, de forma cordial e curta.\n")
	b.WriteString("Para marcar um horário, oriente o cliente a enviar a palavra \"agendar\".\n")
	b.WriteString("Não invente serviços nem preços que não estejam na lista acima.")

	return b.String(), nil
}
