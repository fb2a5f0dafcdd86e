package bot

import (
	"context"
	"fmt"
	"strings"
)

// SupportPersona atende leads e donos de salão no número da plataforma.
type SupportPersona struct {
	repo Repository
}

func NewSupportPersona(repo Repository) *SupportPersona {
	return &SupportPersona{repo: repo}
}

func (p *SupportPersona) BuildPrompt(ctx context.Context) (string, error) {
	sys, err := p.repo.GetSystemConfig(ctx)
	if err != nil {
		return "", err
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Você é o assistente virtual da %s, uma plataforma de agendamento para salões de beleza e barbearias.\n", sys.CompanyName)
	b.WriteString("Responda dúvidas sobre a plataforma: planos, preços, como cadastrar o salão, como conectar o WhatsApp e como funciona o bot de agendamento.\n")
	b.WriteString("Seja cordial, objetivo e responda sempre em português.\n")
	b.WriteString("Se o contato demonstrar interesse em assinar, oriente o cadastro pelo site e ofereça ajuda no processo.\n")

	if sys.SupportWhatsApp != "" {
		fmt.Fprintf(&b, "Para falar com um atendente humano, indique o número %s.\n", sys.SupportWhatsApp)
	}

	b.WriteString("Não invente funcionalidades que não foram mencionadas aqui.")

	return b.String(), nil
}
