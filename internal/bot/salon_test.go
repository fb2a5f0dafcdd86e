package bot

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/salaohub/salon-scheduler/internal/models"
)

func TestSalonPromptListsEachServiceOnceInOrder(t *testing.T) {
	services := []models.Service{
		{ID: 1, Name: "Corte Feminino", DurationMin: 60, Price: 120},
		{ID: 2, Name: "Escova", DurationMin: 40, Price: 80},
		{ID: 3, Name: "Coloração", DurationMin: 120, Price: 250},
	}

	repo := &fakeRepo{
		services:      services,
		professionals: []models.Professional{{ID: 5, Name: "Marina"}},
	}

	prompt, err := NewSalonPersona(repo, testSalon()).BuildPrompt(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	lastIdx := -1
	for _, svc := range services {
		line := fmt.Sprintf("- %s (%d min) - R$ %.2f", svc.Name, svc.DurationMin, svc.Price)

		first := strings.Index(prompt, line)
		if first < 0 {
			t.Fatalf("serviço ausente do prompt: %q", line)
		}
		if strings.Index(prompt[first+1:], line) >= 0 {
			t.Errorf("serviço aparece mais de uma vez: %q", line)
		}
		if first < lastIdx {
			t.Errorf("serviço fora da ordem da consulta: %q", svc.Name)
		}
		lastIdx = first
	}
}

func TestSalonPromptIncludesSalonDetails(t *testing.T) {
	repo := &fakeRepo{
		services:      []models.Service{{ID: 1, Name: "Corte", DurationMin: 30, Price: 50}},
		professionals: []models.Professional{{ID: 5, Name: "Marina"}, {ID: 6, Name: "Paula"}},
	}

	prompt, err := NewSalonPersona(repo, testSalon()).BuildPrompt(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{"Studio Bela", "Rua das Flores, 100", "Seg-Sáb 09:00-19:00", "Marina", "Paula"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt sem %q", want)
		}
	}
}

func TestSupportPromptUsesSystemConfig(t *testing.T) {
	repo := &fakeRepo{
		system: &models.SystemConfig{
			CompanyName:     "SalãoHub",
			SupportWhatsApp: "5511900001111",
		},
	}

	prompt, err := NewSupportPersona(repo).BuildPrompt(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(prompt, "SalãoHub") || !strings.Contains(prompt, "5511900001111") {
		t.Errorf("prompt de suporte incompleto: %q", prompt)
	}
}
