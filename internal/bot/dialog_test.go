package bot

import (
	"strings"
	"testing"

	"github.com/salaohub/salon-scheduler/internal/models"
)

func testDialogData() DialogData {
	return DialogData{
		Services: []models.Service{
			{ID: 10, Name: "Corte", DurationMin: 30, Price: 50},
			{ID: 11, Name: "Barba", DurationMin: 20, Price: 35},
		},
		Professionals: []models.Professional{
			{ID: 7, Name: "Carlos"},
			{ID: 8, Name: "Ana"},
		},
	}
}

func TestWantsBooking(t *testing.T) {
	yes := []string{"agendar", "Quero AGENDAR um corte", "quero marcar horário", "agendar!"}
	for _, txt := range yes {
		if !WantsBooking(txt) {
			t.Errorf("WantsBooking(%q) = false, want true", txt)
		}
	}

	no := []string{"quanto custa o corte?", "desagendar", "remarcação", ""}
	for _, txt := range no {
		if WantsBooking(txt) {
			t.Errorf("WantsBooking(%q) = true, want false", txt)
		}
	}
}

func TestStartDialog(t *testing.T) {
	res := StartDialog(testDialogData())

	if res.Abort || res.Done {
		t.Fatalf("início não deveria encerrar o diálogo: %+v", res)
	}
	if res.State.Stage != StageAwaitingService {
		t.Fatalf("stage = %q, want %q", res.State.Stage, StageAwaitingService)
	}
	if !strings.Contains(res.Reply, "1. Corte") || !strings.Contains(res.Reply, "2. Barba") {
		t.Errorf("resposta não lista os serviços numerados: %q", res.Reply)
	}
}

func TestStartDialogWithoutServices(t *testing.T) {
	res := StartDialog(DialogData{})
	if !res.Abort {
		t.Fatal("sem serviços o diálogo deveria abortar")
	}
}

func TestStepDialogFullFlow(t *testing.T) {
	data := testDialogData()

	state := StartDialog(data).State

	// serviço
	res := StepDialog(state, "2", data)
	if res.State.Stage != StageAwaitingProfessional {
		t.Fatalf("stage = %q, want %q", res.State.Stage, StageAwaitingProfessional)
	}
	if res.State.ServiceID != 11 || res.State.ServiceName != "Barba" {
		t.Fatalf("serviço errado: %+v", res.State)
	}

	// profissional
	res = StepDialog(res.State, "1", data)
	if res.State.Stage != StageAwaitingDate {
		t.Fatalf("stage = %q, want %q", res.State.Stage, StageAwaitingDate)
	}
	if res.State.ProfessionalID != 7 || res.State.ProfessionalName != "Carlos" {
		t.Fatalf("profissional errado: %+v", res.State)
	}

	// data
	res = StepDialog(res.State, "25/12/2026 14:30", data)
	if res.State.Stage != StageAwaitingConfirmation {
		t.Fatalf("stage = %q, want %q", res.State.Stage, StageAwaitingConfirmation)
	}
	if res.State.Date != "2026-12-25" || res.State.Time != "14:30" {
		t.Fatalf("data/hora erradas: %+v", res.State)
	}
	if !strings.Contains(res.Reply, "Barba") || !strings.Contains(res.Reply, "Carlos") {
		t.Errorf("confirmação não resume a escolha: %q", res.Reply)
	}

	// confirmação
	res = StepDialog(res.State, "sim", data)
	if !res.Done {
		t.Fatal("\"sim\" deveria concluir o diálogo")
	}
}

func TestStepDialogInvalidSelectionKeepsStage(t *testing.T) {
	data := testDialogData()
	state := DialogState{Stage: StageAwaitingService}

	for _, input := range []string{"abc", "0", "3", ""} {
		res := StepDialog(state, input, data)
		if res.Abort || res.Done {
			t.Fatalf("entrada inválida %q não deveria encerrar", input)
		}
		if res.State.Stage != StageAwaitingService {
			t.Errorf("entrada %q mudou o stage para %q", input, res.State.Stage)
		}
	}
}

func TestStepDialogInvalidDateKeepsStage(t *testing.T) {
	data := testDialogData()
	state := DialogState{
		Stage:            StageAwaitingDate,
		ServiceID:        10,
		ServiceName:      "Corte",
		ProfessionalID:   7,
		ProfessionalName: "Carlos",
	}

	res := StepDialog(state, "amanhã de tarde", data)
	if res.Abort || res.Done {
		t.Fatal("data inválida não deveria encerrar o diálogo")
	}
	if res.State.Stage != StageAwaitingDate {
		t.Errorf("stage = %q, want %q", res.State.Stage, StageAwaitingDate)
	}
}

func TestStepDialogCancelAborts(t *testing.T) {
	data := testDialogData()

	for _, stage := range []Stage{
		StageAwaitingService,
		StageAwaitingProfessional,
		StageAwaitingDate,
		StageAwaitingConfirmation,
	} {
		res := StepDialog(DialogState{Stage: stage}, "cancelar", data)
		if !res.Abort {
			t.Errorf("\"cancelar\" no stage %q não abortou", stage)
		}
	}
}

func TestStepDialogDeclineAborts(t *testing.T) {
	data := testDialogData()
	state := DialogState{Stage: StageAwaitingConfirmation}

	for _, input := range []string{"não", "nao", "n"} {
		res := StepDialog(state, input, data)
		if !res.Abort {
			t.Errorf("%q na confirmação não abortou", input)
		}
	}
}
