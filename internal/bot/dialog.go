package bot

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/salaohub/salon-scheduler/internal/models"
)

// ======================================================
// ESTADO DO DIÁLOGO DE AGENDAMENTO
// ======================================================

type Stage string

const (
	StageAwaitingService      Stage = "awaiting_service"
	StageAwaitingProfessional Stage = "awaiting_professional"
	StageAwaitingDate         Stage = "awaiting_date"
	StageAwaitingConfirmation Stage = "awaiting_confirmation"
)

// DialogState é serializado como JSON no convstore entre mensagens.
type DialogState struct {
	Stage Stage `json:"stage"`

	ServiceID   uint   `json:"service_id,omitempty"`
	ServiceName string `json:"service_name,omitempty"`

	ProfessionalID   uint   `json:"professional_id,omitempty"`
	ProfessionalName string `json:"professional_name,omitempty"`

	Date string `json:"date,omitempty"` // 2006-01-02
	Time string `json:"time,omitempty"` // 15:04
}

// DialogData são os catálogos do salão na ordem em que o banco devolve;
// a seleção por número depende dessa ordem ser estável entre mensagens.
type DialogData struct {
	Services      []models.Service
	Professionals []models.Professional
}

type DialogResult struct {
	State DialogState
	Reply string

	// Done indica que o cliente confirmou; quem chama efetiva o
	// agendamento e monta a resposta final.
	Done  bool
	Abort bool
}

const abortReply = "Tudo bem, agendamento cancelado. Se precisar, é só chamar! 😊"

// WantsBooking detecta a intenção de agendar por palavra inteira,
// para não disparar em frases como "desagendar".
func WantsBooking(text string) bool {
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		tok = strings.Trim(tok, ".,!?")
		if tok == "agendar" || tok == "marcar" {
			return true
		}
	}
	return false
}

// ======================================================
// TRANSIÇÕES
// ======================================================

// StartDialog abre o diálogo listando os serviços.
func StartDialog(data DialogData) DialogResult {
	if len(data.Services) == 0 {
		return DialogResult{
			Abort: true,
			Reply: "No momento não há serviços disponíveis para agendamento. 😕",
		}
	}

	var b strings.Builder
	b.WriteString("Vamos agendar! 💈 Qual serviço você deseja? Responda com o número:\n")
	for i, s := range data.Services {
		fmt.Fprintf(&b, "%d. %s (%d min) - R$ %.2f\n", i+1, s.Name, s.DurationMin, s.Price)
	}
	b.WriteString("\nPara desistir a qualquer momento, envie \"cancelar\".")

	return DialogResult{
		State: DialogState{Stage: StageAwaitingService},
		Reply: b.String(),
	}
}

// StepDialog aplica a mensagem do cliente ao estado atual. É uma função
// pura: não toca banco nem relógio além do parse de data informada.
func StepDialog(state DialogState, input string, data DialogData) DialogResult {
	text := strings.TrimSpace(strings.ToLower(input))

	if text == "cancelar" {
		return DialogResult{Abort: true, Reply: abortReply}
	}

	switch state.Stage {

	case StageAwaitingService:
		idx, err := strconv.Atoi(text)
		if err != nil || idx < 1 || idx > len(data.Services) {
			return DialogResult{
				State: state,
				Reply: "Não entendi. 🤔 Responda com o número do serviço desejado.",
			}
		}

		svc := data.Services[idx-1]
		state.ServiceID = svc.ID
		state.ServiceName = svc.Name

		if len(data.Professionals) == 0 {
			return DialogResult{
				Abort: true,
				Reply: "No momento não há profissionais disponíveis. 😕",
			}
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Ótimo, %s! Com qual profissional? Responda com o número:\n", svc.Name)
		for i, pro := range data.Professionals {
			fmt.Fprintf(&b, "%d. %s\n", i+1, pro.Name)
		}

		state.Stage = StageAwaitingProfessional
		return DialogResult{State: state, Reply: b.String()}

	case StageAwaitingProfessional:
		idx, err := strconv.Atoi(text)
		if err != nil || idx < 1 || idx > len(data.Professionals) {
			return DialogResult{
				State: state,
				Reply: "Não entendi. 🤔 Responda com o número do profissional.",
			}
		}

		pro := data.Professionals[idx-1]
		state.ProfessionalID = pro.ID
		state.ProfessionalName = pro.Name
		state.Stage = StageAwaitingDate

		return DialogResult{
			State: state,
			Reply: "Para quando? Envie a data e o horário no formato DD/MM/AAAA HH:MM (ex: 25/12/2026 14:30).",
		}

	case StageAwaitingDate:
		when, err := time.Parse("02/01/2006 15:04", strings.TrimSpace(input))
		if err != nil {
			return DialogResult{
				State: state,
				Reply: "Data inválida. 🤔 Envie no formato DD/MM/AAAA HH:MM (ex: 25/12/2026 14:30).",
			}
		}

		state.Date = when.Format("2006-01-02")
		state.Time = when.Format("15:04")
		state.Stage = StageAwaitingConfirmation

		reply := fmt.Sprintf(
			"Confirmando: %s com %s em %s às %s. Posso confirmar? (sim/não)",
			state.ServiceName,
			state.ProfessionalName,
			when.Format("02/01/2006"),
			state.Time,
		)
		return DialogResult{State: state, Reply: reply}

	case StageAwaitingConfirmation:
		switch text {
		case "sim", "s", "confirmar", "confirmo":
			return DialogResult{State: state, Done: true}
		case "não", "nao", "n":
			return DialogResult{Abort: true, Reply: abortReply}
		default:
			return DialogResult{
				State: state,
				Reply: "Responda \"sim\" para confirmar ou \"não\" para cancelar.",
			}
		}
	}

	// Estado desconhecido (versão antiga serializada): recomeça
	return DialogResult{Abort: true, Reply: abortReply}
}
