package bot

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/salaohub/salon-scheduler/internal/convstore"
	"github.com/salaohub/salon-scheduler/internal/gateway"
	"github.com/salaohub/salon-scheduler/internal/httperr"
	"github.com/salaohub/salon-scheduler/internal/interaction"
	"github.com/salaohub/salon-scheduler/internal/llm"
	"github.com/salaohub/salon-scheduler/internal/models"
	"github.com/salaohub/salon-scheduler/internal/timezone"
	booking "github.com/salaohub/salon-scheduler/internal/usecase/booking"
)

// ======================================================
// RESULTADO
// ======================================================

type Result string

const (
	ResultOK          Result = "ok"
	ResultIgnored     Result = "event_ignored"
	ResultBotDisabled Result = "bot_disabled"
)

var (
	ErrInvalidPayload  = errors.New("payload inválido")
	ErrUnknownInstance = errors.New("canal desconhecido")
)

// ======================================================
// ROUTER
// ======================================================

// Router decide qual persona atende cada mensagem recebida e conduz
// o atendimento de ponta a ponta: prompt, histórico, LLM e resposta.
type Router struct {
	repo  Repository
	gw    Gateway
	llm   Completer
	store convstore.Store
	rec   Recorder
	book  Booker
}

func NewRouter(
	repo Repository,
	gw Gateway,
	completer Completer,
	store convstore.Store,
	rec Recorder,
	book Booker,
) *Router {
	return &Router{
		repo:  repo,
		gw:    gw,
		llm:   completer,
		store: store,
		rec:   rec,
		book:  book,
	}
}

// HandleInbound processa um evento do webhook. instanceHint é o canal
// da URL; o payload prevalece quando também traz o nome do canal.
//
// Nenhuma chamada ao LLM ou ao gateway acontece antes de o payload
// ser validado por completo.
func (r *Router) HandleInbound(ctx context.Context, instanceHint string, p *InboundPayload) (Result, error) {
	if p.Event == "" {
		return "", ErrInvalidPayload
	}
	if p.Event != "messages.upsert" {
		return ResultIgnored, nil
	}

	if p.FromMe() {
		return ResultIgnored, nil
	}

	instance := p.InstanceName()
	if instance == "" {
		instance = instanceHint
	}

	sender := p.Sender()
	text := p.Text()

	if instance == "" || sender == "" || text == "" {
		return "", ErrInvalidPayload
	}

	if instance == gateway.SupportInstance {
		return r.handleSupport(ctx, sender, text)
	}
	return r.handleSalon(ctx, instance, sender, text)
}

// ======================================================
// SUPORTE (canal da plataforma)
// ======================================================

func (r *Router) handleSupport(ctx context.Context, sender, text string) (Result, error) {
	sys, err := r.repo.GetSystemConfig(ctx)
	if err != nil {
		return "", err
	}

	if !sys.SupportBotActive {
		return ResultBotDisabled, nil
	}

	// Salões conectados escrevem no canal de suporte quando o dono
	// testa o próprio número; responder criaria um loop entre os bots.
	salon, err := r.repo.SalonByWhatsApp(ctx, sender)
	if err != nil {
		return "", err
	}
	if salon != nil {
		return ResultIgnored, nil
	}

	prompt, err := NewSupportPersona(r.repo).BuildPrompt(ctx)
	if err != nil {
		return "", err
	}

	return r.reply(ctx, replyInput{
		instance: sys.SupportInstance,
		convID:   sys.SupportInstance + ":" + sender,
		sender:   sender,
		text:     text,
		prompt:   prompt,
		channel:  models.InteractionSupportBot,
		salonID:  nil,
		isLead:   true,
	})
}

// ======================================================
// SALÃO (canal de um salão)
// ======================================================

func (r *Router) handleSalon(ctx context.Context, instance, sender, text string) (Result, error) {
	salon, err := r.repo.SalonByInstance(ctx, instance)
	if err != nil {
		return "", ErrUnknownInstance
	}

	cfg, err := r.repo.BotConfigForSalon(ctx, salon.ID)
	if err != nil {
		return "", err
	}
	if cfg != nil && !cfg.Active {
		return ResultBotDisabled, nil
	}

	client, err := r.repo.ClientByNumber(ctx, salon.ID, sender)
	if err != nil {
		return "", err
	}
	if client != nil && client.BotDisabled {
		return ResultBotDisabled, nil
	}

	salonID := salon.ID
	convID := instance + ":" + sender

	// Janela de silêncio: responde com a mensagem configurada, sem LLM
	if cfg != nil && inQuietWindow(timezone.NowIn(salon.Timezone), cfg.QuietStart, cfg.QuietEnd) {
		msg := cfg.OffHoursMessage
		if msg == "" {
			msg = "No momento estamos fora do horário de atendimento. Retornaremos assim que possível! 😊"
		}
		return r.sendCanned(ctx, instance, sender, text, msg, models.InteractionSalonBot, &salonID)
	}

	data, err := r.dialogData(ctx, salon.ID)
	if err != nil {
		return "", err
	}

	// Diálogo de agendamento em andamento tem prioridade sobre o LLM
	rawState, err := r.store.Dialog(ctx, convID)
	if err != nil {
		log.Println("bot: dialog state:", err)
		rawState = nil
	}

	if rawState != nil {
		var state DialogState
		if err := json.Unmarshal(rawState, &state); err != nil {
			_ = r.store.ClearDialog(ctx, convID)
		} else {
			return r.stepDialog(ctx, salon, client, convID, sender, text, state, data)
		}
	}

	if WantsBooking(text) {
		res := StartDialog(data)
		if !res.Abort {
			if raw, err := json.Marshal(res.State); err == nil {
				if err := r.store.SetDialog(ctx, convID, raw); err != nil {
					log.Println("bot: dialog state:", err)
				}
			}
		}
		return r.sendCanned(ctx, instance, sender, text, res.Reply, models.InteractionSalonBot, &salonID)
	}

	prompt, err := NewSalonPersona(r.repo, salon).BuildPrompt(ctx)
	if err != nil {
		return "", err
	}

	return r.reply(ctx, replyInput{
		instance: instance,
		convID:   convID,
		sender:   sender,
		text:     text,
		prompt:   prompt,
		channel:  models.InteractionSalonBot,
		salonID:  &salonID,
		isLead:   client == nil,
	})
}

// ======================================================
// DIÁLOGO DE AGENDAMENTO
// ======================================================

func (r *Router) dialogData(ctx context.Context, salonID uint) (DialogData, error) {
	services, err := r.repo.ListActiveServices(ctx, salonID)
	if err != nil {
		return DialogData{}, err
	}
	professionals, err := r.repo.ListProfessionals(ctx, salonID)
	if err != nil {
		return DialogData{}, err
	}
	return DialogData{Services: services, Professionals: professionals}, nil
}

func (r *Router) stepDialog(
	ctx context.Context,
	salon *models.Salon,
	client *models.Client,
	convID string,
	sender string,
	text string,
	state DialogState,
	data DialogData,
) (Result, error) {

	instance := salon.InstanceName
	salonID := salon.ID

	res := StepDialog(state, text, data)

	switch {
	case res.Abort:
		if err := r.store.ClearDialog(ctx, convID); err != nil {
			log.Println("bot: dialog state:", err)
		}
		return r.sendCanned(ctx, instance, sender, text, res.Reply, models.InteractionSalonBot, &salonID)

	case res.Done:
		return r.confirmBooking(ctx, salon, client, convID, sender, text, res.State)

	default:
		if raw, err := json.Marshal(res.State); err == nil {
			if err := r.store.SetDialog(ctx, convID, raw); err != nil {
				log.Println("bot: dialog state:", err)
			}
		}
		return r.sendCanned(ctx, instance, sender, text, res.Reply, models.InteractionSalonBot, &salonID)
	}
}

func (r *Router) confirmBooking(
	ctx context.Context,
	salon *models.Salon,
	client *models.Client,
	convID string,
	sender string,
	text string,
	state DialogState,
) (Result, error) {

	salonID := salon.ID

	name := "Cliente WhatsApp"
	if client != nil {
		name = client.Name
	}

	ap, err := r.book.Execute(ctx, booking.CreateAppointmentInput{
		SalonID:        salon.ID,
		ProfessionalID: state.ProfessionalID,
		ServiceID:      state.ServiceID,
		ClientName:     name,
		ClientPhone:    sender,
		Date:           state.Date,
		Time:           state.Time,
		Notes:          "Agendado pelo bot",
	})

	if err != nil {
		reply, retry := bookingFailureReply(err)

		if retry {
			// volta para a escolha de data, mantendo serviço e profissional
			state.Stage = StageAwaitingDate
			state.Date = ""
			state.Time = ""
			if raw, mErr := json.Marshal(state); mErr == nil {
				if sErr := r.store.SetDialog(ctx, convID, raw); sErr != nil {
					log.Println("bot: dialog state:", sErr)
				}
			}
		} else {
			if cErr := r.store.ClearDialog(ctx, convID); cErr != nil {
				log.Println("bot: dialog state:", cErr)
			}
		}

		return r.sendCanned(ctx, salon.InstanceName, sender, text, reply, models.InteractionSalonBot, &salonID)
	}

	if err := r.store.ClearDialog(ctx, convID); err != nil {
		log.Println("bot: dialog state:", err)
	}

	loc := timezone.Location(salon.Timezone)
	reply := "Agendado! ✅ " + state.ServiceName + " com " + state.ProfessionalName +
		" em " + ap.StartTime.In(loc).Format("02/01/2006") +
		" às " + ap.StartTime.In(loc).Format("15:04") + ". Até lá!"

	return r.sendCanned(ctx, salon.InstanceName, sender, text, reply, models.InteractionSalonBot, &salonID)
}

// bookingFailureReply traduz o erro de negócio para o cliente e diz
// se vale a pena tentar outra data no mesmo diálogo.
func bookingFailureReply(err error) (string, bool) {
	switch {
	case httperr.IsBusiness(err, "time_conflict"):
		return "Esse horário acabou de ser ocupado. 😕 Envie outra data e horário (DD/MM/AAAA HH:MM).", true
	case httperr.IsBusiness(err, "outside_working_hours"):
		return "O profissional não atende nesse horário. Envie outra data e horário (DD/MM/AAAA HH:MM).", true
	case httperr.IsBusiness(err, "too_soon"):
		return "Esse horário está muito em cima da hora. Envie uma data com mais antecedência (DD/MM/AAAA HH:MM).", true
	case httperr.IsBusiness(err, "invalid_date_or_time"):
		return "Data inválida. Envie no formato DD/MM/AAAA HH:MM.", true
	default:
		return "Não consegui concluir o agendamento. 😕 Tente novamente mais tarde ou fale direto com o salão.", false
	}
}

// ======================================================
// ENVIO + REGISTRO
// ======================================================

type replyInput struct {
	instance string
	convID   string
	sender   string
	text     string
	prompt   string
	channel  string
	salonID  *uint
	isLead   bool
}

// reply faz o ciclo completo com LLM: histórico, completion, envio e
// registro. Falha do LLM vira FallbackMessage, nunca silêncio.
func (r *Router) reply(ctx context.Context, in replyInput) (Result, error) {
	history, err := r.store.History(ctx, in.convID)
	if err != nil {
		log.Println("bot: history:", err)
		history = nil
	}

	start := time.Now()

	answer, llmErr := r.llm.Complete(ctx, in.prompt, history, in.text)
	if llmErr != nil {
		log.Println("bot: llm:", llmErr)
		answer = llm.FallbackMessage
	}

	if _, err := r.gw.SendText(ctx, in.instance, in.sender, answer); err != nil {
		r.rec.Record(interaction.Event{
			SalonID:  in.salonID,
			Channel:  in.channel,
			Number:   in.sender,
			Inbound:  in.text,
			Outbound: answer,
			UsedLLM:  true,
			Latency:  time.Since(start),
			Success:  false,
			IsLead:   in.isLead,
		})
		return "", err
	}

	if llmErr == nil {
		if err := r.store.Append(ctx, in.convID,
			llm.Message{Role: "user", Content: in.text},
			llm.Message{Role: "assistant", Content: answer},
		); err != nil {
			log.Println("bot: history:", err)
		}
	}

	r.rec.Record(interaction.Event{
		SalonID:  in.salonID,
		Channel:  in.channel,
		Number:   in.sender,
		Inbound:  in.text,
		Outbound: answer,
		UsedLLM:  true,
		Latency:  time.Since(start),
		Success:  llmErr == nil,
		IsLead:   in.isLead,
	})

	return ResultOK, nil
}

// sendCanned envia uma resposta pronta (sem LLM) e registra o atendimento
func (r *Router) sendCanned(ctx context.Context, instance, sender, inbound, msg, channel string, salonID *uint) (Result, error) {
	start := time.Now()

	if _, err := r.gw.SendText(ctx, instance, sender, msg); err != nil {
		r.rec.Record(interaction.Event{
			SalonID:  salonID,
			Channel:  channel,
			Number:   sender,
			Inbound:  inbound,
			Outbound: msg,
			Latency:  time.Since(start),
			Success:  false,
		})
		return "", err
	}

	r.rec.Record(interaction.Event{
		SalonID:  salonID,
		Channel:  channel,
		Number:   sender,
		Inbound:  inbound,
		Outbound: msg,
		Latency:  time.Since(start),
		Success:  true,
	})

	return ResultOK, nil
}

// inQuietWindow trata janelas que cruzam a meia-noite (ex: 21:00–08:00)
func inQuietWindow(now time.Time, startHM, endHM string) bool {
	if startHM == "" || endHM == "" {
		return false
	}

	s, err := time.Parse("15:04", startHM)
	if err != nil {
		return false
	}
	e, err := time.Parse("15:04", endHM)
	if err != nil {
		return false
	}

	cur := now.Hour()*60 + now.Minute()
	sm := s.Hour()*60 + s.Minute()
	em := e.Hour()*60 + e.Minute()

	if sm == em {
		return false
	}
	if sm < em {
		return cur >= sm && cur < em
	}
	return cur >= sm || cur < em
}
