package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/salaohub/salon-scheduler/internal/gateway"
	"github.com/salaohub/salon-scheduler/internal/httperr"
	"github.com/salaohub/salon-scheduler/internal/interaction"
	"github.com/salaohub/salon-scheduler/internal/llm"
	"github.com/salaohub/salon-scheduler/internal/models"
	booking "github.com/salaohub/salon-scheduler/internal/usecase/booking"
)

// ======================================================
// FAKES
// ======================================================

type fakeRepo struct {
	salonsByInstance map[string]*models.Salon
	salonsByNumber   map[string]*models.Salon
	botConfigs       map[uint]*models.BotConfig
	clients          map[string]*models.Client
	services         []models.Service
	professionals    []models.Professional
	system           *models.SystemConfig
}

func (r *fakeRepo) SalonByInstance(_ context.Context, name string) (*models.Salon, error) {
	if s, ok := r.salonsByInstance[name]; ok {
		return s, nil
	}
	return nil, errors.New("not found")
}

func (r *fakeRepo) SalonByWhatsApp(_ context.Context, number string) (*models.Salon, error) {
	return r.salonsByNumber[number], nil
}

func (r *fakeRepo) BotConfigForSalon(_ context.Context, salonID uint) (*models.BotConfig, error) {
	return r.botConfigs[salonID], nil
}

func (r *fakeRepo) ClientByNumber(_ context.Context, _ uint, number string) (*models.Client, error) {
	return r.clients[number], nil
}

func (r *fakeRepo) ListActiveServices(_ context.Context, _ uint) ([]models.Service, error) {
	return r.services, nil
}

func (r *fakeRepo) ListProfessionals(_ context.Context, _ uint) ([]models.Professional, error) {
	return r.professionals, nil
}

func (r *fakeRepo) GetSystemConfig(_ context.Context) (*models.SystemConfig, error) {
	if r.system != nil {
		return r.system, nil
	}
	return &models.SystemConfig{
		CompanyName:      "SalãoHub",
		SupportInstance:  "support_bot",
		SupportBotActive: true,
	}, nil
}

type sentMessage struct {
	Instance string
	Number   string
	Text     string
}

type fakeGateway struct {
	sent []sentMessage
	err  error
}

func (g *fakeGateway) SendText(_ context.Context, instance, number, text string) (*gateway.SendResult, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.sent = append(g.sent, sentMessage{Instance: instance, Number: number, Text: text})
	return &gateway.SendResult{}, nil
}

type fakeCompleter struct {
	reply   string
	err     error
	calls   int
	prompts []string
	history [][]llm.Message
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string, history []llm.Message, _ string) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	f.history = append(f.history, history)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type fakeRecorder struct {
	events []interaction.Event
}

func (r *fakeRecorder) Record(ev interaction.Event) {
	r.events = append(r.events, ev)
}

type fakeStore struct {
	history map[string][]llm.Message
	dialogs map[string][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		history: map[string][]llm.Message{},
		dialogs: map[string][]byte{},
	}
}

func (s *fakeStore) History(_ context.Context, convID string) ([]llm.Message, error) {
	return s.history[convID], nil
}

func (s *fakeStore) Append(_ context.Context, convID string, msgs ...llm.Message) error {
	s.history[convID] = append(s.history[convID], msgs...)
	return nil
}

func (s *fakeStore) Dialog(_ context.Context, convID string) ([]byte, error) {
	return s.dialogs[convID], nil
}

func (s *fakeStore) SetDialog(_ context.Context, convID string, state []byte) error {
	s.dialogs[convID] = state
	return nil
}

func (s *fakeStore) ClearDialog(_ context.Context, convID string) error {
	delete(s.dialogs, convID)
	return nil
}

type fakeBooker struct {
	input  booking.CreateAppointmentInput
	err    error
	called bool
}

func (b *fakeBooker) Execute(_ context.Context, in booking.CreateAppointmentInput) (*models.Appointment, error) {
	b.called = true
	b.input = in
	if b.err != nil {
		return nil, b.err
	}
	start, _ := time.Parse("2006-01-02 15:04", in.Date+" "+in.Time)
	return &models.Appointment{ID: 99, StartTime: start, Status: "scheduled"}, nil
}

// ======================================================
// FIXTURE
// ======================================================

func testSalon() *models.Salon {
	return &models.Salon{
		ID:           42,
		Name:         "Studio Bela",
		Slug:         "studio-bela",
		WhatsApp:     "5511988887777",
		Address:      "Rua das Flores, 100",
		OpeningHours: "Seg-Sáb 09:00-19:00",
		Timezone:     "America/Sao_Paulo",
		InstanceName: "salon_42",
		ConnStatus:   models.ConnStatusConnected,
		Active:       true,
	}
}

func newTestRouter() (*Router, *fakeRepo, *fakeGateway, *fakeCompleter, *fakeRecorder, *fakeStore, *fakeBooker) {
	salon := testSalon()

	repo := &fakeRepo{
		salonsByInstance: map[string]*models.Salon{"salon_42": salon},
		salonsByNumber:   map[string]*models.Salon{salon.WhatsApp: salon},
		botConfigs:       map[uint]*models.BotConfig{},
		clients:          map[string]*models.Client{},
		services: []models.Service{
			{ID: 1, Name: "Corte Feminino", DurationMin: 60, Price: 120},
			{ID: 2, Name: "Escova", DurationMin: 40, Price: 80},
			{ID: 3, Name: "Coloração", DurationMin: 120, Price: 250},
		},
		professionals: []models.Professional{
			{ID: 5, Name: "Marina"},
			{ID: 6, Name: "Paula"},
		},
	}

	gw := &fakeGateway{}
	completer := &fakeCompleter{reply: "Olá! Posso ajudar com seu agendamento."}
	rec := &fakeRecorder{}
	store := newFakeStore()
	book := &fakeBooker{}

	return NewRouter(repo, gw, completer, store, rec, book), repo, gw, completer, rec, store, book
}

func salonPayload(text string) *InboundPayload {
	raw := fmt.Sprintf(`{
		"event": "messages.upsert",
		"instance": {"instanceName": "salon_42"},
		"message": {"from": "5511999998888@s.whatsapp.net", "body": %q}
	}`, text)

	var p InboundPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		panic(err)
	}
	return &p
}

// ======================================================
// VALIDAÇÃO DO PAYLOAD
// ======================================================

func TestHandleInboundIgnoresOtherEvents(t *testing.T) {
	router, _, gw, completer, _, _, _ := newTestRouter()

	p := salonPayload("oi")
	p.Event = "connection.update"

	res, err := router.HandleInbound(context.Background(), "salon_42", p)
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if res != ResultIgnored {
		t.Errorf("res = %q, want %q", res, ResultIgnored)
	}
	if completer.calls != 0 || len(gw.sent) != 0 {
		t.Error("evento ignorado não pode chamar LLM nem gateway")
	}
}

func TestHandleInboundRejectsMalformedPayload(t *testing.T) {
	router, _, gw, completer, _, _, _ := newTestRouter()

	cases := []*InboundPayload{
		{Event: "messages.upsert"}, // sem instance, sem mensagem
		func() *InboundPayload {
			p := salonPayload("oi")
			p.Event = ""
			return p // sem event
		}(),
		func() *InboundPayload {
			p := salonPayload("")
			return p // sem texto
		}(),
		func() *InboundPayload {
			p := salonPayload("oi")
			p.Message.From = ""
			return p // sem remetente
		}(),
	}

	for i, p := range cases {
		_, err := router.HandleInbound(context.Background(), "", p)
		if !errors.Is(err, ErrInvalidPayload) {
			t.Errorf("caso %d: err = %v, want ErrInvalidPayload", i, err)
		}
	}

	if completer.calls != 0 || len(gw.sent) != 0 {
		t.Error("payload malformado não pode chamar LLM nem gateway")
	}
}

func TestHandleInboundIgnoresOwnMessages(t *testing.T) {
	router, _, gw, completer, _, _, _ := newTestRouter()

	p := salonPayload("oi")
	p.Message.FromMe = true

	res, err := router.HandleInbound(context.Background(), "salon_42", p)
	if err != nil || res != ResultIgnored {
		t.Fatalf("res = %q, err = %v", res, err)
	}
	if completer.calls != 0 || len(gw.sent) != 0 {
		t.Error("eco do próprio canal não pode chamar LLM nem gateway")
	}
}

// ======================================================
// SUPORTE
// ======================================================

func supportPayload(from, text string) *InboundPayload {
	raw := fmt.Sprintf(`{
		"event": "messages.upsert",
		"instance": "support_bot",
		"data": {
			"key": {"remoteJid": "%s@s.whatsapp.net"},
			"message": {"conversation": %q}
		}
	}`, from, text)

	var p InboundPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		panic(err)
	}
	return &p
}

func TestSupportAnswersLead(t *testing.T) {
	router, _, gw, completer, rec, _, _ := newTestRouter()

	res, err := router.HandleInbound(context.Background(), "", supportPayload("5521977776666", "Como funciona o plano?"))
	if err != nil || res != ResultOK {
		t.Fatalf("res = %q, err = %v", res, err)
	}

	if completer.calls != 1 {
		t.Fatalf("llm calls = %d, want 1", completer.calls)
	}
	if len(gw.sent) != 1 || gw.sent[0].Instance != "support_bot" {
		t.Fatalf("envio errado: %+v", gw.sent)
	}

	if len(rec.events) != 1 {
		t.Fatalf("events = %d, want 1", len(rec.events))
	}
	ev := rec.events[0]
	if ev.Channel != models.InteractionSupportBot || !ev.IsLead || !ev.UsedLLM || !ev.Success {
		t.Errorf("registro errado: %+v", ev)
	}
}

func TestSupportIgnoresRegisteredSalonNumber(t *testing.T) {
	router, _, gw, completer, _, _, _ := newTestRouter()

	// o remetente é o número de WhatsApp de um salão cadastrado
	res, err := router.HandleInbound(context.Background(), "", supportPayload("5511988887777", "teste"))
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if res != ResultIgnored {
		t.Errorf("res = %q, want %q", res, ResultIgnored)
	}
	if completer.calls != 0 || len(gw.sent) != 0 {
		t.Error("número de salão no canal de suporte não pode gerar resposta")
	}
}

func TestSupportBotDisabled(t *testing.T) {
	router, repo, gw, completer, _, _, _ := newTestRouter()
	repo.system = &models.SystemConfig{
		SupportInstance:  "support_bot",
		SupportBotActive: false,
	}

	res, err := router.HandleInbound(context.Background(), "", supportPayload("5521977776666", "oi"))
	if err != nil || res != ResultBotDisabled {
		t.Fatalf("res = %q, err = %v", res, err)
	}
	if completer.calls != 0 || len(gw.sent) != 0 {
		t.Error("bot desativado não pode chamar LLM nem enviar")
	}
}

// ======================================================
// SALÃO
// ======================================================

func TestSalonBotDisabled(t *testing.T) {
	router, repo, gw, completer, _, _, _ := newTestRouter()
	repo.botConfigs[42] = &models.BotConfig{SalonID: 42, Active: false}

	res, err := router.HandleInbound(context.Background(), "salon_42", salonPayload("oi"))
	if err != nil || res != ResultBotDisabled {
		t.Fatalf("res = %q, err = %v", res, err)
	}
	if completer.calls != 0 || len(gw.sent) != 0 {
		t.Error("bot desativado não pode chamar LLM nem enviar")
	}
}

func TestSalonClientBotDisabled(t *testing.T) {
	router, repo, gw, completer, _, _, _ := newTestRouter()
	repo.clients["5511999998888"] = &models.Client{
		ID: 3, SalonID: 42, Name: "Joana", WhatsApp: "5511999998888", BotDisabled: true,
	}

	res, err := router.HandleInbound(context.Background(), "salon_42", salonPayload("oi"))
	if err != nil || res != ResultBotDisabled {
		t.Fatalf("res = %q, err = %v", res, err)
	}
	if completer.calls != 0 || len(gw.sent) != 0 {
		t.Error("cliente com bot desligado não pode gerar resposta")
	}
}

func TestSalonUnknownInstance(t *testing.T) {
	router, _, _, _, _, _, _ := newTestRouter()

	p := salonPayload("oi")
	p.Instance = json.RawMessage(`"salon_777"`)

	_, err := router.HandleInbound(context.Background(), "", p)
	if !errors.Is(err, ErrUnknownInstance) {
		t.Fatalf("err = %v, want ErrUnknownInstance", err)
	}
}

func TestSalonQuietHours(t *testing.T) {
	router, repo, gw, completer, _, _, _ := newTestRouter()

	// janela cobrindo o horário atual do teste
	now := time.Now()
	repo.botConfigs[42] = &models.BotConfig{
		SalonID:         42,
		Active:          true,
		QuietStart:      now.Add(-1 * time.Hour).Format("15:04"),
		QuietEnd:        now.Add(1 * time.Hour).Format("15:04"),
		OffHoursMessage: "Estamos fechados, volte amanhã!",
	}

	res, err := router.HandleInbound(context.Background(), "salon_42", salonPayload("oi"))
	if err != nil || res != ResultOK {
		t.Fatalf("res = %q, err = %v", res, err)
	}

	if completer.calls != 0 {
		t.Error("janela de silêncio não pode chamar o LLM")
	}
	if len(gw.sent) != 1 || gw.sent[0].Text != "Estamos fechados, volte amanhã!" {
		t.Fatalf("envio errado: %+v", gw.sent)
	}
}

func TestSalonEndToEnd(t *testing.T) {
	router, _, gw, completer, rec, store, _ := newTestRouter()
	completer.reply = "O corte feminino custa R$ 120,00!"

	res, err := router.HandleInbound(context.Background(), "salon_42", salonPayload("Quanto custa o corte?"))
	if err != nil || res != ResultOK {
		t.Fatalf("res = %q, err = %v", res, err)
	}

	if completer.calls != 1 {
		t.Fatalf("llm calls = %d, want 1", completer.calls)
	}

	prompt := completer.prompts[0]
	if !strings.Contains(prompt, "Studio Bela") {
		t.Errorf("prompt sem o nome do salão: %q", prompt)
	}

	if len(gw.sent) != 1 {
		t.Fatalf("sends = %d, want 1", len(gw.sent))
	}
	sent := gw.sent[0]
	if sent.Instance != "salon_42" || sent.Number != "5511999998888" || sent.Text != completer.reply {
		t.Fatalf("envio errado: %+v", sent)
	}

	// histórico gravado para a próxima mensagem
	hist := store.history["salon_42:5511999998888"]
	if len(hist) != 2 || hist[0].Role != "user" || hist[1].Role != "assistant" {
		t.Fatalf("histórico errado: %+v", hist)
	}

	if len(rec.events) != 1 {
		t.Fatalf("events = %d, want 1", len(rec.events))
	}
	ev := rec.events[0]
	if ev.SalonID == nil || *ev.SalonID != 42 || ev.Channel != models.InteractionSalonBot || !ev.UsedLLM || !ev.Success {
		t.Errorf("registro errado: %+v", ev)
	}
}

func TestSalonLLMFailureSendsFallback(t *testing.T) {
	router, _, gw, completer, rec, store, _ := newTestRouter()
	completer.err = errors.New("llm: http 500")

	res, err := router.HandleInbound(context.Background(), "salon_42", salonPayload("oi"))
	if err != nil || res != ResultOK {
		t.Fatalf("res = %q, err = %v", res, err)
	}

	if len(gw.sent) != 1 || gw.sent[0].Text != llm.FallbackMessage {
		t.Fatalf("a falha do LLM deveria enviar a mensagem padrão: %+v", gw.sent)
	}

	if len(store.history["salon_42:5511999998888"]) != 0 {
		t.Error("falha do LLM não pode entrar no histórico")
	}

	if len(rec.events) != 1 || rec.events[0].Success {
		t.Errorf("a falha deveria ser registrada com success=false: %+v", rec.events)
	}
}

func TestSalonHistoryIsForwarded(t *testing.T) {
	router, _, _, completer, _, store, _ := newTestRouter()

	prev := []llm.Message{
		{Role: "user", Content: "oi"},
		{Role: "assistant", Content: "olá!"},
	}
	store.history["salon_42:5511999998888"] = prev

	if _, err := router.HandleInbound(context.Background(), "salon_42", salonPayload("e a escova?")); err != nil {
		t.Fatal(err)
	}

	if len(completer.history) != 1 || len(completer.history[0]) != 2 {
		t.Fatalf("histórico não repassado: %+v", completer.history)
	}
}

// ======================================================
// DIÁLOGO DE AGENDAMENTO VIA ROUTER
// ======================================================

func TestBookingDialogThroughRouter(t *testing.T) {
	router, _, gw, completer, _, store, book := newTestRouter()
	ctx := context.Background()

	steps := []string{"quero agendar", "1", "2", "25/12/2026 14:30", "sim"}
	for _, msg := range steps {
		if _, err := router.HandleInbound(ctx, "salon_42", salonPayload(msg)); err != nil {
			t.Fatalf("mensagem %q: %v", msg, err)
		}
	}

	if completer.calls != 0 {
		t.Errorf("o diálogo guiado não deveria usar o LLM (calls = %d)", completer.calls)
	}

	if !book.called {
		t.Fatal("a confirmação deveria criar o agendamento")
	}
	in := book.input
	if in.SalonID != 42 || in.ServiceID != 1 || in.ProfessionalID != 6 {
		t.Fatalf("input errado: %+v", in)
	}
	if in.Date != "2026-12-25" || in.Time != "14:30" {
		t.Fatalf("data errada: %+v", in)
	}
	if in.ClientPhone != "5511999998888" {
		t.Fatalf("telefone errado: %q", in.ClientPhone)
	}
	if in.RequestedBy != nil {
		t.Error("agendamento do bot não tem usuário autenticado")
	}

	if _, ok := store.dialogs["salon_42:5511999998888"]; ok {
		t.Error("diálogo concluído deveria ser limpo")
	}

	last := gw.sent[len(gw.sent)-1]
	if !strings.Contains(last.Text, "Agendado") {
		t.Errorf("resposta final errada: %q", last.Text)
	}
}

func TestBookingDialogConflictRetries(t *testing.T) {
	router, _, gw, _, _, store, book := newTestRouter()
	book.err = httperr.ErrBusiness("time_conflict")
	ctx := context.Background()

	for _, msg := range []string{"agendar", "1", "1", "25/12/2026 14:30", "sim"} {
		if _, err := router.HandleInbound(ctx, "salon_42", salonPayload(msg)); err != nil {
			t.Fatalf("mensagem %q: %v", msg, err)
		}
	}

	raw, ok := store.dialogs["salon_42:5511999998888"]
	if !ok {
		t.Fatal("conflito de horário deveria manter o diálogo aberto")
	}

	var st DialogState
	if err := json.Unmarshal(raw, &st); err != nil {
		t.Fatal(err)
	}
	if st.Stage != StageAwaitingDate {
		t.Errorf("stage = %q, want %q", st.Stage, StageAwaitingDate)
	}

	last := gw.sent[len(gw.sent)-1]
	if !strings.Contains(last.Text, "ocupado") {
		t.Errorf("resposta de conflito errada: %q", last.Text)
	}
}
