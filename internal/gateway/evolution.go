package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/salaohub/salon-scheduler/internal/config"
	"github.com/salaohub/salon-scheduler/internal/validators"
)

// ======================================================
// ERRO TIPADO
// ======================================================

// Error representa qualquer falha na comunicação com o gateway.
// Os métodos do cliente nunca entram em pânico: toda falha de rede
// ou HTTP volta como *Error.
type Error struct {
	Op     string
	Status int
	Body   string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gateway: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("gateway: %s: http %d: %s", e.Op, e.Status, e.Body)
}

func (e *Error) Unwrap() error { return e.Err }

// ======================================================
// NOMES DE CANAL
// ======================================================

const SupportInstance = "support_bot"

// SalonInstance deriva o nome do canal de um salão (salon_{id})
func SalonInstance(salonID uint) string {
	return fmt.Sprintf("salon_%d", salonID)
}

// NormalizeNumber delega para o validador canônico (dígitos + DDI 55)
func NormalizeNumber(phone string) string {
	return validators.NormalizePhone(phone)
}

// ======================================================
// CLIENTE
// ======================================================

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL: cfg.EvolutionAPIURL,
		apiKey:  cfg.EvolutionAPIKey,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ======================================================
// RESPOSTAS
// ======================================================

type Instance struct {
	InstanceName string `json:"instanceName"`
	Status       string `json:"status"`
}

type CreateInstanceResult struct {
	Instance Instance `json:"instance"`
	Hash     struct {
		APIKey string `json:"apikey"`
	} `json:"hash"`
	QRCode ConnectResult `json:"qrcode"`
}

type ConnectResult struct {
	PairingCode string `json:"pairingCode"`
	Code        string `json:"code"`
	Base64      string `json:"base64"`
}

type connectionStateResult struct {
	Instance struct {
		InstanceName string `json:"instanceName"`
		State        string `json:"state"`
	} `json:"instance"`
}

type SendResult struct {
	Key struct {
		ID        string `json:"id"`
		RemoteJid string `json:"remoteJid"`
	} `json:"key"`
	Status string `json:"status"`
}

// ======================================================
// OPERAÇÕES
// ======================================================

// CreateInstance provisiona um novo canal do WhatsApp no gateway
func (c *Client) CreateInstance(ctx context.Context, instanceName, phone string) (*CreateInstanceResult, error) {
	payload := map[string]any{
		"instanceName":  instanceName,
		"token":         uuid.NewString(),
		"number":        NormalizeNumber(phone),
		"qrcode":        true,
		"integration":   "WHATSAPP-BAILEYS",
		"reject_call":   true,
		"readMessages":  true,
		"readStatus":    true,
		"alwaysOnline":  false,
		"webhookBase64": false,
	}

	var out CreateInstanceResult
	if err := c.do(ctx, http.MethodPost, "/instance/create", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchInstances lista todos os canais existentes no gateway
func (c *Client) FetchInstances(ctx context.Context) ([]Instance, error) {
	var raw []struct {
		Instance Instance `json:"instance"`
	}
	if err := c.do(ctx, http.MethodGet, "/instance/fetchInstances", nil, &raw); err != nil {
		return nil, err
	}

	out := make([]Instance, 0, len(raw))
	for _, r := range raw {
		out = append(out, r.Instance)
	}
	return out, nil
}

// InstanceExists varre fetchInstances procurando o nome do canal
func (c *Client) InstanceExists(ctx context.Context, instanceName string) (bool, error) {
	instances, err := c.FetchInstances(ctx)
	if err != nil {
		return false, err
	}
	for _, inst := range instances {
		if inst.InstanceName == instanceName {
			return true, nil
		}
	}
	return false, nil
}

// Connect obtém o QR Code / código de pareamento do canal
func (c *Client) Connect(ctx context.Context, instanceName string) (*ConnectResult, error) {
	var out ConnectResult
	if err := c.do(ctx, http.MethodGet, "/instance/connect/"+instanceName, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConnectionState retorna o estado bruto do canal ("open", "close", "connecting")
func (c *Client) ConnectionState(ctx context.Context, instanceName string) (string, error) {
	var out connectionStateResult
	if err := c.do(ctx, http.MethodGet, "/instance/connectionState/"+instanceName, nil, &out); err != nil {
		return "", err
	}
	return out.Instance.State, nil
}

// SendText envia uma mensagem de texto pelo canal
func (c *Client) SendText(ctx context.Context, instanceName, number, text string) (*SendResult, error) {
	payload := map[string]any{
		"number": NormalizeNumber(number),
		"options": map[string]any{
			"delay":    1200,
			"presence": "composing",
		},
		"textMessage": map[string]any{
			"text": text,
		},
	}

	var out SendResult
	if err := c.do(ctx, http.MethodPost, "/message/sendText/"+instanceName, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetWebhook aponta os eventos do canal para este backend
func (c *Client) SetWebhook(ctx context.Context, instanceName, url string, enabled bool) error {
	payload := map[string]any{
		"url":               url,
		"webhook_by_events": false,
		"enabled":           enabled,
		"events": []string{
			"MESSAGES_UPSERT",
			"CONNECTION_UPDATE",
			"QRCODE_UPDATED",
		},
	}

	return c.do(ctx, http.MethodPost, "/webhook/set/"+instanceName, payload, nil)
}

// Logout desconecta o WhatsApp sem apagar o canal
func (c *Client) Logout(ctx context.Context, instanceName string) error {
	return c.do(ctx, http.MethodDelete, "/instance/logout/"+instanceName, nil, nil)
}

// DeleteInstance remove o canal do gateway
func (c *Client) DeleteInstance(ctx context.Context, instanceName string) error {
	return c.do(ctx, http.MethodDelete, "/instance/delete/"+instanceName, nil, nil)
}

// ======================================================
// HTTP
// ======================================================

func (c *Client) do(ctx context.Context, method, path string, payload any, out any) error {
	op := method + " " + path

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return &Error{Op: op, Err: err}
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &Error{Op: op, Err: err}
	}

	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Op: op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Error{Op: op, Status: resp.StatusCode, Body: string(raw)}
	}

	if out == nil || len(raw) == 0 {
		return nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Op: op, Err: err}
	}
	return nil
}
