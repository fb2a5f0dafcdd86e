package bot

import (
	"encoding/json"
	"strings"

	"github.com/salaohub/salon-scheduler/internal/validators"
)

// ======================================================
// PAYLOAD DO WEBHOOK
// ======================================================

// InboundPayload aceita os dois formatos que o gateway emite:
// o resumido ({instance:{instanceName}, message:{from,body}}) e o
// nativo do Evolution ({instance:"...", data:{key,message}}).
type InboundPayload struct {
	Event string `json:"event"`

	// string ou objeto {instanceName}, dependendo do formato
	Instance json.RawMessage `json:"instance"`

	Message *struct {
		From   string `json:"from"`
		Body   string `json:"body"`
		FromMe bool   `json:"fromMe"`
	} `json:"message"`

	Data *struct {
		Key struct {
			RemoteJid string `json:"remoteJid"`
			FromMe    bool   `json:"fromMe"`
		} `json:"key"`
		Message struct {
			Conversation        string `json:"conversation"`
			ExtendedTextMessage struct {
				Text string `json:"text"`
			} `json:"extendedTextMessage"`
		} `json:"message"`
	} `json:"data"`
}

func (p *InboundPayload) InstanceName() string {
	if len(p.Instance) == 0 {
		return ""
	}

	var name string
	if err := json.Unmarshal(p.Instance, &name); err == nil {
		return name
	}

	var obj struct {
		InstanceName string `json:"instanceName"`
	}
	if err := json.Unmarshal(p.Instance, &obj); err == nil {
		return obj.InstanceName
	}
	return ""
}

// Sender devolve o número do remetente já normalizado (DDI 55, só dígitos)
func (p *InboundPayload) Sender() string {
	var raw string

	switch {
	case p.Message != nil && p.Message.From != "":
		raw = p.Message.From
	case p.Data != nil && p.Data.Key.RemoteJid != "":
		raw = p.Data.Key.RemoteJid
	default:
		return ""
	}

	// remove o sufixo JID (@s.whatsapp.net, @g.us)
	if i := strings.IndexByte(raw, '@'); i >= 0 {
		raw = raw[:i]
	}

	return validators.NormalizePhone(raw)
}

func (p *InboundPayload) Text() string {
	if p.Message != nil && p.Message.Body != "" {
		return p.Message.Body
	}
	if p.Data != nil {
		if p.Data.Message.Conversation != "" {
			return p.Data.Message.Conversation
		}
		return p.Data.Message.ExtendedTextMessage.Text
	}
	return ""
}

// FromMe é verdadeiro para eco de mensagens enviadas pelo próprio canal
func (p *InboundPayload) FromMe() bool {
	if p.Message != nil && p.Message.FromMe {
		return true
	}
	return p.Data != nil && p.Data.Key.FromMe
}
