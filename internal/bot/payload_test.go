package bot

import (
	"encoding/json"
	"testing"
)

func TestPayloadShortFormat(t *testing.T) {
	raw := `{
		"event": "messages.upsert",
		"instance": {"instanceName": "salon_42"},
		"message": {"from": "+55 11 99999-8888@s.whatsapp.net", "body": "oi"}
	}`

	var p InboundPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatal(err)
	}

	if got := p.InstanceName(); got != "salon_42" {
		t.Errorf("InstanceName() = %q", got)
	}
	if got := p.Sender(); got != "5511999998888" {
		t.Errorf("Sender() = %q", got)
	}
	if got := p.Text(); got != "oi" {
		t.Errorf("Text() = %q", got)
	}
	if p.FromMe() {
		t.Error("FromMe() = true")
	}
}

func TestPayloadNativeFormat(t *testing.T) {
	raw := `{
		"event": "messages.upsert",
		"instance": "support_bot",
		"data": {
			"key": {"remoteJid": "5521977776666@s.whatsapp.net", "fromMe": false},
			"message": {"conversation": "quanto custa?"}
		}
	}`

	var p InboundPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatal(err)
	}

	if got := p.InstanceName(); got != "support_bot" {
		t.Errorf("InstanceName() = %q", got)
	}
	if got := p.Sender(); got != "5521977776666" {
		t.Errorf("Sender() = %q", got)
	}
	if got := p.Text(); got != "quanto custa?" {
		t.Errorf("Text() = %q", got)
	}
}

func TestPayloadExtendedTextMessage(t *testing.T) {
	raw := `{
		"event": "messages.upsert",
		"instance": "salon_42",
		"data": {
			"key": {"remoteJid": "5521977776666@s.whatsapp.net"},
			"message": {"extendedTextMessage": {"text": "mensagem com link"}}
		}
	}`

	var p InboundPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatal(err)
	}

	if got := p.Text(); got != "mensagem com link" {
		t.Errorf("Text() = %q", got)
	}
}

func TestPayloadFromMeNative(t *testing.T) {
	raw := `{
		"event": "messages.upsert",
		"instance": "salon_42",
		"data": {
			"key": {"remoteJid": "5521977776666@s.whatsapp.net", "fromMe": true},
			"message": {"conversation": "eco"}
		}
	}`

	var p InboundPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatal(err)
	}

	if !p.FromMe() {
		t.Error("FromMe() = false, want true")
	}
}
