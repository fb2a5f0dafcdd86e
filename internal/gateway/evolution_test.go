package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/salaohub/salon-scheduler/internal/config"
)

func testClient(url string) *Client {
	return NewClient(&config.Config{
		EvolutionAPIURL: url,
		EvolutionAPIKey: "test-key",
	})
}

func TestSalonInstanceNaming(t *testing.T) {
	if got := SalonInstance(42); got != "salon_42" {
		t.Errorf("SalonInstance(42) = %q, want %q", got, "salon_42")
	}
	if SupportInstance != "support_bot" {
		t.Errorf("SupportInstance = %q", SupportInstance)
	}
}

func TestSendTextPayload(t *testing.T) {
	var gotPath, gotKey string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("apikey")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"key":    map[string]any{"id": "MSG1"},
			"status": "PENDING",
		})
	}))
	defer srv.Close()

	res, err := testClient(srv.URL).SendText(context.Background(), "salon_42", "+55 11 99999-8888", "olá")
	if err != nil {
		t.Fatal(err)
	}

	if gotPath != "/message/sendText/salon_42" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("apikey = %q", gotKey)
	}
	if gotBody["number"] != "5511999998888" {
		t.Errorf("number = %v, want normalizado", gotBody["number"])
	}
	if tm, ok := gotBody["textMessage"].(map[string]any); !ok || tm["text"] != "olá" {
		t.Errorf("textMessage = %v", gotBody["textMessage"])
	}

	if res.Key.ID != "MSG1" || res.Status != "PENDING" {
		t.Errorf("resultado = %+v", res)
	}
}

func TestSendTextHTTPErrorIsTyped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"instance not connected"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).SendText(context.Background(), "salon_42", "5511999998888", "olá")
	if err == nil {
		t.Fatal("esperava erro")
	}

	var gwErr *Error
	if !errors.As(err, &gwErr) {
		t.Fatalf("err = %T, want *Error", err)
	}
	if gwErr.Status != http.StatusInternalServerError {
		t.Errorf("status = %d", gwErr.Status)
	}
}

func TestNetworkErrorIsTyped(t *testing.T) {
	// porta fechada
	_, err := testClient("http://127.0.0.1:1").SendText(context.Background(), "x", "5511999998888", "oi")

	var gwErr *Error
	if !errors.As(err, &gwErr) {
		t.Fatalf("err = %T, want *Error", err)
	}
	if gwErr.Err == nil {
		t.Error("falha de rede deveria preencher Err")
	}
}

func TestInstanceExists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/instance/fetchInstances" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`[
			{"instance": {"instanceName": "support_bot", "status": "open"}},
			{"instance": {"instanceName": "salon_42", "status": "close"}}
		]`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)

	ok, err := c.InstanceExists(context.Background(), "salon_42")
	if err != nil || !ok {
		t.Errorf("salon_42: ok=%v err=%v", ok, err)
	}

	ok, err = c.InstanceExists(context.Background(), "salon_99")
	if err != nil || ok {
		t.Errorf("salon_99: ok=%v err=%v", ok, err)
	}
}

func TestConnectionState(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"instance": {"instanceName": "salon_42", "state": "open"}}`))
	}))
	defer srv.Close()

	state, err := testClient(srv.URL).ConnectionState(context.Background(), "salon_42")
	if err != nil {
		t.Fatal(err)
	}
	if state != "open" {
		t.Errorf("state = %q", state)
	}
}

func TestCreateInstancePayload(t *testing.T) {
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"instance": {"instanceName": "salon_42", "status": "created"}}`))
	}))
	defer srv.Close()

	if _, err := testClient(srv.URL).CreateInstance(context.Background(), "salon_42", "11 99999-8888"); err != nil {
		t.Fatal(err)
	}

	if gotBody["instanceName"] != "salon_42" {
		t.Errorf("instanceName = %v", gotBody["instanceName"])
	}
	if gotBody["number"] != "5511999998888" {
		t.Errorf("number = %v", gotBody["number"])
	}
	if gotBody["integration"] != "WHATSAPP-BAILEYS" {
		t.Errorf("integration = %v", gotBody["integration"])
	}
	if token, _ := gotBody["token"].(string); token == "" {
		t.Error("token vazio")
	}
}
