package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/salaohub/salon-scheduler/internal/config"
)

// Resposta padrão quando o LLM falha; quem chama decide enviá-la
const FallbackMessage = "Desculpe, ocorreu um erro ao processar sua mensagem."

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type Client struct {
	url    string
	apiKey string
	model  string
	http   *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		url:    cfg.LLMAPIURL,
		apiKey: cfg.LLMAPIKey,
		model:  cfg.LLMModel,
		http: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Complete envia o prompt de sistema + histórico e devolve o texto
// da primeira escolha. Qualquer falha volta como erro; o chamador
// substitui pela FallbackMessage.
func (c *Client) Complete(ctx context.Context, systemPrompt string, history []Message, userText string) (string, error) {
	messages := make([]Message, 0, len(history)+2)
	messages = append(messages, Message{Role: "system", Content: systemPrompt})
	messages = append(messages, history...)
	messages = append(messages, Message{Role: "user", Content: userText})

	body, err := json.Marshal(completionRequest{
		Model:    c.model,
		Messages: messages,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("llm: http %d: %s", resp.StatusCode, raw)
	}

	var out completionResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("llm: resposta inválida: %w", err)
	}

	if len(out.Choices) == 0 {
		return "", fmt.Errorf("llm: resposta sem choices")
	}

	return out.Choices[0].Message.Content, nil
}
