// Package messenger entrega as mensagens dos drops aos grupos de WhatsApp.
package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"dropindrop/internal/pkg/logger"
)

// Gateway envia um texto para um chat de WhatsApp.
type Gateway interface {
	SendText(ctx context.Context, chatID, text string) error
}

type sendTextRequest struct {
	ChatID string `json:"chatId"`
	Text   string `json:"text"`
}

// HTTPGateway fala com um gateway WhatsApp via HTTP (POST JSON com Bearer token).
type HTTPGateway struct {
	URL    string
	Token  string
	Client *http.Client
	logger logger.Logger
}

// NewHTTPGateway cria o gateway HTTP com timeout padrão de 10s.
func NewHTTPGateway(url, token string, log logger.Logger) *HTTPGateway {
	return &HTTPGateway{
		URL:    url,
		Token:  token,
		Client: &http.Client{Timeout: 10 * time.Second},
		logger: log,
	}
}

// SendText publica o texto no chat. Qualquer status fora de 2xx é erro.
func (g *HTTPGateway) SendText(ctx context.Context, chatID, text string) error {
	body, err := json.Marshal(sendTextRequest{ChatID: chatID, Text: text})
	if err != nil {
		return fmt.Errorf("falha ao serializar mensagem: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("falha ao montar requisição ao gateway: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.Token != "" {
		req.Header.Set("Authorization", "Bearer "+g.Token)
	}

	resp, err := g.Client.Do(req)
	if err != nil {
		return fmt.Errorf("falha ao contatar o gateway WhatsApp: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("gateway WhatsApp respondeu %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	g.logger.Debug("Mensagem entregue ao gateway.", map[string]interface{}{"chat_id": chatID})
	return nil
}

// LogGateway apenas registra as mensagens. Usado quando nenhum gateway está configurado.
type LogGateway struct {
	logger logger.Logger
}

func NewLogGateway(log logger.Logger) *LogGateway {
	return &LogGateway{logger: log}
}

func (g *LogGateway) SendText(_ context.Context, chatID, text string) error {
	g.logger.Info("Mensagem WhatsApp (modo log).", map[string]interface{}{"chat_id": chatID, "text": text})
	return nil
}
