package domain

import (
	"context"
	"time"
)

// Drop é uma campanha de broadcast no WhatsApp, com janela de tempo,
// oferecendo um conjunto de artigos a um ou mais grupos.
type Drop struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	StartsAt  time.Time       `json:"starts_at"`
	EndsAt    time.Time       `json:"ends_at"`
	Articles  []DropArticle   `json:"articles"`
	Groups    []WhatsAppGroup `json:"groups"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// IsOpenAt indica se o instante está dentro da janela [StartsAt, EndsAt).
func (d Drop) IsOpenAt(t time.Time) bool {
	return !t.Before(d.StartsAt) && t.Before(d.EndsAt)
}

// ArticleIDs devolve os IDs dos artigos do drop, na ordem do drop.
func (d Drop) ArticleIDs() []string {
	ids := make([]string, 0, len(d.Articles))
	for _, a := range d.Articles {
		ids = append(ids, a.ID)
	}
	return ids
}

// DropArticle é o recorte do artigo necessário para montar e enviar um drop.
type DropArticle struct {
	ID    string `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Price int64  `json:"price" db:"price"`
}

// WhatsAppGroup identifica um grupo de destino.
type WhatsAppGroup struct {
	ID     string `json:"id" db:"id"`
	Name   string `json:"name" db:"name"`
	ChatID string `json:"chat_id" db:"chat_id"` // Identificador do grupo no gateway WhatsApp
}

// DropInput é o payload de criação de um drop.
type DropInput struct {
	Name       string    `json:"name"`
	Category   string    `json:"category"`
	StartsAt   time.Time `json:"starts_at"`
	EndsAt     time.Time `json:"ends_at"`
	ArticleIDs []string  `json:"article_ids"`
	GroupIDs   []string  `json:"group_ids"`
}

// SameDayValidation é construída por grupo a cada tentativa de envio.
// AllowedArticleIDs e BlockedArticleIDs particionam os artigos do drop.
type SameDayValidation struct {
	GroupID           string   `json:"group_id"`
	GroupName         string   `json:"group_name"`
	AllowedArticleIDs []string `json:"allowed_article_ids"`
	BlockedArticleIDs []string `json:"blocked_article_ids"`
	Warnings          []string `json:"warnings"`
}

// ValidationSummary agrega um lote de SameDayValidation.
type ValidationSummary struct {
	TotalGroups            int `json:"total_groups"`
	ClearGroups            int `json:"clear_groups"`
	PartiallyBlockedGroups int `json:"partially_blocked_groups"`
	BlockedGroups          int `json:"blocked_groups"`
	TotalWarnings          int `json:"total_warnings"`
}

// SendPreview é o que o operador vê antes de confirmar o envio.
type SendPreview struct {
	DropID      string              `json:"drop_id"`
	CanSend     bool                `json:"can_send"`
	Validations []SameDayValidation `json:"validations"`
	Warnings    []string            `json:"warnings"`
	Summary     ValidationSummary   `json:"summary"`
}

// SendResult descreve o resultado de um envio.
type SendResult struct {
	Preview      SendPreview `json:"preview"`
	SentGroups   []string    `json:"sent_groups"`
	FailedGroups []string    `json:"failed_groups"`
	MessagesSent int         `json:"messages_sent"`
	// Artigos que outro envio simultâneo já reivindicou para o grupo no dia.
	Skipped int `json:"skipped"`
}

// DropSend é uma linha do histórico de envios. (GroupID, ArticleID, SendDay) é única:
// a linha é gravada antes do envio e funciona como reserva do artigo no dia.
type DropSend struct {
	DropID    string    `db:"drop_id"`
	GroupID   string    `db:"group_id"`
	ArticleID string    `db:"article_id"`
	SendDay   string    `db:"send_day"` // YYYY-MM-DD no fuso do negócio
	SentAt    time.Time `db:"sent_at"`
}

// DropRepository define o contrato de persistência de drops e do histórico de envios.
type DropRepository interface {
	Create(ctx context.Context, drop Drop) (Drop, error)
	FindByID(ctx context.Context, id string) (Drop, error)
	SentBetween(ctx context.Context, groupIDs []string, from, to time.Time) (map[string]map[string]bool, error)
	// ClaimSend reserva (grupo, artigo, dia). false quando já estava reservado.
	ClaimSend(ctx context.Context, send DropSend) (bool, error)
	// ReleaseSend desfaz a reserva de um envio que o gateway recusou.
	ReleaseSend(ctx context.Context, send DropSend) error
}
