package domain

import (
	"context"
	"time"
)

// Article representa um item do catálogo vendido nos drops.
// O preço é guardado em unidades inteiras de FCFA (sem centavos).
type Article struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	Stock       int       `json:"stock"`
	MinStock    int       `json:"min_stock"`
	ImageURL    string    `json:"image_url"`
	IsActive    bool      `json:"is_active"`
	Version     int       `json:"version"` // Para Controle de Concorrência Otimista (OCC)
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// StockInfo é a visão efêmera do estoque de um artigo, derivada na leitura.
type StockInfo struct {
	Stock    int `json:"stock"`
	MinStock int `json:"min_stock"`
}

// StockInfo extrai o par estoque/mínimo do artigo.
func (a Article) StockInfo() StockInfo {
	return StockInfo{Stock: a.Stock, MinStock: a.MinStock}
}

// StockStatus classifica o nível de estoque de um artigo.
type StockStatus string

const (
	StockOut StockStatus = "out"
	StockLow StockStatus = "low"
	StockOK  StockStatus = "ok"
)

// ArticleView é o artigo como exibido no catálogo: badge de estoque e preço formatado.
type ArticleView struct {
	Article
	StockStatus StockStatus `json:"stock_status"`
	PriceLabel  string      `json:"price_label"`
}

// StockAdjustmentRequest é o payload esperado para a requisição de ajuste de estoque.
type StockAdjustmentRequest struct {
	ArticleID string `json:"article_id"`
	Delta     int    `json:"delta"` // Quantidade a ser adicionada/removida
}

// ArticleFilter define os parâmetros de busca e paginação do catálogo.
type ArticleFilter struct {
	Page       int
	Limit      int
	Name       string
	ActiveOnly bool
}

// ArticleRepository define o que a camada de Serviço pode pedir à Persistência (DB/Cache).
type ArticleRepository interface {
	Save(ctx context.Context, article Article) (Article, error)
	FindByID(ctx context.Context, id string) (Article, error)
	FindAll(ctx context.Context, filter ArticleFilter) ([]Article, error)
	AdjustStock(ctx context.Context, adjustment StockAdjustmentRequest) (Article, error)
}
