package article

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"dropindrop/internal/domain"
	apperror "dropindrop/internal/errors"
	"dropindrop/internal/pkg/logger"
	"dropindrop/internal/pkg/respond"
)

// ArticleService define o contrato que o Handler espera da camada de Serviço.
type ArticleService interface {
	CreateArticle(ctx context.Context, article domain.Article) (domain.ArticleView, error)
	GetArticle(ctx context.Context, id string) (domain.ArticleView, error)
	ListArticles(ctx context.Context, filter domain.ArticleFilter) ([]domain.ArticleView, error)
	AdjustStock(ctx context.Context, adjustment domain.StockAdjustmentRequest) (domain.ArticleView, error)
}

// CreateArticleRequest é o payload de cadastro de artigo.
type CreateArticleRequest struct {
	Name        string `json:"name" example:"Bolsa de couro"`
	Description string `json:"description"`
	Price       int64  `json:"price" example:"25000"`
	Stock       int    `json:"stock" example:"12"`
	MinStock    int    `json:"min_stock" example:"3"`
	ImageURL    string `json:"image_url"`
}

// StockRequest é o payload de ajuste de estoque.
type StockRequest struct {
	Delta int `json:"delta" example:"-2"`
}

// Handler agrupa os handlers do catálogo.
type Handler struct {
	Service ArticleService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc ArticleService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

// CreateArticleHandler lida com POST /v1/articles.
// @Summary Cadastra um artigo
// @Tags articles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param article body CreateArticleRequest true "Dados do artigo"
// @Success 201 {object} domain.ArticleView
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 403 {object} domain.ErrorResponse
// @Router /articles [post]
func (h *Handler) CreateArticleHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateArticleRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}

	view, err := h.Service.CreateArticle(r.Context(), domain.Article{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		MinStock:    req.MinStock,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}

	respond.JSON(w, h.Logger, http.StatusCreated, view)
}

// GetArticleHandler lida com GET /v1/articles/{id}.
// @Summary Busca um artigo
// @Tags articles
// @Produce json
// @Param id path string true "ID do artigo (UUID)"
// @Success 200 {object} domain.ArticleView
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Router /articles/{id} [get]
func (h *Handler) GetArticleHandler(w http.ResponseWriter, r *http.Request) {
	view, err := h.Service.GetArticle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}
	respond.JSON(w, h.Logger, http.StatusOK, view)
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.NewValidationError("Parâmetro '" + key + "' deve ser numérico.")
	}
	return n, nil
}

// ListArticlesHandler lida com GET /v1/articles.
// @Summary Lista o catálogo
// @Tags articles
// @Produce json
// @Param page query int false "Página (padrão 1)"
// @Param limit query int false "Itens por página (padrão 20, máx. 100)"
// @Param name query string false "Filtro por nome"
// @Param active query bool false "Somente ativos (padrão true)"
// @Success 200 {array} domain.ArticleView
// @Failure 400 {object} domain.ErrorResponse
// @Router /articles [get]
func (h *Handler) ListArticlesHandler(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", 1)
	if err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}
	limit, err := queryInt(r, "limit", 20)
	if err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}

	activeOnly := true
	if raw := r.URL.Query().Get("active"); raw != "" {
		activeOnly, err = strconv.ParseBool(raw)
		if err != nil {
			respond.Error(w, r, h.Logger, apperror.NewValidationError("Parâmetro 'active' deve ser true ou false."))
			return
		}
	}

	views, err := h.Service.ListArticles(r.Context(), domain.ArticleFilter{
		Page:       page,
		Limit:      limit,
		Name:       r.URL.Query().Get("name"),
		ActiveOnly: activeOnly,
	})
	if err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}
	respond.JSON(w, h.Logger, http.StatusOK, views)
}

// AdjustStockHandler lida com POST /v1/articles/{id}/stock.
// @Summary Ajusta o estoque de um artigo
// @Tags articles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do artigo (UUID)"
// @Param adjustment body StockRequest true "Delta de estoque"
// @Success 200 {object} domain.ArticleView
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Conflito de versão (OCC)"
// @Router /articles/{id}/stock [post]
func (h *Handler) AdjustStockHandler(w http.ResponseWriter, r *http.Request) {
	var req StockRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}

	view, err := h.Service.AdjustStock(r.Context(), domain.StockAdjustmentRequest{
		ArticleID: chi.URLParam(r, "id"),
		Delta:     req.Delta,
	})
	if err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}
	respond.JSON(w, h.Logger, http.StatusOK, view)
}
