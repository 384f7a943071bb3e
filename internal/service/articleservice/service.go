package articleservice

import (
	"context"
	"time"

	"github.com/google/uuid"

	"dropindrop/internal/domain"
	apperror "dropindrop/internal/errors"
	"dropindrop/internal/pkg/logger"
	"dropindrop/internal/rules/stockrule"
)

const maxPageSize = 100

// Service implementa o catálogo de artigos.
type Service struct {
	repo   domain.ArticleRepository
	logger logger.Logger
	now    func() time.Time
}

// NewService cria e retorna uma nova instância do Serviço de Artigos.
func NewService(repo domain.ArticleRepository, log logger.Logger) *Service {
	return &Service{repo: repo, logger: log, now: time.Now}
}

// View acrescenta ao artigo o badge de estoque e o preço formatado.
func View(a domain.Article) domain.ArticleView {
	return domain.ArticleView{
		Article:     a,
		StockStatus: stockrule.Status(a.StockInfo()),
		PriceLabel:  stockrule.FormatPrice(a.Price) + " FCFA",
	}
}

// CreateArticle valida e persiste um novo artigo.
func (s *Service) CreateArticle(ctx context.Context, article domain.Article) (domain.ArticleView, error) {
	if article.Name == "" {
		return domain.ArticleView{}, apperror.NewValidationError("O nome do artigo é obrigatório.")
	}
	if article.Price < 0 {
		return domain.ArticleView{}, apperror.NewValidationError("O preço do artigo não pode ser negativo.")
	}
	if article.Stock < 0 || article.MinStock < 0 {
		return domain.ArticleView{}, apperror.NewValidationError("Estoque e estoque mínimo não podem ser negativos.")
	}

	now := s.now().UTC()
	article.ID = uuid.NewString()
	article.IsActive = true
	article.Version = 1
	article.CreatedAt = now
	article.UpdatedAt = now

	created, err := s.repo.Save(ctx, article)
	if err != nil {
		return domain.ArticleView{}, err
	}
	return View(created), nil
}

// GetArticle busca um artigo pelo ID.
func (s *Service) GetArticle(ctx context.Context, id string) (domain.ArticleView, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ArticleView{}, apperror.NewValidationError("O ID do artigo deve ser um UUID válido.")
	}

	article, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.ArticleView{}, err
	}
	return View(article), nil
}

// ListArticles lista o catálogo. Página e limite fora da faixa são normalizados.
func (s *Service) ListArticles(ctx context.Context, filter domain.ArticleFilter) ([]domain.ArticleView, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > maxPageSize {
		filter.Limit = 20
	}

	articles, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	views := make([]domain.ArticleView, 0, len(articles))
	for _, a := range articles {
		views = append(views, View(a))
	}
	return views, nil
}

// AdjustStock aplica um ajuste ao estoque de um artigo.
func (s *Service) AdjustStock(ctx context.Context, adjustment domain.StockAdjustmentRequest) (domain.ArticleView, error) {
	s.logger.Debug("Iniciando ajuste de estoque no serviço.", map[string]interface{}{
		"article_id": adjustment.ArticleID,
		"delta":      adjustment.Delta,
	})

	if adjustment.Delta == 0 {
		return domain.ArticleView{}, apperror.NewValidationError("O ajuste de estoque (delta) não pode ser zero.")
	}
	if _, err := uuid.Parse(adjustment.ArticleID); err != nil {
		return domain.ArticleView{}, apperror.NewValidationError("O ID do artigo deve ser um UUID válido.")
	}

	article, err := s.repo.AdjustStock(ctx, adjustment)
	if err != nil {
		return domain.ArticleView{}, err
	}

	view := View(article)
	if view.StockStatus != domain.StockOK {
		s.logger.Warn("Artigo com estoque baixo após ajuste.", map[string]interface{}{
			"article_id": article.ID,
			"stock":      article.Stock,
			"status":     view.StockStatus,
		})
	}
	return view, nil
}
