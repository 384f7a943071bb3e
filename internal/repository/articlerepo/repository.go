package articlerepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"dropindrop/internal/domain"
	"dropindrop/internal/errors"
	"dropindrop/internal/pkg/cache"
	"dropindrop/internal/pkg/logger"
)

// Define a chave de cache para artigos.
const articleCacheKey = "article:%s"

const articleColumns = `id, name, description, price, stock, min_stock, image_url, is_active, version, created_at, updated_at`

// ArticleRepository implementa a interface domain.ArticleRepository.
// Leituras por ID usam Cache-Aside no Redis; ajustes de estoque usam OCC.
type ArticleRepository struct {
	DB        *sql.DB
	Cache     cache.Client
	DBTimeout time.Duration
	CacheTTL  time.Duration
	logger    logger.Logger
}

// NewArticleRepository cria e retorna uma nova instância do Repositório.
func NewArticleRepository(db *sql.DB, cacheClient cache.Client, dbTimeout, cacheTTL time.Duration, log logger.Logger) *ArticleRepository {
	return &ArticleRepository{
		DB:        db,
		Cache:     cacheClient,
		DBTimeout: dbTimeout,
		CacheTTL:  cacheTTL,
		logger:    log,
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanArticle(row rowScanner) (domain.Article, error) {
	var a domain.Article
	err := row.Scan(
		&a.ID,
		&a.Name,
		&a.Description,
		&a.Price,
		&a.Stock,
		&a.MinStock,
		&a.ImageURL,
		&a.IsActive,
		&a.Version,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	return a, err
}

// Save persiste um novo artigo.
func (r *ArticleRepository) Save(ctx context.Context, article domain.Article) (domain.Article, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const insertSQL = `INSERT INTO articles (` + articleColumns + `)
                       VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`

	_, err := r.DB.ExecContext(ctxTimeout, insertSQL,
		article.ID,
		article.Name,
		article.Description,
		article.Price,
		article.Stock,
		article.MinStock,
		article.ImageURL,
		article.IsActive,
		article.Version,
		article.CreatedAt,
		article.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Falha ao inserir artigo no DB.", err)
		return domain.Article{}, errors.NewDBError("Falha ao inserir artigo", err)
	}

	r.logger.Info("Artigo salvo com sucesso.", map[string]interface{}{"article_id": article.ID})
	return article, nil
}

// FindByID busca um artigo pelo ID, utilizando a estratégia Cache-Aside.
func (r *ArticleRepository) FindByID(ctx context.Context, id string) (domain.Article, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	key := fmt.Sprintf(articleCacheKey, id)

	cached, err := r.Cache.Get(ctxTimeout, key)
	if err == nil {
		var article domain.Article
		if json.Unmarshal([]byte(cached), &article) == nil {
			return article, nil
		}
		r.logger.Warn("Entrada de cache corrompida, lendo do DB.", map[string]interface{}{"key": key})
	} else if err != cache.ErrCacheMiss {
		r.logger.Warn("Falha ao ler do cache Redis.", map[string]interface{}{"key": key, "error": err.Error()})
	}

	const query = `SELECT ` + articleColumns + ` FROM articles WHERE id = $1`

	article, err := scanArticle(r.DB.QueryRowContext(ctxTimeout, query, id))
	if err == sql.ErrNoRows {
		return domain.Article{}, errors.NewNotFoundError(fmt.Sprintf("Artigo com ID %s não existe na base de dados.", id))
	}
	if err != nil {
		return domain.Article{}, errors.NewDBError("Falha ao buscar artigo no DB", err)
	}

	if payload, marshalErr := json.Marshal(article); marshalErr == nil {
		if setErr := r.Cache.Set(ctxTimeout, key, payload, r.CacheTTL); setErr != nil {
			r.logger.Warn("Falha ao gravar artigo no cache.", map[string]interface{}{"key": key, "error": setErr.Error()})
		}
	}

	return article, nil
}

// FindAll lista artigos ordenados por nome, com filtro opcional e paginação.
func (r *ArticleRepository) FindAll(ctx context.Context, filter domain.ArticleFilter) ([]domain.Article, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `SELECT ` + articleColumns + ` FROM articles
        WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
          AND (NOT $2 OR is_active)
        ORDER BY name
        LIMIT $3 OFFSET $4`

	offset := (filter.Page - 1) * filter.Limit
	rows, err := r.DB.QueryContext(ctxTimeout, query, filter.Name, filter.ActiveOnly, filter.Limit, offset)
	if err != nil {
		return nil, errors.NewDBError("Falha ao listar artigos", err)
	}
	defer rows.Close()

	articles := make([]domain.Article, 0, filter.Limit)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, errors.NewDBError("Falha ao ler artigo", err)
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Falha ao iterar artigos", err)
	}

	return articles, nil
}

// AdjustStock aplica um delta ao estoque, em transação e com controle de concorrência otimista (OCC).
func (r *ArticleRepository) AdjustStock(ctx context.Context, adjustment domain.StockAdjustmentRequest) (domain.Article, error) {
	r.logger.Debug("Iniciando ajuste de estoque no repositório.", map[string]interface{}{
		"article_id": adjustment.ArticleID,
		"delta":      adjustment.Delta,
	})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		return domain.Article{}, errors.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	const selectSQL = `SELECT ` + articleColumns + ` FROM articles WHERE id = $1 FOR UPDATE`

	current, err := scanArticle(tx.QueryRowContext(ctxTimeout, selectSQL, adjustment.ArticleID))
	if err == sql.ErrNoRows {
		return domain.Article{}, errors.NewNotFoundError(fmt.Sprintf("Artigo com ID %s não existe na base de dados.", adjustment.ArticleID))
	}
	if err != nil {
		return domain.Article{}, errors.NewDBError("Falha ao buscar artigo para ajuste", err)
	}

	newStock := current.Stock + adjustment.Delta
	if newStock < 0 {
		r.logger.Warn("Tentativa de ajustar estoque para quantidade negativa.", map[string]interface{}{
			"article_id": adjustment.ArticleID,
			"stock":      current.Stock,
			"delta":      adjustment.Delta,
		})
		return domain.Article{}, errors.NewValidationError("Ajuste resultaria em estoque negativo.")
	}

	now := time.Now()
	const updateSQL = `UPDATE articles SET stock = $1, version = $2, updated_at = $3
        WHERE id = $4 AND version = $5`

	result, err := tx.ExecContext(ctxTimeout, updateSQL, newStock, current.Version+1, now, current.ID, current.Version)
	if err != nil {
		return domain.Article{}, errors.NewDBError("Falha ao atualizar estoque", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return domain.Article{}, errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		r.logger.Warn("Falha no controle de concorrência otimista (OCC).", map[string]interface{}{
			"article_id":       current.ID,
			"expected_version": current.Version,
		})
		return domain.Article{}, errors.NewConflictError("O estoque foi modificado por outra operação. Tente novamente.")
	}

	if err := tx.Commit(); err != nil {
		return domain.Article{}, errors.NewDBError("Falha ao commitar transação", err)
	}

	if err := r.Cache.Delete(ctxTimeout, fmt.Sprintf(articleCacheKey, current.ID)); err != nil {
		r.logger.Warn("Falha ao invalidar cache do artigo.", map[string]interface{}{"article_id": current.ID, "error": err.Error()})
	}

	current.Stock = newStock
	current.Version++
	current.UpdatedAt = now
	r.logger.Info("Estoque atualizado com sucesso.", map[string]interface{}{
		"article_id":  current.ID,
		"new_stock":   newStock,
		"new_version": current.Version,
	})
	return current, nil
}
