package droprepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"dropindrop/internal/domain"
	"dropindrop/internal/errors"
	"dropindrop/internal/pkg/logger"
)

// DropRepository implementa domain.DropRepository sobre sqlx.
type DropRepository struct {
	DB        *sqlx.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewDropRepository cria o repositório de drops.
func NewDropRepository(db *sqlx.DB, dbTimeout time.Duration, log logger.Logger) *DropRepository {
	return &DropRepository{DB: db, DBTimeout: dbTimeout, logger: log}
}

type dropRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Category  string    `db:"category"`
	StartsAt  time.Time `db:"starts_at"`
	EndsAt    time.Time `db:"ends_at"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r dropRow) toDomain() domain.Drop {
	return domain.Drop{
		ID:        r.ID,
		Name:      r.Name,
		Category:  r.Category,
		StartsAt:  r.StartsAt,
		EndsAt:    r.EndsAt,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

const (
	selectDropSQL = `SELECT id, name, category, starts_at, ends_at, created_at, updated_at FROM drops WHERE id = $1`

	selectArticlesSQL = `SELECT a.id, a.name, a.price
        FROM drop_articles da JOIN articles a ON a.id = da.article_id
        WHERE da.drop_id = $1 ORDER BY da.position`

	selectGroupsSQL = `SELECT g.id, g.name, g.chat_id
        FROM drop_groups dg JOIN whatsapp_groups g ON g.id = dg.group_id
        WHERE dg.drop_id = $1 ORDER BY dg.position`
)

// Create grava o drop e seus vínculos numa transação. Somente os IDs de
// drop.Articles e drop.Groups são lidos; o drop devolvido vem completo do DB.
func (r *DropRepository) Create(ctx context.Context, drop domain.Drop) (domain.Drop, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTxx(ctxTimeout, nil)
	if err != nil {
		return domain.Drop{}, errors.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	row := dropRow{
		ID:        drop.ID,
		Name:      drop.Name,
		Category:  drop.Category,
		StartsAt:  drop.StartsAt,
		EndsAt:    drop.EndsAt,
		CreatedAt: drop.CreatedAt,
		UpdatedAt: drop.UpdatedAt,
	}
	const insertDrop = `INSERT INTO drops (id, name, category, starts_at, ends_at, created_at, updated_at)
        VALUES (:id, :name, :category, :starts_at, :ends_at, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctxTimeout, insertDrop, row); err != nil {
		return domain.Drop{}, errors.NewDBError("Falha ao inserir drop", err)
	}

	for i, a := range drop.Articles {
		if _, err := tx.ExecContext(ctxTimeout,
			`INSERT INTO drop_articles (drop_id, article_id, position) VALUES ($1, $2, $3)`,
			drop.ID, a.ID, i); err != nil {
			return domain.Drop{}, errors.NewDBError("Falha ao vincular artigo ao drop", err)
		}
	}
	for i, g := range drop.Groups {
		if _, err := tx.ExecContext(ctxTimeout,
			`INSERT INTO drop_groups (drop_id, group_id, position) VALUES ($1, $2, $3)`,
			drop.ID, g.ID, i); err != nil {
			return domain.Drop{}, errors.NewDBError("Falha ao vincular grupo ao drop", err)
		}
	}

	created := row.toDomain()
	if err := tx.SelectContext(ctxTimeout, &created.Articles, selectArticlesSQL, drop.ID); err != nil {
		return domain.Drop{}, errors.NewDBError("Falha ao carregar artigos do drop", err)
	}
	if err := tx.SelectContext(ctxTimeout, &created.Groups, selectGroupsSQL, drop.ID); err != nil {
		return domain.Drop{}, errors.NewDBError("Falha ao carregar grupos do drop", err)
	}

	// O JOIN descarta IDs inexistentes.
	if len(created.Articles) != len(drop.Articles) {
		return domain.Drop{}, errors.NewValidationError("Um ou mais artigos informados não existem.")
	}
	if len(created.Groups) != len(drop.Groups) {
		return domain.Drop{}, errors.NewValidationError("Um ou mais grupos informados não existem.")
	}

	if err := tx.Commit(); err != nil {
		return domain.Drop{}, errors.NewDBError("Falha ao commitar transação", err)
	}

	r.logger.Info("Drop criado.", map[string]interface{}{
		"drop_id":  created.ID,
		"articles": len(created.Articles),
		"groups":   len(created.Groups),
	})
	return created, nil
}

// FindByID carrega o drop com artigos e grupos na ordem de cadastro.
func (r *DropRepository) FindByID(ctx context.Context, id string) (domain.Drop, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var row dropRow
	err := r.DB.GetContext(ctxTimeout, &row, selectDropSQL, id)
	if err == sql.ErrNoRows {
		return domain.Drop{}, errors.NewNotFoundError(fmt.Sprintf("Drop com ID %s não existe.", id))
	}
	if err != nil {
		return domain.Drop{}, errors.NewDBError("Falha ao buscar drop", err)
	}

	drop := row.toDomain()
	if err := r.DB.SelectContext(ctxTimeout, &drop.Articles, selectArticlesSQL, id); err != nil {
		return domain.Drop{}, errors.NewDBError("Falha ao carregar artigos do drop", err)
	}
	if err := r.DB.SelectContext(ctxTimeout, &drop.Groups, selectGroupsSQL, id); err != nil {
		return domain.Drop{}, errors.NewDBError("Falha ao carregar grupos do drop", err)
	}

	return drop, nil
}

// SentBetween devolve, por grupo, os artigos enviados em [from, to), vindos de qualquer drop.
func (r *DropRepository) SentBetween(ctx context.Context, groupIDs []string, from, to time.Time) (map[string]map[string]bool, error) {
	sent := make(map[string]map[string]bool, len(groupIDs))
	if len(groupIDs) == 0 {
		return sent, nil
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query, args, err := sqlx.In(`SELECT DISTINCT group_id, article_id FROM drop_sends
        WHERE group_id IN (?) AND sent_at >= ? AND sent_at < ?`, groupIDs, from, to)
	if err != nil {
		return nil, errors.NewInternalError("Falha ao montar consulta de envios", err)
	}

	var rows []struct {
		GroupID   string `db:"group_id"`
		ArticleID string `db:"article_id"`
	}
	if err := r.DB.SelectContext(ctxTimeout, &rows, r.DB.Rebind(query), args...); err != nil {
		return nil, errors.NewDBError("Falha ao consultar histórico de envios", err)
	}

	for _, row := range rows {
		if sent[row.GroupID] == nil {
			sent[row.GroupID] = make(map[string]bool)
		}
		sent[row.GroupID][row.ArticleID] = true
	}
	return sent, nil
}

// ClaimSend grava a linha de histórico antes do envio. O índice único
// (group_id, article_id, send_day) faz de dois envios simultâneos um só:
// o segundo recebe false e não deve enviar.
func (r *DropRepository) ClaimSend(ctx context.Context, send domain.DropSend) (bool, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const claimSQL = `INSERT INTO drop_sends (drop_id, group_id, article_id, send_day, sent_at)
        VALUES ($1, $2, $3, $4::date, $5)
        ON CONFLICT (group_id, article_id, send_day) DO NOTHING
        RETURNING id`

	var id int64
	err := r.DB.QueryRowxContext(ctxTimeout, claimSQL,
		send.DropID, send.GroupID, send.ArticleID, send.SendDay, send.SentAt).Scan(&id)
	if err == sql.ErrNoRows {
		r.logger.Warn("Artigo já reservado para o grupo hoje.", map[string]interface{}{
			"group_id":   send.GroupID,
			"article_id": send.ArticleID,
			"send_day":   send.SendDay,
		})
		return false, nil
	}
	if err != nil {
		return false, errors.NewDBError("Falha ao reservar envio", err)
	}
	return true, nil
}

// ReleaseSend apaga a reserva de um envio que não chegou ao grupo.
func (r *DropRepository) ReleaseSend(ctx context.Context, send domain.DropSend) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const deleteSQL = `DELETE FROM drop_sends
        WHERE drop_id = $1 AND group_id = $2 AND article_id = $3 AND send_day = $4::date`
	if _, err := r.DB.ExecContext(ctxTimeout, deleteSQL,
		send.DropID, send.GroupID, send.ArticleID, send.SendDay); err != nil {
		return errors.NewDBError("Falha ao liberar envio", err)
	}
	return nil
}
