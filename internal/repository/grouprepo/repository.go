package grouprepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"dropindrop/internal/domain"
	"dropindrop/internal/errors"
	"dropindrop/internal/pkg/database"
	"dropindrop/internal/pkg/logger"
)

const chatIDConstraint = "whatsapp_groups_chat_id_key"

// GroupRepository implementa o CRUD do cadastro de grupos de WhatsApp.
type GroupRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewGroupRepository cria e retorna uma nova instância do Repositório de Grupos.
func NewGroupRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *GroupRepository {
	return &GroupRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// CreateGroup insere um novo grupo no banco de dados.
func (r *GroupRepository) CreateGroup(ctx context.Context, group domain.WhatsAppGroup) (domain.WhatsAppGroup, error) {
	r.logger.Debug("Iniciando CreateGroup no repositório.", map[string]interface{}{"name": group.Name})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if group.ID == "" {
		group.ID = uuid.New().String()
	}

	query := `
        INSERT INTO whatsapp_groups (id, name, chat_id)
        VALUES ($1, $2, $3)
        RETURNING id, name, chat_id`

	err := r.DB.QueryRowContext(ctxTimeout, query, group.ID, group.Name, group.ChatID).
		Scan(&group.ID, &group.Name, &group.ChatID)
	if err != nil {
		if database.IsUniqueViolation(err, chatIDConstraint) {
			r.logger.Warn("Chat já cadastrado.", map[string]interface{}{"chat_id": group.ChatID})
			return domain.WhatsAppGroup{}, errors.NewConflictError(fmt.Sprintf("O chat '%s' já está cadastrado.", group.ChatID))
		}
		r.logger.Error("Falha ao inserir grupo no DB.", err)
		return domain.WhatsAppGroup{}, errors.NewDBError("Falha ao criar grupo", err)
	}

	r.logger.Info("Grupo criado com sucesso.", map[string]interface{}{"id": group.ID, "name": group.Name})
	return group, nil
}

// GetGroupByID busca um grupo pelo ID.
func (r *GroupRepository) GetGroupByID(ctx context.Context, id string) (domain.WhatsAppGroup, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var group domain.WhatsAppGroup
	err := r.DB.QueryRowContext(ctxTimeout, `SELECT id, name, chat_id FROM whatsapp_groups WHERE id = $1`, id).
		Scan(&group.ID, &group.Name, &group.ChatID)
	if err == sql.ErrNoRows {
		r.logger.Info("Grupo não encontrado.", map[string]interface{}{"id": id})
		return domain.WhatsAppGroup{}, errors.NewNotFoundError(fmt.Sprintf("Grupo com ID %s não encontrado.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar grupo no DB.", err)
		return domain.WhatsAppGroup{}, errors.NewDBError("Falha ao buscar grupo", err)
	}

	return group, nil
}

// GetAllGroups lista os grupos por nome.
func (r *GroupRepository) GetAllGroups(ctx context.Context) ([]domain.WhatsAppGroup, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	rows, err := r.DB.QueryContext(ctxTimeout, `SELECT id, name, chat_id FROM whatsapp_groups ORDER BY name`)
	if err != nil {
		r.logger.Error("Falha ao executar GetAllGroups query.", err)
		return nil, errors.NewDBError("Falha ao buscar grupos", err)
	}
	defer rows.Close()

	groups := []domain.WhatsAppGroup{}
	for rows.Next() {
		var group domain.WhatsAppGroup
		if err := rows.Scan(&group.ID, &group.Name, &group.ChatID); err != nil {
			r.logger.Error("Falha ao mapear grupo em GetAllGroups.", err)
			return nil, errors.NewDBError("Falha ao mapear grupos do DB", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("Erro após iteração das linhas de grupos.", err)
		return nil, errors.NewDBError("Erro após iteração de grupos", err)
	}

	r.logger.Debug("GetAllGroups concluído.", map[string]interface{}{"total_groups": len(groups)})
	return groups, nil
}

// UpdateGroup atualiza nome e chat de um grupo existente.
func (r *GroupRepository) UpdateGroup(ctx context.Context, group domain.WhatsAppGroup) (domain.WhatsAppGroup, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        UPDATE whatsapp_groups
        SET name = $1, chat_id = $2
        WHERE id = $3
        RETURNING id, name, chat_id`

	err := r.DB.QueryRowContext(ctxTimeout, query, group.Name, group.ChatID, group.ID).
		Scan(&group.ID, &group.Name, &group.ChatID)
	if err == sql.ErrNoRows {
		return domain.WhatsAppGroup{}, errors.NewNotFoundError(fmt.Sprintf("Grupo com ID %s não encontrado para atualização.", group.ID))
	}
	if err != nil {
		if database.IsUniqueViolation(err, chatIDConstraint) {
			return domain.WhatsAppGroup{}, errors.NewConflictError(fmt.Sprintf("O chat '%s' já está cadastrado.", group.ChatID))
		}
		r.logger.Error("Falha ao atualizar grupo no DB.", err)
		return domain.WhatsAppGroup{}, errors.NewDBError("Falha ao atualizar grupo", err)
	}

	r.logger.Info("Grupo atualizado com sucesso.", map[string]interface{}{"id": group.ID, "name": group.Name})
	return group, nil
}

// DeleteGroup remove um grupo sem histórico de drops.
// Grupos referenciados por drop_groups ou drop_sends violam a FK e viram conflito.
func (r *GroupRepository) DeleteGroup(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM whatsapp_groups WHERE id = $1`, id)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return errors.NewConflictError("O grupo já participou de drops e não pode ser removido.")
		}
		r.logger.Error("Falha ao deletar grupo do DB.", err)
		return errors.NewDBError("Falha ao deletar grupo", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("Grupo com ID %s não encontrado para exclusão.", id))
	}

	r.logger.Info("Grupo deletado com sucesso.", map[string]interface{}{"id": id})
	return nil
}
