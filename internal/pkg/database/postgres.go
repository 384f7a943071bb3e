package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// PoolConfig define os limites do pool de conexões.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultPool é o pool usado pelo serviço.
var DefaultPool = PoolConfig{
	MaxOpenConns:    25,
	MaxIdleConns:    10,
	ConnMaxLifetime: 5 * time.Minute,
	ConnMaxIdleTime: 2 * time.Minute,
}

// NewPostgresDB abre o pool de conexões com o PostgreSQL e testa a conexão.
func NewPostgresDB(dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("falha ao abrir a conexão com o DB: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("falha ao realizar o ping inicial no DB: %w", err)
	}

	ConfigurePool(db, DefaultPool)
	return db, nil
}

// ConfigurePool aplica os limites ao pool.
func ConfigurePool(db *sql.DB, cfg PoolConfig) {
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
}

// WrapSqlx expõe o mesmo pool via sqlx para os repositórios que usam Select/In.
func WrapSqlx(db *sql.DB) *sqlx.DB {
	return sqlx.NewDb(db, "postgres")
}

// IsUniqueViolation indica se err (ou algum erro encapsulado) é uma violação de UNIQUE.
// constraint vazio aceita qualquer restrição.
func IsUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	if string(pqErr.Code) != pgerrcode.UniqueViolation {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

// IsForeignKeyViolation indica se err (ou algum erro encapsulado) é uma violação de FK.
func IsForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pgerrcode.ForeignKeyViolation
}
