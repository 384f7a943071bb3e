package articlerepo

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dropindrop/internal/domain"
	apperror "dropindrop/internal/errors"
	"dropindrop/internal/pkg/cache"
	"dropindrop/internal/pkg/logger"
)

type mapCache struct {
	data    map[string]string
	deleted []string
}

func newMapCache() *mapCache { return &mapCache{data: map[string]string{}} }

func (m *mapCache) Get(_ context.Context, key string) (string, error) {
	v, ok := m.data[key]
	if !ok {
		return "", cache.ErrCacheMiss
	}
	return v, nil
}
func (m *mapCache) GetInt(context.Context, string) (int, error) { return 0, cache.ErrCacheMiss }
func (m *mapCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	switch v := value.(type) {
	case []byte:
		m.data[key] = string(v)
	case string:
		m.data[key] = v
	}
	return nil
}
func (m *mapCache) Incr(context.Context, string) (int64, error) { return 0, nil }
func (m *mapCache) Delete(_ context.Context, key string) error {
	m.deleted = append(m.deleted, key)
	delete(m.data, key)
	return nil
}
func (m *mapCache) Ping(context.Context) error { return nil }
func (m *mapCache) Close() error               { return nil }

var columns = []string{"id", "name", "description", "price", "stock", "min_stock", "image_url", "is_active", "version", "created_at", "updated_at"}

func newRepo(t *testing.T) (*ArticleRepository, sqlmock.Sqlmock, *mapCache) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	c := newMapCache()
	return NewArticleRepository(db, c, time.Second, time.Minute, logger.NewNop()), mock, c
}

func TestFindByID_MissThenCache(t *testing.T) {
	repo, mock, c := newRepo(t)
	now := time.Date(2025, 10, 15, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM articles WHERE id = \$1`).
		WithArgs("a1").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("a1", "Bolsa", "couro", int64(25000), 3, 5, "", true, 1, now, now))

	got, err := repo.FindByID(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, "Bolsa", got.Name)
	assert.Contains(t, c.data, "article:a1")

	// Segunda leitura vem do cache: nenhuma query nova esperada.
	again, err := repo.FindByID(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, got.ID, again.ID)
	assert.Equal(t, got.Price, again.Price)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByID_CorruptCacheFallsBackToDB(t *testing.T) {
	repo, mock, c := newRepo(t)
	c.data["article:a1"] = "{nope"
	now := time.Now()

	mock.ExpectQuery(`FROM articles WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("a1", "Bolsa", "", int64(1000), 0, 0, "", true, 1, now, now))

	got, err := repo.FindByID(context.Background(), "a1")
	require.NoError(t, err)

	var cached domain.Article
	require.NoError(t, json.Unmarshal([]byte(c.data["article:a1"]), &cached))
	assert.Equal(t, got.ID, cached.ID)
}

func TestFindByID_NotFound(t *testing.T) {
	repo, mock, _ := newRepo(t)
	mock.ExpectQuery(`FROM articles WHERE id = \$1`).WillReturnRows(sqlmock.NewRows(columns))

	_, err := repo.FindByID(context.Background(), "zz")

	var nf *apperror.NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestFindAll_Paginates(t *testing.T) {
	repo, mock, _ := newRepo(t)
	now := time.Now()

	mock.ExpectQuery(`FROM articles`).
		WithArgs("bol", true, 10, 10).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("a1", "Bolsa", "", int64(1000), 1, 2, "", true, 1, now, now).
			AddRow("a2", "Bolsinha", "", int64(500), 9, 2, "", true, 1, now, now))

	got, err := repo.FindAll(context.Background(), domain.ArticleFilter{Page: 2, Limit: 10, Name: "bol", ActiveOnly: true})

	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdjustStock_Success(t *testing.T) {
	repo, mock, c := newRepo(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WithArgs("a1").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("a1", "Bolsa", "", int64(1000), 4, 2, "", true, 3, now, now))
	mock.ExpectExec(`UPDATE articles SET stock`).
		WithArgs(1, 4, sqlmock.AnyArg(), "a1", 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	got, err := repo.AdjustStock(context.Background(), domain.StockAdjustmentRequest{ArticleID: "a1", Delta: -3})

	require.NoError(t, err)
	assert.Equal(t, 1, got.Stock)
	assert.Equal(t, 4, got.Version)
	assert.Equal(t, []string{"article:a1"}, c.deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdjustStock_Negative(t *testing.T) {
	repo, mock, _ := newRepo(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("a1", "Bolsa", "", int64(1000), 1, 2, "", true, 1, now, now))
	mock.ExpectRollback()

	_, err := repo.AdjustStock(context.Background(), domain.StockAdjustmentRequest{ArticleID: "a1", Delta: -2})

	var ve *apperror.ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdjustStock_VersionConflict(t *testing.T) {
	repo, mock, _ := newRepo(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("a1", "Bolsa", "", int64(1000), 5, 2, "", true, 1, now, now))
	mock.ExpectExec(`UPDATE articles SET stock`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.AdjustStock(context.Background(), domain.StockAdjustmentRequest{ArticleID: "a1", Delta: 1})

	var ce *apperror.ConflictError
	assert.True(t, errors.As(err, &ce))
}
