package report

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{})
	require.NoError(t, err)
	return db, mock
}

func TestGormStore_Get(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewGormStore(db)

	started := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT \\* FROM `process_reports` WHERE batch_id = \\?").
		WithArgs("b1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"batch_id", "kind", "total", "success", "status", "started_at"}).
			AddRow("b1", "pcf", 3, 2, "FINISHED", started))

	r, err := store.Get(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, "pcf", r.Kind)
	assert.Equal(t, StatusFinished, r.Status)
	assert.Equal(t, 2, r.Success)

	mock.ExpectQuery("SELECT \\* FROM `process_reports` WHERE batch_id = \\?").
		WithArgs("nope", 1).
		WillReturnRows(sqlmock.NewRows([]string{"batch_id"}))

	_, err = store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewGormStore(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `process_reports`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := store.Create(context.Background(), &ProcessReport{BatchID: "b1", Kind: "pcf", Status: StatusStarted})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMetadata_Restricted(t *testing.T) {
	assert.True(t, Metadata{TypeOfAccess: " Restricted "}.Restricted())
	assert.False(t, Metadata{TypeOfAccess: "unrestricted"}.Restricted())
	assert.False(t, Metadata{}.Restricted())
}
