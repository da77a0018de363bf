package failurelog

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"twin-sync/core/database"
)

func TestGormSink_RecordAndList(t *testing.T) {
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, &Entry{}))

	ctx := context.Background()
	sink := NewGormSink(db)
	require.NoError(t, sink.Record(ctx, "b1", 7, "asset", "EDC: 500"))
	require.NoError(t, sink.Record(ctx, "b1", 2, "twin", "DigitalTwins: ambiguous"))
	require.NoError(t, sink.Record(ctx, "b2", 1, "twin", "other batch"))

	entries, err := sink.List(ctx, "b1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 2, entries[0].RowNumber)
	assert.Equal(t, "twin", entries[0].Stage)
	assert.Equal(t, "EDC: 500", entries[1].Message)
}

func TestGormSink_RecordMySQL(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `failure_logs`").
		WithArgs("b1", 3, "delete", "gone wrong", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, NewGormSink(db).Record(context.Background(), "b1", 3, "delete", "gone wrong"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
