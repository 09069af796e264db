package database

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestConnectSQLiteMigratesSchema(t *testing.T) {
	db, err := ConnectSQLite(":memory:")
	require.NoError(t, err)

	for _, table := range []string{
		"users", "agents", "agent_preferences", "agent_posts",
		"post_likes", "compliments", "matches", "events",
	} {
		assert.True(t, db.Migrator().HasTable(table), "expected table %s", table)
	}
}

func TestGormConfigTranslatesDuplicateKeys(t *testing.T) {
	db, err := ConnectSQLite(":memory:")
	require.NoError(t, err)

	type row struct {
		ID   uint   `gorm:"primaryKey"`
		Name string `gorm:"uniqueIndex"`
	}
	require.NoError(t, db.AutoMigrate(&row{}))

	require.NoError(t, db.Create(&row{Name: "dup"}).Error)
	err = db.Create(&row{Name: "dup"}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestGormOverSQLMock(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = sqlDB.Close() }()

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), newGormConfig())
	require.NoError(t, err)

	mock.ExpectExec("SELECT 1").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.NoError(t, db.Exec("SELECT 1").Error)
	assert.NoError(t, mock.ExpectationsWereMet())
}
