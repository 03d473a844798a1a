package database

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateAppliesEveryStatement(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"venues", "events", "surveys", "event_sync_watermarks"} {
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS " + table + " ").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	require.NoError(t, Migrate(context.Background(), db))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateStopsOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS venues").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS events").WillReturnError(errors.New("boom"))

	err = Migrate(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "statement 2")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDSN(t *testing.T) {
	o := Options{User: "u", Pass: "p", Host: "db", Port: "3306", Name: "vibe"}
	assert.Equal(t, "u:p@tcp(db:3306)/vibe?charset=utf8mb4&parseTime=true&loc=UTC&multiStatements=false", o.DSN())
	o.Pass = ""
	assert.Contains(t, o.DSN(), "u@tcp(db:3306)")
}

func TestEventTextColumnsAreUnbounded(t *testing.T) {
	var events string
	for _, stmt := range schema {
		if strings.Contains(stmt, "CREATE TABLE IF NOT EXISTS events ") {
			events = stmt
		}
	}
	require.NotEmpty(t, events)
	assert.Regexp(t, `title\s+TEXT\s+NOT NULL`, events)
	assert.Regexp(t, `artist_names\s+TEXT\s+NOT NULL`, events)
}
