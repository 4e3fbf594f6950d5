package services

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// mockDatabase adapts a sqlmock connection to the database.DB interface
type mockDatabase struct {
	db *sqlx.DB
}

func newMockDatabase(t *testing.T) (*mockDatabase, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &mockDatabase{db: sqlx.NewDb(db, "sqlmock")}, mock
}

func (m *mockDatabase) Get(dest interface{}, query string, args ...interface{}) error {
	return m.db.Get(dest, query, args...)
}

func (m *mockDatabase) Select(dest interface{}, query string, args ...interface{}) error {
	return m.db.Select(dest, query, args...)
}

func (m *mockDatabase) Exec(query string, args ...interface{}) (sql.Result, error) {
	return m.db.Exec(query, args...)
}

func (m *mockDatabase) QueryRow(query string, args ...interface{}) *sql.Row {
	return m.db.QueryRow(query, args...)
}

func (m *mockDatabase) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return m.db.Query(query, args...)
}

func (m *mockDatabase) Beginx() (*sqlx.Tx, error) {
	return m.db.Beginx()
}

func (m *mockDatabase) Ping() error {
	return m.db.Ping()
}

func (m *mockDatabase) Close() error {
	return m.db.Close()
}
