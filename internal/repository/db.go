package repository

import (
	"database/sql"
)

// SQLExecutor is the subset of database/sql shared by *sql.DB and *sql.Tx,
// so repository code runs unchanged inside and outside a transaction.
type SQLExecutor interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

var _ SQLExecutor = (*sql.DB)(nil)
var _ SQLExecutor = (*sql.Tx)(nil)
