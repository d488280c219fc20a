// Package dbtx lets gorm repositories run on a *sql.Tx opened by a service.
package dbtx

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

// Conn returns a session bound to ctx that executes on tx when tx is non-nil.
// gorm skips its implicit per-statement transaction on a *sql.Tx pool, so all
// statements join the caller's transaction.
func Conn(ctx context.Context, db *gorm.DB, tx *sql.Tx) *gorm.DB {
	session := db.WithContext(ctx)
	if tx != nil {
		session.Statement.ConnPool = tx
	}
	return session
}

// Serializable is the isolation used for read-check-write sequences guarding
// effective-dated invariants.
var Serializable = &sql.TxOptions{Isolation: sql.LevelSerializable}
