// Package dbtx binds gorm sessions to a *sql.Tx opened by a service, so that
// repositories built on gorm take part in the same transaction as the
// database/sql calls around them.
package dbtx

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

// Bind returns a session whose statements run on tx. A nil tx returns db unchanged.
func Bind(db *gorm.DB, tx *sql.Tx) *gorm.DB {
	if tx == nil {
		return db
	}
	// Session with a Context clones the statement, so the pool swap below
	// does not leak into db.
	bound := db.Session(&gorm.Session{Context: context.Background(), NewDB: true})
	bound.Statement.ConnPool = tx
	return bound
}
