package storage

import (
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pkg/errors"
	"github.com/pressly/goose"
)

// Migrate runs a goose command ("up", "down", "status", "version", ...) against
// the SQL files in dir.
func Migrate(dsn, dir, command string, args ...string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return errors.Wrap(err, "open db")
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Wrap(err, "goose dialect")
	}
	return errors.Wrapf(goose.Run(command, db, dir, args...), "goose %s", command)
}
