package export

import (
	"context"
	"database/sql"
	"strings"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/parroquia-maps/internal/view"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS parroquias (
	view       TEXT    NOT NULL,
	scope      TEXT    NOT NULL,
	idx        INTEGER NOT NULL,
	code       TEXT    NOT NULL DEFAULT '',
	name       TEXT    NOT NULL,
	type       TEXT    NOT NULL DEFAULT '',
	zone_admin TEXT    NOT NULL DEFAULT '',
	lat        REAL,
	lon        REAL,
	sector     TEXT,
	cluster    INTEGER,
	value      REAL,
	label      TEXT,
	color      TEXT    NOT NULL,
	geom       BLOB,
	PRIMARY KEY (view, scope, idx)
);

CREATE INDEX IF NOT EXISTS idx_parroquias_code ON parroquias(code);
`

// SQLite replaces the rows of the table's view and scope in a SQLite
// database. Geometry is stored as EWKB.
type SQLite struct {
	DSN string
}

// Write implements Sink.
func (s SQLite) Write(ctx context.Context, t *view.Table) (int64, error) {
	if s.DSN == "" {
		return 0, eris.New("export: sqlite needs a database path")
	}
	db, err := sql.Open("sqlite", s.DSN)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: open")
	}
	defer db.Close() //nolint:errcheck

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return 0, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return 0, eris.Wrap(err, "sqlite: migrate")
	}

	recs, err := records(t)
	if err != nil {
		return 0, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM parroquias WHERE view = ? AND scope = ?`, t.View, string(t.Scope)); err != nil {
		return 0, eris.Wrap(err, "sqlite: clear view")
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(Columns)), ", ")
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO parroquias (`+strings.Join(Columns, ", ")+`) VALUES (`+placeholders+`)`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare insert")
	}
	defer stmt.Close() //nolint:errcheck

	for _, rec := range recs {
		if _, err := stmt.ExecContext(ctx, rec...); err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert %v", rec[4])
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit")
	}
	return int64(len(recs)), nil
}
