package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/parroquia-maps/internal/db"
	"github.com/sells-group/parroquia-maps/internal/view"
)

// DefaultTable is the PostgreSQL table rows are written to.
const DefaultTable = "parroquias"

// Postgres writes the table to PostgreSQL. By default rows are synced on
// (view, scope, idx): changed parishes are upserted and parishes no longer
// in the view are deleted. With Replace the view's rows are deleted and the
// new ones loaded with COPY. geom holds EWKB; with PostGIS use
// ST_GeomFromEWKB(geom).
type Postgres struct {
	Pool    db.Pool
	Table   string
	Replace bool
}

func (s Postgres) table() string {
	if s.Table == "" {
		return DefaultTable
	}
	return s.Table
}

// Migrate creates the target table if it does not exist.
func (s Postgres) Migrate(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	view       text             NOT NULL,
	scope      text             NOT NULL,
	idx        bigint           NOT NULL,
	code       text             NOT NULL DEFAULT '',
	name       text             NOT NULL,
	type       text             NOT NULL DEFAULT '',
	zone_admin text             NOT NULL DEFAULT '',
	lat        double precision,
	lon        double precision,
	sector     text,
	cluster    bigint,
	value      double precision,
	label      text,
	color      text             NOT NULL,
	geom       bytea,
	PRIMARY KEY (view, scope, idx)
)`, db.Identifier(s.table()).Sanitize())
	if _, err := s.Pool.Exec(ctx, ddl); err != nil {
		return eris.Wrapf(err, "export: migrate %s", s.table())
	}
	return nil
}

// Write implements Sink. Both modes run in one transaction.
func (s Postgres) Write(ctx context.Context, t *view.Table) (int64, error) {
	if s.Pool == nil {
		return 0, eris.New("export: postgres needs a pool")
	}
	if err := s.Migrate(ctx); err != nil {
		return 0, err
	}
	recs, err := records(t)
	if err != nil {
		return 0, err
	}

	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "export: begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var n int64
	if s.Replace {
		n, err = s.replace(ctx, tx, t, recs)
	} else {
		n, err = s.sync(ctx, tx, t, recs)
	}
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "export: commit tx")
	}

	zap.L().Info("export: postgres rows written",
		zap.String("table", s.table()),
		zap.String("view", t.View),
		zap.String("scope", string(t.Scope)),
		zap.Int64("rows", n),
		zap.Bool("replace", s.Replace),
	)
	return n, nil
}

// replace drops the rows of the table's view and scope and loads the new
// ones with COPY.
func (s Postgres) replace(ctx context.Context, tx pgx.Tx, t *view.Table, recs [][]any) (int64, error) {
	del := fmt.Sprintf("DELETE FROM %s WHERE view = $1 AND scope = $2", db.Identifier(s.table()).Sanitize())
	if _, err := tx.Exec(ctx, del, t.View, string(t.Scope)); err != nil {
		return 0, eris.Wrapf(err, "export: clear %s", s.table())
	}
	return db.CopyFrom(ctx, tx, s.table(), Columns, recs)
}

// sync stages the rows with COPY, upserts them on (view, scope, idx)
// touching only parishes whose columns changed, then deletes the rows of
// the view and scope that the table no longer produces. It returns the
// number of rows inserted or updated.
func (s Postgres) sync(ctx context.Context, tx pgx.Tx, t *view.Table, recs [][]any) (int64, error) {
	target := db.Identifier(s.table()).Sanitize()
	staging := "_staging_" + strings.ReplaceAll(s.table(), ".", "_")
	stagingID := pgx.Identifier{staging}.Sanitize()

	create := fmt.Sprintf("CREATE TEMP TABLE %s (LIKE %s INCLUDING DEFAULTS) ON COMMIT DROP", stagingID, target)
	if _, err := tx.Exec(ctx, create); err != nil {
		return 0, eris.Wrapf(err, "export: stage %s", s.table())
	}
	if _, err := db.CopyFrom(ctx, tx, staging, Columns, recs); err != nil {
		return 0, err
	}

	tag, err := tx.Exec(ctx, upsertSQL(target, stagingID))
	if err != nil {
		return 0, eris.Wrapf(err, "export: upsert %s", s.table())
	}

	prune := fmt.Sprintf(
		"DELETE FROM %s AS t WHERE t.view = $1 AND t.scope = $2 AND NOT EXISTS (SELECT 1 FROM %s AS s WHERE s.idx = t.idx)",
		target, stagingID)
	pruned, err := tx.Exec(ctx, prune, t.View, string(t.Scope))
	if err != nil {
		return 0, eris.Wrapf(err, "export: prune %s", s.table())
	}
	if pruned.RowsAffected() > 0 {
		zap.L().Debug("export: pruned stale parishes",
			zap.String("view", t.View),
			zap.Int64("rows", pruned.RowsAffected()),
		)
	}
	return tag.RowsAffected(), nil
}

// keyColumns identify a row; every other column of Columns is a value.
var keyColumns = map[string]bool{"view": true, "scope": true, "idx": true}

// upsertSQL moves staged rows into target, updating a conflicting row only
// when one of its value columns differs.
func upsertSQL(target, staging string) string {
	var set, cur, next []string
	for _, c := range Columns {
		if keyColumns[c] {
			continue
		}
		id := pgx.Identifier{c}.Sanitize()
		set = append(set, id+" = EXCLUDED."+id)
		cur = append(cur, "t."+id)
		next = append(next, "EXCLUDED."+id)
	}
	cols := make([]string, len(Columns))
	for i, c := range Columns {
		cols[i] = pgx.Identifier{c}.Sanitize()
	}
	list := strings.Join(cols, ", ")
	return fmt.Sprintf(
		"INSERT INTO %s AS t (%s) SELECT %s FROM %s ON CONFLICT (view, scope, idx) DO UPDATE SET %s WHERE (%s) IS DISTINCT FROM (%s)",
		target, list, list, staging,
		strings.Join(set, ", "), strings.Join(cur, ", "), strings.Join(next, ", "),
	)
}
