package sqlrunner

import (
	"context"
	"database/sql"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"time"

	"request-desk/internal/pkg/errs"

	"github.com/jackc/pgx/v5"
)

var (
	ErrNoScripts     = errs.New("no SQL scripts matched")
	ErrScriptsFailed = errs.New("one or more SQL scripts failed")
)

// Executor runs one script as a single transaction: committed when every
// statement succeeds, rolled back otherwise.
type Executor interface {
	ExecScript(ctx context.Context, script string) (int64, error)
}

type Result struct {
	File         string
	Duration     time.Duration
	RowsAffected int64
	Err          error
}

func (r Result) OK() bool { return r.Err == nil }

type Runner struct {
	exec   Executor
	logger *slog.Logger
}

func NewRunner(exec Executor, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{exec: exec, logger: logger}
}

// Run executes the files in fsys matching pattern in lexical order. With failFast
// the first failure stops the run. The returned error is ErrScriptsFailed when
// any file failed; the results are returned either way.
func (r *Runner) Run(ctx context.Context, fsys fs.FS, pattern string, failFast bool) ([]Result, error) {
	files, err := fs.Glob(fsys, pattern)
	if err != nil {
		return nil, errs.Wrap(err, "match scripts")
	}
	sort.Strings(files)
	if len(files) == 0 {
		return nil, ErrNoScripts
	}
	r.logger.Info("running SQL scripts", "count", len(files), "pattern", pattern)

	results := make([]Result, 0, len(files))
	failed := 0
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res := r.runFile(ctx, fsys, name)
		results = append(results, res)
		if !res.OK() {
			failed++
			if failFast {
				r.logger.Warn("stopping after first failure", "file", name)
				break
			}
		}
	}

	r.logger.Info("SQL scripts finished",
		"total", len(files), "ran", len(results), "succeeded", len(results)-failed, "failed", failed)
	if failed > 0 {
		return results, ErrScriptsFailed
	}
	return results, nil
}

func (r *Runner) runFile(ctx context.Context, fsys fs.FS, name string) Result {
	start := time.Now()
	res := Result{File: path.Base(name)}

	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		res.Err = errs.Wrap(err, "read script")
	} else {
		res.RowsAffected, res.Err = r.exec.ExecScript(ctx, string(data))
	}
	res.Duration = time.Since(start)

	if res.Err != nil {
		r.logger.Error("script failed", "file", res.File, "duration", res.Duration, "error", res.Err.Error())
	} else {
		r.logger.Info("script succeeded", "file", res.File, "duration", res.Duration, "rows_affected", res.RowsAffected)
	}
	return res
}

// PgxExecutor sends each script over the simple query protocol so a file may
// hold any number of statements.
type PgxExecutor struct {
	conn *pgx.Conn
}

func NewPgxExecutor(conn *pgx.Conn) *PgxExecutor {
	return &PgxExecutor{conn: conn}
}

func (e *PgxExecutor) ExecScript(ctx context.Context, script string) (int64, error) {
	tx, err := e.conn.Begin(ctx)
	if err != nil {
		return 0, errs.Wrap(err, "begin")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	results, err := tx.Conn().PgConn().Exec(ctx, script).ReadAll()
	if err != nil {
		return 0, err
	}
	var rows int64
	for _, res := range results {
		if res.Err != nil {
			return 0, res.Err
		}
		rows += res.CommandTag.RowsAffected()
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, errs.Wrap(err, "commit")
	}
	return rows, nil
}

// SQLExecutor runs scripts through database/sql. The driver must accept several
// statements in one Exec, which modernc.org/sqlite does.
type SQLExecutor struct {
	db *sql.DB
}

func NewSQLExecutor(db *sql.DB) *SQLExecutor {
	return &SQLExecutor{db: db}
}

func (e *SQLExecutor) ExecScript(ctx context.Context, script string) (int64, error) {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errs.Wrap(err, "begin")
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, script)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, errs.Wrap(err, "commit")
	}
	rows, _ := res.RowsAffected()
	return rows, nil
}
