// Package store writes canonical tables into a sqlite or libsql database, every
// export replaces the previous copy of a table.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"mlbids/internal/components/assert"
	"mlbids/internal/components/telemetry"
	"mlbids/internal/normalize"
	"mlbids/internal/playeridmap"
	"net/url"
	"strings"
	"time"

	_ "embed"

	"github.com/google/uuid"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

const (
	MainTable      = "player_id_map"
	ChangelogTable = "changelog"
)

const (
	report_store_write  = "store.write"
	report_store_export = "store.export"
)

type Config struct {
	// File is a local sqlite database, ":memory:" is accepted.
	File string `json:"file" validate:"required_without=Url"`
	// Url is a remote libsql database, it takes precedence over File.
	Url       string `json:"url" validate:"omitempty,url"`
	AuthToken string `json:"auth_token"`
}

func (config Config) OpenDB() (*sql.DB, error) {
	if config.Url == "" {
		if config.File == "" {
			return nil, fmt.Errorf("neither a database file nor a url was specified")
		}
		db, err := sql.Open("sqlite", config.File)
		if err != nil {
			return nil, err
		}
		// sqlite serializes writers, every connection to :memory: is also a
		// different database
		db.SetMaxOpenConns(1)
		if config.File != ":memory:" {
			_, err = db.Exec("PRAGMA journal_mode=WAL")
			if err != nil {
				db.Close()
				return nil, err
			}
		}
		return db, nil
	}

	values := url.Values{}
	if config.AuthToken != "" {
		values.Add("authToken", config.AuthToken)
	}
	return sql.Open("libsql", config.Url+"?"+values.Encode())
}

type Store struct {
	db  *sql.DB
	tel telemetry.API
}

func NewStore(ctx context.Context, database *sql.DB, tel telemetry.API) (Store, error) {
	assert.NotNil(database)
	assert.NotNil(tel)

	_, err := database.ExecContext(ctx, Schema)
	if err != nil {
		return Store{}, fmt.Errorf("create schema: %w", err)
	}
	return Store{db: database, tel: telemetry.NewScopedAPI("store", tel)}, nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// sqlValue maps a canonical value onto a value the sqlite drivers accept.
func sqlValue(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case int64:
		return v
	case bool:
		if v {
			return int64(1)
		}
		return int64(0)
	default:
		return normalize.Format(v)
	}
}

// columnType is INTEGER for columns that only hold ids or flags.
func columnType(table normalize.Table, col int) string {
	integer := false
	for _, row := range table.Rows {
		switch row[col].(type) {
		case nil:
		case int64, bool:
			integer = true
		default:
			return "TEXT"
		}
	}
	if integer {
		return "INTEGER"
	}
	return "TEXT"
}

func writeTable(ctx context.Context, tx *sql.Tx, name string, table normalize.Table) error {
	_, err := tx.ExecContext(ctx, "drop table if exists "+quoteIdent(name))
	if err != nil {
		return err
	}

	definitions := make([]string, len(table.Columns))
	placeholders := make([]string, len(table.Columns))
	quoted := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		quoted[i] = quoteIdent(c)
		definitions[i] = quoted[i] + " " + columnType(table, i)
		placeholders[i] = "?"
	}

	_, err = tx.ExecContext(ctx, fmt.Sprintf(
		"create table %s (%s)",
		quoteIdent(name),
		strings.Join(definitions, ", "),
	))
	if err != nil {
		return err
	}

	insert, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"insert into %s (%s) values (%s)",
		quoteIdent(name),
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "),
	))
	if err != nil {
		return err
	}
	defer insert.Close()

	args := make([]any, len(table.Columns))
	for r, row := range table.Rows {
		for i, value := range row {
			args[i] = sqlValue(value)
		}
		_, err = insert.ExecContext(ctx, args...)
		if err != nil {
			return fmt.Errorf("insert row %d: %w", r, err)
		}
	}
	return nil
}

// WriteTable replaces the table `name` with the contents of `table`.
func (s Store) WriteTable(ctx context.Context, name string, table normalize.Table) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = writeTable(ctx, tx, name, table)
	if err != nil {
		s.tel.ReportBroken(report_store_write, err, name)
		return fmt.Errorf("write %s: %w", name, err)
	}
	return tx.Commit()
}

type Export struct {
	// RunID identifies one export in the log.
	RunID      string
	ExportedAt time.Time
	LastUpdate time.Time
	Players    int
	Changes    int
}

// Export replaces both tables with the contents of `m` and logs the export, it
// is a single transaction.
func (s Store) Export(ctx context.Context, m playeridmap.Map, now time.Time) (Export, error) {
	data, err := m.Data()
	if err != nil {
		return Export{}, err
	}
	changelog, err := m.Changelog()
	if err != nil {
		return Export{}, err
	}
	lastUpdate, err := m.LastUpdate()
	if err != nil {
		return Export{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Export{}, err
	}
	defer tx.Rollback()

	err = writeTable(ctx, tx, MainTable, data)
	if err != nil {
		s.tel.ReportBroken(report_store_export, err, MainTable)
		return Export{}, fmt.Errorf("write %s: %w", MainTable, err)
	}
	err = writeTable(ctx, tx, ChangelogTable, changelog)
	if err != nil {
		s.tel.ReportBroken(report_store_export, err, ChangelogTable)
		return Export{}, fmt.Errorf("write %s: %w", ChangelogTable, err)
	}

	export := Export{
		RunID:      uuid.NewString(),
		ExportedAt: now,
		LastUpdate: lastUpdate,
		Players:    data.Len(),
		Changes:    changelog.Len(),
	}
	_, err = tx.ExecContext(
		ctx,
		"insert into export_log (run_id, exported_at, last_update, players, changes) values (?, ?, ?, ?, ?)",
		export.RunID,
		export.ExportedAt.Unix(),
		normalize.Format(export.LastUpdate),
		export.Players,
		export.Changes,
	)
	if err != nil {
		s.tel.ReportBroken(report_store_export, err)
		return Export{}, err
	}

	err = tx.Commit()
	if err != nil {
		return Export{}, err
	}
	s.tel.ReportDebug(report_store_export, export.RunID, export.Players, export.Changes)
	return export, nil
}

// LastExport returns the most recent export, ok is false when nothing was
// exported yet.
func (s Store) LastExport(ctx context.Context) (export Export, ok bool, err error) {
	var exportedAt int64
	var lastUpdate string
	err = s.db.QueryRowContext(
		ctx,
		"select run_id, exported_at, last_update, players, changes from export_log order by id desc limit 1",
	).Scan(&export.RunID, &exportedAt, &lastUpdate, &export.Players, &export.Changes)
	if err == sql.ErrNoRows {
		return Export{}, false, nil
	}
	if err != nil {
		return Export{}, false, err
	}

	export.ExportedAt = time.Unix(exportedAt, 0)
	export.LastUpdate, err = time.Parse(normalize.DisplayDateLayout, lastUpdate)
	if err != nil {
		return Export{}, false, err
	}
	return export, true, nil
}
