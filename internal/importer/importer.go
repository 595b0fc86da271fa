// Package importer bulk-loads the catalog CSV exports into Postgres with COPY.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

type Kind int

const (
	KindText Kind = iota
	KindInt
	KindTime
)

// Column maps one CSV header to a table column.
type Column struct {
	Header string
	Name   string
	Kind   Kind
}

// Source describes one CSV file and the table it loads into.
type Source struct {
	File    string
	Table   string
	Columns []Column
	// Serial tables get their id sequence moved past the imported ids.
	Serial bool
	// Purgeable tables are emptied first when clearing is requested.
	Purgeable bool
}

// DefaultSources lists the export files in dependency order.
var DefaultSources = []Source{
	{
		File: "users.csv", Table: "users", Serial: true,
		Columns: []Column{
			{"id", "id", KindInt},
			{"username", "username", KindText},
			{"email", "email", KindText},
			{"role", "role", KindText},
			{"bio", "bio", KindText},
			{"first_name", "first_name", KindText},
			{"last_name", "last_name", KindText},
		},
	},
	{
		File: "category.csv", Table: "categories", Serial: true, Purgeable: true,
		Columns: []Column{{"id", "id", KindInt}, {"name", "name", KindText}, {"slug", "slug", KindText}},
	},
	{
		File: "genre.csv", Table: "genres", Serial: true, Purgeable: true,
		Columns: []Column{{"id", "id", KindInt}, {"name", "name", KindText}, {"slug", "slug", KindText}},
	},
	{
		File: "titles.csv", Table: "titles", Serial: true, Purgeable: true,
		Columns: []Column{
			{"id", "id", KindInt},
			{"name", "name", KindText},
			{"year", "year", KindInt},
			{"category", "category_id", KindInt},
		},
	},
	{
		File: "genre_title.csv", Table: "genre_titles", Purgeable: true,
		Columns: []Column{{"title_id", "title_id", KindInt}, {"genre_id", "genre_id", KindInt}},
	},
	{
		File: "review.csv", Table: "reviews", Serial: true, Purgeable: true,
		Columns: []Column{
			{"id", "id", KindInt},
			{"title_id", "title_id", KindInt},
			{"text", "text", KindText},
			{"author", "author_id", KindInt},
			{"score", "score", KindInt},
			{"pub_date", "pub_date", KindTime},
		},
	},
	{
		File: "comments.csv", Table: "comments", Serial: true, Purgeable: true,
		Columns: []Column{
			{"id", "id", KindInt},
			{"review_id", "review_id", KindInt},
			{"text", "text", KindText},
			{"author", "author_id", KindInt},
			{"pub_date", "pub_date", KindTime},
		},
	},
}

// Beginner is satisfied by *pgxpool.Pool.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Result reports the outcome of one file. A failed file does not stop the run.
type Result struct {
	File string
	Rows int64
	Err  error
}

type Importer struct {
	db    Beginner
	dir   string
	clear bool
	log   *slog.Logger
}

func New(db Beginner, dir string, clear bool, log *slog.Logger) *Importer {
	return &Importer{db: db, dir: dir, clear: clear, log: log}
}

// Run loads every source in order, each in its own transaction.
func (im *Importer) Run(ctx context.Context, sources []Source) []Result {
	results := make([]Result, 0, len(sources))
	for _, src := range sources {
		n, err := im.load(ctx, src)
		if err != nil {
			im.log.Error("import failed", slog.String("file", src.File), slog.Any("error", err))
		} else {
			im.log.Info("import done", slog.String("file", src.File), slog.Int64("rows", n))
		}
		results = append(results, Result{File: src.File, Rows: n, Err: err})
	}
	return results
}

func (im *Importer) load(ctx context.Context, src Source) (int64, error) {
	f, err := os.Open(filepath.Join(im.dir, src.File))
	if err != nil {
		return 0, err
	}
	defer f.Close()

	columns, rows, err := ReadRows(f, src.Columns)
	if err != nil {
		return 0, err
	}

	tx, err := im.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if im.clear && src.Purgeable {
		if _, err := tx.Exec(ctx, "DELETE FROM "+pgx.Identifier{src.Table}.Sanitize()); err != nil {
			return 0, fmt.Errorf("purge %s: %w", src.Table, err)
		}
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{src.Table}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("copy into %s: %w", src.Table, err)
	}

	if src.Serial {
		table := pgx.Identifier{src.Table}.Sanitize()
		sql := fmt.Sprintf(
			"SELECT setval(pg_get_serial_sequence($1, 'id'), COALESCE((SELECT MAX(id) FROM %s), 1))", table)
		if _, err := tx.Exec(ctx, sql, src.Table); err != nil {
			return 0, fmt.Errorf("reset %s id sequence: %w", src.Table, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

// ReadRows parses a CSV export with a header line. Only the mapped columns
// are kept, converted to the Go type of their kind; empty cells become NULL.
func ReadRows(r io.Reader, mapping []Column) ([]string, [][]any, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, errors.New("missing header line")
		}
		return nil, nil, err
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}

	columns := make([]string, len(mapping))
	positions := make([]int, len(mapping))
	for i, col := range mapping {
		pos, ok := index[col.Header]
		if !ok {
			return nil, nil, fmt.Errorf("missing column %q", col.Header)
		}
		columns[i] = col.Name
		positions[i] = pos
	}

	var rows [][]any
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		row := make([]any, len(mapping))
		for i, col := range mapping {
			v, err := convert(record[positions[i]], col.Kind)
			if err != nil {
				return nil, nil, fmt.Errorf("line %d, column %q: %w", line, col.Header, err)
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
	return columns, rows, nil
}

func convert(raw string, kind Kind) (any, error) {
	switch kind {
	case KindInt:
		if raw == "" {
			return nil, nil
		}
		return strconv.ParseInt(raw, 10, 64)
	case KindTime:
		if raw == "" {
			return nil, nil
		}
		return time.Parse(time.RFC3339Nano, raw)
	default:
		return raw, nil
	}
}
