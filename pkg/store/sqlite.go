package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/philips-software/bom-base-sub000/pkg/errors"
	"github.com/philips-software/bom-base-sub000/pkg/meta"
	"github.com/philips-software/bom-base-sub000/pkg/purl"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS packages (
	key        TEXT PRIMARY KEY,
	type       TEXT NOT NULL,
	namespace  TEXT NOT NULL DEFAULT '',
	name       TEXT NOT NULL,
	version    TEXT NOT NULL,
	data       TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_packages_type_name ON packages(type, name);
`

// SQLite stores packages in an embedded database file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (and creates if needed) the database at path.
// Use ":memory:" for a throwaway database.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "open %s", path)
	}

	// SQLite only allows one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode = WAL", "PRAGMA busy_timeout = 5000"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, errors.Wrap(errors.ErrCodeStore, err, "configure %s", path)
		}
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, errors.Wrap(errors.ErrCodeStore, err, "create schema")
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) CreatePackage(ctx context.Context, p purl.PURL) (*meta.Package, error) {
	data, err := encode(meta.NewPackage(p))
	if err != nil {
		return nil, err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO packages (key, type, namespace, name, version, data, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.Key(), p.Type, p.Namespace, p.Name, p.Version, string(data), time.Now().Unix())
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "create %s", p.Key())
	}
	pkg, _, err := s.FindPackage(ctx, p)
	return pkg, err
}

func (s *SQLite) FindPackage(ctx context.Context, p purl.PURL) (*meta.Package, bool, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM packages WHERE key = ?`, p.Key()).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeStore, err, "find %s", p.Key())
	}
	pkg, err := decode([]byte(data))
	if err != nil {
		return nil, false, err
	}
	return pkg, true, nil
}

func (s *SQLite) FindPackages(ctx context.Context, f Filter) ([]*meta.Package, error) {
	var where []string
	var args []any
	if f.Type != "" {
		where = append(where, "type = ?")
		args = append(args, strings.ToLower(f.Type))
	}
	if f.Namespace != "" {
		where = append(where, "namespace = ?")
		args = append(args, f.Namespace)
	}
	if f.Version != "" {
		where = append(where, "version = ?")
		args = append(args, f.Version)
	}
	if f.Name != "" {
		where = append(where, "instr(lower(name), lower(?)) > 0")
		args = append(args, f.Name)
	}

	query := "SELECT data FROM packages"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY key LIMIT ?"
	args = append(args, f.limit())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "list packages")
	}
	defer rows.Close()

	var out []*meta.Package
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStore, err, "scan package")
		}
		pkg, err := decode([]byte(data))
		if err != nil {
			return nil, err
		}
		out = append(out, pkg)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "list packages")
	}
	return out, nil
}

func (s *SQLite) SavePackage(ctx context.Context, pkg *meta.Package) error {
	data, err := encode(pkg)
	if err != nil {
		return err
	}
	p := pkg.PURL()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO packages (key, type, namespace, name, version, data, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		p.Key(), p.Type, p.Namespace, p.Name, p.Version, string(data), time.Now().Unix())
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "save %s", p.Key())
	}
	return nil
}

func (s *SQLite) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

var _ Store = (*SQLite)(nil)
