// Package store persists project snapshots in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/the-dev-tools/contextmap/pkg/model/mproject"
)

var (
	ErrNotFound  = errors.New("store: project not found")
	ErrMissingID = errors.New("store: project id is empty")
	ErrEmptyPath = errors.New("store: database path is empty")

	ErrUnknownEncoding = errors.New("store: unknown snapshot encoding")
)

const schema = `
CREATE TABLE IF NOT EXISTS projects (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	snapshot   BLOB NOT NULL,
	encoding   INTEGER NOT NULL DEFAULT 0,
	revision   INTEGER NOT NULL DEFAULT 1,
	updated_at INTEGER NOT NULL
);
`

// Summary describes a stored project without its snapshot.
type Summary struct {
	ID        string
	Name      string
	Revision  int64
	UpdatedAt time.Time
}

type Store struct {
	db       *sql.DB
	logger   *slog.Logger
	now      func() time.Time
	encoding Encoding
}

type Option func(*Store)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the timestamp source for updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithEncoding sets the compression of snapshots written from now on.
func WithEncoding(enc Encoding) Option {
	return func(s *Store) {
		s.encoding = enc
	}
}

// Open opens or creates the database file at path.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	params := url.Values{}
	params.Set("mode", "rwc")
	params.Add("_pragma", "journal_mode(WAL)")
	params.Add("_pragma", "busy_timeout(5000)")
	params.Set("_txlock", "immediate")

	db, err := sql.Open("sqlite", "file:"+path+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	return newStore(ctx, db, opts...)
}

// OpenMemory opens a private in-memory database. Each call gets its own
// database.
func OpenMemory(ctx context.Context, opts ...Option) (*Store, error) {
	dsn := fmt.Sprintf("file:contextmap_%s?mode=memory&cache=shared", ulid.Make().String())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return newStore(ctx, db, opts...)
}

func newStore(ctx context.Context, db *sql.DB, opts ...Option) (*Store, error) {
	s := &Store{db: db, logger: slog.Default(), now: time.Now, encoding: EncodingZstd}
	for _, opt := range opts {
		opt(s)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save writes the snapshot of p, replacing any previous one and bumping the
// revision.
func (s *Store) Save(ctx context.Context, p mproject.Project) error {
	if p.ID == "" {
		return ErrMissingID
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode project %s: %w", p.ID, err)
	}
	data, err := compress(raw, s.encoding)
	if err != nil {
		return fmt.Errorf("failed to compress project %s: %w", p.ID, err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO projects (id, name, snapshot, encoding, revision, updated_at)
VALUES (?, ?, ?, ?, 1, ?)
ON CONFLICT(id) DO UPDATE SET
	name = excluded.name,
	snapshot = excluded.snapshot,
	encoding = excluded.encoding,
	revision = projects.revision + 1,
	updated_at = excluded.updated_at`,
		p.ID, p.Name, data, int(s.encoding), s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to save project %s: %w", p.ID, err)
	}
	s.logger.Debug("store: project saved", "project", p.ID, "bytes", len(data), "raw_bytes", len(raw))
	return nil
}

func (s *Store) Load(ctx context.Context, id string) (mproject.Project, error) {
	var (
		data []byte
		enc  Encoding
	)
	err := s.db.QueryRowContext(ctx, `SELECT snapshot, encoding FROM projects WHERE id = ?`, id).Scan(&data, &enc)
	if errors.Is(err, sql.ErrNoRows) {
		return mproject.Project{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return mproject.Project{}, fmt.Errorf("failed to load project %s: %w", id, err)
	}
	raw, err := decompress(data, enc)
	if err != nil {
		return mproject.Project{}, fmt.Errorf("failed to decompress project %s: %w", id, err)
	}
	var p mproject.Project
	if err := json.Unmarshal(raw, &p); err != nil {
		return mproject.Project{}, fmt.Errorf("failed to decode project %s: %w", id, err)
	}
	p.Normalize()
	return p, nil
}

// List returns every stored project, most recently updated first.
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, name, revision, updated_at FROM projects ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			sum     Summary
			updated int64
		)
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.Revision, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		sum.UpdatedAt = time.UnixMilli(updated)
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func (s *Store) Revision(ctx context.Context, id string) (int64, error) {
	var rev int64
	err := s.db.QueryRowContext(ctx, `SELECT revision FROM projects WHERE id = ?`, id).Scan(&rev)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read revision of %s: %w", id, err)
	}
	return rev, nil
}
