package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolationCode = "23505"

type PostgresLinkStore struct {
	pool *pgxpool.Pool
}

func NewPostgresLinkStore(pool *pgxpool.Pool) *PostgresLinkStore {
	return &PostgresLinkStore{pool: pool}
}

// EnsureSchema creates the links table if it does not exist. Codes are
// stored uppercase and act as the primary key, which is what enforces
// uniqueness under concurrent creates.
func (s *PostgresLinkStore) EnsureSchema(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS links (
		code TEXT PRIMARY KEY,
		target_url TEXT NOT NULL,
		clicks BIGINT NOT NULL DEFAULT 0,
		last_clicked_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`
	_, err := s.pool.Exec(ctx, query)
	return err
}

func (s *PostgresLinkStore) InsertIfAbsent(ctx context.Context, link *Link) error {
	query := `INSERT INTO links (code, target_url, clicks) VALUES ($1, $2, $3) RETURNING created_at`
	err := s.pool.QueryRow(ctx, query, link.Code, link.TargetURL, link.Clicks).Scan(&link.CreatedAt)
	if isUniqueViolation(err) {
		return ErrCodeExists
	}
	return err
}

func (s *PostgresLinkStore) FindByCode(ctx context.Context, code string) (*Link, error) {
	query := `SELECT code, target_url, clicks, last_clicked_at, created_at FROM links WHERE code = $1`
	row := s.pool.QueryRow(ctx, query, code)
	var link Link
	err := row.Scan(&link.Code, &link.TargetURL, &link.Clicks, &link.LastClickedAt, &link.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &link, nil
}

// IncrementClick performs the counter bump and timestamp update as one
// statement, so concurrent redirects to the same code serialize at the row
// and no update is lost.
func (s *PostgresLinkStore) IncrementClick(ctx context.Context, code string) (string, error) {
	query := `UPDATE links SET clicks = clicks + 1, last_clicked_at = now() WHERE code = $1 RETURNING target_url`
	var targetURL string
	err := s.pool.QueryRow(ctx, query, code).Scan(&targetURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return targetURL, nil
}

func (s *PostgresLinkStore) DeleteByCode(ctx context.Context, code string) (bool, error) {
	query := `DELETE FROM links WHERE code = $1`
	tag, err := s.pool.Exec(ctx, query, code)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresLinkStore) ListAll(ctx context.Context) ([]*Link, error) {
	query := `SELECT code, target_url, clicks, last_clicked_at, created_at FROM links ORDER BY created_at DESC`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := []*Link{}
	for rows.Next() {
		var link Link
		if err := rows.Scan(&link.Code, &link.TargetURL, &link.Clicks, &link.LastClickedAt, &link.CreatedAt); err != nil {
			return nil, err
		}
		links = append(links, &link)
	}
	return links, rows.Err()
}

func (s *PostgresLinkStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
