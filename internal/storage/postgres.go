package storage

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
)

// PostgresHistory keeps featured articles and produced-video records in
// PostgreSQL, for deployments where the JSON file store is not enough.
type PostgresHistory struct {
	db       *sql.DB
	ttlHours int
}

// VideoRecord is one produced digest video.
type VideoRecord struct {
	ProjectID  string
	Title      string
	Path       string
	YouTubeURL string
	NewsCount  int
	Duration   float64
	CreatedAt  time.Time
}

// NewPostgresHistory connects, pings, and ensures the schema exists.
func NewPostgresHistory(dsn string, ttlHours int) (*PostgresHistory, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	ph := &PostgresHistory{db: db, ttlHours: ttlHours}
	if err := ph.initSchema(); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}

	slog.Info("postgres history connected")
	return ph, nil
}

func (ph *PostgresHistory) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS featured_articles (
		hash        TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		url         TEXT NOT NULL,
		category    TEXT,
		source      TEXT,
		featured_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_featured_articles_featured_at
		ON featured_articles (featured_at);

	CREATE TABLE IF NOT EXISTS produced_videos (
		project_id  TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		path        TEXT,
		youtube_url TEXT,
		news_count  INTEGER NOT NULL DEFAULT 0,
		duration    DOUBLE PRECISION NOT NULL DEFAULT 0,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`

	_, err := ph.db.Exec(schema)
	return err
}

// GenerateHash matches the file store's identity derivation so the two
// backends are interchangeable.
func (ph *PostgresHistory) GenerateHash(title, url string) string {
	fh := FileHistory{}
	return fh.GenerateHash(title, url)
}

// WasFeatured checks the database for a non-expired featured entry.
func (ph *PostgresHistory) WasFeatured(hash string) bool {
	query := `SELECT 1 FROM featured_articles
	          WHERE hash = $1 AND featured_at > NOW() - ($2 || ' hours')::interval`

	var one int
	err := ph.db.QueryRow(query, hash, ph.ttlHours).Scan(&one)
	if err == sql.ErrNoRows {
		return false
	}
	if err != nil {
		slog.Error("history lookup failed", "error", err)
		return false
	}
	return true
}

// MarkFeatured upserts a featured entry, refreshing the timestamp.
func (ph *PostgresHistory) MarkFeatured(hash, title, url, category, source string) error {
	query := `INSERT INTO featured_articles (hash, title, url, category, source, featured_at)
	          VALUES ($1, $2, $3, $4, $5, NOW())
	          ON CONFLICT (hash) DO UPDATE SET featured_at = NOW()`

	if _, err := ph.db.Exec(query, hash, title, url, category, source); err != nil {
		return fmt.Errorf("upsert featured article: %w", err)
	}
	return nil
}

// SaveVideo records a produced video.
func (ph *PostgresHistory) SaveVideo(rec VideoRecord) error {
	query := `INSERT INTO produced_videos (project_id, title, path, youtube_url, news_count, duration)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          ON CONFLICT (project_id) DO UPDATE
	          SET youtube_url = EXCLUDED.youtube_url,
	              path = EXCLUDED.path`

	_, err := ph.db.Exec(query, rec.ProjectID, rec.Title, rec.Path, rec.YouTubeURL, rec.NewsCount, rec.Duration)
	if err != nil {
		return fmt.Errorf("upsert produced video: %w", err)
	}
	return nil
}

// Cleanup deletes featured entries older than the TTL.
func (ph *PostgresHistory) Cleanup() error {
	query := `DELETE FROM featured_articles
	          WHERE featured_at < NOW() - ($1 || ' hours')::interval`

	res, err := ph.db.Exec(query, ph.ttlHours)
	if err != nil {
		return fmt.Errorf("cleanup featured articles: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		slog.Debug("expired featured articles removed", "count", n)
	}
	return nil
}

// Close releases the database handle.
func (ph *PostgresHistory) Close() error {
	return ph.db.Close()
}
