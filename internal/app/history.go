package app

import (
	"technews/internal/storage"
)

// History is the dedup store the pipeline consults so a story is never
// featured in two digests within the TTL window.
type History interface {
	GenerateHash(title, url string) string
	WasFeatured(hash string) bool
	MarkFeatured(hash, title, url, category, source string) error
	Save() error
}

// VideoStore is an optional History capability: a record of every
// produced digest video. The Postgres backend implements it; the file
// store does not.
type VideoStore interface {
	SaveVideo(rec storage.VideoRecord) error
}

// postgresHistory adapts storage.PostgresHistory, which persists on
// every write and needs no explicit save.
type postgresHistory struct {
	*storage.PostgresHistory
}

func (postgresHistory) Save() error { return nil }

// OpenHistory picks the history backend: Postgres when a DSN is set,
// otherwise the JSON file store.
func OpenHistory(dsn, filePath string, ttlHours int) (History, error) {
	if dsn != "" {
		ph, err := storage.NewPostgresHistory(dsn, ttlHours)
		if err != nil {
			return nil, err
		}
		return postgresHistory{ph}, nil
	}

	fh := storage.NewFileHistory(filePath, ttlHours)
	if err := fh.Load(); err != nil {
		return nil, err
	}
	return fh, nil
}
