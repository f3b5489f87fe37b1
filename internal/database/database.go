// Package database bootstraps throwaway Badger and Bluge instances for tests.
package database

import (
	"context"
	"log/slog"
	"os"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
)

// Setup opens an in-memory Badger store and a Bluge index in a temp
// directory. Callers must release both through Cleanup.
func Setup() (context.Context, *slog.Logger, *badger.DB, *bluge.Writer, error) {
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	opts := badger.DefaultOptions("").
		WithInMemory(true).
		WithLoggingLevel(badger.ERROR)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	dir, err := os.MkdirTemp("", "bluge-test-*")
	if err != nil {
		_ = db.Close()
		return nil, nil, nil, nil, err
	}
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(dir))
	if err != nil {
		_ = db.Close()
		return nil, nil, nil, nil, err
	}

	return context.Background(), log, db, writer, nil
}

func Cleanup(db *badger.DB, writer *bluge.Writer) {
	if writer != nil {
		_ = writer.Close()
	}
	if db != nil {
		_ = db.Close()
	}
}
