package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/Veraticus/facet-flow/internal/common"
	"github.com/Veraticus/facet-flow/internal/config"
	"github.com/Veraticus/facet-flow/internal/engine"
	"github.com/Veraticus/facet-flow/internal/llm"
	"github.com/Veraticus/facet-flow/internal/storage"
	"github.com/Veraticus/facet-flow/internal/vision"
	"github.com/Veraticus/facet-flow/internal/vocabulary"
)

var envKeyReplacer = strings.NewReplacer(".", "_")

// app is the wired core shared by the commands.
type app struct {
	store     *storage.SQLiteStorage
	vocab     *vocabulary.Store
	assembler *engine.Assembler
	text      *llm.Generator
	policy    config.Policy
}

// initStorage opens and migrates the record database.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := config.ExpandPath(viper.GetString("database.path"))
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// loadVocabulary loads the configured document and replays the stored custom
// terms into its overlay.
func loadVocabulary(ctx context.Context, store *storage.SQLiteStorage, policy config.Policy) (*vocabulary.Store, error) {
	vocab := vocabulary.Load(config.ExpandPath(viper.GetString("vocabulary.path")),
		vocabulary.WithPolicy(policy.Match),
		vocabulary.WithLogger(slog.Default()))

	if store == nil {
		return vocab, nil
	}

	terms, err := store.GetCustomTerms(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load custom terms: %w", err)
	}
	for field, values := range terms {
		for _, v := range values {
			vocab.AddCustomTerm(field, v)
		}
	}
	return vocab, nil
}

// newApp opens storage and builds the vocabulary and assembler. The caller
// closes the returned app.
func newApp(ctx context.Context) (*app, error) {
	policy, err := config.LoadPolicy()
	if err != nil {
		return nil, common.NewUserError("invalid review or validation settings", err)
	}

	store, err := initStorage(ctx)
	if err != nil {
		return nil, err
	}

	vocab, err := loadVocabulary(ctx, store, policy)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	text, err := newTextGenerator()
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	assembler := engine.NewWithConfig(vocab, text, engine.Config{
		Logger: slog.Default(),
		Policy: policy.Review,
	})

	return &app{store: store, vocab: vocab, assembler: assembler, text: text, policy: policy}, nil
}

func (a *app) Close() error {
	if err := a.text.Close(); err != nil {
		slog.Warn("failed to close text generator", "error", err)
	}
	return a.store.Close()
}

// newTextGenerator builds the configured copy generator. The template provider
// yields a generator that never calls out.
func newTextGenerator() (*llm.Generator, error) {
	cfg, err := config.LoadTextConfig()
	if err != nil {
		return nil, common.NewUserError("invalid text generation settings", err)
	}

	client, err := llm.NewClient(cfg)
	if err != nil {
		return nil, common.NewUserError("could not create text generator", err)
	}
	if client == nil {
		slog.Debug("using template copy", "provider", cfg.Provider)
	}

	return llm.NewGenerator(client, cfg, slog.Default()), nil
}

// newAnalyzer builds the configured image analyzer. It returns nil when the
// provider is none.
func newAnalyzer(ctx context.Context, vocab *vocabulary.Store) (*vision.Analyzer, error) {
	cfg, err := config.LoadVisionConfig()
	if err != nil {
		return nil, common.NewUserError("invalid vision settings", err)
	}

	client, err := vision.NewClient(ctx, cfg, vision.TablesFrom(vocab))
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}
	if client == nil {
		slog.Debug("image analysis disabled", "provider", cfg.Provider)
		return nil, nil
	}

	return vision.NewAnalyzer(client, cfg, slog.Default()), nil
}

// imageAnalyzer converts a possibly nil analyzer into the engine interface
// without producing a non-nil interface around a nil pointer.
func imageAnalyzer(a *vision.Analyzer) engine.ImageAnalyzer {
	if a == nil {
		return nil
	}
	return a
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// createOutput opens path for writing; "" and "-" mean stdout.
func createOutput(path string, stdout io.Writer) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{stdout}, nil
	}
	f, err := os.Create(config.ExpandPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return f, nil
}

// writeTo opens path, runs write, and closes the file, keeping the first error.
func writeTo(path string, stdout io.Writer, write func(io.Writer) error) (err error) {
	out, err := createOutput(path, stdout)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return write(out)
}
