package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"newsbrief/internal/services/news"
)

// Loader feeds raw source text files through the digest pipeline. Each file
// becomes one digest request; the file name (minus extension) is used as the
// source name.
type Loader struct {
	service *news.Service
}

func NewLoader(service *news.Service) *Loader {
	return &Loader{service: service}
}

// LoadFromDirectory ingests every .txt and .md file under dirPath. Files that
// fail to digest are logged and skipped so one bad source does not abort the
// whole run.
func (l *Loader) LoadFromDirectory(ctx context.Context, dirPath string) error {
	var loaded, failed int
	err := filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isSourceFile(path) {
			return nil
		}
		if err := l.LoadFromFile(ctx, path); err != nil {
			log.Warn().Err(err).Str("file", path).Msg("Failed to ingest source file")
			failed++
			return nil
		}
		loaded++
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk %s: %w", dirPath, err)
	}

	log.Info().Int("loaded", loaded).Int("failed", failed).
		Str("dir", dirPath).Msg("Ingest complete")
	return nil
}

// LoadFromFile ingests a single raw text file.
func (l *Loader) LoadFromFile(ctx context.Context, filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filePath, err)
	}

	sourceName := sourceNameFromPath(filePath)
	resp, err := l.service.GenerateDigest(ctx, sourceName, string(data))
	if err != nil {
		return fmt.Errorf("failed to digest %s: %w", filePath, err)
	}

	log.Info().Str("file", filePath).Str("source", sourceName).
		Int("articles", resp.Meta.Total).Msg("Ingested source file")
	return nil
}

func isSourceFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
		return true
	}
	return false
}

func sourceNameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
