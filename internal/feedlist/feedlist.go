// Package feedlist loads the configured feed sources.
package feedlist

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/DarthQach/news-cast/internal/logger"
	"github.com/DarthQach/news-cast/internal/storage"
)

// ObjectReader reads an object addressed by an s3:// URL.
type ObjectReader interface {
	Read(ctx context.Context, objectURL string) ([]byte, error)
}

// Loader reads newline separated feed sources from a file or object store.
type Loader struct {
	objects ObjectReader
}

// NewLoader returns a Loader. objects may be nil when no object store is configured.
func NewLoader(objects ObjectReader) *Loader {
	return &Loader{objects: objects}
}

// Load returns the feed sources listed at path. It never fails: problems are
// logged and yield an empty list.
func (l *Loader) Load(ctx context.Context, path string) []string {
	log := logger.Component("feedlist")

	var (
		data []byte
		err  error
	)
	if _, _, perr := storage.ParseObjectURL(path); !errors.Is(perr, storage.ErrNotObjectURL) {
		if l.objects == nil {
			log.Error().Str("path", path).Msg("Feed list is an object url but no object store is configured")
			return []string{}
		}
		data, err = l.objects.Read(ctx, path)
	} else {
		data, err = os.ReadFile(path)
	}

	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Warn().Str("path", path).Msg("Feed file not found")
		} else {
			log.Error().Err(err).Str("path", path).Msg("Failed to read feed list")
		}
		return []string{}
	}

	sources, err := Parse(bytes.NewReader(data))
	if err != nil {
		log.Error().Err(err).Str("path", path).Int("feeds", len(sources)).Msg("Feed list read stopped early")
	}
	if len(sources) == 0 {
		log.Warn().Str("path", path).Msg("No feeds found in feed list")
	} else {
		log.Info().Str("path", path).Int("feeds", len(sources)).Msg("Loaded feed list")
	}
	return sources
}

// Parse reads one source per line, skipping blank lines and lines starting with '#'.
// Lines have no length limit. On a read error the sources seen so far are returned with it.
func Parse(r io.Reader) ([]string, error) {
	sources := []string{}
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if line = strings.TrimSpace(line); line != "" && !strings.HasPrefix(line, "#") {
			sources = append(sources, line)
		}
		if errors.Is(err, io.EOF) {
			return sources, nil
		}
		if err != nil {
			return sources, fmt.Errorf("failed to read feed list: %w", err)
		}
	}
}
