package har

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/couchcryptid/wire-resistivity-etl/internal/domain"
)

// ErrUnknownPage is returned when a page filter names no page in the archive.
var ErrUnknownPage = errors.New("har page not found")

// Loader reads raw entries from a HAR file on disk.
// It implements pipeline.Extractor.
type Loader struct {
	path   string
	page   string
	logger *slog.Logger
}

// NewLoader creates a Loader for path. A non-empty page restricts the entries
// to those recorded under that page id.
func NewLoader(path, page string, logger *slog.Logger) *Loader {
	return &Loader{path: path, page: page, logger: logger}
}

// Extract loads the archive and returns its entries in archive order.
func (l *Loader) Extract(ctx context.Context) ([]domain.RawEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	archive, err := ReadFile(l.path)
	if err != nil {
		return nil, err
	}

	entries, err := RawEntries(archive, l.page, l.logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.path, err)
	}

	l.logger.Info("har archive loaded",
		"path", l.path,
		"page", l.page,
		"entries", len(entries),
		"total_entries", len(archive.Log.Entries),
	)
	return entries, nil
}

// ReadFile opens and decodes a HAR file.
func ReadFile(path string) (Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return Archive{}, fmt.Errorf("open har: %w", err)
	}
	defer f.Close()

	archive, err := Decode(f)
	if err != nil {
		return Archive{}, fmt.Errorf("%s: %w", path, err)
	}
	return archive, nil
}

// RawEntries converts archive entries to domain entries, optionally keeping
// only one page. Base64 bodies are decoded; a body that fails to decode is
// passed through unchanged and logged.
func RawEntries(archive Archive, page string, logger *slog.Logger) ([]domain.RawEntry, error) {
	if page != "" && !archive.HasPage(page) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPage, page)
	}

	entries := make([]domain.RawEntry, 0, len(archive.Log.Entries))
	for i, e := range archive.Log.Entries {
		if page != "" && e.PageRef != page {
			continue
		}

		body, err := decodeContent(e.Response.Content)
		if err != nil {
			logger.Warn("undecodable response body, keeping raw text",
				"index", i,
				"url", e.Request.URL,
				"encoding", e.Response.Content.Encoding,
				"error", err,
			)
			body = e.Response.Content.Text
		}

		entries = append(entries, domain.RawEntry{
			Index:    i,
			PageRef:  e.PageRef,
			Method:   e.Request.Method,
			URL:      e.Request.URL,
			Status:   e.Response.Status,
			MimeType: e.Response.Content.MimeType,
			Body:     body,
		})
	}
	return entries, nil
}

func decodeContent(c Content) (string, error) {
	if !strings.EqualFold(c.Encoding, "base64") {
		return c.Text, nil
	}
	data, err := base64.StdEncoding.DecodeString(c.Text)
	if err != nil {
		return "", fmt.Errorf("decode base64 body: %w", err)
	}
	return string(data), nil
}
