package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/suh004757/AI-Invoice-Generator/internal/document"
	"github.com/suh004757/AI-Invoice-Generator/internal/repository"
)

// Allowed extensions for discovery (lowercase, without '.').
var defaultExts = map[string]struct{}{
	"txt": {},
	"md":  {},
}

// Ingestor reads purchase-order text files from the local filesystem and
// registers them in the store. Files are deduplicated by content hash, so a
// re-run over the same inbox is idempotent.
type Ingestor struct {
	store  repository.Store
	exts   map[string]struct{}
	logger *slog.Logger
}

func NewIngestor(store repository.Store, logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{store: store, exts: defaultExts, logger: logger}
}

// IngestPath reads, cleans and stores one document. A document whose content
// hash is already known comes back with Deduplicated set and the existing id.
func (i *Ingestor) IngestPath(ctx context.Context, path string) (IngestionResult, error) {
	var out IngestionResult

	abs, err := filepath.Abs(path)
	if err != nil {
		return out, fmt.Errorf("resolve path: %w", err)
	}
	out.SourcePath = abs

	ext := normalizeExt(filepath.Ext(abs))
	if _, ok := i.exts[ext]; !ok {
		return out, fmt.Errorf("unsupported or missing extension: %q", ext)
	}

	raw, err := os.ReadFile(abs)
	if err != nil {
		return out, fmt.Errorf("read document: %w", err)
	}
	sum := sha256.Sum256(raw)
	out.HashHex = hex.EncodeToString(sum[:])

	existing, err := i.store.GetPurchaseOrderByHash(ctx, out.HashHex)
	if err != nil {
		return out, err
	}
	if existing != nil {
		out.POID = existing.ID
		out.Deduplicated = true
		i.logger.Info("ingest.dedup", "path", abs, "po_id", existing.ID)
		return out, nil
	}

	text, err := document.LoadTextFile(abs)
	if err != nil {
		return out, err
	}
	out.Language = document.DetectLanguage(text)

	po := &repository.PurchaseOrder{
		OriginalFilename: filepath.Base(abs),
		FilePath:         abs,
		FileType:         ext,
		ExtractedText:    text,
		ContentHash:      out.HashHex,
	}
	poID, err := i.store.AddPurchaseOrder(ctx, po)
	if err != nil {
		return out, err
	}
	out.POID = poID

	i.logger.Info("ingest.ok", "path", abs, "po_id", poID, "language", out.Language, "bytes", len(raw))
	return out, nil
}

// IngestDirectory walks root, skips hidden entries when asked, and ingests
// every matching file. Per-file failures land in the results and the walk
// continues.
func (i *Ingestor) IngestDirectory(ctx context.Context, root string, skipHidden bool) ([]IngestionResult, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root path is required")
	}

	var results []IngestionResult
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		stats.Scanned++
		if walkErr != nil {
			results = append(results, IngestionResult{SourcePath: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if skipHidden && isHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := i.exts[normalizeExt(filepath.Ext(path))]; !ok {
			return nil
		}
		stats.Matched++

		r, err := i.IngestPath(ctx, path)
		if err != nil {
			r.Err = err.Error()
			results = append(results, r)
			stats.Failed++
			return nil
		}
		results = append(results, r)
		stats.Succeeded++
		if r.Deduplicated {
			stats.Deduplicated++
		}
		return nil
	})
	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}
	return results, stats, nil
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
