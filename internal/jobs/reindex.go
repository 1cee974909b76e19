package jobs

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/behzad94/showcase-1/internal/domain"
	"github.com/behzad94/showcase-1/internal/service"
)

// DocumentLoader reads documents from a corpus directory.
type DocumentLoader interface {
	LoadDir(dir string) ([]domain.Document, error)
}

// IndexRebuilder regenerates the index from documents.
type IndexRebuilder interface {
	RebuildIndex(ctx context.Context, docs []domain.Document) (*service.BuildReport, error)
}

// CorpusWatcher rebuilds the index when any corpus file is newer than the
// persisted manifest. Used by the poll worker so a running daemon picks up
// document changes without manual rebuilds.
type CorpusWatcher struct {
	corpusDir    string
	manifestPath string
	loader       DocumentLoader
	rebuilder    IndexRebuilder
}

// NewCorpusWatcher creates a new CorpusWatcher instance
func NewCorpusWatcher(corpusDir, manifestPath string, loader DocumentLoader, rebuilder IndexRebuilder) *CorpusWatcher {
	return &CorpusWatcher{
		corpusDir:    corpusDir,
		manifestPath: manifestPath,
		loader:       loader,
		rebuilder:    rebuilder,
	}
}

// Sync rebuilds the index if the corpus changed since the last build.
func (w *CorpusWatcher) Sync(ctx context.Context) error {
	stale, err := w.corpusChanged()
	if err != nil {
		return err
	}
	if !stale {
		return nil
	}

	docs, err := w.loader.LoadDir(w.corpusDir)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return nil
	}

	report, err := w.rebuilder.RebuildIndex(ctx, docs)
	if err != nil {
		return err
	}
	log.Printf("corpus changed, index rebuilt: %d chunks in %v", report.ChunkCount, report.Duration)
	return nil
}

func (w *CorpusWatcher) corpusChanged() (bool, error) {
	entries, err := os.ReadDir(w.corpusDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}

	var latest time.Time
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".txt" && ext != ".md" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latest) {
			latest = info.ModTime()
		}
	}
	if latest.IsZero() {
		return false, nil
	}

	manInfo, err := os.Stat(w.manifestPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// No index yet; any corpus content means a build is due.
			return true, nil
		}
		return false, err
	}
	return latest.After(manInfo.ModTime()), nil
}
