package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/upb/ciw-intake/models"
	"github.com/upb/ciw-intake/repositories"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// FileExtension is the suffix of worksheet interchange files in the inbox
const FileExtension = ".ciw"

// FileProcessor processes one file. *Pipeline implements it.
type FileProcessor interface {
	Process(ctx context.Context, runID uuid.UUID, file models.FileRef) (*Outcome, error)
}

// Summary reports what one batch run did
type Summary struct {
	RunID    uuid.UUID
	Counts   map[models.ErrorCode]int
	Skipped  int
	Duration time.Duration
}

// Total returns the number of files processed in the run
func (s *Summary) Total() int {
	n := 0
	for _, c := range s.Counts {
		n += c
	}
	return n
}

// Runner feeds every unprocessed file in the inbox through a FileProcessor
// with bounded concurrency.
type Runner struct {
	processor FileProcessor
	ledger    repositories.ProcessedFileRepository
	inboxDir  string
	workers   int
	logger    *zap.Logger
}

// NewRunner creates a new batch runner. workers below 1 is treated as 1.
func NewRunner(processor FileProcessor, ledger repositories.ProcessedFileRepository, inboxDir string, workers int, logger *zap.Logger) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		processor: processor,
		ledger:    ledger,
		inboxDir:  inboxDir,
		workers:   workers,
		logger:    logger,
	}
}

// Run processes the inbox once. Any error other than a gate outcome aborts
// the run; files already started are allowed to finish.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	summary := &Summary{
		RunID:  uuid.New(),
		Counts: make(map[models.ErrorCode]int),
	}

	files, err := Discover(r.inboxDir)
	if err != nil {
		return nil, err
	}

	r.logger.Info("starting batch run",
		zap.String("run_id", summary.RunID.String()),
		zap.String("inbox", r.inboxDir),
		zap.Int("files", len(files)),
		zap.Int("workers", r.workers))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for _, file := range files {
		if gctx.Err() != nil {
			break
		}
		file := file
		g.Go(func() error {
			done, err := r.ledger.IsProcessed(gctx, file.ID)
			if err != nil {
				return fmt.Errorf("failed to check ledger for %s: %w", file.ID, err)
			}
			if done {
				mu.Lock()
				summary.Skipped++
				mu.Unlock()
				return nil
			}

			out, err := r.processor.Process(gctx, summary.RunID, file)
			if err != nil {
				return err
			}

			mu.Lock()
			summary.Counts[out.Code]++
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		r.logger.Error("batch run aborted",
			zap.String("run_id", summary.RunID.String()),
			zap.Error(err))
		return summary, err
	}
	if err := ctx.Err(); err != nil {
		return summary, err
	}

	summary.Duration = time.Since(start)
	r.logger.Info("batch run finished",
		zap.String("run_id", summary.RunID.String()),
		zap.Int("processed", summary.Total()),
		zap.Int("skipped", summary.Skipped),
		zap.Duration("duration", summary.Duration))

	return summary, nil
}

// Discover lists worksheet files under dir in path order. A file inside a
// first-level subdirectory is attributed to the submitter that directory is
// named after; deeper files are ignored.
func Discover(dir string) ([]models.FileRef, error) {
	var files []models.FileRef

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		depth := len(strings.Split(filepath.ToSlash(rel), "/"))

		if d.IsDir() {
			if path != dir && depth > 1 {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), FileExtension) {
			return nil
		}

		ref := models.FileRef{
			ID:   filepath.ToSlash(rel),
			Name: d.Name(),
			Path: path,
		}
		if depth == 2 {
			ref.Submitter = filepath.Base(filepath.Dir(path))
		}
		files = append(files, ref)
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("inbox %s does not exist: %w", dir, err)
		}
		return nil, fmt.Errorf("failed to scan inbox %s: %w", dir, err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].ID < files[j].ID })
	return files, nil
}
