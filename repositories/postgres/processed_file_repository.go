package postgres

import (
	"context"
	"fmt"

	"github.com/upb/ciw-intake/models"
	"github.com/upb/ciw-intake/repositories"
	"go.uber.org/zap"
)

// ProcessedFileRepository implements the repositories.ProcessedFileRepository interface
type ProcessedFileRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewProcessedFileRepository creates a new processed-file ledger repository
func NewProcessedFileRepository(db *DB, logger *zap.Logger) repositories.ProcessedFileRepository {
	return &ProcessedFileRepository{
		db:     db,
		logger: logger,
	}
}

// MarkProcessed records the terminal code for a file. Reprocessing a file
// replaces its previous entry.
func (r *ProcessedFileRepository) MarkProcessed(ctx context.Context, f *models.ProcessedFile) error {
	query := `
		INSERT INTO processed_files (file_id, file_name, code, run_id, processed_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (file_id) DO UPDATE
		SET file_name = EXCLUDED.file_name,
		    code = EXCLUDED.code,
		    run_id = EXCLUDED.run_id,
		    processed_at = EXCLUDED.processed_at
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		f.FileID,
		f.FileName,
		int(f.Code),
		f.RunID,
		f.ProcessedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to mark file processed: %w", err)
	}

	r.logger.Debug("file marked processed", zap.String("file_id", f.FileID), zap.String("code", f.Code.String()))
	return nil
}

// IsProcessed reports whether the file already has a ledger entry
func (r *ProcessedFileRepository) IsProcessed(ctx context.Context, fileID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM processed_files WHERE file_id = $1)`

	executor := GetExecutor(ctx, r.db)
	var found bool
	if err := executor.QueryRowContext(ctx, query, fileID).Scan(&found); err != nil {
		return false, fmt.Errorf("failed to check processed file: %w", err)
	}
	return found, nil
}

// CountByCode summarizes the ledger entries written by one run
func (r *ProcessedFileRepository) CountByCode(ctx context.Context, runID string) (map[models.ErrorCode]int, error) {
	query := `
		SELECT code, COUNT(*)
		FROM processed_files
		WHERE run_id = $1
		GROUP BY code
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to count processed files: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.ErrorCode]int)
	for rows.Next() {
		var code, n int
		if err := rows.Scan(&code, &n); err != nil {
			return nil, fmt.Errorf("failed to scan processed file count: %w", err)
		}
		counts[models.ErrorCode(code)] = n
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating processed file counts: %w", err)
	}

	return counts, nil
}
