package postgres

import (
	"context"
	"fmt"

	"github.com/lib/pq"
	"github.com/upb/ciw-intake/models"
	"github.com/upb/ciw-intake/repositories"
	"go.uber.org/zap"
)

// OutboxRepository implements the repositories.OutboxRepository interface
type OutboxRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewOutboxRepository creates a new email outbox repository
func NewOutboxRepository(db *DB, logger *zap.Logger) repositories.OutboxRepository {
	return &OutboxRepository{
		db:     db,
		logger: logger,
	}
}

// Enqueue stores a rendered message for the mail relay
func (r *OutboxRepository) Enqueue(ctx context.Context, msg *models.OutboxMessage) error {
	query := `
		INSERT INTO email_outbox (id, kind, file_id, sender, recipients, subject, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		msg.ID,
		string(msg.Kind),
		msg.FileID,
		msg.From,
		pq.Array(msg.To),
		msg.Subject,
		msg.Body,
		msg.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to enqueue email: %w", err)
	}

	r.logger.Debug("email enqueued", zap.String("id", msg.ID.String()), zap.String("kind", string(msg.Kind)))
	return nil
}
