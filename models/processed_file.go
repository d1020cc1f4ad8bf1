package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ProcessedFile is one row of the processed-files ledger
type ProcessedFile struct {
	FileID      string    `json:"file_id" db:"file_id"`
	FileName    string    `json:"file_name" db:"file_name"`
	Code        ErrorCode `json:"code" db:"code"`
	RunID       uuid.UUID `json:"run_id" db:"run_id"`
	ProcessedAt time.Time `json:"processed_at" db:"processed_at"`
}

// TableName returns the table name for the ProcessedFile model
func (ProcessedFile) TableName() string {
	return "processed_files"
}

// OutboxMessage is a rendered email waiting for the mail relay
type OutboxMessage struct {
	ID        uuid.UUID        `json:"id" db:"id"`
	Kind      NotificationKind `json:"kind" db:"kind"`
	FileID    string           `json:"file_id" db:"file_id"`
	From      string           `json:"from" db:"sender"`
	To        []string         `json:"to" db:"recipients"`
	Subject   string           `json:"subject" db:"subject"`
	Body      string           `json:"body" db:"body"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
	SentAt    *time.Time       `json:"sent_at,omitempty" db:"sent_at"`
}

// TableName returns the table name for the OutboxMessage model
func (OutboxMessage) TableName() string {
	return "email_outbox"
}

// NewOutboxMessage creates an unsent message
func NewOutboxMessage(kind NotificationKind, fileID, from string, to []string, subject, body string) *OutboxMessage {
	return &OutboxMessage{
		ID:        uuid.New(),
		Kind:      kind,
		FileID:    fileID,
		From:      from,
		To:        to,
		Subject:   subject,
		Body:      body,
		CreatedAt: time.Now(),
	}
}

// RecipientList joins the recipients the way the relay expects them
func (m *OutboxMessage) RecipientList() string {
	return strings.Join(m.To, ",")
}
