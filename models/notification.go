package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationKind selects the message template sent for a processed file
type NotificationKind string

const (
	NotificationWrongVersion         NotificationKind = "wrong_version"
	NotificationPasswordProtected    NotificationKind = "password_protected"
	NotificationDuplicateUser        NotificationKind = "duplicate_user"
	NotificationARRA                 NotificationKind = "arra"
	NotificationValidationErrors     NotificationKind = "validation_errors"
	NotificationSponsorshipInitiated NotificationKind = "sponsorship_initiated"
	NotificationProcessingError      NotificationKind = "processing_error"
)

// Notification carries everything a template needs to describe the outcome
// of one file. Record and Validation are nil when processing stopped before
// they were produced.
type Notification struct {
	ID         uuid.UUID         `json:"id"`
	Kind       NotificationKind  `json:"kind"`
	FileID     string            `json:"file_id"`
	FileName   string            `json:"file_name"`
	Submitter  string            `json:"submitter"`
	Record     *Record           `json:"-"`
	Validation *ValidationResult `json:"validation,omitempty"`
	PersonID   int64             `json:"person_id,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

// NewNotification creates a Notification for the given file
func NewNotification(kind NotificationKind, file FileRef) *Notification {
	return &Notification{
		ID:        uuid.New(),
		Kind:      kind,
		FileID:    file.ID,
		FileName:  file.Name,
		Submitter: file.Submitter,
		CreatedAt: time.Now(),
	}
}

// WithRecord attaches the extracted record
func (n *Notification) WithRecord(r *Record) *Notification {
	n.Record = r
	return n
}

// WithValidation attaches the per-section validation result
func (n *Notification) WithValidation(v ValidationResult) *Notification {
	n.Validation = &v
	return n
}

// WithPersonID sets the persisted principal ID
func (n *Notification) WithPersonID(id int64) *Notification {
	n.PersonID = id
	return n
}

// NotificationKindFor maps a terminal code to the notification sent for it
func NotificationKindFor(code ErrorCode) NotificationKind {
	switch code {
	case ErrorCodeSuccess:
		return NotificationSponsorshipInitiated
	case ErrorCodePasswordProtected:
		return NotificationPasswordProtected
	case ErrorCodeWrongVersion:
		return NotificationWrongVersion
	case ErrorCodeARRA:
		return NotificationARRA
	case ErrorCodeDuplicateUser:
		return NotificationDuplicateUser
	case ErrorCodeFailedValidation:
		return NotificationValidationErrors
	default:
		return NotificationProcessingError
	}
}

// FileRef identifies one inbound worksheet file
type FileRef struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Path      string `json:"path"`
	Submitter string `json:"submitter"`
}
