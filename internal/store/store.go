// Package store provides persistence for completed interview reports.
package store

import (
	"context"

	"github.com/mkravets/excel-interviewer/internal/domain"
)

// Repository defines the interface for the interview archive. Live
// sessions are never persisted; only finished interviews land here.
type Repository interface {
	// SaveInterview archives a completed interview.
	SaveInterview(ctx context.Context, rec *domain.InterviewRecord) error

	// GetInterview retrieves an archived interview by session ID.
	// Returns nil without error when no record exists.
	GetInterview(ctx context.Context, sessionID string) (*domain.InterviewRecord, error)

	// ListRecent returns the most recently completed interviews, newest
	// first, up to limit.
	ListRecent(ctx context.Context, limit int) ([]*domain.InterviewRecord, error)

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
