// Package audit records every handled chat turn for later review.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Turn is one handled chat message.
type Turn struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	Intent      string    `json:"intent"`
	OK          bool      `json:"ok"`
	Missing     []string  `json:"missing,omitempty"`
	RecordID    int64     `json:"record_id,omitempty"` // booking or customer id, 0 when none
	UserMessage string    `json:"user_message"`
	Reply       string    `json:"reply"`
	CreatedAt   time.Time `json:"created_at"`
}

// TurnLog writes turns to the chat_turns table.
type TurnLog struct {
	db *sql.DB
}

// NewTurnLog creates a turn log on db.
func NewTurnLog(db *sql.DB) *TurnLog {
	if db == nil {
		panic("audit: db required")
	}
	return &TurnLog{db: db}
}

// RecordTurn inserts one turn, filling ID and CreatedAt when empty.
func (l *TurnLog) RecordTurn(ctx context.Context, t Turn) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	if t.Missing == nil {
		t.Missing = []string{}
	}

	query := `
		INSERT INTO chat_turns (
			id, session_id, intent, ok, missing_fields,
			record_id, user_message, reply, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := l.db.ExecContext(ctx, query,
		t.ID,
		t.SessionID,
		t.Intent,
		t.OK,
		pq.Array(t.Missing),
		nullInt64(t.RecordID),
		t.UserMessage,
		t.Reply,
		t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("audit: failed to record turn: %w", err)
	}
	return nil
}

// Filter selects turns for Query.
type Filter struct {
	SessionID string
	Intent    string
	Limit     int
}

// Query returns turns newest first.
func (l *TurnLog) Query(ctx context.Context, f Filter) ([]Turn, error) {
	query := `
		SELECT id, session_id, intent, ok, missing_fields,
			   record_id, user_message, reply, created_at
		FROM chat_turns
		WHERE 1 = 1
	`
	var args []any
	if f.SessionID != "" {
		args = append(args, f.SessionID)
		query += fmt.Sprintf(" AND session_id = $%d", len(args))
	}
	if f.Intent != "" {
		args = append(args, f.Intent)
		query += fmt.Sprintf(" AND intent = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("audit: failed to query turns: %w", err)
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var t Turn
		var recordID sql.NullInt64
		if err := rows.Scan(
			&t.ID, &t.SessionID, &t.Intent, &t.OK, pq.Array(&t.Missing),
			&recordID, &t.UserMessage, &t.Reply, &t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("audit: failed to scan turn: %w", err)
		}
		t.RecordID = recordID.Int64
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("audit: failed to read turns: %w", err)
	}
	return turns, nil
}

func nullInt64(v int64) sql.NullInt64 {
	if v == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: v, Valid: true}
}
