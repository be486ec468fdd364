package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/campushq/beacon/pkg/models"
)

// CreateSessionToken stores a bearer token for a user.
func (db *DB) CreateSessionToken(ctx context.Context, tok *models.SessionToken) error {
	if tok == nil {
		return fmt.Errorf("token payload is required")
	}

	row := db.writeDB.QueryRowContext(ctx,
		"INSERT INTO session_tokens (user_id, token) VALUES (?, ?) RETURNING id, created_at",
		int64(tok.UserID), tok.Token)

	var (
		id        int64
		createdAt time.Time
	)
	if err := row.Scan(&id, &createdAt); err != nil {
		if isUniqueConstraintError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create session token: %w", err)
	}

	tok.ID = id
	tok.CreatedAt = createdAt
	return nil
}

// GetUserBySessionToken resolves a bearer token to its user. Missing or
// revoked tokens surface as ErrNotFound.
func (db *DB) GetUserBySessionToken(ctx context.Context, token string) (*models.User, error) {
	row := db.readDB.QueryRowContext(ctx,
		selectUserBase+" WHERE id = (SELECT user_id FROM session_tokens WHERE token = ?)", token)
	return scanUserRow(row)
}

// TouchSessionToken records a use of the token. Best effort; a failed
// touch never fails the request.
func (db *DB) TouchSessionToken(ctx context.Context, token string) error {
	_, err := db.writeDB.ExecContext(ctx,
		"UPDATE session_tokens SET last_used_at = datetime('now') WHERE token = ?", token)
	if err != nil {
		return fmt.Errorf("failed to touch session token: %w", err)
	}
	return nil
}

// DeleteSessionToken revokes a bearer token.
func (db *DB) DeleteSessionToken(ctx context.Context, token string) error {
	res, err := db.writeDB.ExecContext(ctx,
		"DELETE FROM session_tokens WHERE token = ?", token)
	if err != nil {
		return fmt.Errorf("failed to delete session token: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

// ListSessionTokens returns token metadata for a user. Token values are
// not included.
func (db *DB) ListSessionTokens(ctx context.Context, userID models.UserID) ([]*models.SessionToken, error) {
	rows, err := db.readDB.QueryContext(ctx,
		"SELECT id, user_id, created_at, last_used_at FROM session_tokens WHERE user_id = ? ORDER BY created_at DESC",
		int64(userID))
	if err != nil {
		return nil, fmt.Errorf("failed to list session tokens: %w", err)
	}
	defer rows.Close()

	var tokens []*models.SessionToken
	for rows.Next() {
		var (
			id         int64
			uid        int64
			createdAt  time.Time
			lastUsedAt sql.NullTime
		)
		if err := rows.Scan(&id, &uid, &createdAt, &lastUsedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session token: %w", err)
		}
		tok := &models.SessionToken{
			ID:        id,
			UserID:    models.UserID(uid),
			CreatedAt: createdAt,
		}
		if lastUsedAt.Valid {
			t := lastUsedAt.Time
			tok.LastUsedAt = &t
		}
		tokens = append(tokens, tok)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating session tokens: %w", err)
	}
	return tokens, nil
}
