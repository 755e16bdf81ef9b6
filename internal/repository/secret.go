// Package repository provides PostgreSQL persistence for secret records.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mkravets/secretdrop/internal/models"
)

// PostgresSecretRepository implements secret persistence against a
// PostgreSQL database.
type PostgresSecretRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresSecretRepository creates a repository using the provided
// database connection. db must be a valid *sql.DB connected to a
// PostgreSQL instance.
func NewPostgresSecretRepository(db *sql.DB) *PostgresSecretRepository {
	return &PostgresSecretRepository{DB: db}
}

// Create inserts a new secret record. Empty PasswordHash and OwnerID are
// stored as NULL.
func (r *PostgresSecretRepository) Create(ctx context.Context, s *models.Secret) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO secrets (id, ciphertext, password_hash, one_time, viewed, expires_at, created_at, owner_id)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, NULLIF($8, ''))
	`, s.ID, s.Ciphertext, s.PasswordHash, s.OneTime, s.Viewed, s.ExpiresAt, s.CreatedAt, s.OwnerID)
	if err != nil {
		return fmt.Errorf("insert secret: %w", err)
	}
	return nil
}

// GetByID fetches a single secret by its public id. sql.ErrNoRows passes
// through unchanged so callers can distinguish absence from failure.
func (r *PostgresSecretRepository) GetByID(ctx context.Context, id string) (*models.Secret, error) {
	var (
		s     models.Secret
		hash  sql.NullString
		owner sql.NullString
	)
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, ciphertext, password_hash, one_time, viewed, expires_at, created_at, owner_id
		  FROM secrets WHERE id = $1
	`, id).Scan(&s.ID, &s.Ciphertext, &hash, &s.OneTime, &s.Viewed, &s.ExpiresAt, &s.CreatedAt, &owner)
	if err != nil {
		return nil, err
	}
	s.PasswordHash = hash.String
	s.OwnerID = owner.String
	return &s, nil
}

// ListByOwner fetches all secrets owned by ownerID, newest first. A
// non-empty search narrows the result to ids containing it as a
// substring. Ciphertext is deliberately not selected.
func (r *PostgresSecretRepository) ListByOwner(ctx context.Context, ownerID, search string) ([]models.Secret, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, password_hash, one_time, viewed, expires_at, created_at
		  FROM secrets
		 WHERE owner_id = $1 AND ($2 = '' OR id LIKE '%' || $2 || '%')
		 ORDER BY created_at DESC
	`, ownerID, search)
	if err != nil {
		return nil, fmt.Errorf("list secrets: %w", err)
	}
	defer rows.Close()

	var secrets []models.Secret
	for rows.Next() {
		var (
			s    models.Secret
			hash sql.NullString
		)
		if err := rows.Scan(&s.ID, &hash, &s.OneTime, &s.Viewed, &s.ExpiresAt, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		s.PasswordHash = hash.String
		s.OwnerID = ownerID
		secrets = append(secrets, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list secrets: %w", err)
	}
	return secrets, nil
}

// MarkViewed flips viewed to true for id and reports whether this call won
// the flip. The condition on viewed serializes concurrent reveals of a
// one-time secret: only one caller sees an affected row.
func (r *PostgresSecretRepository) MarkViewed(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE secrets SET viewed = TRUE WHERE id = $1 AND viewed = FALSE
	`, id)
	if err != nil {
		return false, fmt.Errorf("mark viewed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark viewed: %w", err)
	}
	return n > 0, nil
}

// Delete removes a record by id regardless of ownership. Used for lazy
// cleanup of expired records on access.
func (r *PostgresSecretRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM secrets WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete secret: %w", err)
	}
	return nil
}

// DeleteOwned removes a record only when ownerID matches, reporting
// whether a row was deleted. A miss does not distinguish "absent" from
// "owned by someone else".
func (r *PostgresSecretRepository) DeleteOwned(ctx context.Context, id, ownerID string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM secrets WHERE id = $1 AND owner_id = $2
	`, id, ownerID)
	if err != nil {
		return false, fmt.Errorf("delete secret: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete secret: %w", err)
	}
	return n > 0, nil
}

// DeleteExpired bulk-deletes every record whose expiry predates now and
// returns the number of rows removed.
func (r *PostgresSecretRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM secrets WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired secrets: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired secrets: %w", err)
	}
	return n, nil
}
