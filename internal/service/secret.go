// Package service implements the secret lifecycle: creation, gated
// retrieval, listing, deletion, and the expiry sweep. Persistence is
// delegated to a SecretRepository.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/mkravets/secretdrop/internal/crypto"
	"github.com/mkravets/secretdrop/internal/models"
)

const (
	// MaxTextLength bounds the secret text in characters.
	MaxTextLength = 10000
	// MaxExpirySeconds caps the requested lifetime at 30 days.
	MaxExpirySeconds = 30 * 24 * 60 * 60
)

// SecretRepository defines the persistence operations required by the
// SecretService.
type SecretRepository interface {
	// Create inserts a new secret record.
	Create(ctx context.Context, s *models.Secret) error
	// GetByID fetches a secret by id, returning sql.ErrNoRows when absent.
	GetByID(ctx context.Context, id string) (*models.Secret, error)
	// ListByOwner fetches the owner's secrets, newest first, optionally
	// filtered to ids containing search.
	ListByOwner(ctx context.Context, ownerID, search string) ([]models.Secret, error)
	// MarkViewed conditionally flips viewed and reports whether this call
	// performed the flip.
	MarkViewed(ctx context.Context, id string) (bool, error)
	// Delete removes a record by id regardless of ownership.
	Delete(ctx context.Context, id string) error
	// DeleteOwned removes a record when ownerID matches, reporting whether
	// a row was deleted.
	DeleteOwned(ctx context.Context, id, ownerID string) (bool, error)
	// DeleteExpired bulk-deletes records expired before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// CreateParams carries the input of a create call. OwnerID is resolved by
// the boundary: the authenticated caller if present, else an explicit
// anonymous-owner hint, else empty.
type CreateParams struct {
	Text      string
	OneTime   bool
	ExpiresIn int64 // seconds
	Password  string
	OwnerID   string
}

// CreateResult is the only data a create call echoes back.
type CreateResult struct {
	ID        string    `json:"id"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SecretService orchestrates the secret lifecycle.
type SecretService struct {
	repo   SecretRepository
	cipher *crypto.Cipher
	now    func() time.Time
}

// NewSecretService constructs a SecretService over the given repository
// and cipher.
func NewSecretService(repo SecretRepository, cipher *crypto.Cipher) *SecretService {
	return &SecretService{repo: repo, cipher: cipher, now: time.Now}
}

// Create validates, encrypts, and persists a new secret, returning only
// its id and expiry. The plaintext is never echoed back.
func (s *SecretService) Create(ctx context.Context, p CreateParams) (*CreateResult, error) {
	if p.Text == "" || utf8.RuneCountInString(p.Text) > MaxTextLength {
		return nil, fmt.Errorf("%w: text must be between 1 and %d characters", ErrValidation, MaxTextLength)
	}
	if p.ExpiresIn < 1 || p.ExpiresIn > MaxExpirySeconds {
		return nil, fmt.Errorf("%w: expiry must be between 1 second and 30 days", ErrValidation)
	}

	blob, err := s.cipher.Encrypt(p.Text)
	if err != nil {
		return nil, fmt.Errorf("encrypt secret: %w", err)
	}

	var passwordHash string
	if p.Password != "" {
		passwordHash, err = crypto.HashPassword(p.Password)
		if err != nil {
			return nil, err
		}
	}

	now := s.now()
	secret := &models.Secret{
		ID:           uuid.NewString(),
		Ciphertext:   blob,
		PasswordHash: passwordHash,
		OneTime:      p.OneTime,
		ExpiresAt:    now.Add(time.Duration(p.ExpiresIn) * time.Second),
		CreatedAt:    now,
		OwnerID:      p.OwnerID,
	}
	if err := s.repo.Create(ctx, secret); err != nil {
		return nil, err
	}

	return &CreateResult{ID: secret.ID, ExpiresAt: secret.ExpiresAt}, nil
}

// Reveal runs the gated read of a secret. Gates are checked strictly in
// order: existence, expiry, consumption, password-required,
// password-verify. Failing an earlier gate short-circuits the later ones,
// so an expired one-time secret reports ErrExpired, not ErrConsumed.
func (s *SecretService) Reveal(ctx context.Context, id, password string) (*models.RevealResult, error) {
	secret, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load secret: %w", err)
	}

	// Expired records are removed lazily on first access; afterwards the
	// id is indistinguishable from one that never existed.
	if secret.ExpiresAt.Before(s.now()) {
		if err := s.repo.Delete(ctx, id); err != nil {
			return nil, fmt.Errorf("delete expired secret: %w", err)
		}
		return nil, ErrExpired
	}

	if secret.OneTime && secret.Viewed {
		return nil, ErrConsumed
	}

	if secret.PasswordHash != "" {
		if password == "" {
			// Not an error: the caller is told to retry with a password.
			return &models.RevealResult{
				ID:               secret.ID,
				ExpiresAt:        secret.ExpiresAt,
				RequiresPassword: true,
			}, nil
		}
		if !crypto.VerifyPassword(password, secret.PasswordHash) {
			return nil, ErrWrongPassword
		}
	}

	viewed := secret.Viewed
	if secret.OneTime {
		won, err := s.repo.MarkViewed(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("mark viewed: %w", err)
		}
		if !won {
			// A concurrent reveal flipped the flag first.
			return nil, ErrConsumed
		}
		viewed = true
	}

	text, err := s.cipher.Decrypt(secret.Ciphertext)
	if err != nil {
		// Every gate passed, so a broken blob is data corruption.
		return nil, fmt.Errorf("decrypt secret %s: %w", id, err)
	}

	return &models.RevealResult{
		ID:        secret.ID,
		Text:      text,
		ExpiresAt: secret.ExpiresAt,
		OneTime:   secret.OneTime,
		Viewed:    viewed,
	}, nil
}

// List returns the owner's secrets as metadata summaries, newest first,
// optionally filtered to ids containing search.
func (s *SecretService) List(ctx context.Context, ownerID, search string) ([]models.SecretSummary, error) {
	if ownerID == "" {
		return nil, ErrUnauthorized
	}

	secrets, err := s.repo.ListByOwner(ctx, ownerID, search)
	if err != nil {
		return nil, err
	}

	now := s.now()
	summaries := make([]models.SecretSummary, 0, len(secrets))
	for _, sec := range secrets {
		status := models.StatusActive
		switch {
		case sec.ExpiresAt.Before(now):
			status = models.StatusExpired
		case sec.Viewed && sec.OneTime:
			status = models.StatusViewed
		}
		summaries = append(summaries, models.SecretSummary{
			ID:          sec.ID,
			CreatedAt:   sec.CreatedAt,
			ExpiresAt:   sec.ExpiresAt,
			OneTime:     sec.OneTime,
			Viewed:      sec.Viewed,
			HasPassword: sec.PasswordHash != "",
			Status:      status,
		})
	}
	return summaries, nil
}

// Delete removes one of the caller's secrets. A record that is absent or
// owned by someone else yields the same ErrForbidden.
func (s *SecretService) Delete(ctx context.Context, id, ownerID string) error {
	if ownerID == "" {
		return ErrUnauthorized
	}
	deleted, err := s.repo.DeleteOwned(ctx, id, ownerID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrForbidden
	}
	return nil
}

// Sweep bulk-deletes all expired secrets and returns the count removed.
// Idempotent: a second run with nothing newly expired removes zero.
func (s *SecretService) Sweep(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx, s.now())
}
