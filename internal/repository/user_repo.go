package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"coachpath/internal/database"
	"coachpath/internal/models"

	"github.com/google/uuid"
)

// ErrDuplicateEmail is returned when an account with the same email already exists
var ErrDuplicateEmail = errors.New("email already registered")

// UserRepository handles database operations for users and sessions
type UserRepository struct {
	db *database.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, password_hash, name, oauth_provider, oauth_subject, reminders_enabled, created_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	var createdAt database.Timestamp
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.OAuthProvider,
		&user.OAuthSubject,
		&user.RemindersEnabled,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}
	user.CreatedAt = createdAt.OrZero()
	return user, nil
}

// CreateUser inserts a new password account
func (r *UserRepository) CreateUser(ctx context.Context, email, passwordHash, name string) (*models.User, error) {
	return r.insertUser(ctx, &models.User{
		ID:               uuid.New().String(),
		Email:            normalizeEmail(email),
		PasswordHash:     passwordHash,
		Name:             name,
		RemindersEnabled: true,
		CreatedAt:        time.Now().UTC(),
	})
}

// CreateOAuthUser inserts an account that signs in through an OAuth provider only
func (r *UserRepository) CreateOAuthUser(ctx context.Context, email, name, provider, subject string) (*models.User, error) {
	return r.insertUser(ctx, &models.User{
		ID:               uuid.New().String(),
		Email:            normalizeEmail(email),
		Name:             name,
		OAuthProvider:    provider,
		OAuthSubject:     subject,
		RemindersEnabled: true,
		CreatedAt:        time.Now().UTC(),
	})
}

// ImportUser inserts or replaces a user keeping its ID, used by backup restore
func (r *UserRepository) ImportUser(ctx context.Context, user *models.User) error {
	query := r.db.Dialect.UpsertQuery("users",
		[]string{"id", "email", "password_hash", "name", "oauth_provider", "oauth_subject", "reminders_enabled", "created_at"},
		[]string{"id"},
		[]string{"email", "password_hash", "name", "oauth_provider", "oauth_subject", "reminders_enabled", "created_at"},
	)
	_, err := r.db.ExecContext(ctx, query,
		user.ID, normalizeEmail(user.Email), user.PasswordHash, user.Name,
		user.OAuthProvider, user.OAuthSubject, user.RemindersEnabled, database.NewTimestamp(user.CreatedAt),
	)
	if err != nil {
		if r.db.Dialect.IsUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to import user: %w", err)
	}
	return nil
}

func (r *UserRepository) insertUser(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.Name,
		user.OAuthProvider, user.OAuthSubject, user.RemindersEnabled, database.NewTimestamp(user.CreatedAt),
	)
	if err != nil {
		if r.db.Dialect.IsUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email address
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, normalizeEmail(email)))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetUserByID retrieves a user by ID
func (r *UserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetUserByOAuth retrieves a user by OAuth provider and subject
func (r *UserRepository) GetUserByOAuth(ctx context.Context, provider, subject string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE oauth_provider = ? AND oauth_subject = ?`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, provider, subject))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by oauth: %w", err)
	}
	return user, nil
}

// LinkOAuthProvider links an existing user to an OAuth provider
func (r *UserRepository) LinkOAuthProvider(ctx context.Context, userID, provider, subject string) error {
	query := `
		UPDATE users
		SET oauth_provider = ?, oauth_subject = ?
		WHERE id = ? AND oauth_provider = ''
	`
	result, err := r.db.ExecContext(ctx, query, provider, subject, userID)
	if err != nil {
		return fmt.Errorf("failed to link oauth provider: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read link result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("oauth provider already linked")
	}
	return nil
}

// SetRemindersEnabled stores the reminder email preference of a user
func (r *UserRepository) SetRemindersEnabled(ctx context.Context, userID string, enabled bool) error {
	_, err := r.db.ExecContext(ctx, "UPDATE users SET reminders_enabled = ? WHERE id = ?", enabled, userID)
	if err != nil {
		return fmt.Errorf("failed to update reminder preference: %w", err)
	}
	return nil
}

// ListUsers retrieves all users, oldest first
func (r *UserRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}

// ListProfiles returns the profile projection of every user
func (r *UserRepository) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	users, err := r.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	profiles := make([]models.Profile, 0, len(users))
	for i := range users {
		profiles = append(profiles, users[i].Profile())
	}
	return profiles, nil
}

// CreateSession creates a new session for a user
func (r *UserRepository) CreateSession(ctx context.Context, sessionID, userID string, expiresAt time.Time) (*models.Session, error) {
	now := time.Now().UTC()
	query := `
		INSERT INTO sessions (id, user_id, expires_at, created_at)
		VALUES (?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query, sessionID, userID, database.NewTimestamp(expiresAt), database.NewTimestamp(now))
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &models.Session{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: expiresAt,
		CreatedAt: now,
	}, nil
}

// GetSession retrieves a session by ID
func (r *UserRepository) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	query := `
		SELECT id, user_id, expires_at, created_at
		FROM sessions
		WHERE id = ?
	`
	session := &models.Session{}
	var expiresAt, createdAt database.Timestamp
	err := r.db.QueryRowContext(ctx, query, sessionID).Scan(
		&session.ID,
		&session.UserID,
		&expiresAt,
		&createdAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	// an unreadable expiry is treated as already expired
	session.ExpiresAt = expiresAt.OrZero()
	session.CreatedAt = createdAt.OrZero()
	return session, nil
}

// DeleteSession removes a session from the database
func (r *UserRepository) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes all sessions that expired before now
func (r *UserRepository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at < ?", database.NewTimestamp(now))
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	n, _ := result.RowsAffected()
	return n, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
