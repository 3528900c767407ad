package repository

import (
	"database/sql"
	"fmt"
	"time"

	"puzzlebox/internal/database"
	"puzzlebox/internal/models"
)

// UserRepository handles database operations for users and password reset tokens
type UserRepository struct {
	db *database.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = "id, email, password_hash, name, subscription_tier, COALESCE(oauth_provider, ''), COALESCE(oauth_subject, ''), is_admin, created_at, updated_at"

// CreateUser inserts a new user into the database. The first registered user
// becomes an admin; the count and insert run in one transaction so two
// concurrent first registrations cannot both claim admin.
// New accounts start on the free tier.
func (r *UserRepository) CreateUser(email, passwordHash, name string) (*models.User, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var userCount int
	if err := tx.QueryRow("SELECT COUNT(*) FROM users").Scan(&userCount); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	isAdmin := userCount == 0

	query := `
		INSERT INTO users (email, password_hash, name, subscription_tier, is_admin)
		VALUES (?, ?, ?, ?, ?)
	`
	id, err := tx.ExecReturningID(query, email, passwordHash, name, models.TierFree, isAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return r.GetUserByID(id)
}

func (r *UserRepository) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.SubscriptionTier,
		&user.OAuthProvider,
		&user.OAuthSubject,
		&user.IsAdmin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email address
func (r *UserRepository) GetUserByEmail(email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	return r.scanUser(r.db.QueryRow(query, email))
}

// GetUserByID retrieves a user by ID
func (r *UserRepository) GetUserByID(id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return r.scanUser(r.db.QueryRow(query, id))
}

// GetUserByOAuth retrieves a user by OAuth provider and subject
func (r *UserRepository) GetUserByOAuth(provider, subject string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE oauth_provider = ? AND oauth_subject = ?`
	return r.scanUser(r.db.QueryRow(query, provider, subject))
}

// LinkOAuthProvider attaches an OAuth identity to an existing user
func (r *UserRepository) LinkOAuthProvider(userID int64, provider, subject string) error {
	query := `UPDATE users SET oauth_provider = ?, oauth_subject = ?, updated_at = ? WHERE id = ?`
	if _, err := r.db.Exec(query, provider, subject, time.Now().UTC(), userID); err != nil {
		return fmt.Errorf("failed to link oauth provider: %w", err)
	}
	return nil
}

// UpdatePassword replaces a user's password hash
func (r *UserRepository) UpdatePassword(userID int64, passwordHash string) error {
	query := `UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`
	if _, err := r.db.Exec(query, passwordHash, time.Now().UTC(), userID); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// SetSubscriptionTier updates a user's subscription tier. The billing system
// that decides the tier lives outside this service; this is its write path.
func (r *UserRepository) SetSubscriptionTier(userID int64, tier string) error {
	query := `UPDATE users SET subscription_tier = ?, updated_at = ? WHERE id = ?`
	if _, err := r.db.Exec(query, tier, time.Now().UTC(), userID); err != nil {
		return fmt.Errorf("failed to set subscription tier: %w", err)
	}
	return nil
}

// CreatePasswordResetToken stores a new reset token for a user
func (r *UserRepository) CreatePasswordResetToken(token string, userID int64, expiresAt time.Time) error {
	query := `INSERT INTO password_reset_tokens (token, user_id, expires_at) VALUES (?, ?, ?)`
	if _, err := r.db.Exec(query, token, userID, expiresAt); err != nil {
		return fmt.Errorf("failed to create reset token: %w", err)
	}
	return nil
}

// GetPasswordResetToken retrieves a reset token, or nil if absent
func (r *UserRepository) GetPasswordResetToken(token string) (*models.PasswordResetToken, error) {
	query := `
		SELECT token, user_id, expires_at, created_at, used
		FROM password_reset_tokens
		WHERE token = ?
	`
	resetToken := &models.PasswordResetToken{}
	err := r.db.QueryRow(query, token).Scan(
		&resetToken.Token,
		&resetToken.UserID,
		&resetToken.ExpiresAt,
		&resetToken.CreatedAt,
		&resetToken.Used,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reset token: %w", err)
	}
	return resetToken, nil
}

// MarkPasswordResetTokenAsUsed marks a token so it cannot be replayed
func (r *UserRepository) MarkPasswordResetTokenAsUsed(token string) error {
	query := `UPDATE password_reset_tokens SET used = ? WHERE token = ?`
	if _, err := r.db.Exec(query, true, token); err != nil {
		return fmt.Errorf("failed to mark reset token: %w", err)
	}
	return nil
}

// DeleteUserPasswordResetTokens removes all reset tokens belonging to a user
func (r *UserRepository) DeleteUserPasswordResetTokens(userID int64) error {
	query := `DELETE FROM password_reset_tokens WHERE user_id = ?`
	if _, err := r.db.Exec(query, userID); err != nil {
		return fmt.Errorf("failed to delete reset tokens: %w", err)
	}
	return nil
}

// DeleteExpiredPasswordResetTokens removes all expired reset tokens
func (r *UserRepository) DeleteExpiredPasswordResetTokens() error {
	query := `DELETE FROM password_reset_tokens WHERE expires_at < ?`
	if _, err := r.db.Exec(query, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to delete expired reset tokens: %w", err)
	}
	return nil
}
