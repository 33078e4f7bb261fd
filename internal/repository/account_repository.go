package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/crosspost-app/crosspost/internal/models"
	"github.com/crosspost-app/crosspost/pkg/utils"
)

var ErrAccountNotFound = errors.New("social account not found")

type AccountRepository interface {
	// GetByUserIDAndSocialAccountID returns the decrypted credential bundle.
	// Tokens leave this method in cleartext and must never be persisted or
	// logged by callers.
	GetByUserIDAndSocialAccountID(ctx context.Context, userID, socialAccountID int64) (*models.Account, error)
	ListExpiring(ctx context.Context, within time.Duration) ([]*models.SocialAccount, error)
	SetToken(ctx context.Context, accountID int64, encryptedAccess, encryptedRefresh string, expiresAt time.Time) error
	MarkNeedsReauth(ctx context.Context, accountID int64) error
}

type accountRepository struct {
	db        *sql.DB
	secretKey []byte
}

func NewAccountRepository(db *sql.DB, secretKey []byte) AccountRepository {
	return &accountRepository{db: db, secretKey: secretKey}
}

func (r *accountRepository) GetByUserIDAndSocialAccountID(ctx context.Context, userID, socialAccountID int64) (*models.Account, error) {
	query := `
		SELECT id, user_id, platform, account_id, page_id, access_token, refresh_token,
		       token_expires_at, max_video_post_duration_sec, privacy_level_options
		FROM social_accounts
		WHERE id = $1 AND user_id = $2
	`
	row := r.db.QueryRowContext(ctx, query, socialAccountID, userID)

	var (
		acc              models.Account
		encryptedAccess  string
		encryptedRefresh sql.NullString
		maxDuration      sql.NullInt32
		privacyOptions   pq.StringArray
	)
	err := row.Scan(&acc.ID, &acc.UserID, &acc.Platform, &acc.AccountID, &acc.PageID,
		&encryptedAccess, &encryptedRefresh, &acc.TokenExpiresAt, &maxDuration, &privacyOptions)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrAccountNotFound
		}
		slog.Info(err.Error())
		return nil, err
	}

	acc.AccessToken, err = utils.Decrypt(encryptedAccess, r.secretKey)
	if err != nil {
		slog.Info("failed to decrypt access token", "account_id", acc.ID)
		return nil, err
	}
	if encryptedRefresh.Valid && encryptedRefresh.String != "" {
		acc.RefreshToken, err = utils.Decrypt(encryptedRefresh.String, r.secretKey)
		if err != nil {
			slog.Info("failed to decrypt refresh token", "account_id", acc.ID)
			return nil, err
		}
	}
	if maxDuration.Valid {
		acc.MaxVideoPostDurationSec = maxDuration.Int32
	}
	acc.PrivacyLevelOptions = []string(privacyOptions)

	return &acc, nil
}

func (r *accountRepository) ListExpiring(ctx context.Context, within time.Duration) ([]*models.SocialAccount, error) {
	query := `
		SELECT id, user_id, platform, account_id, access_token, refresh_token, token_expires_at
		FROM social_accounts
		WHERE token_expires_at BETWEEN $1 AND $2 AND account_status = $3
	`
	now := time.Now()
	rows, err := r.db.QueryContext(ctx, query, now, now.Add(within), models.AccountStatusActive)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.SocialAccount
	for rows.Next() {
		var sa models.SocialAccount
		err := rows.Scan(&sa.ID, &sa.UserID, &sa.Platform, &sa.AccountID,
			&sa.AccessToken, &sa.RefreshToken, &sa.TokenExpiresAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		accounts = append(accounts, &sa)
	}
	return accounts, rows.Err()
}

func (r *accountRepository) SetToken(ctx context.Context, accountID int64, encryptedAccess, encryptedRefresh string, expiresAt time.Time) error {
	// An empty refresh token keeps the stored one; not every platform
	// rotates refresh tokens on renewal.
	query := `
		UPDATE social_accounts
		SET access_token = $1,
		    refresh_token = COALESCE(NULLIF($2, ''), refresh_token),
		    token_expires_at = $3,
		    updated_at = NOW()
		WHERE id = $4
	`
	_, err := r.db.ExecContext(ctx, query, encryptedAccess, encryptedRefresh, expiresAt, accountID)
	if err != nil {
		slog.Info(err.Error())
	}
	return err
}

func (r *accountRepository) MarkNeedsReauth(ctx context.Context, accountID int64) error {
	query := `UPDATE social_accounts SET account_status = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, models.AccountStatusNeedsReauth, accountID)
	if err != nil {
		slog.Info(err.Error())
	}
	return err
}
