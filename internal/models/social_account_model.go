package models

import "time"

// Platform identifiers. Persisted in the social_accounts and post_targets
// tables, so these values are part of the storage contract.
const (
	PlatformBluesky   = "bluesky"
	PlatformFacebook  = "facebook"
	PlatformInstagram = "instagram"
	PlatformLinkedIn  = "linkedin"
	PlatformPinterest = "pinterest"
	PlatformThreads   = "threads"
	PlatformTiktok    = "tiktok"
	PlatformX         = "x"
	PlatformYoutube   = "youtube"
)

const (
	AccountStatusActive      = "active"
	AccountStatusNeedsReauth = "needs_reauth"
)

// SocialAccount is the stored row. Tokens are AES-GCM encrypted at rest and
// only the repository ever decrypts them.
type SocialAccount struct {
	ID              int64     `db:"id" json:"id"`
	UserID          int64     `db:"user_id" json:"user_id"`
	Platform        string    `db:"platform" json:"platform"`
	AccountID       string    `db:"account_id" json:"account_id"`
	AccountName     string    `db:"account_name" json:"account_name"`
	AccountUsername string    `db:"account_username" json:"account_username"`
	PageID          string    `db:"page_id" json:"page_id"`
	AccessToken     string    `db:"access_token" json:"-"`
	RefreshToken    string    `db:"refresh_token" json:"-"`
	TokenExpiresAt  time.Time `db:"token_expires_at" json:"token_expires_at"`
	AccountStatus   string    `db:"account_status" json:"account_status"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// Account is the decrypted credential bundle handed to publishers. It never
// leaves the process and its tokens are never logged.
type Account struct {
	ID                      int64
	UserID                  int64
	Platform                string
	AccountID               string
	PageID                  string
	AccessToken             string
	RefreshToken            string
	TokenExpiresAt          time.Time
	MaxVideoPostDurationSec int32
	PrivacyLevelOptions     []string
}
