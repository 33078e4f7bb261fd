package models

import (
	"strings"
	"time"
)

type Post struct {
	ID            int64     `db:"id" json:"id"`
	UserID        int64     `db:"user_id" json:"user_id"`
	Caption       string    `db:"caption" json:"caption"`
	Title         string    `db:"title" json:"title"`
	CoverURL      string    `db:"cover_url" json:"cover_url"`
	ScheduledTime time.Time `db:"scheduled_time" json:"scheduled_time"`
	Status        string    `db:"status" json:"status"` // posted, scheduled, failed, draft
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// PostTarget is one (platform, social account) binding of a post. It is
// treated as immutable for the duration of a publish attempt.
type PostTarget struct {
	PostID          int64           `db:"post_id" json:"post_id"`
	SocialAccountID int64           `db:"social_account_id" json:"social_account_id"`
	Platform        string          `db:"platform" json:"platform"`
	Text            string          `db:"text" json:"text"`
	Title           string          `db:"title" json:"title"`
	Tags            []string        `db:"tags" json:"tags"`
	LinkURLs        []string        `db:"link_urls" json:"link_urls"`
	Options         PlatformOptions `db:"options" json:"options"`
	Status          string          `db:"status" json:"status"`
	FailureReason   string          `db:"failure_reason" json:"failure_reason"`
}

// PlatformOptions carries the platform-specific knobs a target may set.
// Fields for other platforms are left zero.
type PlatformOptions struct {
	PinterestBoardID    string `json:"pinterest_board_id,omitempty"`
	InstagramLocationID string `json:"instagram_location_id,omitempty"`
	FacebookPageID      string `json:"facebook_page_id,omitempty"`
	TiktokPrivacyLevel  string `json:"tiktok_privacy_level,omitempty"`
	ThreadsReplyToID    string `json:"threads_reply_to_id,omitempty"`
}

// MediaAsset is one ordered media entry of a post, fetched fresh per attempt.
type MediaAsset struct {
	URL      string `db:"file_url" json:"url"`
	MimeType string `db:"file_type" json:"mime_type"`
}

func (m MediaAsset) IsImage() bool {
	return strings.HasPrefix(m.MimeType, "image/")
}

func (m MediaAsset) IsVideo() bool {
	return strings.HasPrefix(m.MimeType, "video/")
}

// CountMedia returns how many of the assets are images and how many videos.
func CountMedia(assets []MediaAsset) (images, videos int) {
	for _, a := range assets {
		switch {
		case a.IsImage():
			images++
		case a.IsVideo():
			videos++
		}
	}
	return images, videos
}

type PostingHistory struct {
	ID           int64     `db:"id"`
	UserID       int64     `db:"user_id"`
	PostID       int64     `db:"post_id"`
	AccountID    int64     `db:"account_id"`
	ErrorMessage string    `db:"error_message"`
	CreatedAt    time.Time `db:"created_at"`
}

const (
	PostStatusScheduled = "scheduled"
	PostStatusPosted    = "posted"
	PostStatusFailed    = "failed"
	PostStatusDraft     = "draft"
)

const (
	TargetStatusDone   = "done"
	TargetStatusFailed = "failed"
)
