package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"

	"github.com/lib/pq"

	"github.com/crosspost-app/crosspost/internal/models"
)

type PostsRepository interface {
	GetPostDetails(ctx context.Context, postID, userID int64) (*models.Post, error)
	GetPostMediaAssets(ctx context.Context, postID int64) ([]models.MediaAsset, error)
	// GetPostMediaAsset returns the first media asset of a post, or nil when
	// the post has none. Used by single-asset platforms.
	GetPostMediaAsset(ctx context.Context, postID int64) (*models.MediaAsset, error)
	GetPostTargets(ctx context.Context, postID int64) ([]*models.PostTarget, error)
	UpdatePostTarget(ctx context.Context, userID, postID, socialAccountID int64, status, failureReason string) error
	CreatePostingHistory(ctx context.Context, h *models.PostingHistory) (int64, error)
}

type postsRepository struct {
	db *sql.DB
}

func NewPostsRepository(db *sql.DB) PostsRepository {
	return &postsRepository{db: db}
}

func (r *postsRepository) GetPostDetails(ctx context.Context, postID, userID int64) (*models.Post, error) {
	query := `
		SELECT id, user_id, caption, title, cover_url, scheduled_time, status, created_at, updated_at
		FROM posts
		WHERE id = $1 AND user_id = $2
	`
	row := r.db.QueryRowContext(ctx, query, postID, userID)

	var post models.Post
	err := row.Scan(&post.ID, &post.UserID, &post.Caption, &post.Title, &post.CoverURL,
		&post.ScheduledTime, &post.Status, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return &post, nil
}

func (r *postsRepository) GetPostMediaAssets(ctx context.Context, postID int64) ([]models.MediaAsset, error) {
	query := `
		SELECT ma.file_url, ma.file_type
		FROM post_media pm
		JOIN media_assets ma ON ma.id = pm.asset_id
		WHERE pm.post_id = $1
		ORDER BY pm.display_order
	`
	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var assets []models.MediaAsset
	for rows.Next() {
		var a models.MediaAsset
		if err := rows.Scan(&a.URL, &a.MimeType); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

func (r *postsRepository) GetPostMediaAsset(ctx context.Context, postID int64) (*models.MediaAsset, error) {
	query := `
		SELECT ma.file_url, ma.file_type
		FROM post_media pm
		JOIN media_assets ma ON ma.id = pm.asset_id
		WHERE pm.post_id = $1
		ORDER BY pm.display_order
		LIMIT 1
	`
	row := r.db.QueryRowContext(ctx, query, postID)

	var a models.MediaAsset
	if err := row.Scan(&a.URL, &a.MimeType); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return &a, nil
}

func (r *postsRepository) GetPostTargets(ctx context.Context, postID int64) ([]*models.PostTarget, error) {
	query := `
		SELECT post_id, social_account_id, platform, text, title, tags, link_urls, options, status, failure_reason
		FROM post_targets
		WHERE post_id = $1
	`
	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var targets []*models.PostTarget
	for rows.Next() {
		var (
			t       models.PostTarget
			tags    pq.StringArray
			links   pq.StringArray
			options []byte
		)
		err := rows.Scan(&t.PostID, &t.SocialAccountID, &t.Platform, &t.Text, &t.Title,
			&tags, &links, &options, &t.Status, &t.FailureReason)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		t.Tags = []string(tags)
		t.LinkURLs = []string(links)
		if len(options) > 0 {
			if err := json.Unmarshal(options, &t.Options); err != nil {
				slog.Info(err.Error())
				return nil, err
			}
		}
		targets = append(targets, &t)
	}
	return targets, rows.Err()
}

func (r *postsRepository) UpdatePostTarget(ctx context.Context, userID, postID, socialAccountID int64, status, failureReason string) error {
	query := `
		UPDATE post_targets pt
		SET status = $1, failure_reason = $2, updated_at = NOW()
		FROM posts p
		WHERE pt.post_id = p.id
		  AND p.user_id = $3
		  AND pt.post_id = $4
		  AND pt.social_account_id = $5
	`
	_, err := r.db.ExecContext(ctx, query, status, failureReason, userID, postID, socialAccountID)
	if err != nil {
		slog.Info(err.Error())
	}
	return err
}

func (r *postsRepository) CreatePostingHistory(ctx context.Context, h *models.PostingHistory) (int64, error) {
	query := `
		INSERT INTO posting_history (user_id, post_id, account_id, error_message)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	var id int64
	err := r.db.QueryRowContext(ctx, query, h.UserID, h.PostID, h.AccountID, h.ErrorMessage).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return id, nil
}
