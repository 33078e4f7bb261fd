package errorhandler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/crosspost-app/crosspost/internal/publisher"
	"github.com/crosspost-app/crosspost/internal/repository"
)

// ErrTokenExpired wraps platform rejections that indicate a revoked or
// expired credential. The account is flagged for re-authentication before
// this surfaces.
var ErrTokenExpired = errors.New("access token expired or revoked")

// Handler is the default publisher.ErrorHandler. It records every failure,
// flags accounts whose tokens the platform rejected and hands a non-nil
// error back for the caller to rethrow.
type Handler struct {
	accounts repository.AccountRepository
	log      *slog.Logger
}

func New(accounts repository.AccountRepository, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{accounts: accounts, log: log}
}

func (h *Handler) HandlePublishError(ctx context.Context, cause error, platform string, userID, postID, socialAccountID int64) error {
	if cause == nil {
		cause = fmt.Errorf("%s: publish failed with no cause", platform)
	}

	h.log.Error("publish failed",
		"platform", platform,
		"user_id", userID,
		"post_id", postID,
		"social_account_id", socialAccountID,
		"error", cause,
	)

	if isTokenRejection(cause) {
		if err := h.accounts.MarkNeedsReauth(ctx, socialAccountID); err != nil {
			h.log.Error("failed to flag account for reauth", "social_account_id", socialAccountID, "error", err)
		}
		return fmt.Errorf("%s: %w: %w", platform, ErrTokenExpired, cause)
	}
	return cause
}

// isTokenRejection matches HTTP 401 and the Graph API's OAuthException code
// 190, which arrives with status 400.
func isTokenRejection(err error) bool {
	var apiErr *publisher.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.StatusCode == 401 {
		return true
	}
	return strings.Contains(apiErr.Body, `"code":190`) || strings.Contains(apiErr.Body, `"code": 190`)
}
