package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/crosspost-app/crosspost/internal/models"
	"github.com/crosspost-app/crosspost/internal/repository"
	"github.com/crosspost-app/crosspost/internal/tokens"
)

const refreshConcurrency = 10

// tokenRefreshWindow is how far ahead of expiry a token gets renewed.
const tokenRefreshWindow = 30 * time.Minute

// TokenRefreshJob renews soon-to-expire tokens on a cron schedule. Accounts
// that fail to refresh are flagged for re-authentication so publish attempts
// surface a clear error instead of a platform rejection.
type TokenRefreshJob struct {
	accounts  repository.AccountRepository
	refresher *tokens.Refresher
	log       *slog.Logger
}

func NewTokenRefreshJob(accounts repository.AccountRepository, refresher *tokens.Refresher, log *slog.Logger) *TokenRefreshJob {
	if log == nil {
		log = slog.Default()
	}
	return &TokenRefreshJob{accounts: accounts, refresher: refresher, log: log}
}

func (j *TokenRefreshJob) RefreshTokens() {
	ctx := context.Background()

	accounts, err := j.accounts.ListExpiring(ctx, tokenRefreshWindow)
	if err != nil {
		j.log.Error("failed to list expiring accounts", "error", err)
		return
	}
	if len(accounts) == 0 {
		return
	}
	j.log.Info("refreshing tokens", "count", len(accounts))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, refreshConcurrency)

	for _, acc := range accounts {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(acc *models.SocialAccount) {
			defer wg.Done()
			defer func() { <-semaphore }()

			if err := j.refresher.Refresh(ctx, acc); err != nil {
				j.log.Error("token refresh failed",
					"platform", acc.Platform, "social_account_id", acc.ID, "error", err)
				if err := j.accounts.MarkNeedsReauth(ctx, acc.ID); err != nil {
					j.log.Error("failed to flag account for reauth", "social_account_id", acc.ID, "error", err)
				}
			}
		}(acc)
	}
	wg.Wait()
}
