package tokens

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	config "github.com/crosspost-app/crosspost/configs"
	"github.com/crosspost-app/crosspost/internal/models"
	"github.com/crosspost-app/crosspost/internal/repository"
	"github.com/crosspost-app/crosspost/internal/transfer"
	"github.com/crosspost-app/crosspost/pkg/utils"
)

// Refresher renews access tokens for the platforms whose tokens expire.
// Tokens are decrypted only for the round trip and re-encrypted before they
// touch the database.
type Refresher struct {
	cfg      config.Config
	accounts repository.AccountRepository
	client   *http.Client
	log      *slog.Logger
}

func NewRefresher(cfg config.Config, accounts repository.AccountRepository, client *http.Client, log *slog.Logger) *Refresher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Refresher{cfg: cfg, accounts: accounts, client: client, log: log}
}

// Refresh renews one account's token. Platforms without refreshable tokens
// are skipped silently.
func (r *Refresher) Refresh(ctx context.Context, acc *models.SocialAccount) error {
	switch acc.Platform {
	case models.PlatformTiktok:
		return r.refreshTiktok(ctx, acc)
	case models.PlatformInstagram, models.PlatformThreads:
		return r.refreshInstagram(ctx, acc)
	case models.PlatformYoutube:
		return r.refreshYoutube(ctx, acc)
	default:
		return nil
	}
}

func (r *Refresher) refreshTiktok(ctx context.Context, acc *models.SocialAccount) error {
	refreshToken, err := utils.Decrypt(acc.RefreshToken, []byte(r.cfg.SecretKey))
	if err != nil {
		return fmt.Errorf("failed to decrypt refresh token: %w", err)
	}

	data := url.Values{}
	data.Set("client_key", r.cfg.TiktokClientKey)
	data.Set("client_secret", r.cfg.TiktokClientSecret)
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", refreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		r.cfg.TiktokAPIBaseURL+"/oauth/token/", bytes.NewBufferString(data.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tiktok token refresh returned status %d", resp.StatusCode)
	}

	var token transfer.TiktokTokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return fmt.Errorf("failed to parse token response: %w", err)
	}
	if token.AccessToken == "" {
		return fmt.Errorf("tiktok token refresh returned no access token")
	}

	return r.store(ctx, acc.ID, token.AccessToken, token.RefreshToken,
		time.Now().Add(time.Duration(token.ExpiresIn)*time.Second))
}

// refreshInstagram renews a long-lived token; Threads uses the same
// mechanism on its own host.
func (r *Refresher) refreshInstagram(ctx context.Context, acc *models.SocialAccount) error {
	accessToken, err := utils.Decrypt(acc.AccessToken, []byte(r.cfg.SecretKey))
	if err != nil {
		return fmt.Errorf("failed to decrypt access token: %w", err)
	}

	base := r.cfg.InstagramAPIBaseURL
	if acc.Platform == models.PlatformThreads {
		base = r.cfg.ThreadsAPIBaseURL
	}
	endpoint := fmt.Sprintf("%s/refresh_access_token?grant_type=ig_refresh_token&access_token=%s",
		base, url.QueryEscape(accessToken))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("token refresh returned status %d", resp.StatusCode)
	}

	var token struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return fmt.Errorf("failed to parse token response: %w", err)
	}
	if token.AccessToken == "" {
		return fmt.Errorf("token refresh returned no access token")
	}

	return r.store(ctx, acc.ID, token.AccessToken, "",
		time.Now().Add(time.Duration(token.ExpiresIn)*time.Second))
}

func (r *Refresher) refreshYoutube(ctx context.Context, acc *models.SocialAccount) error {
	refreshToken, err := utils.Decrypt(acc.RefreshToken, []byte(r.cfg.SecretKey))
	if err != nil {
		return fmt.Errorf("failed to decrypt refresh token: %w", err)
	}

	conf := &oauth2.Config{
		ClientID:     r.cfg.GoogleClientID,
		ClientSecret: r.cfg.GoogleClientSecret,
		Scopes:       []string{"https://www.googleapis.com/auth/youtube.upload"},
		Endpoint:     google.Endpoint,
	}
	source := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})

	token, err := source.Token()
	if err != nil {
		return fmt.Errorf("failed to refresh google token: %w", err)
	}

	newRefresh := token.RefreshToken
	if newRefresh == refreshToken {
		newRefresh = ""
	}
	return r.store(ctx, acc.ID, token.AccessToken, newRefresh, token.Expiry)
}

// store re-encrypts and persists the renewed tokens. An empty refresh token
// keeps the stored one.
func (r *Refresher) store(ctx context.Context, accountID int64, accessToken, refreshToken string, expiresAt time.Time) error {
	encryptedAccess, err := utils.Encrypt([]byte(accessToken), []byte(r.cfg.SecretKey))
	if err != nil {
		return fmt.Errorf("failed to encrypt access token: %w", err)
	}

	var encryptedRefresh string
	if refreshToken != "" {
		encryptedRefresh, err = utils.Encrypt([]byte(refreshToken), []byte(r.cfg.SecretKey))
		if err != nil {
			return fmt.Errorf("failed to encrypt refresh token: %w", err)
		}
	}
	return r.accounts.SetToken(ctx, accountID, encryptedAccess, encryptedRefresh, expiresAt)
}
