package errorhandler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crosspost-app/crosspost/internal/models"
	"github.com/crosspost-app/crosspost/internal/publisher"
)

type fakeAccounts struct {
	reauthCalls []int64
}

func (f *fakeAccounts) GetByUserIDAndSocialAccountID(ctx context.Context, userID, socialAccountID int64) (*models.Account, error) {
	return nil, nil
}

func (f *fakeAccounts) ListExpiring(ctx context.Context, within time.Duration) ([]*models.SocialAccount, error) {
	return nil, nil
}

func (f *fakeAccounts) SetToken(ctx context.Context, accountID int64, encryptedAccess, encryptedRefresh string, expiresAt time.Time) error {
	return nil
}

func (f *fakeAccounts) MarkNeedsReauth(ctx context.Context, accountID int64) error {
	f.reauthCalls = append(f.reauthCalls, accountID)
	return nil
}

func newHandler() (*Handler, *fakeAccounts) {
	accounts := &fakeAccounts{}
	return New(accounts, slog.New(slog.NewTextHandler(io.Discard, nil))), accounts
}

func TestHandlerAlwaysReturnsNonNil(t *testing.T) {
	h, _ := newHandler()

	err := h.HandlePublishError(context.Background(), nil, "x", 1, 2, 3)
	assert.Error(t, err)

	cause := errors.New("boom")
	err = h.HandlePublishError(context.Background(), cause, "x", 1, 2, 3)
	assert.Same(t, cause, err)
}

func TestHandlerFlagsAccountOn401(t *testing.T) {
	h, accounts := newHandler()
	cause := &publisher.APIError{Platform: "linkedin", StatusCode: 401, Body: "unauthorized"}

	err := h.HandlePublishError(context.Background(), cause, "linkedin", 1, 2, 3)

	require.ErrorIs(t, err, ErrTokenExpired)
	assert.ErrorAs(t, err, new(*publisher.APIError))
	assert.Equal(t, []int64{3}, accounts.reauthCalls)
}

func TestHandlerFlagsAccountOnGraphCode190(t *testing.T) {
	h, accounts := newHandler()
	cause := &publisher.APIError{
		Platform:   "instagram",
		StatusCode: 400,
		Body:       `{"error":{"message":"Error validating access token","code":190}}`,
	}

	err := h.HandlePublishError(context.Background(), cause, "instagram", 1, 2, 9)

	require.ErrorIs(t, err, ErrTokenExpired)
	assert.Equal(t, []int64{9}, accounts.reauthCalls)
}

func TestHandlerPassesOtherErrorsThrough(t *testing.T) {
	h, accounts := newHandler()

	tests := []error{
		&publisher.APIError{Platform: "x", StatusCode: 500, Body: "oops"},
		&publisher.ValidationError{Platform: "bluesky", Message: "too long"},
		errors.New("network down"),
	}
	for _, cause := range tests {
		err := h.HandlePublishError(context.Background(), cause, "x", 1, 2, 3)
		assert.Same(t, cause, err)
	}
	assert.Empty(t, accounts.reauthCalls)
}
