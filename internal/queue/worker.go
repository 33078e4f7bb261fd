package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/hibiken/asynq"

	"github.com/crosspost-app/crosspost/internal/models"
	"github.com/crosspost-app/crosspost/internal/publisher"
)

// publishConcurrency caps how many platform targets of one post publish at
// once.
const publishConcurrency = 10

func (q *Queue) HandlePublishPostTask(ctx context.Context, task *asynq.Task) error {
	var payload PublishPostPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to decode payload: %w", err)
	}
	return q.PublishPost(ctx, payload.PostID, payload.UserID)
}

// PublishPost dispatches every target of the post to its platform adapter.
// Targets fail independently; each failure is recorded in posting history and
// the first one is returned so asynq can retry the task.
func (q *Queue) PublishPost(ctx context.Context, postID, userID int64) error {
	post, err := q.posts.GetPostDetails(ctx, postID, userID)
	if err != nil {
		return fmt.Errorf("failed to fetch post %d: %w", postID, err)
	}

	targets, err := q.posts.GetPostTargets(ctx, postID)
	if err != nil {
		return fmt.Errorf("failed to fetch targets for post %d: %w", postID, err)
	}
	if len(targets) == 0 {
		q.log.Warn("post has no targets", "post_id", postID)
		return nil
	}

	var (
		wg        sync.WaitGroup
		semaphore = make(chan struct{}, publishConcurrency)
		mu        sync.Mutex
		firstErr  error
	)

	for _, target := range targets {
		wg.Add(1)
		semaphore <- struct{}{}
		go func(target *models.PostTarget) {
			defer wg.Done()
			defer func() { <-semaphore }()

			req := publisher.PublishRequest{
				Target: target,
				UserID: userID,
				PostID: postID,
				Post:   post,
			}
			err := q.factory.Publish(ctx, target.Platform, req)
			q.record(ctx, userID, postID, target.SocialAccountID, err)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("%s: %w", target.Platform, err)
				}
				mu.Unlock()
			}
		}(target)
	}
	wg.Wait()

	return firstErr
}

func (q *Queue) record(ctx context.Context, userID, postID, accountID int64, publishErr error) {
	h := &models.PostingHistory{
		UserID:    userID,
		PostID:    postID,
		AccountID: accountID,
	}
	if publishErr != nil {
		h.ErrorMessage = publishErr.Error()
	}
	if _, err := q.posts.CreatePostingHistory(ctx, h); err != nil {
		q.log.Error("failed to record posting history", "post_id", postID, "error", err)
	}
}
