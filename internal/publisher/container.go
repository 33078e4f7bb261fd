package publisher

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// ContainerStatus is a platform-owned media container's processing state.
type ContainerStatus string

const (
	StatusInProgress ContainerStatus = "IN_PROGRESS"
	StatusFinished   ContainerStatus = "FINISHED"
	StatusPublished  ContainerStatus = "PUBLISHED"
	StatusError      ContainerStatus = "ERROR"
	StatusExpired    ContainerStatus = "EXPIRED"
)

type pollOptions struct {
	// Interval between polls.
	Interval time.Duration
	// MaxPolls bounds the loop; 0 means only the context bounds it.
	MaxPolls int
}

type statusFunc func(ctx context.Context) (ContainerStatus, error)

// pollContainer drives one container through its readiness state machine:
// IN_PROGRESS keeps polling, FINISHED/PUBLISHED succeed, ERROR/EXPIRED fail
// terminally, anything else is a protocol violation.
func pollContainer(ctx context.Context, platform, containerID string, fetch statusFunc, opts pollOptions) (ContainerStatus, error) {
	for polls := 1; ; polls++ {
		status, err := fetch(ctx)
		if err != nil {
			return "", err
		}

		switch status {
		case StatusFinished, StatusPublished:
			return status, nil
		case StatusError, StatusExpired:
			return status, &ContainerError{Platform: platform, ContainerID: containerID, Status: status}
		case StatusInProgress:
			if opts.MaxPolls > 0 && polls >= opts.MaxPolls {
				return status, &PollTimeoutError{Platform: platform, ContainerID: containerID, Polls: polls}
			}
		default:
			return status, &ProtocolError{Platform: platform, Message: "unrecognized container status " + string(status)}
		}

		timer := time.NewTimer(opts.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return status, ctx.Err()
		case <-timer.C:
		}
	}
}

// pollAll polls every container concurrently and fails as soon as any of them
// fails, cancelling the rest. All-or-nothing: the caller must not proceed to
// parent-container creation unless this returns nil.
func pollAll(ctx context.Context, platform string, containerIDs []string, fetch func(ctx context.Context, id string) (ContainerStatus, error), opts pollOptions) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, id := range containerIDs {
		id := id
		g.Go(func() error {
			_, err := pollContainer(ctx, platform, id, func(ctx context.Context) (ContainerStatus, error) {
				return fetch(ctx, id)
			}, opts)
			return err
		})
	}
	return g.Wait()
}
