package queue

import (
	"log/slog"

	"github.com/crosspost-app/crosspost/internal/publisher"
	"github.com/crosspost-app/crosspost/internal/repository"
)

const TaskTypePublishPost = "publish:post"

type PublishPostPayload struct {
	PostID int64 `json:"post_id"`
	UserID int64 `json:"user_id"`
}

// Queue fans one scheduled post out to every selected platform target.
type Queue struct {
	posts   repository.PostsRepository
	factory *publisher.Factory
	log     *slog.Logger
}

func NewQueue(posts repository.PostsRepository, factory *publisher.Factory, log *slog.Logger) *Queue {
	if log == nil {
		log = slog.Default()
	}
	return &Queue{posts: posts, factory: factory, log: log}
}
