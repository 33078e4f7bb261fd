package queue

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

// EnqueuePublish schedules a publish task to run after delay.
func EnqueuePublish(client *asynq.Client, payload PublishPostPayload, delay time.Duration) error {
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	task := asynq.NewTask(TaskTypePublishPost, taskPayload)
	_, err = client.Enqueue(task, asynq.ProcessIn(delay))
	return err
}
