package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	TaskCertificateEmail   = "certificate.email"
	TaskConnectionEmail    = "connection.email"
	TaskNotificationsPrune = "notifications.prune"
	TaskProgressAudit      = "progress.audit"
)

// Task is one stream entry: a type and flat string data.
type Task struct {
	Type string            `json:"type"`
	Data map[string]string `json:"data"`
}

// Values flattens the task into stream fields.
func (t Task) Values() (map[string]any, error) {
	data, err := json.Marshal(t.Data)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"type": t.Type,
		"data": string(data),
	}, nil
}

// DecodeTask reads a task back from stream fields.
func DecodeTask(values map[string]any) (Task, error) {
	taskType, _ := values["type"].(string)
	if taskType == "" {
		return Task{}, fmt.Errorf("task type missing")
	}
	task := Task{Type: taskType, Data: map[string]string{}}
	if raw, ok := values["data"].(string); ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &task.Data); err != nil {
			return Task{}, fmt.Errorf("decode task data: %w", err)
		}
	}
	return task, nil
}

// streamMaxLen bounds the stream; acknowledged history is trimmed approximately.
const streamMaxLen = 10000

type Producer struct {
	client *redis.Client
	stream string
}

func NewProducer(client *redis.Client, stream string) *Producer {
	return &Producer{client: client, stream: stream}
}

func (p *Producer) Enqueue(ctx context.Context, task Task) error {
	values, err := task.Values()
	if err != nil {
		return fmt.Errorf("encode task: %w", err)
	}
	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: values,
	}).Err()
}
