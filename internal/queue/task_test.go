package queue

import (
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskValuesDecode(t *testing.T) {
	task := Task{Type: TaskCertificateEmail, Data: map[string]string{"userId": "u1", "courseId": "c1"}}
	values, err := task.Values()
	require.NoError(t, err)

	decoded, err := DecodeTask(values)
	require.NoError(t, err)
	assert.Equal(t, task, decoded)
}

func TestDecodeTaskRejectsMissingType(t *testing.T) {
	_, err := DecodeTask(map[string]any{"data": "{}"})
	assert.Error(t, err)

	task, err := DecodeTask(map[string]any{"type": TaskProgressAudit})
	require.NoError(t, err)
	assert.Empty(t, task.Data)
}

func TestDeadLetterValuesKeepTask(t *testing.T) {
	task := Task{Type: TaskConnectionEmail, Data: map[string]string{"user_id": "amy", "peer_id": "ben"}}
	values, err := task.Values()
	require.NoError(t, err)

	dead := deadLetterValues(redis.XMessage{ID: "17-0", Values: values}, 5)
	assert.Equal(t, "17-0", dead["source_id"])
	assert.Equal(t, int64(5), dead["deliveries"])

	decoded, err := DecodeTask(dead)
	require.NoError(t, err)
	assert.Equal(t, task, decoded)
	assert.Equal(t, "upskill:tasks:dead", DeadLetterStream("upskill:tasks"))
}

func TestExhausted(t *testing.T) {
	assert.False(t, exhausted(4, 5))
	assert.True(t, exhausted(5, 5))
	assert.False(t, exhausted(100, 0))
}
