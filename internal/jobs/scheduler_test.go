package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fazeel2019/Upskill-sub000/internal/queue"
)

type captured struct{ tasks []queue.Task }

func (c *captured) Enqueue(_ context.Context, task queue.Task) error {
	c.tasks = append(c.tasks, task)
	return nil
}

func TestSpecsParse(t *testing.T) {
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	base := time.Date(2026, 1, 1, 12, 30, 0, 0, time.UTC)

	prune, err := parser.Parse(PruneSpec)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 0, 0, 0, time.UTC), prune.Next(base))

	audit, err := parser.Parse(AuditSpec)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 1, 13, 0, 0, 0, time.UTC), audit.Next(base))
}

func TestEnqueueJob(t *testing.T) {
	q := &captured{}
	s := NewScheduler(q, zerolog.Nop())

	s.enqueue(queue.TaskProgressAudit)()
	require.Len(t, q.tasks, 1)
	assert.Equal(t, queue.TaskProgressAudit, q.tasks[0].Type)
}

func TestStartStop(t *testing.T) {
	s := NewScheduler(&captured{}, zerolog.Nop())
	require.NoError(t, s.Start())
	assert.Len(t, s.cron.Entries(), 2)
	s.Stop()
}
