package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fazeel2019/Upskill-sub000/internal/models"
	"github.com/Fazeel2019/Upskill-sub000/internal/repository"
)

func TestMarkReadOnlyByRecipient(t *testing.T) {
	h := newHarness(t)
	svc := h.notifications()
	ctx := context.Background()

	n, err := svc.Notify(ctx, "amy", models.NotificationSystem, "welcome", nil)
	require.NoError(t, err)
	_, err = svc.Notify(ctx, "amy", models.NotificationSystem, "tips", nil)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.MarkRead(ctx, "ben", n.ID), repository.ErrNotificationNotFound)
	require.NoError(t, svc.MarkRead(ctx, "amy", n.ID))

	list, err := svc.List(ctx, "amy", true)
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
	assert.Equal(t, 1, list.Unread)

	changed, err := svc.MarkAllRead(ctx, "amy")
	require.NoError(t, err)
	assert.Equal(t, int64(1), changed)

	list, err = svc.List(ctx, "amy", false)
	require.NoError(t, err)
	assert.Len(t, list.Items, 2)
	assert.Zero(t, list.Unread)
}

func TestPruneDeletesOldReadOnly(t *testing.T) {
	h := newHarness(t)
	svc := h.notifications()
	ctx := context.Background()

	old := time.Now().Add(-100 * 24 * time.Hour)
	h.store.SetClock(func() time.Time { return old })
	readOld, err := svc.Notify(ctx, "amy", models.NotificationSystem, "old read", nil)
	require.NoError(t, err)
	_, err = svc.Notify(ctx, "amy", models.NotificationSystem, "old unread", nil)
	require.NoError(t, err)
	require.NoError(t, svc.MarkRead(ctx, "amy", readOld.ID))

	h.store.SetClock(time.Now)
	_, err = svc.Notify(ctx, "amy", models.NotificationSystem, "fresh", nil)
	require.NoError(t, err)

	deleted, err := svc.Prune(ctx, 90*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	list, err := svc.List(ctx, "amy", false)
	require.NoError(t, err)
	assert.Len(t, list.Items, 2)
}
