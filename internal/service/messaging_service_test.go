package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fazeel2019/Upskill-sub000/internal/models"
	"github.com/Fazeel2019/Upskill-sub000/internal/repository"
)

func TestMessagesAreOrderedForBothParticipants(t *testing.T) {
	h := newHarness(t)
	h.user(t, "amy", "Amy")
	h.user(t, "ben", "Ben")
	svc := h.messaging()
	ctx := context.Background()

	chatID, err := svc.ChatWith(ctx, "ben", "amy")
	require.NoError(t, err)
	assert.Equal(t, "amy_ben", chatID)

	_, err = svc.Send(ctx, chatID, "amy", "hi ben")
	require.NoError(t, err)
	_, err = svc.Send(ctx, chatID, "ben", "  hi amy  ")
	require.NoError(t, err)

	for _, viewer := range []string{"amy", "ben"} {
		msgs, err := svc.History(ctx, chatID, viewer)
		require.NoError(t, err)
		require.Len(t, msgs, 2)
		assert.Equal(t, "hi ben", msgs[0].Text)
		assert.Equal(t, "hi amy", msgs[1].Text)
		assert.False(t, msgs[1].CreatedAt.Before(msgs[0].CreatedAt))
		assert.Less(t, msgs[0].Seq, msgs[1].Seq)
	}

	chats, err := svc.ListChats(ctx, "amy")
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.Equal(t, "hi amy", chats[0].LastMessage)

	benInbox := h.notificationsFor(t, "ben")
	require.Len(t, benInbox, 1)
	assert.Equal(t, models.NotificationNewMessage, benInbox[0].Type)
}

func TestSendValidation(t *testing.T) {
	h := newHarness(t)
	h.user(t, "amy", "Amy")
	h.user(t, "ben", "Ben")
	h.user(t, "cal", "Cal")
	svc := h.messaging()
	ctx := context.Background()
	chatID := models.ChatID("amy", "ben")

	_, err := svc.Send(ctx, chatID, "cal", "hello")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Send(ctx, chatID, "amy", "   ")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Send(ctx, chatID, "amy", strings.Repeat("x", maxMessageLength+1))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Send(ctx, "not-a-chat", "amy", "hello")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.History(ctx, chatID, "cal")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.ChatWith(ctx, "amy", "amy")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSendToUnknownPeerCreatesNothing(t *testing.T) {
	h := newHarness(t)
	h.user(t, "amy", "Amy")
	svc := h.messaging()
	ctx := context.Background()
	chatID := models.ChatID("amy", "zzz-nobody")

	_, err := svc.Send(ctx, chatID, "amy", "hello?")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	_, err = svc.History(ctx, chatID, "amy")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	chats, err := svc.ListChats(ctx, "amy")
	require.NoError(t, err)
	assert.Empty(t, chats)
	assert.Empty(t, h.notificationsFor(t, "zzz-nobody"))
}

func TestWatchPushesSnapshotAfterSend(t *testing.T) {
	h := newHarness(t)
	h.user(t, "amy", "Amy")
	h.user(t, "ben", "Ben")
	svc := h.messaging()
	chatID := models.ChatID("amy", "ben")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	snapshots := make(chan []models.Message, 4)
	done := make(chan error, 1)
	go func() {
		done <- svc.Watch(ctx, h.hub, chatID, "ben", func(msgs []models.Message) error {
			snapshots <- msgs
			return nil
		})
	}()

	select {
	case first := <-snapshots:
		assert.Empty(t, first)
	case <-time.After(time.Second):
		t.Fatal("no initial snapshot")
	}

	_, err := svc.Send(context.Background(), chatID, "amy", "ping")
	require.NoError(t, err)

	select {
	case next := <-snapshots:
		require.Len(t, next, 1)
		assert.Equal(t, "ping", next[0].Text)
	case <-time.After(time.Second):
		t.Fatal("no snapshot after send")
	}

	cancel()
	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(time.Second):
		t.Fatal("watch did not stop")
	}
}
