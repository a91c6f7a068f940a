package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fazeel2019/Upskill-sub000/internal/models"
	"github.com/Fazeel2019/Upskill-sub000/internal/queue"
	"github.com/Fazeel2019/Upskill-sub000/internal/repository"
)

func stateOf(t *testing.T, svc *ConnectionService, owner, peer string) (models.ConnectionState, bool) {
	t.Helper()
	m, err := svc.Connections(context.Background(), owner)
	require.NoError(t, err)
	state, ok := m[peer]
	return state, ok
}

func TestRequestThenAcceptIsSymmetric(t *testing.T) {
	h := newHarness(t)
	h.user(t, "amy", "Amy")
	h.user(t, "ben", "Ben")
	svc := h.connections()
	ctx := context.Background()

	state, err := svc.SendRequest(ctx, "amy", "ben")
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionPendingSent, state)

	s, _ := stateOf(t, svc, "amy", "ben")
	assert.Equal(t, models.ConnectionPendingSent, s)
	s, _ = stateOf(t, svc, "ben", "amy")
	assert.Equal(t, models.ConnectionPendingReceived, s)

	benInbox := h.notificationsFor(t, "ben")
	require.Len(t, benInbox, 1)
	assert.Equal(t, models.NotificationConnectionRequest, benInbox[0].Type)

	require.NoError(t, svc.Accept(ctx, "ben", "amy"))

	s, _ = stateOf(t, svc, "amy", "ben")
	assert.Equal(t, models.ConnectionConnected, s)
	s, _ = stateOf(t, svc, "ben", "amy")
	assert.Equal(t, models.ConnectionConnected, s)

	amyInbox := h.notificationsFor(t, "amy")
	require.Len(t, amyInbox, 1)
	assert.Equal(t, models.NotificationConnectionAccepted, amyInbox[0].Type)
	assert.Len(t, h.tasks.ofType(queue.TaskConnectionEmail), 1)
}

func TestDeclineRemovesBothSidesAndAllowsNewRequest(t *testing.T) {
	h := newHarness(t)
	h.user(t, "amy", "Amy")
	h.user(t, "ben", "Ben")
	svc := h.connections()
	ctx := context.Background()

	_, err := svc.SendRequest(ctx, "amy", "ben")
	require.NoError(t, err)
	require.NoError(t, svc.Decline(ctx, "ben", "amy"))

	_, ok := stateOf(t, svc, "amy", "ben")
	assert.False(t, ok)
	_, ok = stateOf(t, svc, "ben", "amy")
	assert.False(t, ok)

	state, err := svc.SendRequest(ctx, "amy", "ben")
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionPendingSent, state)
}

func TestSendRequestEdgeCases(t *testing.T) {
	h := newHarness(t)
	h.user(t, "amy", "Amy")
	h.user(t, "ben", "Ben")
	svc := h.connections()
	ctx := context.Background()

	_, err := svc.SendRequest(ctx, "amy", "amy")
	assert.ErrorIs(t, err, ErrSelfConnection)

	_, err = svc.SendRequest(ctx, "amy", "ghost")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	_, err = svc.SendRequest(ctx, "amy", "ben")
	require.NoError(t, err)

	// Re-sending is a no-op and does not notify twice.
	state, err := svc.SendRequest(ctx, "amy", "ben")
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionPendingSent, state)
	assert.Len(t, h.notificationsFor(t, "ben"), 1)

	_, err = svc.SendRequest(ctx, "ben", "amy")
	assert.ErrorIs(t, err, ErrIncomingRequestPending)

	require.NoError(t, svc.Accept(ctx, "ben", "amy"))
	_, err = svc.SendRequest(ctx, "amy", "ben")
	assert.ErrorIs(t, err, ErrAlreadyConnected)
}

func TestAcceptRequiresIncomingRequest(t *testing.T) {
	h := newHarness(t)
	h.user(t, "amy", "Amy")
	h.user(t, "ben", "Ben")
	svc := h.connections()
	ctx := context.Background()

	assert.ErrorIs(t, svc.Accept(ctx, "ben", "amy"), ErrNoPendingRequest)

	_, err := svc.SendRequest(ctx, "amy", "ben")
	require.NoError(t, err)

	// The sender cannot accept their own request.
	assert.ErrorIs(t, svc.Accept(ctx, "amy", "ben"), ErrNoPendingRequest)
	assert.ErrorIs(t, svc.Decline(ctx, "amy", "ben"), ErrNoPendingRequest)
}

func TestCancelAndRemove(t *testing.T) {
	h := newHarness(t)
	h.user(t, "amy", "Amy")
	h.user(t, "ben", "Ben")
	svc := h.connections()
	ctx := context.Background()

	_, err := svc.SendRequest(ctx, "amy", "ben")
	require.NoError(t, err)
	assert.ErrorIs(t, svc.Cancel(ctx, "ben", "amy"), ErrNoPendingRequest)
	require.NoError(t, svc.Cancel(ctx, "amy", "ben"))
	_, ok := stateOf(t, svc, "ben", "amy")
	assert.False(t, ok)

	assert.ErrorIs(t, svc.Remove(ctx, "amy", "ben"), ErrNotConnected)

	_, err = svc.SendRequest(ctx, "amy", "ben")
	require.NoError(t, err)
	require.NoError(t, svc.Accept(ctx, "ben", "amy"))
	require.NoError(t, svc.Remove(ctx, "ben", "amy"))
	_, ok = stateOf(t, svc, "amy", "ben")
	assert.False(t, ok)
}

func TestSearchAnnotatesState(t *testing.T) {
	h := newHarness(t)
	h.user(t, "amy", "Amy Stone")
	h.user(t, "ben", "Ben Stone")
	h.user(t, "cal", "Cal Stone")
	h.user(t, "dee", "Dee River")
	svc := h.connections()
	ctx := context.Background()

	_, err := svc.SendRequest(ctx, "amy", "ben")
	require.NoError(t, err)

	results, err := svc.Search(ctx, "amy", "STONE")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "ben", results[0].User.ID)
	assert.Equal(t, models.ConnectionPendingSent, results[0].Connection)
	assert.Equal(t, "cal", results[1].User.ID)
	assert.Equal(t, models.ConnectionNone, results[1].Connection)

	empty, err := svc.Search(ctx, "amy", "  ")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
