package service

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Fazeel2019/Upskill-sub000/internal/models"
	"github.com/Fazeel2019/Upskill-sub000/internal/payment"
	"github.com/Fazeel2019/Upskill-sub000/internal/queue"
	"github.com/Fazeel2019/Upskill-sub000/internal/realtime"
	"github.com/Fazeel2019/Upskill-sub000/internal/repository/memory"
)

type recordingQueue struct {
	mu    sync.Mutex
	tasks []queue.Task
}

func (q *recordingQueue) Enqueue(_ context.Context, task queue.Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, task)
	return nil
}

func (q *recordingQueue) ofType(taskType string) []queue.Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []queue.Task
	for _, t := range q.tasks {
		if t.Type == taskType {
			out = append(out, t)
		}
	}
	return out
}

type harness struct {
	store  *memory.Store
	hub    *realtime.Hub
	events *realtime.Publisher
	tasks  *recordingQueue
	gw     *payment.Fake
	log    zerolog.Logger
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := zerolog.Nop()
	hub := realtime.NewHub(log)
	return &harness{
		store:  memory.NewStore(),
		hub:    hub,
		events: realtime.NewPublisher(realtime.NewLocalBus(hub), log),
		tasks:  &recordingQueue{},
		gw:     payment.NewFake(),
		log:    log,
	}
}

func (h *harness) user(t *testing.T, id, name string) models.User {
	t.Helper()
	u := models.User{
		ID:          id,
		Email:       id + "@example.com",
		DisplayName: name,
		Role:        models.UserRoleUser,
		Status:      models.UserStatusActive,
	}
	require.NoError(t, h.store.Users().Create(context.Background(), u))
	return u
}

func (h *harness) connections() *ConnectionService {
	return NewConnectionService(h.store.Users(), h.store.Connections(), h.events, h.tasks, h.log)
}

func (h *harness) progress() *ProgressService {
	return NewProgressService(h.store.Courses(), h.store.Progress(), h.store.Payments(), h.gw, h.events, h.tasks, h.log)
}

func (h *harness) courses() *CourseService {
	return NewCourseService(h.store.Courses(), h.events, h.log)
}

func (h *harness) messaging() *MessagingService {
	return NewMessagingService(h.store.Users(), h.store.Chats(), h.events, h.log)
}

func (h *harness) notifications() *NotificationService {
	return NewNotificationService(h.store.Notifications(), h.events, h.log)
}

func (h *harness) checkout() *CheckoutService {
	return NewCheckoutService(h.store.Courses(), h.store.Payments(), h.gw, "usd", h.log)
}

func (h *harness) notificationsFor(t *testing.T, userID string) []models.Notification {
	t.Helper()
	items, err := h.store.Notifications().ListByUser(context.Background(), userID, false, 0)
	require.NoError(t, err)
	return items
}

func admin(id string) models.Identity {
	return models.Identity{UserID: id, Role: models.UserRoleAdmin}
}

func member(id string) models.Identity {
	return models.Identity{UserID: id, Role: models.UserRoleUser}
}
