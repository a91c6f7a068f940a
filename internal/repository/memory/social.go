package memory

import (
	"context"
	"sort"
	"time"

	"github.com/Fazeel2019/Upskill-sub000/internal/models"
	"github.com/Fazeel2019/Upskill-sub000/internal/repository"
)

type ConnectionRepository struct{ s *Store }

func pairKey(a, b string) [2]string {
	low, high := models.OrderPair(a, b)
	return [2]string{low, high}
}

func (r *ConnectionRepository) Get(_ context.Context, a string, b string) (models.Connection, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.connections[pairKey(a, b)]
	if !ok {
		return models.Connection{}, repository.ErrConnectionNotFound
	}
	return c, nil
}

func (r *ConnectionRepository) ListByUser(_ context.Context, userID string) ([]models.Connection, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]models.Connection, 0)
	for _, c := range r.s.connections {
		if c.Involves(userID) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *ConnectionRepository) CreateRequest(_ context.Context, conn models.Connection, n models.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := [2]string{conn.UserLow, conn.UserHigh}
	if _, exists := r.s.connections[key]; exists {
		return repository.ErrConnectionExists
	}
	now := r.s.tick()
	conn.Status = models.ConnectionStatusPending
	conn.CreatedAt, conn.UpdatedAt = now, now
	r.s.connections[key] = conn
	r.s.insertNotification(n)
	return nil
}

func (r *ConnectionRepository) Accept(_ context.Context, a string, b string, requesterID string, n models.Notification) (models.Connection, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := pairKey(a, b)
	c, ok := r.s.connections[key]
	if !ok || c.Status != models.ConnectionStatusPending || c.RequesterID != requesterID {
		return models.Connection{}, repository.ErrConnectionNotFound
	}
	c.Status = models.ConnectionStatusConnected
	c.UpdatedAt = r.s.tick()
	r.s.connections[key] = c
	r.s.insertNotification(n)
	return c, nil
}

func (r *ConnectionRepository) DeleteMatching(_ context.Context, a string, b string, status models.ConnectionStatus, requesterID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := pairKey(a, b)
	c, ok := r.s.connections[key]
	if !ok || c.Status != status || (requesterID != "" && c.RequesterID != requesterID) {
		return repository.ErrConnectionNotFound
	}
	delete(r.s.connections, key)
	return nil
}

type NotificationRepository struct{ s *Store }

func (r *NotificationRepository) Create(_ context.Context, n models.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.insertNotification(n)
	return nil
}

func (r *NotificationRepository) ListByUser(_ context.Context, userID string, unreadOnly bool, limit int) ([]models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]models.Notification, 0)
	for i := len(r.s.notifications) - 1; i >= 0; i-- {
		n := r.s.notifications[i]
		if n.UserID != userID || (unreadOnly && n.Read) {
			continue
		}
		out = append(out, n)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *NotificationRepository) MarkRead(_ context.Context, userID string, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i, n := range r.s.notifications {
		if n.ID == id && n.UserID == userID {
			r.s.notifications[i].Read = true
			return nil
		}
	}
	return repository.ErrNotificationNotFound
}

func (r *NotificationRepository) MarkAllRead(_ context.Context, userID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var changed int64
	for i, n := range r.s.notifications {
		if n.UserID == userID && !n.Read {
			r.s.notifications[i].Read = true
			changed++
		}
	}
	return changed, nil
}

func (r *NotificationRepository) CountUnread(_ context.Context, userID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	count := 0
	for _, n := range r.s.notifications {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (r *NotificationRepository) DeleteReadBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	kept := r.s.notifications[:0]
	var deleted int64
	for _, n := range r.s.notifications {
		if n.Read && n.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, n)
	}
	r.s.notifications = kept
	return deleted, nil
}

type ChatRepository struct{ s *Store }

func (r *ChatRepository) AppendMessage(_ context.Context, msg models.Message, participants []string, n *models.Notification) (models.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.tick()
	msg.CreatedAt = now
	msg.Seq = int64(len(r.s.messages) + 1)
	r.s.messages = append(r.s.messages, msg)

	chat, ok := r.s.chats[msg.ChatID]
	if !ok {
		chat = models.Chat{ID: msg.ChatID, Participants: cloneStrings(participants)}
	}
	chat.LastMessage = msg.Text
	chat.LastMessageAt = &now
	chat.UpdatedAt = now
	r.s.chats[msg.ChatID] = chat

	if n != nil {
		r.s.insertNotification(*n)
	}
	return msg, nil
}

func (r *ChatRepository) GetChat(_ context.Context, id string) (models.Chat, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	chat, ok := r.s.chats[id]
	if !ok {
		return models.Chat{}, repository.ErrChatNotFound
	}
	return chat, nil
}

func (r *ChatRepository) ListByUser(_ context.Context, userID string) ([]models.Chat, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]models.Chat, 0)
	for _, chat := range r.s.chats {
		for _, p := range chat.Participants {
			if p == userID {
				out = append(out, chat)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *ChatRepository) ListMessages(_ context.Context, chatID string) ([]models.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]models.Message, 0)
	for _, m := range r.s.messages {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out, nil
}
