package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/Fazeel2019/Upskill-sub000/internal/models"
	"github.com/Fazeel2019/Upskill-sub000/internal/repository"
)

type UserRepository struct{ s *Store }

func (r *UserRepository) Create(_ context.Context, user models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == user.Email {
			return repository.ErrEmailTaken
		}
	}
	now := r.s.tick()
	user.CreatedAt, user.UpdatedAt = now, now
	if user.SocialLinks == nil {
		user.SocialLinks = map[string]string{}
	}
	r.s.users[user.ID] = user
	return nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (r *UserRepository) GetByID(_ context.Context, id string) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (r *UserRepository) UpdateProfile(_ context.Context, user models.User) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.users[user.ID]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	current.DisplayName = user.DisplayName
	current.PhotoURL = user.PhotoURL
	current.Bio = user.Bio
	current.Title = user.Title
	current.Location = user.Location
	current.Company = user.Company
	current.SocialLinks = user.SocialLinks
	current.UpdatedAt = r.s.tick()
	r.s.users[user.ID] = current
	return current, nil
}

func (r *UserRepository) UpdateStatus(_ context.Context, id string, status models.UserStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.Status = status
	r.s.users[id] = u
	return nil
}

func (r *UserRepository) UpdateRole(_ context.Context, id string, role models.UserRole) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.Role = role
	r.s.users[id] = u
	return nil
}

func (r *UserRepository) Search(_ context.Context, q string, excludeID string, limit int) ([]models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	needle := strings.ToLower(q)
	out := make([]models.User, 0)
	for _, u := range r.s.users {
		if u.ID == excludeID || u.Status != models.UserStatusActive {
			continue
		}
		if strings.Contains(strings.ToLower(u.DisplayName), needle) || strings.Contains(strings.ToLower(u.Email), needle) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayName < out[j].DisplayName })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *UserRepository) List(_ context.Context, limit int, offset int) ([]models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]models.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, limit, offset), nil
}

func page[T any](items []T, limit int, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

type SessionRepository struct{ s *Store }

func (r *SessionRepository) Upsert(_ context.Context, session models.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.tick()
	for id, existing := range r.s.sessions {
		if existing.UserID == session.UserID && existing.DeviceID == session.DeviceID {
			session.CreatedAt = existing.CreatedAt
			delete(r.s.sessions, id)
		}
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.LastSeenAt = now
	r.s.sessions[session.ID] = session
	return nil
}

func (r *SessionRepository) Trim(_ context.Context, userID string, keep int) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	var deleted int64
	for id, session := range r.s.sessions {
		if session.UserID == userID && !session.ExpiresAt.After(now) {
			delete(r.s.sessions, id)
			deleted++
		}
	}
	for i, session := range r.s.liveSessions(userID) {
		if i >= keep {
			delete(r.s.sessions, session.ID)
			deleted++
		}
	}
	return deleted, nil
}

func (r *SessionRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var deleted int64
	for id, session := range r.s.sessions {
		if !session.ExpiresAt.After(now) {
			delete(r.s.sessions, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *SessionRepository) GetByID(_ context.Context, id string) (models.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	session, ok := r.s.sessions[id]
	if !ok {
		return models.Session{}, repository.ErrSessionNotFound
	}
	return session, nil
}

func (r *SessionRepository) DeleteByID(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.sessions[id]; !ok {
		return repository.ErrSessionNotFound
	}
	delete(r.s.sessions, id)
	return nil
}

func (r *SessionRepository) DeleteByDevice(_ context.Context, userID string, deviceID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, session := range r.s.sessions {
		if session.UserID == userID && session.DeviceID == deviceID {
			delete(r.s.sessions, id)
		}
	}
	return nil
}

func (r *SessionRepository) FindByRefreshHash(_ context.Context, userID string, refreshHash []byte) (models.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, session := range r.s.sessions {
		if session.UserID == userID && string(session.RefreshTokenHash) == string(refreshHash) {
			return session, nil
		}
	}
	return models.Session{}, repository.ErrSessionNotFound
}

func (r *SessionRepository) ListByUser(_ context.Context, userID string) ([]models.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return r.s.liveSessions(userID), nil
}

// liveSessions returns the user's unexpired sessions, most recently used first.
func (s *Store) liveSessions(userID string) []models.Session {
	now := s.now()
	out := make([]models.Session, 0)
	for _, session := range s.sessions {
		if session.UserID == userID && session.ExpiresAt.After(now) {
			out = append(out, session)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastSeenAt.After(out[j].LastSeenAt) })
	return out
}

func (r *SessionRepository) Touch(_ context.Context, sessionID string, ip string, userAgent string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	session, ok := r.s.sessions[sessionID]
	if !ok {
		return nil
	}
	session.LastSeenAt = r.s.tick()
	if ip != "" {
		session.IPAddress = ip
	}
	if userAgent != "" {
		session.UserAgent = userAgent
	}
	r.s.sessions[sessionID] = session
	return nil
}
