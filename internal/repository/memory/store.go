// Package memory holds in-process implementations of the repositories,
// used by service and handler tests.
package memory

import (
	"sync"
	"time"

	"github.com/Fazeel2019/Upskill-sub000/internal/models"
)

// Store is the shared state behind every in-memory repository. One mutex
// covers all tables so multi-table writes are atomic like their SQL versions.
type Store struct {
	mu sync.Mutex

	now func() time.Time
	seq int64

	users         map[string]models.User
	sessions      map[string]models.Session
	connections   map[[2]string]models.Connection
	courses       map[string]models.Course
	progress      map[[2]string]models.UserCourseProgress
	achievements  map[[2]string]models.Achievement
	notifications []models.Notification
	chats         map[string]models.Chat
	messages      []models.Message
	content       map[string]models.ContentItem
	posts         map[string]models.Post
	comments      []models.Comment
	likes         map[[2]string]struct{}
	payments      map[string]models.Payment
	media         []models.MediaAsset
}

func NewStore() *Store {
	return &Store{
		now:          time.Now,
		users:        make(map[string]models.User),
		sessions:     make(map[string]models.Session),
		connections:  make(map[[2]string]models.Connection),
		courses:      make(map[string]models.Course),
		progress:     make(map[[2]string]models.UserCourseProgress),
		achievements: make(map[[2]string]models.Achievement),
		chats:        make(map[string]models.Chat),
		content:      make(map[string]models.ContentItem),
		posts:        make(map[string]models.Post),
		likes:        make(map[[2]string]struct{}),
		payments:     make(map[string]models.Payment),
	}
}

// SetClock overrides the time source.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// tick returns a strictly increasing timestamp, so ordering by time is stable.
func (s *Store) tick() time.Time {
	s.seq++
	return s.now().UTC().Add(time.Duration(s.seq) * time.Microsecond)
}

func (s *Store) Users() *UserRepository                 { return &UserRepository{s} }
func (s *Store) Sessions() *SessionRepository           { return &SessionRepository{s} }
func (s *Store) Connections() *ConnectionRepository     { return &ConnectionRepository{s} }
func (s *Store) Courses() *CourseRepository             { return &CourseRepository{s} }
func (s *Store) Progress() *ProgressRepository          { return &ProgressRepository{s} }
func (s *Store) Notifications() *NotificationRepository { return &NotificationRepository{s} }
func (s *Store) Chats() *ChatRepository                 { return &ChatRepository{s} }
func (s *Store) Content() *ContentRepository            { return &ContentRepository{s} }
func (s *Store) Posts() *PostRepository                 { return &PostRepository{s} }
func (s *Store) Payments() *PaymentRepository           { return &PaymentRepository{s} }
func (s *Store) Media() *MediaRepository                { return &MediaRepository{s} }

func (s *Store) insertNotification(n models.Notification) {
	n.Read = false
	n.CreatedAt = s.tick()
	s.notifications = append(s.notifications, n)
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
