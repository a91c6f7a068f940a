package service

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/Fazeel2019/Upskill-sub000/internal/models"
	"github.com/Fazeel2019/Upskill-sub000/internal/queue"
	"github.com/Fazeel2019/Upskill-sub000/internal/realtime"
	"github.com/Fazeel2019/Upskill-sub000/internal/repository"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
)

// EventPublisher announces that the data behind topics changed.
type EventPublisher interface {
	Publish(ctx context.Context, kind string, topics ...string)
}

// Subscriber opens live-query subscriptions.
type Subscriber interface {
	Subscribe(topics ...string) *realtime.Subscription
}

type TaskQueue interface {
	Enqueue(ctx context.Context, task queue.Task) error
}

type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	UpdateProfile(ctx context.Context, user models.User) (models.User, error)
	UpdateStatus(ctx context.Context, id string, status models.UserStatus) error
	UpdateRole(ctx context.Context, id string, role models.UserRole) error
	Search(ctx context.Context, q string, excludeID string, limit int) ([]models.User, error)
	List(ctx context.Context, limit int, offset int) ([]models.User, error)
}

type SessionStore interface {
	Upsert(ctx context.Context, session models.Session) error
	Trim(ctx context.Context, userID string, keep int) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	GetByID(ctx context.Context, id string) (models.Session, error)
	DeleteByID(ctx context.Context, id string) error
	DeleteByDevice(ctx context.Context, userID string, deviceID string) error
	FindByRefreshHash(ctx context.Context, userID string, refreshHash []byte) (models.Session, error)
	ListByUser(ctx context.Context, userID string) ([]models.Session, error)
	Touch(ctx context.Context, sessionID string, ip string, userAgent string) error
}

type ConnectionStore interface {
	Get(ctx context.Context, a string, b string) (models.Connection, error)
	ListByUser(ctx context.Context, userID string) ([]models.Connection, error)
	CreateRequest(ctx context.Context, conn models.Connection, n models.Notification) error
	Accept(ctx context.Context, a string, b string, requesterID string, n models.Notification) (models.Connection, error)
	DeleteMatching(ctx context.Context, a string, b string, status models.ConnectionStatus, requesterID string) error
}

type CourseStore interface {
	Create(ctx context.Context, c models.Course) (models.Course, error)
	Update(ctx context.Context, c models.Course) (models.Course, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (models.Course, error)
	List(ctx context.Context, category models.Category) ([]models.Course, error)
}

type ProgressStore interface {
	Create(ctx context.Context, p models.UserCourseProgress) (models.UserCourseProgress, bool, error)
	Get(ctx context.Context, userID string, courseID string) (models.UserCourseProgress, error)
	ListByUser(ctx context.Context, userID string) ([]models.UserCourseProgress, error)
	ListUnawarded(ctx context.Context, limit int) ([]models.UserCourseProgress, error)
	Reset(ctx context.Context, userID string, courseID string) (models.UserCourseProgress, error)
	Update(ctx context.Context, userID string, courseID string, fn repository.ProgressMutator) (models.UserCourseProgress, bool, error)
	AwardAchievement(ctx context.Context, a models.Achievement, n *models.Notification) (bool, error)
	ListAchievements(ctx context.Context, userID string) ([]models.Achievement, error)
}

type NotificationStore interface {
	Create(ctx context.Context, n models.Notification) error
	ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID string, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type ChatStore interface {
	AppendMessage(ctx context.Context, msg models.Message, participants []string, n *models.Notification) (models.Message, error)
	GetChat(ctx context.Context, id string) (models.Chat, error)
	ListByUser(ctx context.Context, userID string) ([]models.Chat, error)
	ListMessages(ctx context.Context, chatID string) ([]models.Message, error)
}

type ContentStore interface {
	Create(ctx context.Context, c models.ContentItem) (models.ContentItem, error)
	Update(ctx context.Context, c models.ContentItem) (models.ContentItem, error)
	Delete(ctx context.Context, kind models.ContentKind, id string) error
	GetByID(ctx context.Context, kind models.ContentKind, id string) (models.ContentItem, error)
	List(ctx context.Context, kind models.ContentKind, limit int) ([]models.ContentItem, error)
}

type PostStore interface {
	Create(ctx context.Context, p models.Post) (models.Post, error)
	GetByID(ctx context.Context, id string) (models.Post, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit int, before *time.Time) ([]models.Post, error)
	AddComment(ctx context.Context, c models.Comment) (models.Comment, error)
	ListComments(ctx context.Context, postID string) ([]models.Comment, error)
	Like(ctx context.Context, postID string, userID string) (bool, error)
	Unlike(ctx context.Context, postID string, userID string) (bool, error)
}

type PaymentStore interface {
	Create(ctx context.Context, p models.Payment) error
	GetByIntentID(ctx context.Context, intentID string) (models.Payment, error)
	UpdateStatus(ctx context.Context, intentID string, status models.PaymentStatus) error
}

type MediaStore interface {
	Create(ctx context.Context, asset models.MediaAsset) error
	List(ctx context.Context, limit int, offset int) ([]models.MediaAsset, error)
}

// ObjectStore is the blob side of media uploads.
type ObjectStore interface {
	Bucket() string
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	PublicURL(key string) string
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
