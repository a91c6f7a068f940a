package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Fazeel2019/Upskill-sub000/internal/ids"
	"github.com/Fazeel2019/Upskill-sub000/internal/models"
	"github.com/Fazeel2019/Upskill-sub000/internal/payment"
	"github.com/Fazeel2019/Upskill-sub000/internal/queue"
	"github.com/Fazeel2019/Upskill-sub000/internal/realtime"
	"github.com/Fazeel2019/Upskill-sub000/internal/repository"
)

var (
	ErrNotEnrolled     = errors.New("not enrolled")
	ErrLectureNotFound = errors.New("lecture not found")
	ErrPaymentRequired = errors.New("payment required")
)

const auditBatch = 200

type ProgressService struct {
	courses  CourseStore
	progress ProgressStore
	payments PaymentStore
	gateway  payment.Gateway
	events   EventPublisher
	tasks    TaskQueue
	log      zerolog.Logger
}

func NewProgressService(
	courses CourseStore,
	progress ProgressStore,
	payments PaymentStore,
	gateway payment.Gateway,
	events EventPublisher,
	tasks TaskQueue,
	log zerolog.Logger,
) *ProgressService {
	return &ProgressService{
		courses:  courses,
		progress: progress,
		payments: payments,
		gateway:  gateway,
		events:   events,
		tasks:    tasks,
		log:      log.With().Str("service", "progress").Logger(),
	}
}

// Enroll creates the progress record for a course. Enrolling again returns
// the existing record untouched; use Restart to start over.
func (s *ProgressService) Enroll(ctx context.Context, userID, courseID, paymentIntentID string) (models.UserCourseProgress, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return models.UserCourseProgress{}, err
	}

	existing, err := s.progress.Get(ctx, userID, courseID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrProgressNotFound) {
		return models.UserCourseProgress{}, err
	}

	if course.IsPaid() {
		if err := s.verifyPayment(ctx, userID, course, paymentIntentID); err != nil {
			return models.UserCourseProgress{}, err
		}
	}

	record, created, err := s.progress.Create(ctx, models.NewEnrollment(userID, courseID))
	if err != nil {
		return models.UserCourseProgress{}, err
	}
	if created {
		s.log.Info().Str("user_id", userID).Str("course_id", courseID).Msg("enrolled")
		s.events.Publish(ctx, "progress.enrolled", realtime.TopicProgress(userID))
	}
	return record, nil
}

func (s *ProgressService) verifyPayment(ctx context.Context, userID string, course models.Course, intentID string) error {
	if intentID == "" {
		return ErrPaymentRequired
	}

	intent, err := s.gateway.GetIntent(ctx, intentID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPaymentRequired, err)
	}
	if intent.Status != payment.IntentSucceeded ||
		intent.Metadata[metaUserID] != userID ||
		intent.Metadata[metaCourseID] != course.ID ||
		intent.AmountCents < *course.PriceCents {
		return ErrPaymentRequired
	}

	if err := s.payments.UpdateStatus(ctx, intentID, models.PaymentStatusSucceeded); err != nil {
		s.log.Warn().Err(err).Str("intent_id", intentID).Msg("record payment success failed")
	}
	return nil
}

// Restart zeroes a record. An achievement already awarded is kept.
func (s *ProgressService) Restart(ctx context.Context, userID, courseID string) (models.UserCourseProgress, error) {
	record, err := s.progress.Reset(ctx, userID, courseID)
	if err != nil {
		if errors.Is(err, repository.ErrProgressNotFound) {
			return models.UserCourseProgress{}, ErrNotEnrolled
		}
		return models.UserCourseProgress{}, err
	}
	s.events.Publish(ctx, "progress.restarted", realtime.TopicProgress(userID))
	return record, nil
}

// MarkLectureComplete adds lectureID to the completed set. Progress counts
// only lectures the course still has. Reaching 100 awards the course
// achievement and notifies the user in the same write; the certificate email
// goes out only when the achievement is new.
func (s *ProgressService) MarkLectureComplete(ctx context.Context, userID, courseID, lectureID string) (models.UserCourseProgress, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return models.UserCourseProgress{}, err
	}
	if !course.HasLecture(lectureID) {
		return models.UserCourseProgress{}, ErrLectureNotFound
	}

	record, awarded, err := s.progress.Update(ctx, userID, courseID, func(p *models.UserCourseProgress) (*models.CourseCompletion, error) {
		if !p.MarkLecture(lectureID, course) {
			return nil, nil
		}
		now := time.Now().UTC()
		p.CompletedAt = &now
		return &models.CourseCompletion{
			Achievement:  models.CourseAchievement(userID, course),
			Notification: completionNotification(userID, course),
		}, nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrProgressNotFound) {
			return models.UserCourseProgress{}, ErrNotEnrolled
		}
		return models.UserCourseProgress{}, err
	}

	topics := []string{realtime.TopicProgress(userID)}
	if awarded {
		topics = append(topics, realtime.TopicNotifications(userID))
		s.log.Info().Str("user_id", userID).Str("course_id", courseID).Msg("course completed")
		s.enqueueCertificate(ctx, userID, courseID)
	}
	s.events.Publish(ctx, "progress.updated", topics...)
	return record, nil
}

func (s *ProgressService) Get(ctx context.Context, userID, courseID string) (models.UserCourseProgress, error) {
	record, err := s.progress.Get(ctx, userID, courseID)
	if errors.Is(err, repository.ErrProgressNotFound) {
		return models.UserCourseProgress{}, ErrNotEnrolled
	}
	return record, err
}

func (s *ProgressService) List(ctx context.Context, userID string) ([]models.UserCourseProgress, error) {
	return s.progress.ListByUser(ctx, userID)
}

func (s *ProgressService) Watch(ctx context.Context, sub Subscriber, userID string, emit func([]models.UserCourseProgress) error) error {
	subscription := sub.Subscribe(realtime.TopicProgress(userID))
	defer subscription.Close()

	return realtime.Watch(ctx, subscription, func(ctx context.Context) ([]models.UserCourseProgress, error) {
		return s.progress.ListByUser(ctx, userID)
	}, emit)
}

func (s *ProgressService) Achievements(ctx context.Context, userID string) ([]models.Achievement, error) {
	return s.progress.ListAchievements(ctx, userID)
}

// Audit awards achievements missing from completed records. It returns the
// number awarded.
func (s *ProgressService) Audit(ctx context.Context) (int, error) {
	records, err := s.progress.ListUnawarded(ctx, auditBatch)
	if err != nil {
		return 0, err
	}

	awarded := 0
	for _, record := range records {
		course, err := s.courses.GetByID(ctx, record.CourseID)
		if errors.Is(err, repository.ErrCourseNotFound) {
			continue
		}
		if err != nil {
			return awarded, err
		}

		n := completionNotification(record.UserID, course)
		ok, err := s.progress.AwardAchievement(ctx, models.CourseAchievement(record.UserID, course), &n)
		if err != nil {
			return awarded, err
		}
		if !ok {
			continue
		}
		awarded++
		s.enqueueCertificate(ctx, record.UserID, course.ID)
		s.events.Publish(ctx, "achievement.awarded", realtime.TopicProgress(record.UserID), realtime.TopicNotifications(record.UserID))
	}
	if awarded > 0 {
		s.log.Info().Int("awarded", awarded).Msg("progress audit repaired achievements")
	}
	return awarded, nil
}

func (s *ProgressService) enqueueCertificate(ctx context.Context, userID, courseID string) {
	task := queue.Task{Type: queue.TaskCertificateEmail, Data: map[string]string{
		"user_id":   userID,
		"course_id": courseID,
	}}
	if err := s.tasks.Enqueue(ctx, task); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Str("course_id", courseID).Msg("enqueue certificate email failed")
	}
}

func completionNotification(userID string, course models.Course) models.Notification {
	link := "/courses/" + course.ID
	return models.Notification{
		ID:      ids.New(),
		UserID:  userID,
		Type:    models.NotificationCourseCompleted,
		Message: fmt.Sprintf("You completed %s and earned a certificate", course.Title),
		Link:    &link,
	}
}
