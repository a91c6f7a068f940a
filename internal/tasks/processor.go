package tasks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Fazeel2019/Upskill-sub000/internal/mailer"
	"github.com/Fazeel2019/Upskill-sub000/internal/models"
	"github.com/Fazeel2019/Upskill-sub000/internal/queue"
)

type UserLookup interface {
	GetByID(ctx context.Context, id string) (models.User, error)
}

type CourseLookup interface {
	GetByID(ctx context.Context, id string) (models.Course, error)
}

type NotificationPruner interface {
	Prune(ctx context.Context, retention time.Duration) (int64, error)
}

type SessionPruner interface {
	PruneSessions(ctx context.Context) (int64, error)
}

type ProgressAuditor interface {
	Audit(ctx context.Context) (int, error)
}

type Deps struct {
	Users         UserLookup
	Courses       CourseLookup
	Mailer        mailer.Mailer
	Notifications NotificationPruner
	Sessions      SessionPruner
	Progress      ProgressAuditor
	Retention     time.Duration
	AppURL        string
}

// Processor handles tasks read from the stream. Returning an error leaves
// the entry pending so another consumer can claim it later.
type Processor struct {
	deps   Deps
	logger zerolog.Logger
}

func NewProcessor(deps Deps, logger zerolog.Logger) *Processor {
	deps.AppURL = strings.TrimRight(deps.AppURL, "/")
	return &Processor{
		deps:   deps,
		logger: logger.With().Str("component", "tasks").Logger(),
	}
}

func (p *Processor) Handle(ctx context.Context, msg redis.XMessage) error {
	task, err := queue.DecodeTask(msg.Values)
	if err != nil {
		// A malformed entry will never succeed; ack it.
		p.logger.Error().Err(err).Str("message_id", msg.ID).Msg("drop malformed task")
		return nil
	}

	switch task.Type {
	case queue.TaskCertificateEmail:
		return p.handleCertificateEmail(ctx, task)
	case queue.TaskConnectionEmail:
		return p.handleConnectionEmail(ctx, task)
	case queue.TaskNotificationsPrune:
		return p.handlePrune(ctx)
	case queue.TaskProgressAudit:
		return p.handleAudit(ctx)
	default:
		p.logger.Warn().Str("type", task.Type).Msg("unknown task type")
		return nil
	}
}

func (p *Processor) handleCertificateEmail(ctx context.Context, task queue.Task) error {
	user, err := p.deps.Users.GetByID(ctx, task.Data["user_id"])
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	course, err := p.deps.Courses.GetByID(ctx, task.Data["course_id"])
	if err != nil {
		return fmt.Errorf("load course: %w", err)
	}

	link := p.deps.AppURL + "/courses/" + course.ID
	return p.deps.Mailer.Send(ctx, mailer.Message{
		ToName:  user.DisplayName,
		ToEmail: user.Email,
		Subject: "You completed " + course.Title,
		Text: fmt.Sprintf("Congratulations %s!\n\nYou finished %s and earned a new achievement.\n\n%s\n",
			user.DisplayName, course.Title, link),
	})
}

func (p *Processor) handleConnectionEmail(ctx context.Context, task queue.Task) error {
	user, err := p.deps.Users.GetByID(ctx, task.Data["user_id"])
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	peer, err := p.deps.Users.GetByID(ctx, task.Data["peer_id"])
	if err != nil {
		return fmt.Errorf("load peer: %w", err)
	}

	return p.deps.Mailer.Send(ctx, mailer.Message{
		ToName:  user.DisplayName,
		ToEmail: user.Email,
		Subject: peer.DisplayName + " accepted your connection request",
		Text: fmt.Sprintf("%s is now part of your network.\n\n%s/profile/%s\n",
			peer.DisplayName, p.deps.AppURL, peer.ID),
	})
}

func (p *Processor) handlePrune(ctx context.Context) error {
	deleted, err := p.deps.Notifications.Prune(ctx, p.deps.Retention)
	if err != nil {
		return err
	}
	p.logger.Info().Int64("deleted", deleted).Msg("notifications pruned")

	if p.deps.Sessions == nil {
		return nil
	}
	expired, err := p.deps.Sessions.PruneSessions(ctx)
	if err != nil {
		return fmt.Errorf("prune sessions: %w", err)
	}
	p.logger.Info().Int64("deleted", expired).Msg("expired sessions pruned")
	return nil
}

func (p *Processor) handleAudit(ctx context.Context) error {
	repaired, err := p.deps.Progress.Audit(ctx)
	if err != nil {
		return err
	}
	if repaired > 0 {
		p.logger.Warn().Int("repaired", repaired).Msg("awarded missing achievements")
	}
	return nil
}
