package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Fazeel2019/Upskill-sub000/internal/ids"
	"github.com/Fazeel2019/Upskill-sub000/internal/models"
	"github.com/Fazeel2019/Upskill-sub000/internal/queue"
	"github.com/Fazeel2019/Upskill-sub000/internal/realtime"
	"github.com/Fazeel2019/Upskill-sub000/internal/repository"
)

var (
	ErrSelfConnection         = errors.New("cannot connect to yourself")
	ErrAlreadyConnected       = errors.New("already connected")
	ErrIncomingRequestPending = errors.New("peer already sent you a request")
	ErrNoPendingRequest       = errors.New("no pending request")
	ErrNotConnected           = errors.New("not connected")
)

const searchLimit = 25

type ConnectionService struct {
	users       UserStore
	connections ConnectionStore
	events      EventPublisher
	tasks       TaskQueue
	log         zerolog.Logger
}

func NewConnectionService(users UserStore, connections ConnectionStore, events EventPublisher, tasks TaskQueue, log zerolog.Logger) *ConnectionService {
	return &ConnectionService{
		users:       users,
		connections: connections,
		events:      events,
		tasks:       tasks,
		log:         log.With().Str("service", "connections").Logger(),
	}
}

// SendRequest asks toID to connect. Re-sending a pending request is a no-op.
func (s *ConnectionService) SendRequest(ctx context.Context, fromID, toID string) (models.ConnectionState, error) {
	if fromID == toID {
		return models.ConnectionNone, ErrSelfConnection
	}

	var from models.User
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		from, err = s.users.GetByID(gctx, fromID)
		return err
	})
	g.Go(func() error {
		to, err := s.users.GetByID(gctx, toID)
		if err == nil && to.Status != models.UserStatusActive {
			return repository.ErrUserNotFound
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return models.ConnectionNone, err
	}

	n := models.Notification{
		ID:      ids.New(),
		UserID:  toID,
		Type:    models.NotificationConnectionRequest,
		Message: fmt.Sprintf("%s sent you a connection request", displayName(from)),
		Link:    profileLink(fromID),
	}

	err := s.connections.CreateRequest(ctx, models.NewConnectionRequest(fromID, toID), n)
	if errors.Is(err, repository.ErrConnectionExists) {
		existing, getErr := s.connections.Get(ctx, fromID, toID)
		if getErr != nil {
			return models.ConnectionNone, getErr
		}
		switch existing.StateFor(fromID) {
		case models.ConnectionPendingSent:
			return models.ConnectionPendingSent, nil
		case models.ConnectionPendingReceived:
			return models.ConnectionPendingReceived, ErrIncomingRequestPending
		default:
			return models.ConnectionConnected, ErrAlreadyConnected
		}
	}
	if err != nil {
		return models.ConnectionNone, err
	}

	s.publish(ctx, "connection.requested", fromID, toID, toID)
	return models.ConnectionPendingSent, nil
}

// Accept turns requesterID's pending request to ownerID into a connection.
func (s *ConnectionService) Accept(ctx context.Context, ownerID, requesterID string) error {
	owner, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		return err
	}

	n := models.Notification{
		ID:      ids.New(),
		UserID:  requesterID,
		Type:    models.NotificationConnectionAccepted,
		Message: fmt.Sprintf("%s accepted your connection request", displayName(owner)),
		Link:    profileLink(ownerID),
	}
	if _, err := s.connections.Accept(ctx, ownerID, requesterID, requesterID, n); err != nil {
		if errors.Is(err, repository.ErrConnectionNotFound) {
			return ErrNoPendingRequest
		}
		return err
	}

	s.publish(ctx, "connection.accepted", ownerID, requesterID, requesterID)

	task := queue.Task{Type: queue.TaskConnectionEmail, Data: map[string]string{
		"user_id": requesterID,
		"peer_id": ownerID,
	}}
	if err := s.tasks.Enqueue(ctx, task); err != nil {
		s.log.Warn().Err(err).Str("user_id", requesterID).Msg("enqueue connection email failed")
	}
	return nil
}

// Decline drops a pending request addressed to ownerID. Both sides end up
// with no relationship, so a new request may follow.
func (s *ConnectionService) Decline(ctx context.Context, ownerID, requesterID string) error {
	if err := s.connections.DeleteMatching(ctx, ownerID, requesterID, models.ConnectionStatusPending, requesterID); err != nil {
		if errors.Is(err, repository.ErrConnectionNotFound) {
			return ErrNoPendingRequest
		}
		return err
	}
	s.publish(ctx, "connection.declined", ownerID, requesterID)
	return nil
}

// Cancel withdraws a request ownerID sent to peerID.
func (s *ConnectionService) Cancel(ctx context.Context, ownerID, peerID string) error {
	if err := s.connections.DeleteMatching(ctx, ownerID, peerID, models.ConnectionStatusPending, ownerID); err != nil {
		if errors.Is(err, repository.ErrConnectionNotFound) {
			return ErrNoPendingRequest
		}
		return err
	}
	s.publish(ctx, "connection.cancelled", ownerID, peerID)
	return nil
}

func (s *ConnectionService) Remove(ctx context.Context, ownerID, peerID string) error {
	if err := s.connections.DeleteMatching(ctx, ownerID, peerID, models.ConnectionStatusConnected, ""); err != nil {
		if errors.Is(err, repository.ErrConnectionNotFound) {
			return ErrNotConnected
		}
		return err
	}
	s.publish(ctx, "connection.removed", ownerID, peerID)
	return nil
}

func (s *ConnectionService) Connections(ctx context.Context, userID string) (map[string]models.ConnectionState, error) {
	conns, err := s.connections.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return models.ConnectionMap(userID, conns), nil
}

type SearchResult struct {
	User       models.User            `json:"user"`
	Connection models.ConnectionState `json:"connection,omitempty"`
}

func (s *ConnectionService) Search(ctx context.Context, viewerID, query string) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []SearchResult{}, nil
	}

	var (
		users []models.User
		conns []models.Connection
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = s.users.Search(gctx, query, viewerID, searchLimit)
		return err
	})
	g.Go(func() error {
		var err error
		conns, err = s.connections.ListByUser(gctx, viewerID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	states := models.ConnectionMap(viewerID, conns)
	out := make([]SearchResult, 0, len(users))
	for _, u := range users {
		out = append(out, SearchResult{User: u, Connection: states[u.ID]})
	}
	return out, nil
}

func (s *ConnectionService) Watch(ctx context.Context, sub Subscriber, userID string, emit func(map[string]models.ConnectionState) error) error {
	subscription := sub.Subscribe(realtime.TopicConnections(userID))
	defer subscription.Close()

	return realtime.Watch(ctx, subscription, func(ctx context.Context) (map[string]models.ConnectionState, error) {
		return s.Connections(ctx, userID)
	}, emit)
}

// publish notifies both profiles, plus the notification feed of notifyUser.
func (s *ConnectionService) publish(ctx context.Context, kind, a, b string, notifyUser ...string) {
	topics := []string{realtime.TopicConnections(a), realtime.TopicConnections(b)}
	for _, u := range notifyUser {
		topics = append(topics, realtime.TopicNotifications(u))
	}
	s.events.Publish(ctx, kind, topics...)
}

func displayName(u models.User) string {
	if strings.TrimSpace(u.DisplayName) != "" {
		return u.DisplayName
	}
	return "Someone"
}

func profileLink(userID string) *string {
	link := "/profile/" + userID
	return &link
}
