package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/Fazeel2019/Upskill-sub000/internal/ids"
	"github.com/Fazeel2019/Upskill-sub000/internal/models"
	"github.com/Fazeel2019/Upskill-sub000/internal/realtime"
)

const maxMessageLength = 4000

type MessagingService struct {
	users  UserStore
	chats  ChatStore
	events EventPublisher
	log    zerolog.Logger
}

func NewMessagingService(users UserStore, chats ChatStore, events EventPublisher, log zerolog.Logger) *MessagingService {
	return &MessagingService{
		users:  users,
		chats:  chats,
		events: events,
		log:    log.With().Str("service", "messaging").Logger(),
	}
}

// ChatWith returns the chat id shared by viewerID and peerID. No chat record
// is needed until the first message.
func (s *MessagingService) ChatWith(ctx context.Context, viewerID, peerID string) (string, error) {
	if viewerID == peerID {
		return "", invalid("cannot chat with yourself")
	}
	if _, err := s.users.GetByID(ctx, peerID); err != nil {
		return "", err
	}
	return models.ChatID(viewerID, peerID), nil
}

// authorize checks that viewerID is one of the two ids encoded in chatID and
// that the other one is a registered user, and returns that peer's id.
func (s *MessagingService) authorize(ctx context.Context, chatID, viewerID string) (string, error) {
	a, b, err := models.ChatParticipants(chatID)
	if err != nil {
		return "", invalid("%v", err)
	}
	var peerID string
	switch viewerID {
	case a:
		peerID = b
	case b:
		peerID = a
	default:
		return "", ErrForbidden
	}
	if _, err := s.users.GetByID(ctx, peerID); err != nil {
		return "", err
	}
	return peerID, nil
}

func (s *MessagingService) Send(ctx context.Context, chatID, senderID, text string) (models.Message, error) {
	peerID, err := s.authorize(ctx, chatID, senderID)
	if err != nil {
		return models.Message{}, err
	}

	text = strings.TrimSpace(text)
	if text == "" || utf8.RuneCountInString(text) > maxMessageLength {
		return models.Message{}, invalid("text must be 1 to %d characters", maxMessageLength)
	}

	sender, err := s.users.GetByID(ctx, senderID)
	if err != nil {
		return models.Message{}, err
	}

	link := "/messages/" + chatID
	n := &models.Notification{
		ID:      ids.New(),
		UserID:  peerID,
		Type:    models.NotificationNewMessage,
		Message: fmt.Sprintf("New message from %s", displayName(sender)),
		Link:    &link,
	}
	msg := models.Message{
		ID:       ids.New(),
		ChatID:   chatID,
		SenderID: senderID,
		Text:     text,
	}
	a, b, _ := models.ChatParticipants(chatID)

	stored, err := s.chats.AppendMessage(ctx, msg, []string{a, b}, n)
	if err != nil {
		return models.Message{}, err
	}

	s.events.Publish(ctx, "message.created",
		realtime.TopicChat(chatID),
		realtime.TopicNotifications(peerID),
	)
	return stored, nil
}

// History returns every message of the chat, oldest first.
func (s *MessagingService) History(ctx context.Context, chatID, viewerID string) ([]models.Message, error) {
	if _, err := s.authorize(ctx, chatID, viewerID); err != nil {
		return nil, err
	}
	return s.chats.ListMessages(ctx, chatID)
}

func (s *MessagingService) Watch(ctx context.Context, sub Subscriber, chatID, viewerID string, emit func([]models.Message) error) error {
	if _, err := s.authorize(ctx, chatID, viewerID); err != nil {
		return err
	}

	subscription := sub.Subscribe(realtime.TopicChat(chatID))
	defer subscription.Close()

	return realtime.Watch(ctx, subscription, func(ctx context.Context) ([]models.Message, error) {
		return s.chats.ListMessages(ctx, chatID)
	}, emit)
}

func (s *MessagingService) ListChats(ctx context.Context, userID string) ([]models.Chat, error) {
	return s.chats.ListByUser(ctx, userID)
}
