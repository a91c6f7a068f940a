package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Fazeel2019/Upskill-sub000/internal/ids"
	"github.com/Fazeel2019/Upskill-sub000/internal/models"
	"github.com/Fazeel2019/Upskill-sub000/internal/realtime"
)

type ContentService struct {
	content ContentStore
	events  EventPublisher
	log     zerolog.Logger
}

func NewContentService(content ContentStore, events EventPublisher, log zerolog.Logger) *ContentService {
	return &ContentService{
		content: content,
		events:  events,
		log:     log.With().Str("service", "content").Logger(),
	}
}

type ContentInput struct {
	Title           string     `json:"title" validate:"notblank,max=200"`
	Summary         string     `json:"summary" validate:"max=1000"`
	Body            string     `json:"body" validate:"max=100000"`
	Category        string     `json:"category" validate:"category"`
	Author          string     `json:"author" validate:"max=120"`
	MediaURL        string     `json:"mediaUrl" validate:"omitempty,url"`
	ExternalURL     string     `json:"externalUrl" validate:"omitempty,url"`
	StartsAt        *time.Time `json:"startsAt"`
	EndsAt          *time.Time `json:"endsAt"`
	DurationMinutes *int       `json:"durationMinutes" validate:"omitempty,gte=0"`
}

type ContentUpdate struct {
	Title           *string    `json:"title" validate:"omitempty,max=200"`
	Summary         *string    `json:"summary" validate:"omitempty,max=1000"`
	Body            *string    `json:"body" validate:"omitempty,max=100000"`
	Category        *string    `json:"category"`
	Author          *string    `json:"author" validate:"omitempty,max=120"`
	MediaURL        *string    `json:"mediaUrl" validate:"omitempty,url"`
	ExternalURL     *string    `json:"externalUrl" validate:"omitempty,url"`
	StartsAt        *time.Time `json:"startsAt"`
	EndsAt          *time.Time `json:"endsAt"`
	DurationMinutes *int       `json:"durationMinutes" validate:"omitempty,gte=0"`
}

func parseKind(raw string) (models.ContentKind, error) {
	kind, ok := models.ParseContentKind(raw)
	if !ok {
		return "", invalid("unknown content kind %q", raw)
	}
	return kind, nil
}

func (s *ContentService) Create(ctx context.Context, actor models.Identity, rawKind string, in ContentInput) (models.ContentItem, error) {
	kind, err := parseKind(rawKind)
	if err != nil {
		return models.ContentItem{}, err
	}
	if category, ok := models.ParseCategory(in.Category); ok {
		in.Category = string(category)
	}
	if err := validate.Struct(in); err != nil {
		return models.ContentItem{}, validationError(err)
	}

	item := models.ContentItem{
		ID:              ids.New(),
		Kind:            kind,
		Title:           strings.TrimSpace(in.Title),
		Summary:         in.Summary,
		Body:            in.Body,
		Category:        models.Category(in.Category),
		Author:          strings.TrimSpace(in.Author),
		MediaURL:        in.MediaURL,
		ExternalURL:     in.ExternalURL,
		StartsAt:        in.StartsAt,
		EndsAt:          in.EndsAt,
		DurationMinutes: in.DurationMinutes,
		CreatedBy:       actor.UserID,
	}
	if err := checkSchedule(item); err != nil {
		return models.ContentItem{}, err
	}

	created, err := s.content.Create(ctx, item)
	if err != nil {
		return models.ContentItem{}, err
	}
	s.log.Info().Str("kind", string(kind)).Str("id", created.ID).Str("actor", actor.UserID).Msg("content created")
	s.events.Publish(ctx, "content.created", realtime.TopicContent(string(kind)))
	return created, nil
}

func (s *ContentService) Update(ctx context.Context, rawKind, id string, in ContentUpdate) (models.ContentItem, error) {
	kind, err := parseKind(rawKind)
	if err != nil {
		return models.ContentItem{}, err
	}
	if err := validate.Struct(in); err != nil {
		return models.ContentItem{}, validationError(err)
	}

	item, err := s.content.GetByID(ctx, kind, id)
	if err != nil {
		return models.ContentItem{}, err
	}

	patch := models.ContentPatch{
		Title:           trimmed(in.Title),
		Summary:         in.Summary,
		Body:            in.Body,
		Author:          trimmed(in.Author),
		MediaURL:        in.MediaURL,
		ExternalURL:     in.ExternalURL,
		StartsAt:        in.StartsAt,
		EndsAt:          in.EndsAt,
		DurationMinutes: in.DurationMinutes,
	}
	if patch.Title != nil && *patch.Title == "" {
		return models.ContentItem{}, invalid("title must not be blank")
	}
	if in.Category != nil {
		category, ok := models.ParseCategory(*in.Category)
		if !ok {
			return models.ContentItem{}, invalid("unknown category %q", *in.Category)
		}
		patch.Category = &category
	}
	item.Apply(patch)
	if err := checkSchedule(item); err != nil {
		return models.ContentItem{}, err
	}

	updated, err := s.content.Update(ctx, item)
	if err != nil {
		return models.ContentItem{}, err
	}
	s.events.Publish(ctx, "content.updated", realtime.TopicContent(string(kind)))
	return updated, nil
}

func (s *ContentService) Delete(ctx context.Context, rawKind, id string) error {
	kind, err := parseKind(rawKind)
	if err != nil {
		return err
	}
	if err := s.content.Delete(ctx, kind, id); err != nil {
		return err
	}
	s.events.Publish(ctx, "content.deleted", realtime.TopicContent(string(kind)))
	return nil
}

func (s *ContentService) Get(ctx context.Context, rawKind, id string) (models.ContentItem, error) {
	kind, err := parseKind(rawKind)
	if err != nil {
		return models.ContentItem{}, err
	}
	return s.content.GetByID(ctx, kind, id)
}

// List returns the whole collection of a kind, newest first.
func (s *ContentService) List(ctx context.Context, rawKind string) ([]models.ContentItem, error) {
	kind, err := parseKind(rawKind)
	if err != nil {
		return nil, err
	}
	return s.content.List(ctx, kind, 0)
}

func (s *ContentService) Watch(ctx context.Context, sub Subscriber, rawKind string, emit func([]models.ContentItem) error) error {
	kind, err := parseKind(rawKind)
	if err != nil {
		return err
	}

	subscription := sub.Subscribe(realtime.TopicContent(string(kind)))
	defer subscription.Close()

	return realtime.Watch(ctx, subscription, func(ctx context.Context) ([]models.ContentItem, error) {
		return s.content.List(ctx, kind, 0)
	}, emit)
}

func checkSchedule(item models.ContentItem) error {
	if item.StartsAt != nil && item.EndsAt != nil && item.EndsAt.Before(*item.StartsAt) {
		return invalid("endsAt must not be before startsAt")
	}
	return nil
}
