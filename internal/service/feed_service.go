package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/Fazeel2019/Upskill-sub000/internal/ai"
	"github.com/Fazeel2019/Upskill-sub000/internal/ids"
	"github.com/Fazeel2019/Upskill-sub000/internal/models"
	"github.com/Fazeel2019/Upskill-sub000/internal/realtime"
)

const (
	maxPostLength    = 5000
	maxCommentLength = 2000
	feedPageSize     = 50
)

type Categorizer interface {
	CategorizePost(ctx context.Context, in ai.CategorizeInput) (ai.CategorizeOutput, error)
}

type FeedService struct {
	posts       PostStore
	categorizer Categorizer
	events      EventPublisher
	log         zerolog.Logger
}

func NewFeedService(posts PostStore, categorizer Categorizer, events EventPublisher, log zerolog.Logger) *FeedService {
	return &FeedService{
		posts:       posts,
		categorizer: categorizer,
		events:      events,
		log:         log.With().Str("service", "feed").Logger(),
	}
}

// CreatePost stores a post. Without a category the AI flow picks one; if it
// fails the post is stored uncategorized.
func (s *FeedService) CreatePost(ctx context.Context, authorID, content, category string) (models.Post, error) {
	content = strings.TrimSpace(content)
	if content == "" || utf8.RuneCountInString(content) > maxPostLength {
		return models.Post{}, invalid("content must be 1 to %d characters", maxPostLength)
	}

	post := models.Post{
		ID:       ids.New(),
		AuthorID: authorID,
		Content:  content,
	}
	if category != "" {
		parsed, ok := models.ParseCategory(category)
		if !ok {
			return models.Post{}, invalid("unknown category %q", category)
		}
		post.Category = parsed
	} else if s.categorizer != nil {
		out, err := s.categorizer.CategorizePost(ctx, ai.CategorizeInput{PostContent: content})
		if err != nil {
			s.log.Warn().Err(err).Str("post_id", post.ID).Msg("categorize post failed")
		} else {
			post.Category = out.Category
		}
	}

	created, err := s.posts.Create(ctx, post)
	if err != nil {
		return models.Post{}, err
	}
	s.events.Publish(ctx, "post.created", realtime.TopicPosts)
	return created, nil
}

func (s *FeedService) List(ctx context.Context, limit int, before *time.Time) ([]models.Post, error) {
	return s.posts.List(ctx, clampLimit(limit, feedPageSize, feedPageSize), before)
}

func (s *FeedService) Get(ctx context.Context, id string) (models.Post, error) {
	return s.posts.GetByID(ctx, id)
}

func (s *FeedService) Delete(ctx context.Context, actor models.Identity, id string) error {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if post.AuthorID != actor.UserID && !actor.IsAdmin() {
		return ErrForbidden
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		return err
	}
	s.events.Publish(ctx, "post.deleted", realtime.TopicPosts)
	return nil
}

func (s *FeedService) AddComment(ctx context.Context, authorID, postID, text string) (models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" || utf8.RuneCountInString(text) > maxCommentLength {
		return models.Comment{}, invalid("text must be 1 to %d characters", maxCommentLength)
	}

	comment, err := s.posts.AddComment(ctx, models.Comment{
		ID:       ids.New(),
		PostID:   postID,
		AuthorID: authorID,
		Text:     text,
	})
	if err != nil {
		return models.Comment{}, err
	}
	s.events.Publish(ctx, "comment.created", realtime.TopicPosts, realtime.TopicPostComments(postID))
	return comment, nil
}

func (s *FeedService) Comments(ctx context.Context, postID string) ([]models.Comment, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	return s.posts.ListComments(ctx, postID)
}

// Like and Unlike have set semantics; repeating either is a no-op.
func (s *FeedService) Like(ctx context.Context, userID, postID string) error {
	changed, err := s.posts.Like(ctx, postID, userID)
	if err != nil {
		return err
	}
	if changed {
		s.events.Publish(ctx, "post.liked", realtime.TopicPosts)
	}
	return nil
}

func (s *FeedService) Unlike(ctx context.Context, userID, postID string) error {
	changed, err := s.posts.Unlike(ctx, postID, userID)
	if err != nil {
		return err
	}
	if changed {
		s.events.Publish(ctx, "post.unliked", realtime.TopicPosts)
	}
	return nil
}

func (s *FeedService) Watch(ctx context.Context, sub Subscriber, emit func([]models.Post) error) error {
	subscription := sub.Subscribe(realtime.TopicPosts)
	defer subscription.Close()

	return realtime.Watch(ctx, subscription, func(ctx context.Context) ([]models.Post, error) {
		return s.posts.List(ctx, feedPageSize, nil)
	}, emit)
}
