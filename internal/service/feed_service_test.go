package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fazeel2019/Upskill-sub000/internal/ai"
	"github.com/Fazeel2019/Upskill-sub000/internal/models"
	"github.com/Fazeel2019/Upskill-sub000/internal/repository"
)

type stubCategorizer struct {
	category models.Category
	err      error
	calls    int
}

func (s *stubCategorizer) CategorizePost(context.Context, ai.CategorizeInput) (ai.CategorizeOutput, error) {
	s.calls++
	return ai.CategorizeOutput{Category: s.category}, s.err
}

func TestCreatePostCategorizes(t *testing.T) {
	h := newHarness(t)
	cat := &stubCategorizer{category: models.CategoryPublicHealth}
	svc := NewFeedService(h.store.Posts(), cat, h.events, h.log)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, "amy", "Flu shots are free this week", "")
	require.NoError(t, err)
	assert.Equal(t, models.CategoryPublicHealth, post.Category)

	explicit, err := svc.CreatePost(ctx, "amy", "Anything", "healthcare")
	require.NoError(t, err)
	assert.Equal(t, models.CategoryHealthcare, explicit.Category)
	assert.Equal(t, 1, cat.calls)
}

func TestCreatePostKeepsPostWhenCategorizeFails(t *testing.T) {
	h := newHarness(t)
	svc := NewFeedService(h.store.Posts(), &stubCategorizer{err: errors.New("model down")}, h.events, h.log)

	post, err := svc.CreatePost(context.Background(), "amy", "hello", "")
	require.NoError(t, err)
	assert.Empty(t, post.Category)

	_, err = svc.Get(context.Background(), post.ID)
	assert.NoError(t, err)
}

func TestLikesCommentsAndDelete(t *testing.T) {
	h := newHarness(t)
	svc := NewFeedService(h.store.Posts(), &stubCategorizer{category: models.CategorySTEM}, h.events, h.log)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, "amy", "hello", "")
	require.NoError(t, err)

	require.NoError(t, svc.Like(ctx, "ben", post.ID))
	require.NoError(t, svc.Like(ctx, "ben", post.ID))
	got, err := svc.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.LikeCount)

	require.NoError(t, svc.Unlike(ctx, "ben", post.ID))
	require.NoError(t, svc.Unlike(ctx, "ben", post.ID))
	got, _ = svc.Get(ctx, post.ID)
	assert.Equal(t, 0, got.LikeCount)

	_, err = svc.AddComment(ctx, "ben", post.ID, "nice")
	require.NoError(t, err)
	_, err = svc.AddComment(ctx, "ben", post.ID, " ")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.AddComment(ctx, "ben", "missing", "nice")
	assert.ErrorIs(t, err, repository.ErrPostNotFound)

	comments, err := svc.Comments(ctx, post.ID)
	require.NoError(t, err)
	assert.Len(t, comments, 1)

	assert.ErrorIs(t, svc.Delete(ctx, member("ben"), post.ID), ErrForbidden)
	require.NoError(t, svc.Delete(ctx, admin("root"), post.ID))
	_, err = svc.Get(ctx, post.ID)
	assert.ErrorIs(t, err, repository.ErrPostNotFound)
}
