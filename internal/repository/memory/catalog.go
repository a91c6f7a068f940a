package memory

import (
	"context"
	"sort"
	"time"

	"github.com/Fazeel2019/Upskill-sub000/internal/models"
	"github.com/Fazeel2019/Upskill-sub000/internal/repository"
)

type ContentRepository struct{ s *Store }

func contentKey(kind models.ContentKind, id string) string {
	return string(kind) + "/" + id
}

func (r *ContentRepository) Create(_ context.Context, c models.ContentItem) (models.ContentItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.tick()
	c.CreatedAt, c.UpdatedAt = now, now
	r.s.content[contentKey(c.Kind, c.ID)] = c
	return c, nil
}

func (r *ContentRepository) Update(_ context.Context, c models.ContentItem) (models.ContentItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := contentKey(c.Kind, c.ID)
	current, ok := r.s.content[key]
	if !ok {
		return models.ContentItem{}, repository.ErrContentNotFound
	}
	c.CreatedAt = current.CreatedAt
	c.CreatedBy = current.CreatedBy
	c.UpdatedAt = r.s.tick()
	r.s.content[key] = c
	return c, nil
}

func (r *ContentRepository) Delete(_ context.Context, kind models.ContentKind, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := contentKey(kind, id)
	if _, ok := r.s.content[key]; !ok {
		return repository.ErrContentNotFound
	}
	delete(r.s.content, key)
	return nil
}

func (r *ContentRepository) GetByID(_ context.Context, kind models.ContentKind, id string) (models.ContentItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.content[contentKey(kind, id)]
	if !ok {
		return models.ContentItem{}, repository.ErrContentNotFound
	}
	return c, nil
}

func (r *ContentRepository) List(_ context.Context, kind models.ContentKind, limit int) ([]models.ContentItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]models.ContentItem, 0)
	for _, c := range r.s.content {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, limit, 0), nil
}

type PostRepository struct{ s *Store }

func (r *PostRepository) Create(_ context.Context, p models.Post) (models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p.CreatedAt = r.s.tick()
	p.LikeCount, p.CommentCount = 0, 0
	r.s.posts[p.ID] = p
	return p, nil
}

func (r *PostRepository) GetByID(_ context.Context, id string) (models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.posts[id]
	if !ok {
		return models.Post{}, repository.ErrPostNotFound
	}
	return p, nil
}

func (r *PostRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.posts[id]; !ok {
		return repository.ErrPostNotFound
	}
	delete(r.s.posts, id)
	return nil
}

func (r *PostRepository) List(_ context.Context, limit int, before *time.Time) ([]models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]models.Post, 0)
	for _, p := range r.s.posts {
		if before == nil || p.CreatedAt.Before(*before) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, limit, 0), nil
}

func (r *PostRepository) AddComment(_ context.Context, c models.Comment) (models.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.posts[c.PostID]
	if !ok {
		return models.Comment{}, repository.ErrPostNotFound
	}
	c.CreatedAt = r.s.tick()
	r.s.comments = append(r.s.comments, c)
	p.CommentCount++
	r.s.posts[p.ID] = p
	return c, nil
}

func (r *PostRepository) ListComments(_ context.Context, postID string) ([]models.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]models.Comment, 0)
	for _, c := range r.s.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *PostRepository) Like(_ context.Context, postID string, userID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.posts[postID]
	if !ok {
		return false, repository.ErrPostNotFound
	}
	key := [2]string{postID, userID}
	if _, liked := r.s.likes[key]; liked {
		return false, nil
	}
	r.s.likes[key] = struct{}{}
	p.LikeCount++
	r.s.posts[postID] = p
	return true, nil
}

func (r *PostRepository) Unlike(_ context.Context, postID string, userID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := [2]string{postID, userID}
	if _, liked := r.s.likes[key]; !liked {
		return false, nil
	}
	delete(r.s.likes, key)
	if p, ok := r.s.posts[postID]; ok && p.LikeCount > 0 {
		p.LikeCount--
		r.s.posts[postID] = p
	}
	return true, nil
}

type PaymentRepository struct{ s *Store }

func (r *PaymentRepository) Create(_ context.Context, p models.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.tick()
	p.CreatedAt, p.UpdatedAt = now, now
	r.s.payments[p.IntentID] = p
	return nil
}

func (r *PaymentRepository) GetByIntentID(_ context.Context, intentID string) (models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.payments[intentID]
	if !ok {
		return models.Payment{}, repository.ErrPaymentNotFound
	}
	return p, nil
}

func (r *PaymentRepository) UpdateStatus(_ context.Context, intentID string, status models.PaymentStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.payments[intentID]
	if !ok {
		return repository.ErrPaymentNotFound
	}
	p.Status = status
	p.UpdatedAt = r.s.tick()
	r.s.payments[intentID] = p
	return nil
}

type MediaRepository struct{ s *Store }

func (r *MediaRepository) Create(_ context.Context, asset models.MediaAsset) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.media = append(r.s.media, asset)
	return nil
}

func (r *MediaRepository) List(_ context.Context, limit int, offset int) ([]models.MediaAsset, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]models.MediaAsset, len(r.s.media))
	for i, a := range r.s.media {
		out[len(out)-1-i] = a
	}
	return page(out, limit, offset), nil
}
