package memory

import (
	"context"
	"sort"

	"github.com/Fazeel2019/Upskill-sub000/internal/models"
	"github.com/Fazeel2019/Upskill-sub000/internal/repository"
)

type CourseRepository struct{ s *Store }

func (r *CourseRepository) Create(_ context.Context, c models.Course) (models.Course, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.tick()
	c.CreatedAt, c.UpdatedAt = now, now
	if c.Sections == nil {
		c.Sections = []models.Section{}
	}
	r.s.courses[c.ID] = c
	return c, nil
}

func (r *CourseRepository) Update(_ context.Context, c models.Course) (models.Course, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.courses[c.ID]
	if !ok {
		return models.Course{}, repository.ErrCourseNotFound
	}
	c.CreatedAt = current.CreatedAt
	c.CreatedBy = current.CreatedBy
	c.UpdatedAt = r.s.tick()
	r.s.courses[c.ID] = c
	return c, nil
}

func (r *CourseRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.courses[id]; !ok {
		return repository.ErrCourseNotFound
	}
	delete(r.s.courses, id)
	return nil
}

func (r *CourseRepository) GetByID(_ context.Context, id string) (models.Course, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.courses[id]
	if !ok {
		return models.Course{}, repository.ErrCourseNotFound
	}
	return c, nil
}

func (r *CourseRepository) List(_ context.Context, category models.Category) ([]models.Course, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]models.Course, 0)
	for _, c := range r.s.courses {
		if category == "" || c.Category == category {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type ProgressRepository struct{ s *Store }

func cloneProgress(p models.UserCourseProgress) models.UserCourseProgress {
	p.CompletedLectures = cloneStrings(p.CompletedLectures)
	return p
}

func (r *ProgressRepository) Create(_ context.Context, p models.UserCourseProgress) (models.UserCourseProgress, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := [2]string{p.UserID, p.CourseID}
	if existing, ok := r.s.progress[key]; ok {
		return cloneProgress(existing), false, nil
	}
	now := r.s.tick()
	fresh := models.NewEnrollment(p.UserID, p.CourseID)
	fresh.EnrolledAt, fresh.UpdatedAt = now, now
	r.s.progress[key] = fresh
	return cloneProgress(fresh), true, nil
}

func (r *ProgressRepository) Get(_ context.Context, userID string, courseID string) (models.UserCourseProgress, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.progress[[2]string{userID, courseID}]
	if !ok {
		return models.UserCourseProgress{}, repository.ErrProgressNotFound
	}
	return cloneProgress(p), nil
}

func (r *ProgressRepository) ListByUser(_ context.Context, userID string) ([]models.UserCourseProgress, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]models.UserCourseProgress, 0)
	for _, p := range r.s.progress {
		if p.UserID == userID {
			out = append(out, cloneProgress(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *ProgressRepository) ListUnawarded(_ context.Context, limit int) ([]models.UserCourseProgress, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]models.UserCourseProgress, 0)
	for _, p := range r.s.progress {
		if p.Progress != 100 {
			continue
		}
		if _, ok := r.s.achievements[[2]string{p.UserID, models.AchievementID(p.CourseID)}]; ok {
			continue
		}
		out = append(out, cloneProgress(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	return page(out, limit, 0), nil
}

func (r *ProgressRepository) Reset(_ context.Context, userID string, courseID string) (models.UserCourseProgress, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := [2]string{userID, courseID}
	p, ok := r.s.progress[key]
	if !ok {
		return models.UserCourseProgress{}, repository.ErrProgressNotFound
	}
	p.Progress = 0
	p.CompletedLectures = []string{}
	p.LastLectureID = ""
	p.CompletedAt = nil
	p.UpdatedAt = r.s.tick()
	r.s.progress[key] = p
	return cloneProgress(p), nil
}

func (r *ProgressRepository) Update(_ context.Context, userID string, courseID string, fn repository.ProgressMutator) (models.UserCourseProgress, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := [2]string{userID, courseID}
	current, ok := r.s.progress[key]
	if !ok {
		return models.UserCourseProgress{}, false, repository.ErrProgressNotFound
	}
	working := cloneProgress(current)
	completion, err := fn(&working)
	if err != nil {
		return models.UserCourseProgress{}, false, err
	}
	working.UpdatedAt = r.s.tick()
	r.s.progress[key] = working

	awarded := false
	if completion != nil {
		awarded = r.award(completion.Achievement, &completion.Notification)
	}
	return cloneProgress(working), awarded, nil
}

func (r *ProgressRepository) AwardAchievement(_ context.Context, a models.Achievement, n *models.Notification) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return r.award(a, n), nil
}

func (r *ProgressRepository) award(a models.Achievement, n *models.Notification) bool {
	key := [2]string{a.UserID, a.ID}
	if _, exists := r.s.achievements[key]; exists {
		return false
	}
	a.AwardedAt = r.s.tick()
	r.s.achievements[key] = a
	if n != nil {
		r.s.insertNotification(*n)
	}
	return true
}

func (r *ProgressRepository) ListAchievements(_ context.Context, userID string) ([]models.Achievement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]models.Achievement, 0)
	for _, a := range r.s.achievements {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AwardedAt.After(out[j].AwardedAt) })
	return out, nil
}
