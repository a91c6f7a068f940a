package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Fazeel2019/Upskill-sub000/internal/ids"
	"github.com/Fazeel2019/Upskill-sub000/internal/models"
	"github.com/Fazeel2019/Upskill-sub000/internal/realtime"
)

type CourseService struct {
	courses CourseStore
	events  EventPublisher
	log     zerolog.Logger
}

func NewCourseService(courses CourseStore, events EventPublisher, log zerolog.Logger) *CourseService {
	return &CourseService{
		courses: courses,
		events:  events,
		log:     log.With().Str("service", "courses").Logger(),
	}
}

type LectureInput struct {
	ID              string `json:"id"`
	Title           string `json:"title" validate:"notblank,max=200"`
	VideoURL        string `json:"videoUrl" validate:"omitempty,url"`
	DurationMinutes int    `json:"durationMinutes" validate:"gte=0"`
}

type SectionInput struct {
	ID       string         `json:"id"`
	Title    string         `json:"title" validate:"notblank,max=200"`
	Lectures []LectureInput `json:"lectures" validate:"dive"`
}

type CourseInput struct {
	Title        string         `json:"title" validate:"notblank,max=200"`
	Description  string         `json:"description" validate:"max=20000"`
	Category     string         `json:"category" validate:"category"`
	PriceCents   *int64         `json:"priceCents" validate:"omitempty,gte=0"`
	ThumbnailURL string         `json:"thumbnailUrl" validate:"omitempty,url"`
	Instructor   string         `json:"instructor" validate:"max=120"`
	Sections     []SectionInput `json:"sections" validate:"dive"`
}

type CourseUpdate struct {
	Title        *string        `json:"title" validate:"omitempty,max=200"`
	Description  *string        `json:"description" validate:"omitempty,max=20000"`
	Category     *string        `json:"category"`
	PriceCents   *int64         `json:"priceCents" validate:"omitempty,gte=0"`
	ClearPrice   bool           `json:"clearPrice"`
	ThumbnailURL *string        `json:"thumbnailUrl" validate:"omitempty,url"`
	Instructor   *string        `json:"instructor" validate:"omitempty,max=120"`
	Sections     []SectionInput `json:"sections" validate:"omitempty,dive"`
}

func (s *CourseService) Create(ctx context.Context, actor models.Identity, in CourseInput) (models.Course, error) {
	in.Title = strings.TrimSpace(in.Title)
	if category, ok := models.ParseCategory(in.Category); ok {
		in.Category = string(category)
	}
	if err := validate.Struct(in); err != nil {
		return models.Course{}, validationError(err)
	}

	sections, err := buildSections(in.Sections)
	if err != nil {
		return models.Course{}, err
	}

	course := models.Course{
		ID:           ids.New(),
		Title:        in.Title,
		Description:  in.Description,
		Category:     models.Category(in.Category),
		PriceCents:   in.PriceCents,
		ThumbnailURL: in.ThumbnailURL,
		Instructor:   strings.TrimSpace(in.Instructor),
		Sections:     sections,
		CreatedBy:    actor.UserID,
	}

	created, err := s.courses.Create(ctx, course)
	if err != nil {
		return models.Course{}, err
	}
	s.log.Info().Str("course_id", created.ID).Str("actor", actor.UserID).Msg("course created")
	s.events.Publish(ctx, "course.created", realtime.TopicCourses)
	return created, nil
}

func (s *CourseService) Update(ctx context.Context, id string, in CourseUpdate) (models.Course, error) {
	if err := validate.Struct(in); err != nil {
		return models.Course{}, validationError(err)
	}

	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		return models.Course{}, err
	}

	patch := models.CoursePatch{
		Title:        trimmed(in.Title),
		Description:  in.Description,
		PriceCents:   in.PriceCents,
		ClearPrice:   in.ClearPrice,
		ThumbnailURL: in.ThumbnailURL,
		Instructor:   trimmed(in.Instructor),
	}
	if patch.Title != nil && *patch.Title == "" {
		return models.Course{}, invalid("title must not be blank")
	}
	if in.Category != nil {
		category, ok := models.ParseCategory(*in.Category)
		if !ok {
			return models.Course{}, invalid("unknown category %q", *in.Category)
		}
		patch.Category = &category
	}
	if in.Sections != nil {
		if patch.Sections, err = buildSections(in.Sections); err != nil {
			return models.Course{}, err
		}
	}
	course.Apply(patch)

	updated, err := s.courses.Update(ctx, course)
	if err != nil {
		return models.Course{}, err
	}
	s.events.Publish(ctx, "course.updated", realtime.TopicCourses)
	return updated, nil
}

func (s *CourseService) Delete(ctx context.Context, id string) error {
	if err := s.courses.Delete(ctx, id); err != nil {
		return err
	}
	s.events.Publish(ctx, "course.deleted", realtime.TopicCourses)
	return nil
}

func (s *CourseService) Get(ctx context.Context, id string) (models.Course, error) {
	return s.courses.GetByID(ctx, id)
}

// List returns every course, or those in category when it is set.
func (s *CourseService) List(ctx context.Context, category string) ([]models.Course, error) {
	var filter models.Category
	if category != "" {
		parsed, ok := models.ParseCategory(category)
		if !ok {
			return nil, invalid("unknown category %q", category)
		}
		filter = parsed
	}
	return s.courses.List(ctx, filter)
}

func (s *CourseService) Watch(ctx context.Context, sub Subscriber, category string, emit func([]models.Course) error) error {
	subscription := sub.Subscribe(realtime.TopicCourses)
	defer subscription.Close()

	return realtime.Watch(ctx, subscription, func(ctx context.Context) ([]models.Course, error) {
		return s.List(ctx, category)
	}, emit)
}

// buildSections keeps given ids and assigns new ones where absent. Section
// ids and lecture ids must each be unique across the course.
func buildSections(in []SectionInput) ([]models.Section, error) {
	sections := make([]models.Section, 0, len(in))
	seenSections := make(map[string]bool, len(in))
	seenLectures := make(map[string]bool)
	for _, si := range in {
		section := models.Section{
			ID:       strings.TrimSpace(si.ID),
			Title:    strings.TrimSpace(si.Title),
			Lectures: make([]models.Lecture, 0, len(si.Lectures)),
		}
		if section.ID == "" {
			section.ID = ids.New()
		}
		if seenSections[section.ID] {
			return nil, invalid("duplicate section id %q", section.ID)
		}
		seenSections[section.ID] = true

		for _, li := range si.Lectures {
			lecture := models.Lecture{
				ID:              strings.TrimSpace(li.ID),
				Title:           strings.TrimSpace(li.Title),
				VideoURL:        li.VideoURL,
				DurationMinutes: li.DurationMinutes,
			}
			if lecture.ID == "" {
				lecture.ID = ids.New()
			}
			if seenLectures[lecture.ID] {
				return nil, invalid("duplicate lecture id %q", lecture.ID)
			}
			seenLectures[lecture.ID] = true
			section.Lectures = append(section.Lectures, lecture)
		}
		sections = append(sections, section)
	}
	return sections, nil
}
