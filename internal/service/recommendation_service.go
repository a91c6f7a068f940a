package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Fazeel2019/Upskill-sub000/internal/ai"
	"github.com/Fazeel2019/Upskill-sub000/internal/models"
)

const (
	defaultUserTitle = "Professional"
	catalogPerKind   = 20
)

type AIFlows interface {
	Categorizer
	RecommendContent(ctx context.Context, in ai.RecommendInput) (ai.RecommendOutput, error)
}

// RecommendationService runs the AI flows, either on caller input or on an
// input assembled from the caller's profile and the catalog.
type RecommendationService struct {
	flows   AIFlows
	users   UserStore
	courses CourseStore
	content ContentStore
	log     zerolog.Logger
}

func NewRecommendationService(flows AIFlows, users UserStore, courses CourseStore, content ContentStore, log zerolog.Logger) *RecommendationService {
	return &RecommendationService{
		flows:   flows,
		users:   users,
		courses: courses,
		content: content,
		log:     log.With().Str("service", "recommendations").Logger(),
	}
}

func (s *RecommendationService) Categorize(ctx context.Context, in ai.CategorizeInput) (ai.CategorizeOutput, error) {
	return s.flows.CategorizePost(ctx, in)
}

func (s *RecommendationService) Recommend(ctx context.Context, in ai.RecommendInput) (ai.RecommendOutput, error) {
	return s.flows.RecommendContent(ctx, in)
}

func (s *RecommendationService) ForUser(ctx context.Context, userID string) (ai.RecommendOutput, error) {
	var (
		user    models.User
		courses []models.Course
		events  []models.ContentItem
		res     []models.ContentItem
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		user, err = s.users.GetByID(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		courses, err = s.courses.List(gctx, "")
		return err
	})
	g.Go(func() (err error) {
		events, err = s.content.List(gctx, models.ContentEvents, catalogPerKind)
		return err
	})
	g.Go(func() (err error) {
		res, err = s.content.List(gctx, models.ContentResources, catalogPerKind)
		return err
	})
	if err := g.Wait(); err != nil {
		return ai.RecommendOutput{}, err
	}

	links := make(map[string]string)
	resources := make([]ai.Resource, 0, catalogPerKind*3)
	for i, c := range courses {
		if i == catalogPerKind {
			break
		}
		links[c.ID] = "/courses/" + c.ID
		resources = append(resources, ai.Resource{ID: c.ID, Title: c.Title, Description: summarize(c.Description), Category: string(c.Category)})
	}
	for _, item := range append(events, res...) {
		links[item.ID] = "/" + string(item.Kind) + "/" + item.ID
		resources = append(resources, ai.Resource{ID: item.ID, Title: item.Title, Description: summarize(item.Summary), Category: string(item.Category)})
	}

	title := strings.TrimSpace(user.Title)
	if title == "" {
		title = defaultUserTitle
	}

	out, err := s.flows.RecommendContent(ctx, ai.RecommendInput{UserTitle: title, AvailableResources: resources})
	if err != nil {
		return ai.RecommendOutput{}, err
	}

	// The model answers with catalog ids; anything it made up loses its link.
	for i, rec := range out.Recommendations {
		if rec.Link == nil {
			continue
		}
		if path, ok := links[*rec.Link]; ok {
			out.Recommendations[i].Link = &path
		} else {
			out.Recommendations[i].Link = nil
		}
	}
	return out, nil
}

func summarize(s string) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= 280 {
		return string(runes)
	}
	return strings.TrimSpace(string(runes[:280])) + "…"
}
