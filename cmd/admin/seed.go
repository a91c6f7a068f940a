package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Fazeel2019/Upskill-sub000/internal/cache"
	"github.com/Fazeel2019/Upskill-sub000/internal/models"
	"github.com/Fazeel2019/Upskill-sub000/internal/realtime"
	"github.com/Fazeel2019/Upskill-sub000/internal/repository"
	"github.com/Fazeel2019/Upskill-sub000/internal/service"
)

type nopEvents struct{}

func (nopEvents) Publish(context.Context, string, ...string) {}

func newSeedCmd() *cobra.Command {
	var actorID string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert demo courses and an upcoming event",
		Long: `Insert one demo course per category and one upcoming event.
Courses whose title already exists are skipped, so the command can be rerun.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			e, err := openEnv(ctx)
			if err != nil {
				return err
			}
			defer e.closer()

			var events service.EventPublisher = nopEvents{}
			if client, err := cache.NewRedisClient(ctx, e.cfg.Redis, "upskill-admin"); err == nil {
				defer client.Close()
				events = realtime.NewPublisher(realtime.NewRedisBus(client, e.cfg.Redis.Channel, e.log), e.log)
			} else {
				e.log.Warn().Err(err).Msg("redis unavailable; live clients will not see seeded rows until reload")
			}

			actor := models.Identity{UserID: actorID, Role: models.UserRoleSuperAdmin}
			courses := service.NewCourseService(repository.NewCourseRepository(e.pool), events, e.log)
			content := service.NewContentService(repository.NewContentRepository(e.pool), events, e.log)

			created, err := seedCourses(ctx, courses, actor)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d courses\n", created)

			event, err := content.Create(ctx, actor, string(models.ContentEvents), demoEvent(time.Now().UTC()))
			if err != nil {
				return fmt.Errorf("seed event: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded event %s\n", event.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&actorID, "actor", "", "User id recorded as creator of seeded rows")
	return cmd
}

type courseCreator interface {
	List(ctx context.Context, category string) ([]models.Course, error)
	Create(ctx context.Context, actor models.Identity, in service.CourseInput) (models.Course, error)
}

func seedCourses(ctx context.Context, courses courseCreator, actor models.Identity) (int, error) {
	existing, err := courses.List(ctx, "")
	if err != nil {
		return 0, err
	}
	titles := make(map[string]bool, len(existing))
	for _, c := range existing {
		titles[c.Title] = true
	}

	created := 0
	for _, in := range demoCourses() {
		if titles[in.Title] {
			continue
		}
		if _, err := courses.Create(ctx, actor, in); err != nil {
			return created, fmt.Errorf("seed %q: %w", in.Title, err)
		}
		created++
	}
	return created, nil
}

func demoCourses() []service.CourseInput {
	price := int64(4900)
	return []service.CourseInput{
		{
			Title:       "Foundations of Biostatistics",
			Description: "Descriptive statistics, inference and study design for life-science researchers.",
			Category:    string(models.CategorySTEM),
			Instructor:  "Dr. Amara Osei",
			Sections: []service.SectionInput{
				{Title: "Describing data", Lectures: []service.LectureInput{
					{Title: "Distributions", DurationMinutes: 12},
					{Title: "Measures of spread", DurationMinutes: 9},
				}},
				{Title: "Inference", Lectures: []service.LectureInput{
					{Title: "Confidence intervals", DurationMinutes: 15},
				}},
			},
		},
		{
			Title:       "Clinical Leadership Essentials",
			Description: "Leading multidisciplinary teams in hospital settings.",
			Category:    string(models.CategoryHealthcare),
			Instructor:  "Jordan Reyes, RN",
			PriceCents:  &price,
			Sections: []service.SectionInput{
				{Title: "Team dynamics", Lectures: []service.LectureInput{
					{Title: "Handoffs that work", DurationMinutes: 18},
					{Title: "Escalation paths", DurationMinutes: 11},
				}},
			},
		},
		{
			Title:       "Epidemiology in Practice",
			Description: "Outbreak investigation and surveillance fundamentals.",
			Category:    string(models.CategoryPublicHealth),
			Instructor:  "Dr. Lena Fischer",
			Sections: []service.SectionInput{
				{Title: "Surveillance", Lectures: []service.LectureInput{
					{Title: "Case definitions", DurationMinutes: 10},
				}},
			},
		},
	}
}

func demoEvent(now time.Time) service.ContentInput {
	starts := now.Add(14 * 24 * time.Hour).Truncate(time.Hour)
	ends := starts.Add(90 * time.Minute)
	return service.ContentInput{
		Title:    "Careers in Public Health: Live Panel",
		Summary:  "Practitioners from three agencies on how they got started.",
		Category: string(models.CategoryPublicHealth),
		Author:   "Upskill Team",
		StartsAt: &starts,
		EndsAt:   &ends,
	}
}
