package main

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fazeel2019/Upskill-sub000/internal/models"
	"github.com/Fazeel2019/Upskill-sub000/internal/repository/memory"
	"github.com/Fazeel2019/Upskill-sub000/internal/service"
)

func TestSeedCoursesIsRerunnable(t *testing.T) {
	store := memory.NewStore()
	courses := service.NewCourseService(store.Courses(), nopEvents{}, zerolog.Nop())
	actor := models.Identity{UserID: "ops", Role: models.UserRoleSuperAdmin}
	ctx := context.Background()

	created, err := seedCourses(ctx, courses, actor)
	require.NoError(t, err)
	assert.Equal(t, len(demoCourses()), created)

	created, err = seedCourses(ctx, courses, actor)
	require.NoError(t, err)
	assert.Zero(t, created)

	all, err := courses.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, len(demoCourses()))
}

func TestDemoEventIsValid(t *testing.T) {
	store := memory.NewStore()
	content := service.NewContentService(store.Content(), nopEvents{}, zerolog.Nop())

	item, err := content.Create(context.Background(), models.Identity{UserID: "ops", Role: models.UserRoleAdmin},
		string(models.ContentEvents), demoEvent(time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)))
	require.NoError(t, err)
	require.NotNil(t, item.StartsAt)
	assert.True(t, item.EndsAt.After(*item.StartsAt))
}
