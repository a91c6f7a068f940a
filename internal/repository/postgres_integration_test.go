package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fazeel2019/Upskill-sub000/internal/config"
	"github.com/Fazeel2019/Upskill-sub000/internal/database"
	"github.com/Fazeel2019/Upskill-sub000/internal/ids"
	"github.com/Fazeel2019/Upskill-sub000/internal/models"
)

func integrationPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("UPSKILL_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("set UPSKILL_TEST_DATABASE_URL to run Postgres integration tests")
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, config.PostgresConfig{DSN: dsn})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, database.Migrate(ctx, pool, "up"))
	return pool
}

func insertUser(t *testing.T, users *UserRepository, name string) models.User {
	t.Helper()
	u := models.User{
		ID:           ids.New(),
		Email:        ids.New() + "@it.example.com",
		PasswordHash: []byte("hash"),
		DisplayName:  name,
		Role:         models.UserRoleUser,
		Status:       models.UserStatusActive,
	}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func TestUserRepositoryIntegration(t *testing.T) {
	pool := integrationPool(t)
	users := NewUserRepository(pool)
	ctx := context.Background()

	amy := insertUser(t, users, "Amy")

	dup := amy
	dup.ID = ids.New()
	assert.ErrorIs(t, users.Create(ctx, dup), ErrEmailTaken)

	found, err := users.FindByEmail(ctx, amy.Email)
	require.NoError(t, err)
	assert.Equal(t, amy.ID, found.ID)
	assert.Equal(t, map[string]string{}, found.SocialLinks)

	require.NoError(t, users.UpdateRole(ctx, amy.ID, models.UserRoleAdmin))
	found, err = users.GetByID(ctx, amy.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserRoleAdmin, found.Role)

	_, err = users.GetByID(ctx, ids.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestConnectionLifecycleIntegration(t *testing.T) {
	pool := integrationPool(t)
	users := NewUserRepository(pool)
	conns := NewConnectionRepository(pool)
	notes := NewNotificationRepository(pool)
	ctx := context.Background()

	amy := insertUser(t, users, "Amy")
	ben := insertUser(t, users, "Ben")

	request := models.NewConnectionRequest(amy.ID, ben.ID)
	require.NoError(t, conns.CreateRequest(ctx, request, models.Notification{
		ID: ids.New(), UserID: ben.ID, Type: models.NotificationConnectionRequest, Message: "Amy wants to connect",
	}))
	assert.ErrorIs(t, conns.CreateRequest(ctx, models.NewConnectionRequest(ben.ID, amy.ID), models.Notification{
		ID: ids.New(), UserID: amy.ID, Type: models.NotificationConnectionRequest, Message: "dup",
	}), ErrConnectionExists)

	accepted := models.Notification{ID: ids.New(), UserID: amy.ID, Type: models.NotificationConnectionAccepted, Message: "Ben accepted"}
	_, err := conns.Accept(ctx, ben.ID, amy.ID, ben.ID, accepted)
	assert.ErrorIs(t, err, ErrConnectionNotFound)

	conn, err := conns.Accept(ctx, ben.ID, amy.ID, amy.ID, accepted)
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionStatusConnected, conn.Status)

	unread, err := notes.CountUnread(ctx, ben.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, unread)
	unread, err = notes.CountUnread(ctx, amy.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, unread)

	require.NoError(t, conns.DeleteMatching(ctx, amy.ID, ben.ID, models.ConnectionStatusConnected, ""))
	_, err = conns.Get(ctx, amy.ID, ben.ID)
	assert.ErrorIs(t, err, ErrConnectionNotFound)
}

func TestProgressCompletionAwardsOnceIntegration(t *testing.T) {
	pool := integrationPool(t)
	users := NewUserRepository(pool)
	courses := NewCourseRepository(pool)
	progress := NewProgressRepository(pool)
	notes := NewNotificationRepository(pool)
	ctx := context.Background()

	amy := insertUser(t, users, "Amy")
	course, err := courses.Create(ctx, models.Course{
		ID:       ids.New(),
		Title:    "Biostatistics",
		Category: models.CategorySTEM,
		Sections: []models.Section{{ID: "s1", Title: "Intro", Lectures: []models.Lecture{{ID: "l1", Title: "One"}}}},
	})
	require.NoError(t, err)

	_, created, err := progress.Create(ctx, models.NewEnrollment(amy.ID, course.ID))
	require.NoError(t, err)
	assert.True(t, created)
	_, created, err = progress.Create(ctx, models.NewEnrollment(amy.ID, course.ID))
	require.NoError(t, err)
	assert.False(t, created)

	complete := func(p *models.UserCourseProgress) (*models.CourseCompletion, error) {
		now := time.Now().UTC()
		p.CompletedLectures = []string{"l1"}
		p.LastLectureID = "l1"
		p.Progress = 100
		p.CompletedAt = &now
		return &models.CourseCompletion{
			Achievement:  models.CourseAchievement(amy.ID, course),
			Notification: models.Notification{ID: ids.New(), UserID: amy.ID, Type: models.NotificationCourseCompleted, Message: "done"},
		}, nil
	}

	saved, awarded, err := progress.Update(ctx, amy.ID, course.ID, complete)
	require.NoError(t, err)
	assert.True(t, awarded)
	assert.Equal(t, 100, saved.Progress)
	assert.Equal(t, []string{"l1"}, saved.CompletedLectures)

	_, awarded, err = progress.Update(ctx, amy.ID, course.ID, complete)
	require.NoError(t, err)
	assert.False(t, awarded)

	achievements, err := progress.ListAchievements(ctx, amy.ID)
	require.NoError(t, err)
	assert.Len(t, achievements, 1)

	unread, err := notes.CountUnread(ctx, amy.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, unread)

	pending, err := progress.ListUnawarded(ctx, 100)
	require.NoError(t, err)
	for _, p := range pending {
		assert.NotEqual(t, amy.ID, p.UserID)
	}
}
