package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fazeel2019/Upskill-sub000/internal/models"
	"github.com/Fazeel2019/Upskill-sub000/internal/queue"
	"github.com/Fazeel2019/Upskill-sub000/internal/repository"
)

func fourLectureCourse(t *testing.T, h *harness, price *int64) models.Course {
	t.Helper()
	course, err := h.courses().Create(context.Background(), admin("root"), CourseInput{
		Title:      "Biostatistics",
		Category:   "stem",
		PriceCents: price,
		Sections: []SectionInput{
			{ID: "s1", Title: "Basics", Lectures: []LectureInput{{ID: "l1", Title: "One"}, {ID: "l2", Title: "Two"}}},
			{ID: "s2", Title: "Models", Lectures: []LectureInput{{ID: "l3", Title: "Three"}, {ID: "l4", Title: "Four"}}},
		},
	})
	require.NoError(t, err)
	return course
}

func TestFourLectureCompletionScenario(t *testing.T) {
	h := newHarness(t)
	h.user(t, "u", "U")
	course := fourLectureCourse(t, h, nil)
	svc := h.progress()
	ctx := context.Background()

	_, err := svc.Enroll(ctx, "u", course.ID, "")
	require.NoError(t, err)

	_, err = svc.MarkLectureComplete(ctx, "u", course.ID, "l1")
	require.NoError(t, err)
	p, err := svc.MarkLectureComplete(ctx, "u", course.ID, "l2")
	require.NoError(t, err)
	assert.Equal(t, 50, p.Progress)
	assert.Nil(t, p.CompletedAt)

	_, err = svc.MarkLectureComplete(ctx, "u", course.ID, "l3")
	require.NoError(t, err)
	p, err = svc.MarkLectureComplete(ctx, "u", course.ID, "l4")
	require.NoError(t, err)
	assert.Equal(t, 100, p.Progress)
	assert.NotNil(t, p.CompletedAt)

	// Re-marking after completion changes nothing and awards nothing new.
	_, err = svc.MarkLectureComplete(ctx, "u", course.ID, "l4")
	require.NoError(t, err)

	achievements, err := svc.Achievements(ctx, "u")
	require.NoError(t, err)
	require.Len(t, achievements, 1)
	assert.Equal(t, "cert-"+course.ID, achievements[0].ID)

	inbox := h.notificationsFor(t, "u")
	require.Len(t, inbox, 1)
	assert.Equal(t, models.NotificationCourseCompleted, inbox[0].Type)
	assert.Len(t, h.tasks.ofType(queue.TaskCertificateEmail), 1)
}

func TestProgressFollowsCourseEdits(t *testing.T) {
	h := newHarness(t)
	h.user(t, "u", "U")
	course := fourLectureCourse(t, h, nil)
	svc := h.progress()
	ctx := context.Background()

	_, err := svc.Enroll(ctx, "u", course.ID, "")
	require.NoError(t, err)
	for _, l := range []string{"l1", "l2", "l3"} {
		_, err = svc.MarkLectureComplete(ctx, "u", course.ID, l)
		require.NoError(t, err)
	}

	// l1 is replaced by l5, which the user has not watched.
	_, err = h.courses().Update(ctx, course.ID, CourseUpdate{Sections: []SectionInput{
		{ID: "s1", Title: "Basics", Lectures: []LectureInput{{ID: "l5", Title: "Five"}, {ID: "l2", Title: "Two"}}},
		{ID: "s2", Title: "Models", Lectures: []LectureInput{{ID: "l3", Title: "Three"}, {ID: "l4", Title: "Four"}}},
	}})
	require.NoError(t, err)

	p, err := svc.MarkLectureComplete(ctx, "u", course.ID, "l4")
	require.NoError(t, err)
	assert.Equal(t, 75, p.Progress)
	assert.Nil(t, p.CompletedAt)
	achievements, err := svc.Achievements(ctx, "u")
	require.NoError(t, err)
	assert.Empty(t, achievements)

	_, err = svc.MarkLectureComplete(ctx, "u", course.ID, "l1")
	assert.ErrorIs(t, err, ErrLectureNotFound)

	p, err = svc.MarkLectureComplete(ctx, "u", course.ID, "l5")
	require.NoError(t, err)
	assert.Equal(t, 100, p.Progress)
	assert.NotNil(t, p.CompletedAt)
	achievements, err = svc.Achievements(ctx, "u")
	require.NoError(t, err)
	assert.Len(t, achievements, 1)
}

func TestAddedLectureReopensCourseWithoutSecondCertificate(t *testing.T) {
	h := newHarness(t)
	h.user(t, "u", "U")
	course := fourLectureCourse(t, h, nil)
	svc := h.progress()
	ctx := context.Background()

	_, err := svc.Enroll(ctx, "u", course.ID, "")
	require.NoError(t, err)
	for _, l := range []string{"l1", "l2", "l3", "l4"} {
		_, err = svc.MarkLectureComplete(ctx, "u", course.ID, l)
		require.NoError(t, err)
	}

	_, err = h.courses().Update(ctx, course.ID, CourseUpdate{Sections: []SectionInput{
		{ID: "s1", Title: "Basics", Lectures: []LectureInput{{ID: "l1", Title: "One"}, {ID: "l2", Title: "Two"}}},
		{ID: "s2", Title: "Models", Lectures: []LectureInput{{ID: "l3", Title: "Three"}, {ID: "l4", Title: "Four"}, {ID: "l5", Title: "Five"}}},
	}})
	require.NoError(t, err)

	p, err := svc.MarkLectureComplete(ctx, "u", course.ID, "l4")
	require.NoError(t, err)
	assert.Equal(t, 80, p.Progress)
	assert.Nil(t, p.CompletedAt)

	p, err = svc.MarkLectureComplete(ctx, "u", course.ID, "l5")
	require.NoError(t, err)
	assert.Equal(t, 100, p.Progress)

	achievements, err := svc.Achievements(ctx, "u")
	require.NoError(t, err)
	assert.Len(t, achievements, 1)
	assert.Len(t, h.notificationsFor(t, "u"), 1)
	assert.Len(t, h.tasks.ofType(queue.TaskCertificateEmail), 1)
}

func TestCourseRejectsDuplicateIDs(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	courses := h.courses()

	_, err := courses.Create(ctx, admin("root"), CourseInput{
		Title:    "Dup lectures",
		Category: "STEM",
		Sections: []SectionInput{
			{ID: "s1", Title: "A", Lectures: []LectureInput{{ID: "l1", Title: "One"}}},
			{ID: "s2", Title: "B", Lectures: []LectureInput{{ID: "l1", Title: "One again"}}},
		},
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = courses.Create(ctx, admin("root"), CourseInput{
		Title:    "Dup sections",
		Category: "STEM",
		Sections: []SectionInput{{ID: "s1", Title: "A"}, {ID: "s1", Title: "B"}},
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	course := fourLectureCourse(t, h, nil)
	_, err = courses.Update(ctx, course.ID, CourseUpdate{Sections: []SectionInput{
		{ID: "s1", Title: "A", Lectures: []LectureInput{{ID: "l1", Title: "One"}, {ID: "l1", Title: "One"}}},
	}})
	assert.ErrorIs(t, err, ErrInvalidInput)

	unchanged, err := courses.Get(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, unchanged.TotalLectures())
}

func TestMarkLectureCompleteIsIdempotentAndRounded(t *testing.T) {
	h := newHarness(t)
	h.user(t, "u", "U")
	course, err := h.courses().Create(context.Background(), admin("root"), CourseInput{
		Title:    "Triage",
		Category: "Healthcare",
		Sections: []SectionInput{{Title: "All", Lectures: []LectureInput{{ID: "a", Title: "A"}, {ID: "b", Title: "B"}, {ID: "c", Title: "C"}}}},
	})
	require.NoError(t, err)
	svc := h.progress()
	ctx := context.Background()

	_, err = svc.Enroll(ctx, "u", course.ID, "")
	require.NoError(t, err)

	first, err := svc.MarkLectureComplete(ctx, "u", course.ID, "a")
	require.NoError(t, err)
	assert.Equal(t, 33, first.Progress)

	second, err := svc.MarkLectureComplete(ctx, "u", course.ID, "a")
	require.NoError(t, err)
	assert.Equal(t, first.Progress, second.Progress)
	assert.Equal(t, first.CompletedLectures, second.CompletedLectures)

	third, err := svc.MarkLectureComplete(ctx, "u", course.ID, "b")
	require.NoError(t, err)
	assert.Equal(t, 67, third.Progress)
	assert.Equal(t, "b", third.LastLectureID)
}

func TestMarkLectureCompleteErrors(t *testing.T) {
	h := newHarness(t)
	h.user(t, "u", "U")
	course := fourLectureCourse(t, h, nil)
	svc := h.progress()
	ctx := context.Background()

	_, err := svc.MarkLectureComplete(ctx, "u", course.ID, "l1")
	assert.ErrorIs(t, err, ErrNotEnrolled)

	_, err = svc.Enroll(ctx, "u", course.ID, "")
	require.NoError(t, err)
	_, err = svc.MarkLectureComplete(ctx, "u", course.ID, "nope")
	assert.ErrorIs(t, err, ErrLectureNotFound)

	_, err = svc.MarkLectureComplete(ctx, "u", "missing", "l1")
	assert.ErrorIs(t, err, repository.ErrCourseNotFound)

	_, err = svc.Get(ctx, "other", course.ID)
	assert.ErrorIs(t, err, ErrNotEnrolled)
}

func TestReEnrollKeepsProgressAndRestartResets(t *testing.T) {
	h := newHarness(t)
	h.user(t, "u", "U")
	course := fourLectureCourse(t, h, nil)
	svc := h.progress()
	ctx := context.Background()

	_, err := svc.Enroll(ctx, "u", course.ID, "")
	require.NoError(t, err)
	for _, l := range []string{"l1", "l2", "l3", "l4"} {
		_, err = svc.MarkLectureComplete(ctx, "u", course.ID, l)
		require.NoError(t, err)
	}

	again, err := svc.Enroll(ctx, "u", course.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 100, again.Progress)

	reset, err := svc.Restart(ctx, "u", course.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, reset.Progress)
	assert.Empty(t, reset.CompletedLectures)
	assert.Nil(t, reset.CompletedAt)

	for _, l := range []string{"l1", "l2", "l3", "l4"} {
		_, err = svc.MarkLectureComplete(ctx, "u", course.ID, l)
		require.NoError(t, err)
	}

	achievements, err := svc.Achievements(ctx, "u")
	require.NoError(t, err)
	assert.Len(t, achievements, 1)
	assert.Len(t, h.notificationsFor(t, "u"), 1)
	assert.Len(t, h.tasks.ofType(queue.TaskCertificateEmail), 1, "second completion sends no second certificate")

	_, err = svc.Restart(ctx, "stranger", course.ID)
	assert.ErrorIs(t, err, ErrNotEnrolled)
}

func TestPaidCourseEnrollmentNeedsSucceededIntent(t *testing.T) {
	h := newHarness(t)
	h.user(t, "u", "U")
	price := int64(4900)
	course := fourLectureCourse(t, h, &price)
	svc := h.progress()
	ctx := context.Background()

	_, err := svc.Enroll(ctx, "u", course.ID, "")
	assert.ErrorIs(t, err, ErrPaymentRequired)

	res, err := h.checkout().CreatePaymentIntent(ctx, member("u"), CheckoutInput{Amount: price, CourseID: course.ID, UserID: "u"})
	require.NoError(t, err)

	_, err = svc.Enroll(ctx, "u", course.ID, res.IntentID)
	assert.ErrorIs(t, err, ErrPaymentRequired, "intent not confirmed yet")

	h.gw.Succeed(res.IntentID)

	// Someone else's intent does not unlock the course.
	h.user(t, "v", "V")
	_, err = svc.Enroll(ctx, "v", course.ID, res.IntentID)
	assert.ErrorIs(t, err, ErrPaymentRequired)

	p, err := svc.Enroll(ctx, "u", course.ID, res.IntentID)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Progress)

	paid, err := h.store.Payments().GetByIntentID(ctx, res.IntentID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusSucceeded, paid.Status)
}

func TestAuditAwardsMissingAchievements(t *testing.T) {
	h := newHarness(t)
	h.user(t, "u", "U")
	course := fourLectureCourse(t, h, nil)
	ctx := context.Background()

	// A record completed before achievements were written in the same transaction.
	_, _, err := h.store.Progress().Create(ctx, models.NewEnrollment("u", course.ID))
	require.NoError(t, err)
	_, _, err = h.store.Progress().Update(ctx, "u", course.ID, func(p *models.UserCourseProgress) (*models.CourseCompletion, error) {
		for _, l := range []string{"l1", "l2", "l3", "l4"} {
			p.MarkLecture(l, course)
		}
		return nil, nil
	})
	require.NoError(t, err)

	svc := h.progress()
	awarded, err := svc.Audit(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, awarded)

	awarded, err = svc.Audit(ctx)
	require.NoError(t, err)
	assert.Zero(t, awarded)
	assert.Len(t, h.notificationsFor(t, "u"), 1)
}
