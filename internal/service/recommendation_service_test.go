package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fazeel2019/Upskill-sub000/internal/ai"
)

type capturingFlows struct {
	stubCategorizer
	input ai.RecommendInput
	out   func(in ai.RecommendInput) ai.RecommendOutput
}

func (f *capturingFlows) RecommendContent(_ context.Context, in ai.RecommendInput) (ai.RecommendOutput, error) {
	f.input = in
	return f.out(in), nil
}

func TestRecommendForUserMapsLinks(t *testing.T) {
	h := newHarness(t)
	h.user(t, "amy", "Amy")
	course := fourLectureCourse(t, h, nil)
	content := NewContentService(h.store.Content(), h.events, h.log)
	event, err := content.Create(context.Background(), admin("root"), "events", ContentInput{Title: "Meetup", Category: "STEM"})
	require.NoError(t, err)

	made := "made-up"
	flows := &capturingFlows{out: func(in ai.RecommendInput) ai.RecommendOutput {
		courseID, eventID := course.ID, event.ID
		return ai.RecommendOutput{Recommendations: []ai.Recommendation{
			{Type: ai.RecommendLearning, Title: "Take Biostatistics", Reason: "fits", Link: &courseID},
			{Type: ai.RecommendEvent, Title: "Go to Meetup", Reason: "network", Link: &eventID},
			{Type: ai.RecommendCommunity, Title: "Join a group", Reason: "peers", Link: &made},
		}}
	}}
	svc := NewRecommendationService(flows, h.store.Users(), h.store.Courses(), h.store.Content(), h.log)

	out, err := svc.ForUser(context.Background(), "amy")
	require.NoError(t, err)

	assert.Equal(t, "Professional", flows.input.UserTitle)
	assert.Len(t, flows.input.AvailableResources, 2)

	require.Len(t, out.Recommendations, 3)
	require.NotNil(t, out.Recommendations[0].Link)
	assert.Equal(t, "/courses/"+course.ID, *out.Recommendations[0].Link)
	require.NotNil(t, out.Recommendations[1].Link)
	assert.Equal(t, "/events/"+event.ID, *out.Recommendations[1].Link)
	assert.Nil(t, out.Recommendations[2].Link)
}

func TestSummarizeIsRuneSafe(t *testing.T) {
	long := ""
	for i := 0; i < 300; i++ {
		long += "é"
	}
	got := summarize(long)
	assert.Equal(t, 281, len([]rune(got)))
	assert.Equal(t, "short", summarize("  short "))
}
