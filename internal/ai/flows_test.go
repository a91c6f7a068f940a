package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fazeel2019/Upskill-sub000/internal/models"
)

// keywordClient answers categorize prompts by keyword, like a deterministic model.
type keywordClient struct {
	calls    int
	response map[string]any
	err      error
	lastUser string
}

func (c *keywordClient) GenerateJSON(_ context.Context, _, user, schemaName string, _ map[string]any) (map[string]any, error) {
	c.calls++
	c.lastUser = user
	if c.err != nil {
		return nil, c.err
	}
	if c.response != nil {
		return c.response, nil
	}
	if schemaName != "post_category" {
		return nil, errors.New("unexpected schema")
	}
	text := strings.ToLower(user)
	switch {
	case strings.Contains(text, "gene sequencing"):
		return map[string]any{"category": "STEM"}, nil
	case strings.Contains(text, "clinical trial"):
		return map[string]any{"category": "Healthcare"}, nil
	case strings.Contains(text, "vaccination"):
		return map[string]any{"category": "Public Health"}, nil
	}
	return map[string]any{"category": "unknown"}, nil
}

func TestCategorizePostScenarios(t *testing.T) {
	flows := NewFlows(&keywordClient{})
	cases := map[string]models.Category{
		"New gene sequencing pipeline cut our turnaround in half":  models.CategorySTEM,
		"Sharing the clinical trial results from our phase II run": models.CategoryHealthcare,
		"Our county vaccination campaign reached 80% coverage":     models.CategoryPublicHealth,
	}
	for post, want := range cases {
		out, err := flows.CategorizePost(context.Background(), CategorizeInput{PostContent: post})
		require.NoError(t, err, post)
		assert.Equal(t, want, out.Category, post)
	}
}

func TestCategorizePostRejectsEmptyInputWithoutCallingModel(t *testing.T) {
	client := &keywordClient{}
	flows := NewFlows(client)

	_, err := flows.CategorizePost(context.Background(), CategorizeInput{PostContent: "   "})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Zero(t, client.calls)
}

func TestCategorizePostRejectsOffSchemaOutput(t *testing.T) {
	flows := NewFlows(&keywordClient{})

	_, err := flows.CategorizePost(context.Background(), CategorizeInput{PostContent: "weekend hiking photos"})
	assert.ErrorIs(t, err, ErrModelOutput)
}

func TestCategorizePostPropagatesTransportError(t *testing.T) {
	boom := errors.New("connection reset")
	flows := NewFlows(&keywordClient{err: boom})

	_, err := flows.CategorizePost(context.Background(), CategorizeInput{PostContent: "gene sequencing"})
	assert.ErrorIs(t, err, boom)
}

func TestRecommendContent(t *testing.T) {
	client := &keywordClient{response: map[string]any{
		"recommendations": []any{
			map[string]any{"type": "Learning", "title": "Intro to Epidemiology", "reason": "Fits your role", "link": "c1"},
			map[string]any{"type": "Community", "title": "Join the data group", "reason": "Peers", "link": nil},
		},
	}}
	flows := NewFlows(client)

	out, err := flows.RecommendContent(context.Background(), RecommendInput{
		UserTitle: "Epidemiologist",
		AvailableResources: []Resource{
			{ID: "c1", Title: "Intro to Epidemiology", Description: "Basics", Category: "Public Health"},
		},
	})
	require.NoError(t, err)
	require.Len(t, out.Recommendations, 2)
	assert.Equal(t, RecommendLearning, out.Recommendations[0].Type)
	require.NotNil(t, out.Recommendations[0].Link)
	assert.Equal(t, "c1", *out.Recommendations[0].Link)
	assert.Nil(t, out.Recommendations[1].Link)
	assert.Contains(t, client.lastUser, "Epidemiologist")
	assert.Contains(t, client.lastUser, "[c1] Intro to Epidemiology")
}

func TestRecommendContentRejectsUnknownType(t *testing.T) {
	flows := NewFlows(&keywordClient{response: map[string]any{
		"recommendations": []any{
			map[string]any{"type": "Webinar", "title": "x", "reason": "y"},
		},
	}})

	_, err := flows.RecommendContent(context.Background(), RecommendInput{UserTitle: "Nurse"})
	assert.ErrorIs(t, err, ErrModelOutput)
}

func TestRecommendContentRejectsReplyShapeMismatch(t *testing.T) {
	replies := map[string]map[string]any{
		"missing key": {},
		"extra key":   {"recommendations": []any{}, "note": "sure!"},
		"item missing link": {"recommendations": []any{
			map[string]any{"type": "Learning", "title": "x", "reason": "y"},
		}},
		"item extra field": {"recommendations": []any{
			map[string]any{"type": "Learning", "title": "x", "reason": "y", "link": nil, "score": 0.9},
		}},
	}
	for name, reply := range replies {
		flows := NewFlows(&keywordClient{response: reply})
		_, err := flows.RecommendContent(context.Background(), RecommendInput{UserTitle: "Nurse"})
		assert.ErrorIs(t, err, ErrModelOutput, name)
	}

	flows := NewFlows(&keywordClient{response: map[string]any{"recommendations": []any{}}})
	out, err := flows.RecommendContent(context.Background(), RecommendInput{UserTitle: "Nurse"})
	require.NoError(t, err)
	assert.Empty(t, out.Recommendations)
}

func TestRecommendContentRequiresTitle(t *testing.T) {
	flows := NewFlows(&keywordClient{})

	_, err := flows.RecommendContent(context.Background(), RecommendInput{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
